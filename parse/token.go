package parse

import (
	"fmt"
	"strings"
)

// This file contains the tokens produced by the tokenizer.  The set of
// tokens is closed, only the types in this package implement Token

// Token is one element of a tokenized command
type Token interface {
	fmt.Stringer
	token()
}

// StaticToken is an operator recognized anywhere in the text
type StaticToken struct {
	Name    string
	Pattern string
}

func (StaticToken) token() {}

func (t StaticToken) String() string {
	return fmt.Sprintf("Static(%s)", t.Name)
}

// StringToken is a run of literal text between operators and brackets
type StringToken struct {
	Data string
}

func (StringToken) token() {}

func (t StringToken) String() string {
	return fmt.Sprintf("String(%q)", t.Data)
}

// OrganizerToken holds the tokens found inside a grouping bracket
type OrganizerToken struct {
	Tokens []Token
}

func (OrganizerToken) token() {}

func (t OrganizerToken) String() string {
	parts := make([]string, 0, len(t.Tokens))
	for _, tok := range t.Tokens {
		parts = append(parts, tok.String())
	}
	return "Organizer[" + strings.Join(parts, ", ") + "]"
}

// NothingToken stands in for text that was elided, such as a comment
type NothingToken struct{}

func (NothingToken) token() {}

func (NothingToken) String() string {
	return "Nothing"
}
