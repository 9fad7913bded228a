/*
Package parse splits free text commands into tokens.  Static tokens are
operators recognized anywhere in the text, parse pairs are brackets whose
contents are condensed into a single token, for example a comment turning
into nothing or parentheses turning into a group of tokens.
*/
package parse

import (
	"fmt"
	"strings"
)

// ParsePair describes a bracketing construct.  Condense turns the tokens
// found between Start and End into the single token that replaces them
type ParsePair struct {
	Start    string
	End      string
	Condense func(tokens []Token) Token
}

var (
	// CommentPair elides /* block comments */
	CommentPair = ParsePair{
		Start:    "/*",
		End:      "*/",
		Condense: func([]Token) Token { return NothingToken{} },
	}

	// LineCommentPair elides // comments up to the end of the line
	LineCommentPair = ParsePair{
		Start:    "//",
		End:      "\n",
		Condense: func([]Token) Token { return NothingToken{} },
	}

	// ParenthesisPair groups the enclosed tokens
	ParenthesisPair = ParsePair{
		Start:    "(",
		End:      ")",
		Condense: func(tokens []Token) Token { return OrganizerToken{Tokens: tokens} },
	}
)

// Warning describes a problem found in a command that did not stop it from
// being used
type Warning struct {
	Position int
	Msg      string
}

func (w Warning) String() string {
	if w.Position < 0 {
		return w.Msg
	}
	return fmt.Sprintf("%s at %d", w.Msg, w.Position)
}

// level is one open bracket, the bottom of the stack is the text itself
type level struct {
	pair   *ParsePair
	opened int
	tokens []Token
	data   strings.Builder
}

func (l *level) flush() {
	if l.data.Len() != 0 {
		l.tokens = append(l.tokens, StringToken{Data: l.data.String()})
		l.data.Reset()
	}
}

func selectStatic(rest string, statics []StaticToken) (tok StaticToken, ok bool) {
	for _, static := range statics {
		if static.Pattern != "" && strings.HasPrefix(rest, static.Pattern) {
			return static, true
		}
	}
	return tok, false
}

func selectPair(rest string, pairs []ParsePair) *ParsePair {
	for i := range pairs {
		if pairs[i].Start != "" && strings.HasPrefix(rest, pairs[i].Start) {
			return &pairs[i]
		}
	}
	return nil
}

// Tokenize walks text once.  At each position the end of the innermost open
// bracket is checked first, then the static tokens, then the start of a new
// bracket, and otherwise the character becomes part of a literal.  Brackets
// left open at the end of the text are closed with a warning and their
// contents kept
func Tokenize(text string, statics []StaticToken, pairs []ParsePair) (tokens []Token, warnings []Warning) {
	stack := []*level{{}}

	for pos := 0; pos < len(text); {
		top := stack[len(stack)-1]
		rest := text[pos:]

		if top.pair != nil && top.pair.End != "" && strings.HasPrefix(rest, top.pair.End) {
			top.flush()
			pos += len(top.pair.End)
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.tokens = append(parent.tokens, top.pair.Condense(top.tokens))
			continue
		}

		if static, ok := selectStatic(rest, statics); ok {
			top.flush()
			top.tokens = append(top.tokens, static)
			pos += len(static.Pattern)
			continue
		}

		if pair := selectPair(rest, pairs); pair != nil {
			top.flush()
			stack = append(stack, &level{pair: pair, opened: pos})
			pos += len(pair.Start)
			continue
		}

		top.data.WriteByte(text[pos])
		pos++
	}

	for len(stack) > 1 {
		top := stack[len(stack)-1]
		top.flush()
		warnings = append(warnings, Warning{
			Position: top.opened,
			Msg:      fmt.Sprintf("%q was never closed with %q", top.pair.Start, top.pair.End),
		})
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		parent.tokens = append(parent.tokens, top.pair.Condense(top.tokens))
	}

	stack[0].flush()
	return stack[0].tokens, warnings
}
