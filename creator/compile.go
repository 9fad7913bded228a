package creator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/parse"
	"github.com/TeamNorCal/ledmachine/percent"
)

var (
	PartitionToken = parse.StaticToken{Name: "partition", Pattern: "|"}
	BlendToken     = parse.StaticToken{Name: "blend", Pattern: "~"}

	// Statics and Pairs are the operators and brackets understood in commands
	Statics = []parse.StaticToken{PartitionToken, BlendToken}
	Pairs   = []parse.ParsePair{parse.CommentPair, parse.LineCommentPair, parse.ParenthesisPair}
)

const offsetWord = "offset"

// Resolver turns a piece of literal command text into an alter, returning
// nil when the text means nothing to it
type Resolver func(text string) alter.Alter

// Settings supplies everything the compiler needs from the caller
type Settings struct {
	// PartitionOffset is where the first partition starts relative to the
	// start of the range, until an offset word overrides it
	PartitionOffset int
	Offsets         map[string]int

	ParseColor   Resolver
	ParsePattern Resolver

	BlendGetter percent.Getter
}

// FromText tokenizes and compiles a command in one step
func FromText(text string, settings Settings) (c Creator, warnings []parse.Warning) {
	tokens, warnings := parse.Tokenize(text, Statics, Pairs)
	c, more := FromTokens(tokens, settings)
	return c, append(warnings, more...)
}

// FromTokens compiles tokens into a creator.  Partitions are split out
// first, then blends within each partition, so blending binds tighter:
// "red | blue ~ green" gives red one half and a blue green blend the other.
// A nil creator is returned when the tokens resolve to nothing
func FromTokens(tokens []parse.Token, settings Settings) (c Creator, warnings []parse.Warning) {
	return compile(tokens, settings.PartitionOffset, settings)
}

func warn(format string, args ...interface{}) parse.Warning {
	return parse.Warning{Position: -1, Msg: fmt.Sprintf(format, args...)}
}

func split(tokens []parse.Token, operator parse.StaticToken) (segments [][]parse.Token) {
	segment := []parse.Token{}
	for _, tok := range tokens {
		if static, ok := tok.(parse.StaticToken); ok && static == operator {
			segments = append(segments, segment)
			segment = []parse.Token{}
			continue
		}
		segment = append(segment, tok)
	}
	return append(segments, segment)
}

// applyOffset looks for "offset <name|number>" in the literal text of this
// level, removing the words so the resolvers never see them
func applyOffset(tokens []parse.Token, offset int, settings Settings) (out []parse.Token, result int, warnings []parse.Warning) {
	result = offset
	out = make([]parse.Token, 0, len(tokens))
	for _, tok := range tokens {
		str, ok := tok.(parse.StringToken)
		if !ok || !strings.Contains(str.Data, offsetWord) {
			out = append(out, tok)
			continue
		}
		words := strings.Fields(str.Data)
		kept := make([]string, 0, len(words))
		for i := 0; i < len(words); i++ {
			if words[i] != offsetWord {
				kept = append(kept, words[i])
				continue
			}
			if i+1 >= len(words) {
				warnings = append(warnings, warn("%s is missing a value", offsetWord))
				continue
			}
			value := words[i+1]
			i++
			if number, errGo := strconv.Atoi(value); errGo == nil {
				result = number
				continue
			}
			if named, isNamed := settings.Offsets[value]; isNamed {
				result = named
				continue
			}
			warnings = append(warnings, warn("unknown %s %q", offsetWord, value))
		}
		out = append(out, parse.StringToken{Data: strings.Join(kept, " ")})
	}
	return out, result, warnings
}

func compile(tokens []parse.Token, offset int, settings Settings) (c Creator, warnings []parse.Warning) {
	tokens, offset, warnings = applyOffset(tokens, offset, settings)

	if segments := split(tokens, PartitionToken); len(segments) > 1 {
		p := &Partition{Offset: offset, Children: make([]Creator, 0, len(segments))}
		for _, segment := range segments {
			child, more := compile(segment, offset, settings)
			warnings = append(warnings, more...)
			p.Children = append(p.Children, child)
		}
		return p, warnings
	}

	if segments := split(tokens, BlendToken); len(segments) > 1 {
		b := &Blend{Getter: settings.BlendGetter, Children: make([]Creator, 0, len(segments))}
		if b.Getter == nil {
			b.Getter = percent.Constant(0)
		}
		for _, segment := range segments {
			child, more := compile(segment, offset, settings)
			warnings = append(warnings, more...)
			b.Children = append(b.Children, child)
		}
		return b, warnings
	}

	comb := &Combiner{}
	for _, tok := range tokens {
		switch tok := tok.(type) {
		case parse.StringToken:
			if strings.TrimSpace(tok.Data) == "" {
				continue
			}
			if settings.ParseColor != nil {
				if a := settings.ParseColor(tok.Data); a != nil {
					comb.Colors = append(comb.Colors, NewStatic(a, Data{HasColor: true}))
				}
			}
			if settings.ParsePattern != nil {
				if a := settings.ParsePattern(tok.Data); a != nil {
					comb.Patterns = append(comb.Patterns, NewStatic(a, Data{HasPattern: true}))
				}
			}
		case parse.OrganizerToken:
			// Parentheses start again from no offset
			child, more := compile(tok.Tokens, 0, settings)
			warnings = append(warnings, more...)
			if child == nil {
				continue
			}
			if child.Data().HasColor {
				comb.Colors = append(comb.Colors, child)
			} else {
				comb.Patterns = append(comb.Patterns, child)
			}
		case parse.NothingToken:
		default:
			warnings = append(warnings, warn("unexpected %s", tok))
		}
	}

	switch len(comb.Colors) + len(comb.Patterns) {
	case 0:
		return nil, warnings
	case 1:
		if len(comb.Colors) == 1 {
			return comb.Colors[0], warnings
		}
		return comb.Patterns[0], warnings
	}
	return comb, warnings
}
