package template

import (
	"fmt"
	"strings"
)

// Fragment is one piece of a tokenized substitution template: either literal
// text or a ${...} variable reference. Fragments preserve source order.
type Fragment interface {
	isFragment()
}

// Literal is a run of literal text in a substitution template.
type Literal string

// Variable is a ${Name} reference in a substitution template.
type Variable string

func (Literal) isFragment()  {}
func (Variable) isFragment() {}

// SubParseError reports a lexically invalid substitution template.
type SubParseError struct {
	Template string
	Offset   int
}

func (e *SubParseError) Error() string {
	return fmt.Sprintf("unterminated ${ expression at offset %d in %q", e.Offset, e.Template)
}

// ParseSub tokenizes a Fn::Sub template string into an ordered fragment
// sequence. ${Name} becomes a Variable, everything else Literal; the
// ${!Name} escape yields the literal text ${Name}.
func ParseSub(s string) ([]Fragment, error) {
	var frags []Fragment
	rest := s
	offset := 0
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			if rest != "" {
				frags = append(frags, Literal(rest))
			}
			return frags, nil
		}
		if start > 0 {
			frags = append(frags, Literal(rest[:start]))
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			return nil, &SubParseError{Template: s, Offset: offset + start}
		}
		end += start
		inner := rest[start+2 : end]
		if strings.HasPrefix(inner, "!") {
			// ${!Name} is the escape for a literal ${Name}.
			frags = append(frags, Literal("${"+inner[1:]+"}"))
		} else {
			frags = append(frags, Variable(inner))
		}
		offset += end + 1
		rest = rest[end+1:]
	}
}
