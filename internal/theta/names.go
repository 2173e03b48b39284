package theta

import (
	"strings"

	"github.com/theta-lang/theta/internal/ast"
)

// validSegment reports whether s is a legal name segment: a letter or
// underscore followed by letters, digits and underscores.
func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ParseModuleName parses dotted text like "com.example.foo" into a module
// name. Every segment must be a legal identifier.
func ParseModuleName(text string) (ast.ModuleName, error) {
	for _, seg := range strings.Split(text, ".") {
		if !validSegment(seg) {
			return "", &InvalidName{Text: text}
		}
	}
	return ast.ModuleName(text), nil
}

// ParseName parses fully-qualified text like "com.example.foo.Bar" into a
// Name: the final segment is the local name, everything before it the
// module. Text without a module qualifier is an UnqualifiedName error.
func ParseName(text string) (ast.Name, error) {
	dot := strings.LastIndexByte(text, '.')
	if dot < 0 {
		if !validSegment(text) {
			return ast.Name{}, &InvalidName{Text: text}
		}
		return ast.Name{}, &UnqualifiedName{Text: text}
	}
	module, err := ParseModuleName(text[:dot])
	if err != nil {
		return ast.Name{}, err
	}
	local := text[dot+1:]
	if !validSegment(local) {
		return ast.Name{}, &InvalidName{Text: text}
	}
	return ast.Name{Module: module, Name: local}, nil
}
