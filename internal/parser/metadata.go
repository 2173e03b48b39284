package parser

import (
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/lexer"
	"github.com/theta-lang/theta/internal/theta"
)

// ParseMetadata parses just the header block of module source, up to and
// including the "---" separator line.
func ParseMetadata(name ast.ModuleName, source, filename string) (ast.Metadata, error) {
	meta, _, _, err := parseMetadata(name, source, filename)
	return meta, err
}

// parseMetadata scans `key: version` lines with comments freely
// interspersed, terminated by a line containing only "---". It returns the
// metadata, the remaining body text, and the body's starting position for
// the section lexer.
func parseMetadata(name ast.ModuleName, source, filename string) (ast.Metadata, string, lexer.Position, error) {
	s := &metaScanner{src: source, line: 1, col: 1, filename: filename}
	var lang, enc *semver.Version
	fail := func(err error) (ast.Metadata, string, lexer.Position, error) {
		return ast.Metadata{}, "", lexer.Position{}, err
	}

	for {
		if err := s.skipSpaceAndComments(); err != nil {
			return fail(err)
		}

		if s.ch() == 0 {
			return fail(s.errorf(s.position(), "missing metadata separator %q", "---"))
		}

		if strings.HasPrefix(s.rest(), "---") {
			sepPos := s.position()
			s.advanceN(3)
			for s.ch() == ' ' || s.ch() == '\t' || s.ch() == '\r' {
				s.advance()
			}
			if s.ch() != '\n' && s.ch() != 0 {
				return fail(s.errorf(s.position(), "metadata separator line must contain only %q", "---"))
			}
			if s.ch() == '\n' {
				s.advance()
			}

			if lang == nil {
				return fail(s.errorf(sepPos, "missing metadata key %q", "language-version"))
			}
			if enc == nil {
				return fail(s.errorf(sepPos, "missing metadata key %q", "encoding-version"))
			}

			body := s.src[s.pos:]
			start := lexer.Position{File: filename, Line: s.line, Column: 0, Offset: s.pos}
			meta := ast.Metadata{LanguageVersion: lang, EncodingVersion: enc, ModuleName: name}
			return meta, body, start, nil
		}

		keyPos := s.position()
		keyStart := s.pos
		for isKeyChar(s.ch()) {
			s.advance()
		}
		key := s.src[keyStart:s.pos]
		switch key {
		case "language-version", "encoding-version":
		case "":
			return fail(s.errorf(keyPos, "unexpected character %q in module header", s.ch()))
		default:
			return fail(s.errorf(keyPos, "unknown metadata key %q", key))
		}

		for s.ch() == ' ' || s.ch() == '\t' {
			s.advance()
		}
		if s.ch() != ':' {
			return fail(s.errorf(s.position(), "expected %q after metadata key %q", ":", key))
		}
		s.advance()
		for s.ch() == ' ' || s.ch() == '\t' {
			s.advance()
		}

		valPos := s.position()
		valStart := s.pos
		for s.ch() != '\n' && s.ch() != 0 && !s.commentAhead() {
			s.advance()
		}
		value := strings.TrimSpace(s.src[valStart:s.pos])

		version, err := semver.StrictNewVersion(value)
		if err != nil {
			return fail(s.errorf(valPos, "malformed version %q for metadata key %q", value, key))
		}

		switch key {
		case "language-version":
			if lang != nil {
				return fail(s.errorf(keyPos, "duplicate metadata key %q", key))
			}
			lang = version
		case "encoding-version":
			if enc != nil {
				return fail(s.errorf(keyPos, "duplicate metadata key %q", key))
			}
			enc = version
		}
	}
}

func isKeyChar(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '-'
}

// metaScanner is a small character-level scanner for the module header. The
// header is line-oriented (versions run to end of line), so it cannot share
// the body tokenizer, but it skips comments with the same rules.
type metaScanner struct {
	src      string
	pos      int
	line     int // 1-based line of the current character
	col      int // 1-based column of the current character
	filename string
}

func (s *metaScanner) ch() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *metaScanner) peek() byte {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *metaScanner) rest() string { return s.src[s.pos:] }

func (s *metaScanner) advance() {
	if s.pos >= len(s.src) {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

func (s *metaScanner) advanceN(n int) {
	for i := 0; i < n; i++ {
		s.advance()
	}
}

func (s *metaScanner) position() lexer.Position {
	return lexer.Position{File: s.filename, Line: s.line, Column: s.col, Offset: s.pos}
}

func (s *metaScanner) errorf(pos lexer.Position, format string, args ...any) error {
	return &theta.ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (s *metaScanner) commentAhead() bool {
	return s.ch() == '/' && (s.peek() == '/' || s.peek() == '*')
}

// skipSpaceAndComments consumes whitespace, newlines, line comments and
// block comments. Doc comment markers are plain comments in the header.
func (s *metaScanner) skipSpaceAndComments() error {
	for {
		switch {
		case s.ch() == ' ' || s.ch() == '\t' || s.ch() == '\r' || s.ch() == '\n':
			s.advance()
		case s.ch() == '/' && s.peek() == '/':
			for s.ch() != '\n' && s.ch() != 0 {
				s.advance()
			}
		case s.ch() == '/' && s.peek() == '*':
			pos := s.position()
			s.advanceN(2)
			for {
				if s.ch() == 0 {
					return s.errorf(pos, "unterminated block comment")
				}
				if s.ch() == '*' && s.peek() == '/' {
					s.advanceN(2)
					break
				}
				s.advance()
			}
		default:
			return nil
		}
	}
}
