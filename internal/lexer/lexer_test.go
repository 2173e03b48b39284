package lexer

import (
	"strings"
	"testing"
)

func TestNextTokenPunctuation(t *testing.T) {
	input := "= | , . : ? ( ) { } [ ]"
	expected := []TokenType{
		TokenAssign, TokenPipe, TokenComma, TokenDot, TokenColon, TokenQuestion,
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenEOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		expType TokenType
		expLit  string
	}{
		{"plain identifier", "Foo", TokenIdentifier, "Foo"},
		{"underscore identifier", "_internal", TokenIdentifier, "_internal"},
		{"type keyword", "type", TokenTypeDef, "type"},
		{"alias keyword", "alias", TokenAlias, "alias"},
		{"import keyword", "import", TokenImport, "import"},
		// "enum" is version-gated, so it must stay an identifier here.
		{"enum is not a lexical keyword", "enum", TokenIdentifier, "enum"},
		// maximal munch: keywords never carved out of longer identifiers
		{"keyword prefix", "typed", TokenIdentifier, "typed"},
		{"primitive prefix", "Longs", TokenIdentifier, "Longs"},
		{"fixed with underscore", "Fixed_", TokenIdentifier, "Fixed_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.expType {
				t.Errorf("expected type %s, got %s", tt.expType, tok.Type)
			}
			if tok.Literal != tt.expLit {
				t.Errorf("expected literal %q, got %q", tt.expLit, tok.Literal)
			}
		})
	}
}

func TestIntegerToken(t *testing.T) {
	l := New("Fixed(1234)")
	types := []TokenType{TokenIdentifier, TokenLParen, TokenInteger, TokenRParen, TokenEOF}
	var literals []string
	for _, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("expected %s, got %s", want, tok.Type)
		}
		literals = append(literals, tok.Literal)
	}
	if literals[2] != "1234" {
		t.Errorf("expected integer literal 1234, got %q", literals[2])
	}
}

func TestPlainCommentsAreSkipped(t *testing.T) {
	input := "// line comment\nFoo /* block\ncomment */ Bar"
	l := New(input)

	first := l.NextToken()
	second := l.NextToken()
	if first.Literal != "Foo" || second.Literal != "Bar" {
		t.Errorf("expected Foo and Bar, got %q and %q", first.Literal, second.Literal)
	}
	if tok := l.NextToken(); tok.Type != TokenEOF {
		t.Errorf("expected EOF, got %s", tok.Type)
	}
}

func TestLineDocComment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single line",
			input:    "///   stripped leading whitespace",
			expected: "stripped leading whitespace",
		},
		{
			name:     "consecutive lines join with newline",
			input:    "/// first\n/// second\n///  third",
			expected: "first\nsecond\nthird",
		},
		{
			name:     "blank line ends the run",
			input:    "/// first\n\n/// second",
			expected: "first",
		},
		{
			name:     "carriage returns stripped",
			input:    "/// first\r\n/// second\r\ntype",
			expected: "first\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != TokenDoc {
				t.Fatalf("expected DOC token, got %s", tok.Type)
			}
			if tok.Literal != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tok.Literal)
			}
		})
	}
}

func TestBlockDocComment(t *testing.T) {
	input := "/** This is a multiline block comment.\n * I expect to see whitespace... etc managed correctly.\n */"
	tok := New(input).NextToken()

	if tok.Type != TokenDoc {
		t.Fatalf("expected DOC token, got %s", tok.Type)
	}
	expected := "This is a multiline block comment.\nI expect to see whitespace... etc managed correctly."
	if tok.Literal != expected {
		t.Errorf("expected %q, got %q", expected, tok.Literal)
	}
	if strings.Contains(tok.Literal, "*") {
		t.Errorf("comment markers leaked into doc text: %q", tok.Literal)
	}
}

func TestBlockDocIndentation(t *testing.T) {
	input := "/** first\n    second\n    third\n */"
	tok := New(input).NextToken()
	if tok.Type != TokenDoc {
		t.Fatalf("expected DOC token, got %s", tok.Type)
	}
	if tok.Literal != "first\nsecond\nthird" {
		t.Errorf("common indentation not stripped: %q", tok.Literal)
	}
}

func TestUnterminatedComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated block comment", "/* never closed"},
		{"unterminated doc comment", "/** never closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != TokenError {
				t.Errorf("expected ERROR token, got %s (%q)", tok.Type, tok.Literal)
			}
		})
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("Foo $ Bar")
	l.NextToken() // Foo
	tok := l.NextToken()
	if tok.Type != TokenError {
		t.Fatalf("expected ERROR token, got %s", tok.Type)
	}
}

func TestTokenPositions(t *testing.T) {
	l := NewWithFilename("type Foo\n  = Int", "demo.theta")
	tok := l.NextToken() // type
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("expected 1:1, got %d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	l.NextToken()        // Foo
	tok = l.NextToken()  // =
	if tok.Pos.Line != 2 || tok.Pos.Column != 3 {
		t.Errorf("expected 2:3, got %d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	if got := tok.Pos.String(); got != "demo.theta:2:3" {
		t.Errorf("position string: got %q", got)
	}
}

func TestSectionPositions(t *testing.T) {
	// A section lexer seeded at line 4 must report positions in the
	// coordinates of the full source.
	l := NewSection("Foo", "demo.theta", Position{Line: 4, Column: 0})
	tok := l.NextToken()
	if tok.Pos.Line != 4 || tok.Pos.Column != 1 {
		t.Errorf("expected 4:1, got %d:%d", tok.Pos.Line, tok.Pos.Column)
	}
}

func TestTokensDrain(t *testing.T) {
	tokens := New("type Foo = Int").Tokens()
	if len(tokens) != 5 {
		t.Fatalf("expected 5 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Errorf("expected trailing EOF, got %s", tokens[len(tokens)-1].Type)
	}
}
