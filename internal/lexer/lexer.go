// Package lexer implements the Theta lexical analyzer for module bodies:
// identifiers, integers, punctuation, and documentation comments. Plain
// comments are skipped; doc comments are normalized and emitted as tokens
// so the parser can enforce attachment rules.
package lexer

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token.
type TokenType int

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types.
const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier
	TokenInteger
	TokenDoc

	// Keywords reserved at every language version. "enum" is version-gated
	// and therefore lexed as an identifier; the parser decides.
	TokenTypeDef
	TokenAlias
	TokenImport

	// Punctuation
	TokenAssign
	TokenPipe
	TokenComma
	TokenDot
	TokenColon
	TokenQuestion
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
)

// tokenNames provides string representations for token types.
var tokenNames = map[TokenType]string{
	TokenEOF:   "EOF",
	TokenError: "ERROR",

	TokenIdentifier: "IDENTIFIER",
	TokenInteger:    "INTEGER",
	TokenDoc:        "DOC",

	TokenTypeDef: "TYPE",
	TokenAlias:   "ALIAS",
	TokenImport:  "IMPORT",

	TokenAssign:   "ASSIGN",
	TokenPipe:     "PIPE",
	TokenComma:    "COMMA",
	TokenDot:      "DOT",
	TokenColon:    "COLON",
	TokenQuestion: "QUESTION",
	TokenLParen:   "LPAREN",
	TokenRParen:   "RPAREN",
	TokenLBrace:   "LBRACE",
	TokenRBrace:   "RBRACE",
	TokenLBracket: "LBRACKET",
	TokenRBracket: "RBRACKET",
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{
	"type":   TokenTypeDef,
	"alias":  TokenAlias,
	"import": TokenImport,
}

// Position represents a position in the source code.
type Position struct {
	File   string // source filename, may be empty
	Line   int    // 1-based line number
	Column int    // 1-based column number
	Offset int    // 0-based byte offset in source
}

// String returns a string representation of the position.
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String returns a string representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Pos.Line, t.Pos.Column)
}

// Lexer represents the lexical analyzer.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number

	filename string // source filename for error reporting
}

// New creates a new lexer instance over the full input.
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with a filename for error
// reporting.
func NewWithFilename(input, filename string) *Lexer {
	return NewSection(input, filename, Position{Line: 1, Column: 0})
}

// NewSection creates a lexer over a slice of a larger source, seeding line
// and column so token positions refer to the original text. The metadata
// parser uses this to hand the module body off at the right position.
func NewSection(input, filename string, start Position) *Lexer {
	l := &Lexer{
		input:    input,
		line:     start.Line,
		column:   start.Column,
		filename: filename,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL represents EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharAt returns the character n positions ahead without advancing.
func (l *Lexer) peekCharAt(n int) byte {
	if l.readPosition+n-1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+n-1]
}

func (l *Lexer) pos() Position {
	return Position{File: l.filename, Line: l.line, Column: l.column, Offset: l.position}
}

// skipWhitespace skips spaces, tabs, carriage returns and newlines. The
// Theta body grammar is not newline-sensitive.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

// readIdentifier reads a maximal run of identifier characters. Keyword
// recognition happens on the completed run, so a keyword is never carved
// out of a longer identifier ("Longs" stays one identifier).
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readInteger reads a maximal run of decimal digits.
func (l *Lexer) readInteger() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// NextToken scans and returns the next token. Plain comments are consumed
// silently; documentation comments are returned as TokenDoc with normalized
// text as the literal.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		if l.ch == '/' && l.peekChar() == '/' {
			if l.peekCharAt(2) == '/' {
				return l.lexLineDoc()
			}
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			if l.peekCharAt(2) == '*' && l.peekCharAt(3) != '/' {
				return l.lexBlockDoc()
			}
			if tok, bad := l.skipBlockComment(); bad {
				return tok
			}
			continue
		}
		break
	}

	pos := l.pos()

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: pos}
	case '=':
		l.readChar()
		return Token{Type: TokenAssign, Literal: "=", Pos: pos}
	case '|':
		l.readChar()
		return Token{Type: TokenPipe, Literal: "|", Pos: pos}
	case ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}
	case '.':
		l.readChar()
		return Token{Type: TokenDot, Literal: ".", Pos: pos}
	case ':':
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Pos: pos}
	case '?':
		l.readChar()
		return Token{Type: TokenQuestion, Literal: "?", Pos: pos}
	case '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}
	case ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}
	case '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}
	case '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}
	case '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}
	case ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}
	}

	if isLetter(l.ch) || l.ch == '_' {
		literal := l.readIdentifier()
		if tt, ok := keywords[literal]; ok {
			return Token{Type: tt, Literal: literal, Pos: pos}
		}
		return Token{Type: TokenIdentifier, Literal: literal, Pos: pos}
	}
	if isDigit(l.ch) {
		return Token{Type: TokenInteger, Literal: l.readInteger(), Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenError, Literal: fmt.Sprintf("illegal character %q", ch), Pos: pos}
}

// Tokens drains the lexer and returns all remaining tokens, the last one
// being EOF or Error. The parser consumes this slice so choice points can
// save and restore an index.
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return tokens
		}
	}
}

// skipLineComment consumes a "//" comment up to (not including) the newline.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipBlockComment consumes a "/* ... */" comment. Returns an error token
// if the comment is unterminated.
func (l *Lexer) skipBlockComment() (Token, bool) {
	pos := l.pos()
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.ch == 0 {
			return Token{Type: TokenError, Literal: "unterminated block comment", Pos: pos}, true
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return Token{}, false
		}
		l.readChar()
	}
}

// lexLineDoc consumes one or more consecutive "///" lines and returns a
// single doc token with the normalized text.
func (l *Lexer) lexLineDoc() Token {
	pos := l.pos()
	var lines []string

	for {
		l.readChar() // '/'
		l.readChar() // '/'
		l.readChar() // '/'
		start := l.position
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		line := strings.TrimRight(l.input[start:l.position], "\r")
		lines = append(lines, strings.TrimLeft(line, " \t"))

		// Another "///" line continues the same doc comment only if it is
		// the immediately following line; a blank line ends the run.
		save := *l
		if l.ch != '\n' {
			break
		}
		l.readChar()
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if !(l.ch == '/' && l.peekChar() == '/' && l.peekCharAt(2) == '/') {
			*l = save
			break
		}
	}

	return Token{Type: TokenDoc, Literal: strings.Join(lines, "\n"), Pos: pos}
}

// lexBlockDoc consumes a "/** ... */" comment and returns a doc token with
// the normalized text.
func (l *Lexer) lexBlockDoc() Token {
	pos := l.pos()
	l.readChar() // '/'
	l.readChar() // '*'
	l.readChar() // '*'
	start := l.position
	for {
		if l.ch == 0 {
			return Token{Type: TokenError, Literal: "unterminated documentation comment", Pos: pos}
		}
		if l.ch == '*' && l.peekChar() == '/' {
			break
		}
		l.readChar()
	}
	raw := l.input[start:l.position]
	l.readChar() // '*'
	l.readChar() // '/'

	return Token{Type: TokenDoc, Literal: normalizeBlockDoc(raw), Pos: pos}
}

// normalizeBlockDoc strips the common leading indentation of continuation
// lines, removes an optional "*" marker plus one following space from each,
// joins the lines with single newlines and trims the result.
func normalizeBlockDoc(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > 1 {
		indent := commonIndent(lines[1:])
		for i, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				lines[i+1] = ""
				continue
			}
			line = strings.TrimPrefix(line, indent)
			if strings.HasPrefix(line, "*") {
				line = strings.TrimPrefix(line[1:], " ")
			}
			lines[i+1] = line
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// commonIndent returns the longest whitespace prefix shared by every
// non-blank line.
func commonIndent(lines []string) string {
	indent := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ws := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			indent = ws
			first = false
			continue
		}
		for !strings.HasPrefix(ws, indent) {
			indent = indent[:len(indent)-1]
		}
	}
	return indent
}
