// Package parser implements the Theta recursive descent parser: module
// metadata, version-gated type expressions, definitions with attached
// documentation, and the module statement sequence.
//
// Grammar alternatives are tried in declaration order over a token slice;
// each choice point saves and restores the token index, so backtracking
// needs no runtime support beyond the index itself.
package parser

import (
	"fmt"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/lexer"
	"github.com/theta-lang/theta/internal/theta"
)

// Parser represents the recursive descent parser for one module body. The
// metadata threaded through it is read-only context for the whole parse.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	meta     ast.Metadata
	filename string
}

// ParseModule parses complete module source: the metadata header followed
// by the statement sequence. The module name is supplied externally by the
// loader; every declared name is qualified with it.
func ParseModule(name ast.ModuleName, source, filename string) (*ast.Module, error) {
	meta, body, start, err := parseMetadata(name, source, filename)
	if err != nil {
		return nil, err
	}

	l := lexer.NewSection(body, filename, start)
	p := &Parser{tokens: l.Tokens(), meta: meta, filename: filename}

	return p.parseModule()
}

// current returns the token under examination without consuming it.
func (p *Parser) current() lexer.Token {
	return p.tokens[p.pos]
}

// advance consumes and returns the current token. EOF and lexical error
// tokens are sticky so the parser cannot run off the end of the slice.
func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokenEOF && tok.Type != lexer.TokenError {
		p.pos++
	}
	return tok
}

// peekAt returns the token n positions past the current one without
// consuming anything.
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

// recordAhead distinguishes a record body from a map type after "=": a "{"
// opens a record when followed by "}", a documentation comment, or a field
// name and ":". Anything else is a map type expression.
func (p *Parser) recordAhead() bool {
	switch p.peekAt(1).Type {
	case lexer.TokenRBrace, lexer.TokenDoc:
		return true
	case lexer.TokenIdentifier:
		return p.peekAt(2).Type == lexer.TokenColon
	}
	return false
}

// mark records the current token index for backtracking.
func (p *Parser) mark() int { return p.pos }

// reset restores a previously marked token index.
func (p *Parser) reset(mark int) { p.pos = mark }

func (p *Parser) errorf(pos lexer.Position, format string, args ...any) error {
	return &theta.ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// describe renders a token for diagnostics.
func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// expect consumes a token of the given type or fails with a positioned
// parse error naming the grammar context.
func (p *Parser) expect(tt lexer.TokenType, context string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type == lexer.TokenError {
		return tok, p.errorf(tok.Pos, "%s", tok.Literal)
	}
	if tok.Type != tt {
		return tok, p.errorf(tok.Pos, "expected %s in %s, found %s", tt, context, describe(tok))
	}
	return p.advance(), nil
}

// unexpected fails on the current token. Lexical errors surface their own
// message.
func (p *Parser) unexpected(context string) error {
	tok := p.current()
	if tok.Type == lexer.TokenError {
		return p.errorf(tok.Pos, "%s", tok.Literal)
	}
	return p.errorf(tok.Pos, "unexpected %s in %s", describe(tok), context)
}

// qualify binds a local name to the module being parsed.
func (p *Parser) qualify(local string) ast.Name {
	return ast.Qualify(p.meta.ModuleName, local)
}

// parseModule parses the statement sequence to EOF. Anything left over that
// is not a statement, including an orphaned documentation comment, fails
// the whole parse.
func (p *Parser) parseModule() (*ast.Module, error) {
	module := &ast.Module{Name: p.meta.ModuleName, Metadata: p.meta}

	for p.current().Type != lexer.TokenEOF {
		if p.current().Type == lexer.TokenImport {
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			module.Imports = append(module.Imports, imp)
			continue
		}

		def, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		module.Definitions = append(module.Definitions, def)
	}

	return module, nil
}

// parseImport parses "import dotted.module.name".
func (p *Parser) parseImport() (ast.ModuleName, error) {
	p.advance() // "import"

	tok, err := p.expect(lexer.TokenIdentifier, "import statement")
	if err != nil {
		return "", err
	}
	name := tok.Literal
	for p.current().Type == lexer.TokenDot {
		p.advance()
		tok, err := p.expect(lexer.TokenIdentifier, "import statement")
		if err != nil {
			return "", err
		}
		name += "." + tok.Literal
	}

	return ast.ModuleName(name), nil
}

// parseDefinition parses one definition, optionally preceded by exactly one
// documentation comment.
func (p *Parser) parseDefinition() (ast.Definition, error) {
	var doc ast.Doc
	var docTok lexer.Token
	hasDoc := false
	if p.current().Type == lexer.TokenDoc {
		docTok = p.advance()
		doc = ast.Doc(docTok.Literal)
		hasDoc = true
	}

	tok := p.current()
	switch {
	case tok.Type == lexer.TokenIdentifier && tok.Literal == "enum":
		// "enum" in statement position commits to the versioned construct
		// even below the minimum version; anywhere else it is an ordinary
		// identifier.
		return p.parseEnum(doc)
	case tok.Type == lexer.TokenTypeDef:
		return p.parseTypeDefinition(doc)
	case tok.Type == lexer.TokenAlias:
		return p.parseAlias(doc)
	}

	if hasDoc {
		return ast.Definition{}, p.errorf(docTok.Pos,
			"orphaned documentation comment: documentation must immediately precede a definition, field or case")
	}
	return ast.Definition{}, p.unexpected("module body")
}

// parseEnum parses `enum Name = Symbol ("|" Symbol)*`. Symbol order is
// preserved.
func (p *Parser) parseEnum(doc ast.Doc) (ast.Definition, error) {
	p.advance() // "enum"
	if err := p.require(featureEnum); err != nil {
		return ast.Definition{}, err
	}

	nameTok, err := p.expect(lexer.TokenIdentifier, "enum definition")
	if err != nil {
		return ast.Definition{}, err
	}
	if _, err := p.expect(lexer.TokenAssign, "enum definition"); err != nil {
		return ast.Definition{}, err
	}

	symTok, err := p.expect(lexer.TokenIdentifier, "enum symbol")
	if err != nil {
		return ast.Definition{}, err
	}
	symbols := []string{symTok.Literal}
	for p.current().Type == lexer.TokenPipe {
		p.advance()
		symTok, err := p.expect(lexer.TokenIdentifier, "enum symbol")
		if err != nil {
			return ast.Definition{}, err
		}
		symbols = append(symbols, symTok.Literal)
	}

	name := p.qualify(nameTok.Literal)
	return ast.Definition{
		Name: name,
		Doc:  doc,
		Type: ast.Enum{Name: name, Symbols: symbols},
	}, nil
}

// parseTypeDefinition parses `type Name = body` where the body is a record,
// a variant, or a single type expression (a newtype).
func (p *Parser) parseTypeDefinition(doc ast.Doc) (ast.Definition, error) {
	p.advance() // "type"

	nameTok, err := p.expect(lexer.TokenIdentifier, "type definition")
	if err != nil {
		return ast.Definition{}, err
	}
	if _, err := p.expect(lexer.TokenAssign, "type definition"); err != nil {
		return ast.Definition{}, err
	}

	name := p.qualify(nameTok.Literal)
	body, err := p.parseTypeBody(name)
	if err != nil {
		return ast.Definition{}, err
	}

	return ast.Definition{Name: name, Doc: doc, Type: body}, nil
}

// parseAlias parses `alias Name = typeExpr`. The alias carries its own
// documentation but stands for exactly the underlying type, so no wrapper
// node is produced.
func (p *Parser) parseAlias(doc ast.Doc) (ast.Definition, error) {
	p.advance() // "alias"

	nameTok, err := p.expect(lexer.TokenIdentifier, "alias definition")
	if err != nil {
		return ast.Definition{}, err
	}
	if _, err := p.expect(lexer.TokenAssign, "alias definition"); err != nil {
		return ast.Definition{}, err
	}

	underlying, err := p.parseSignature()
	if err != nil {
		return ast.Definition{}, err
	}

	return ast.Definition{Name: p.qualify(nameTok.Literal), Doc: doc, Type: underlying}, nil
}

// parseTypeBody disambiguates the right-hand side of a type definition.
// Alternatives are tried in order: record body, variant body, bare type
// expression.
func (p *Parser) parseTypeBody(name ast.Name) (ast.Type, error) {
	if p.current().Type == lexer.TokenLBrace && p.recordAhead() {
		fields, err := p.parseFieldBlock()
		if err != nil {
			return nil, err
		}
		return ast.Record{Name: name, Fields: fields}, nil
	}

	if variant, ok, err := p.parseVariantBody(name); err != nil {
		return nil, err
	} else if ok {
		return variant, nil
	}

	underlying, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	return ast.Newtype{Name: name, Underlying: underlying}, nil
}

// parseVariantBody recognizes `doc? Case ("|" doc? Case)*` where a Case is
// an identifier with an optional field block. The parser commits to the
// variant reading only once it has seen a "{" or "|" after the first case
// name; a bare identifier backtracks so it can be read as a newtype of a
// reference. Returns ok=false when the body is not variant-shaped.
func (p *Parser) parseVariantBody(name ast.Name) (ast.Type, bool, error) {
	mark := p.mark()

	var doc ast.Doc
	var docTok lexer.Token
	hasDoc := false
	if p.current().Type == lexer.TokenDoc {
		docTok = p.advance()
		doc = ast.Doc(docTok.Literal)
		hasDoc = true
	}

	if p.current().Type != lexer.TokenIdentifier {
		if hasDoc {
			return nil, false, p.errorf(docTok.Pos,
				"orphaned documentation comment: documentation must immediately precede a definition, field or case")
		}
		p.reset(mark)
		return nil, false, nil
	}
	caseTok := p.advance()

	if p.current().Type != lexer.TokenLBrace && p.current().Type != lexer.TokenPipe {
		if hasDoc {
			return nil, false, p.errorf(docTok.Pos,
				"orphaned documentation comment: documentation must immediately precede a definition, field or case")
		}
		p.reset(mark)
		return nil, false, nil
	}

	first, err := p.parseCaseTail(caseTok, doc)
	if err != nil {
		return nil, false, err
	}
	cases := []ast.Case{first}

	for p.current().Type == lexer.TokenPipe {
		p.advance()

		var doc ast.Doc
		var docTok lexer.Token
		hasDoc := false
		if p.current().Type == lexer.TokenDoc {
			docTok = p.advance()
			doc = ast.Doc(docTok.Literal)
			hasDoc = true
		}
		if hasDoc && p.current().Type != lexer.TokenIdentifier {
			return nil, false, p.errorf(docTok.Pos,
				"orphaned documentation comment: documentation must immediately precede a definition, field or case")
		}
		caseTok, err := p.expect(lexer.TokenIdentifier, "variant case")
		if err != nil {
			return nil, false, err
		}
		c, err := p.parseCaseTail(caseTok, doc)
		if err != nil {
			return nil, false, err
		}
		cases = append(cases, c)
	}

	return ast.Variant{Name: name, Cases: cases}, true, nil
}

// parseCaseTail finishes one variant case after its name: an optional field
// block, an absent block meaning no fields. The case name is qualified by
// the module, not by the enclosing variant.
func (p *Parser) parseCaseTail(caseTok lexer.Token, doc ast.Doc) (ast.Case, error) {
	c := ast.Case{Name: p.qualify(caseTok.Literal), Doc: doc}
	if p.current().Type == lexer.TokenLBrace {
		fields, err := p.parseFieldBlock()
		if err != nil {
			return ast.Case{}, err
		}
		c.Fields = fields
	}
	return c, nil
}

// parseFieldBlock parses `"{" (doc? field ("," doc? field)*)? "}"` with
// field := name ":" signature. Zero fields is legal.
func (p *Parser) parseFieldBlock() ([]ast.Field, error) {
	if _, err := p.expect(lexer.TokenLBrace, "field block"); err != nil {
		return nil, err
	}

	fields := []ast.Field{}
	if p.current().Type == lexer.TokenRBrace {
		p.advance()
		return fields, nil
	}

	for {
		var doc ast.Doc
		var docTok lexer.Token
		hasDoc := false
		if p.current().Type == lexer.TokenDoc {
			docTok = p.advance()
			doc = ast.Doc(docTok.Literal)
			hasDoc = true
		}

		if hasDoc && p.current().Type != lexer.TokenIdentifier {
			return nil, p.errorf(docTok.Pos,
				"orphaned documentation comment: documentation must immediately precede a definition, field or case")
		}
		nameTok, err := p.expect(lexer.TokenIdentifier, "field")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon, "field"); err != nil {
			return nil, err
		}
		typ, err := p.parseSignature()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: nameTok.Literal, Doc: doc, Type: typ})

		if p.current().Type == lexer.TokenComma {
			p.advance()
			continue
		}
		if _, err := p.expect(lexer.TokenRBrace, "field block"); err != nil {
			return nil, err
		}
		return fields, nil
	}
}
