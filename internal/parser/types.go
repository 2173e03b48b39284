package parser

import (
	"strconv"
	"strings"

	"github.com/theta-lang/theta/internal/ast"
	"github.com/theta-lang/theta/internal/lexer"
)

// primitives maps source spellings to primitive kinds. Recognition is
// boundary-aware by construction: the lexer always reads maximal identifier
// runs, so "Longs" never matches "Long".
var primitives = map[string]ast.PrimitiveKind{
	"Bool":     ast.Bool,
	"Bytes":    ast.Bytes,
	"Int":      ast.Int,
	"Long":     ast.Long,
	"Float":    ast.Float,
	"Double":   ast.Double,
	"String":   ast.String,
	"Date":     ast.Date,
	"Datetime": ast.Datetime,
	"UUID":     ast.UUID,
}

// parseSignature parses `atom "?"?`. Optionality composes with nesting:
// containers may hold optional elements and the optional marker may wrap a
// container.
func (p *Parser) parseSignature() (ast.Type, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.current().Type == lexer.TokenQuestion {
		p.advance()
		return ast.Optional{Element: atom}, nil
	}
	return atom, nil
}

// parseAtom parses one type atom: a primitive keyword, a fixed-size
// literal, an array or map container, or a reference.
func (p *Parser) parseAtom() (ast.Type, error) {
	switch p.current().Type {
	case lexer.TokenLBracket:
		p.advance()
		element, err := p.parseSignature()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBracket, "array type"); err != nil {
			return nil, err
		}
		return ast.Array{Element: element}, nil

	case lexer.TokenLBrace:
		p.advance()
		value, err := p.parseSignature()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBrace, "map type"); err != nil {
			return nil, err
		}
		return ast.Map{Value: value}, nil

	case lexer.TokenIdentifier:
		return p.parseNamedAtom()
	}

	return nil, p.unexpected("type expression")
}

// parseNamedAtom parses a type atom that starts with an identifier: a
// fixed-size literal, a primitive, or a (possibly qualified) reference.
func (p *Parser) parseNamedAtom() (ast.Type, error) {
	tok := p.advance()

	// "Fixed" immediately followed by "(" commits to the versioned
	// fixed-size construct. Without the paren it stays an ordinary
	// identifier, so a 1.0.0 module may legally name a type Fixed.
	if tok.Literal == "Fixed" && p.current().Type == lexer.TokenLParen {
		if err := p.require(featureFixed); err != nil {
			return nil, err
		}
		p.advance() // "("
		sizeTok, err := p.expect(lexer.TokenInteger, "fixed-size type")
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(sizeTok.Literal)
		if err != nil {
			return nil, p.errorf(sizeTok.Pos, "fixed size %s out of range", sizeTok.Literal)
		}
		if _, err := p.expect(lexer.TokenRParen, "fixed-size type"); err != nil {
			return nil, err
		}
		return ast.Fixed{Size: size}, nil
	}

	if kind, ok := primitives[tok.Literal]; ok {
		if kind == ast.UUID {
			if err := p.require(featureUUID); err != nil {
				return nil, err
			}
		}
		return ast.Primitive{Kind: kind}, nil
	}

	// A dotted run is a fully-qualified reference; a single identifier is a
	// local reference qualified by the module being parsed.
	segments := []string{tok.Literal}
	for p.current().Type == lexer.TokenDot {
		p.advance()
		segTok, err := p.expect(lexer.TokenIdentifier, "reference")
		if err != nil {
			return nil, err
		}
		segments = append(segments, segTok.Literal)
	}

	if len(segments) == 1 {
		return ast.Reference{Name: p.qualify(segments[0])}, nil
	}
	return ast.Reference{Name: ast.Name{
		Module: ast.ModuleName(strings.Join(segments[:len(segments)-1], ".")),
		Name:   segments[len(segments)-1],
	}}, nil
}
