package parser

import (
	"math/big"

	"clarity/analysis-go/pkg/ast"
)

// Parse reads every top-level expression from src.
func Parse(src string) ([]ast.SymbolicExpression, error) {
	p := &parser{lex: newLexer(src)}
	var exprs []ast.SymbolicExpression
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenEOF {
			return exprs, nil
		}
		expr, err := p.parseFrom(tok, 0)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

// ParseOne reads exactly one expression from src.
func ParseOne(src string) (ast.SymbolicExpression, error) {
	exprs, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, syntaxError(SourceLocation{}, "expected exactly one expression, found %d", len(exprs))
	}
	return exprs[0], nil
}

// maxDepth bounds list nesting so hostile input cannot exhaust the stack.
const maxDepth = 256

// Integers are signed 128-bit.
var (
	minInt = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

type parser struct {
	lex *lexer
}

func (p *parser) parseFrom(tok token, depth int) (ast.SymbolicExpression, error) {
	switch tok.kind {
	case tokenLParen:
		if depth >= maxDepth {
			return nil, syntaxError(locationOf(tok), "expressions nested deeper than %d", maxDepth)
		}
		return p.parseList(tok, depth+1)
	case tokenRParen:
		return nil, syntaxError(locationOf(tok), "unexpected ')'")
	case tokenInt:
		value, ok := new(big.Int).SetString(tok.text, 10)
		if !ok {
			return nil, syntaxError(locationOf(tok), "invalid integer literal %q", tok.text)
		}
		if value.Cmp(minInt) < 0 || value.Cmp(maxInt) > 0 {
			return nil, syntaxError(locationOf(tok), "integer literal %s out of range", tok.text)
		}
		return withSpan(ast.NewIntValue(value), tok.start, tok.end), nil
	case tokenString:
		return withSpan(ast.NewBufferValue(tok.bytes), tok.start, tok.end), nil
	case tokenQuoted:
		switch tok.text {
		case "true":
			return withSpan(ast.NewBoolValue(true), tok.start, tok.end), nil
		case "false":
			return withSpan(ast.NewBoolValue(false), tok.start, tok.end), nil
		default:
			return withSpan(ast.NewPrincipalValue(tok.text), tok.start, tok.end), nil
		}
	case tokenSymbol:
		if tok.text == "none" {
			return withSpan(ast.NewNoneValue(), tok.start, tok.end), nil
		}
		return withSpan(ast.NewAtom(tok.text), tok.start, tok.end), nil
	default:
		return nil, incompleteError(locationOf(tok), "unexpected end of input")
	}
}

func (p *parser) parseList(open token, depth int) (ast.SymbolicExpression, error) {
	var elements []ast.SymbolicExpression
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenEOF:
			return nil, incompleteError(locationOf(open), "unclosed '('")
		case tokenRParen:
			return withSpan(ast.NewList(elements...), open.start, tok.end), nil
		}
		el, err := p.parseFrom(tok, depth)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
}

func withSpan[T ast.SymbolicExpression](node T, start, end ast.Position) T {
	ast.SetSpan(node, ast.Span{Start: start, End: end})
	return node
}

func locationOf(tok token) SourceLocation {
	return SourceLocation{
		Line:      tok.start.Line,
		Column:    tok.start.Column,
		EndLine:   tok.end.Line,
		EndColumn: tok.end.Column,
	}
}
