package parser

import (
	"strings"

	"github.com/rivo/uniseg"

	"clarity/analysis-go/pkg/ast"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenLParen
	tokenRParen
	tokenInt
	tokenString
	tokenQuoted
	tokenSymbol
)

type token struct {
	kind  tokenKind
	text  string
	bytes []byte
	start ast.Position
	end   ast.Position
}

type lexer struct {
	src       string
	offset    int
	line      int
	lineStart int

	// column of colOffset on the current line, advanced lazily by position.
	colOffset int
	column    int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, column: 1}
}

// position reports the current location. Columns count grapheme clusters so
// that multi-byte characters in strings and comments do not skew diagnostics.
// Only the bytes consumed since the previous call on the same line are counted.
func (l *lexer) position() ast.Position {
	if l.colOffset < l.lineStart || l.colOffset > l.offset {
		l.colOffset = l.lineStart
		l.column = 1
	}
	l.column += uniseg.GraphemeClusterCount(l.src[l.colOffset:l.offset])
	l.colOffset = l.offset
	return ast.Position{Line: l.line, Column: l.column}
}

func (l *lexer) location() SourceLocation {
	pos := l.position()
	return SourceLocation{Line: pos.Line, Column: pos.Column, EndLine: pos.Line, EndColumn: pos.Column}
}

func (l *lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *lexer) advance() byte {
	c := l.src[l.offset]
	l.offset++
	if c == '\n' {
		l.line++
		l.lineStart = l.offset
	}
	return c
}

func (l *lexer) skipTrivia() {
	for l.offset < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ';':
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipTrivia()
	start := l.position()
	if l.offset >= len(l.src) {
		return token{kind: tokenEOF, start: start, end: start}, nil
	}
	c := l.peekByte()
	switch {
	case c == '(':
		l.advance()
		return token{kind: tokenLParen, text: "(", start: start, end: l.position()}, nil
	case c == ')':
		l.advance()
		return token{kind: tokenRParen, text: ")", start: start, end: l.position()}, nil
	case c == '"':
		return l.lexString(start)
	case c == '\'':
		return l.lexQuoted(start)
	case isDigit(c) || (c == '-' && l.offset+1 < len(l.src) && isDigit(l.src[l.offset+1])):
		return l.lexInt(start)
	case isSymbolByte(c):
		begin := l.offset
		for l.offset < len(l.src) && isSymbolByte(l.peekByte()) {
			l.advance()
		}
		return token{kind: tokenSymbol, text: l.src[begin:l.offset], start: start, end: l.position()}, nil
	default:
		return token{}, syntaxError(l.location(), "unexpected character %q", rune(c))
	}
}

func (l *lexer) lexInt(start ast.Position) (token, error) {
	begin := l.offset
	if l.peekByte() == '-' {
		l.advance()
	}
	for l.offset < len(l.src) && isDigit(l.peekByte()) {
		l.advance()
	}
	if l.offset < len(l.src) && isSymbolByte(l.peekByte()) {
		return token{}, syntaxError(l.location(), "invalid integer literal %q", l.src[begin:l.offset+1])
	}
	return token{kind: tokenInt, text: l.src[begin:l.offset], start: start, end: l.position()}, nil
}

func (l *lexer) lexString(start ast.Position) (token, error) {
	l.advance()
	var buf []byte
	for {
		if l.offset >= len(l.src) {
			return token{}, incompleteError(l.location(), "unterminated string literal")
		}
		c := l.advance()
		switch c {
		case '"':
			return token{kind: tokenString, bytes: buf, start: start, end: l.position()}, nil
		case '\\':
			if l.offset >= len(l.src) {
				return token{}, incompleteError(l.location(), "unterminated string literal")
			}
			esc := l.advance()
			switch esc {
			case '"', '\\':
				buf = append(buf, esc)
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			default:
				return token{}, syntaxError(l.location(), "unknown escape sequence \\%c", esc)
			}
		default:
			buf = append(buf, c)
		}
	}
}

func (l *lexer) lexQuoted(start ast.Position) (token, error) {
	l.advance()
	begin := l.offset
	for l.offset < len(l.src) && isSymbolByte(l.peekByte()) {
		l.advance()
	}
	text := l.src[begin:l.offset]
	if text == "" {
		return token{}, syntaxError(l.location(), "expected literal after quote")
	}
	if text != "true" && text != "false" && !looksLikePrincipal(text) {
		return token{}, syntaxError(l.location(), "invalid quoted literal '%s", text)
	}
	return token{kind: tokenQuoted, text: text, start: start, end: l.position()}, nil
}

// looksLikePrincipal accepts standard principals (`SP…`) and contract
// principals (`SP….name`).
func looksLikePrincipal(text string) bool {
	addr, _, _ := strings.Cut(text, ".")
	if len(addr) < 2 || addr[0] != 'S' {
		return false
	}
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if !(c >= 'A' && c <= 'Z') && !isDigit(c) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSymbolByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c):
		return true
	}
	switch c {
	case '-', '_', '!', '?', '+', '*', '/', '<', '>', '=', '.', ':':
		return true
	}
	return false
}
