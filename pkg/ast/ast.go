package ast

import (
	"math/big"
	"strings"
)

type NodeType string

const (
	NodeAtom      NodeType = "Atom"
	NodeAtomValue NodeType = "AtomValue"
	NodeList      NodeType = "List"
)

// SymbolicExpression is a node of the parsed contract: a symbol, a literal
// value or a parenthesised list of further expressions.
type SymbolicExpression interface {
	NodeType() NodeType
	Span() Span
	String() string
	isNode()
}

type Position struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

type Span struct {
	Start Position `yaml:"start"`
	End   Position `yaml:"end"`
}

type nodeImpl struct {
	Type NodeType
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Atom is a bare symbol such as `+`, `map-get` or a variable name.
type Atom struct {
	nodeImpl

	Name string
}

func NewAtom(name string) *Atom {
	return &Atom{nodeImpl: newNodeImpl(NodeAtom), Name: name}
}

func (a *Atom) String() string { return a.Name }

type ValueKind string

const (
	ValueInt       ValueKind = "int"
	ValueBool      ValueKind = "bool"
	ValueBuffer    ValueKind = "buffer"
	ValuePrincipal ValueKind = "principal"
	ValueNone      ValueKind = "none"
)

// AtomValue is a literal: integer, boolean, string buffer, principal or none.
type AtomValue struct {
	nodeImpl

	Kind      ValueKind
	Int       *big.Int
	Bool      bool
	Buffer    []byte
	Principal string
}

func NewIntValue(v *big.Int) *AtomValue {
	return &AtomValue{nodeImpl: newNodeImpl(NodeAtomValue), Kind: ValueInt, Int: v}
}

func NewBoolValue(v bool) *AtomValue {
	return &AtomValue{nodeImpl: newNodeImpl(NodeAtomValue), Kind: ValueBool, Bool: v}
}

func NewBufferValue(v []byte) *AtomValue {
	return &AtomValue{nodeImpl: newNodeImpl(NodeAtomValue), Kind: ValueBuffer, Buffer: v}
}

func NewPrincipalValue(v string) *AtomValue {
	return &AtomValue{nodeImpl: newNodeImpl(NodeAtomValue), Kind: ValuePrincipal, Principal: v}
}

func NewNoneValue() *AtomValue {
	return &AtomValue{nodeImpl: newNodeImpl(NodeAtomValue), Kind: ValueNone}
}

func (v *AtomValue) String() string {
	switch v.Kind {
	case ValueInt:
		if v.Int == nil {
			return "0"
		}
		return v.Int.String()
	case ValueBool:
		if v.Bool {
			return "'true"
		}
		return "'false"
	case ValueBuffer:
		return quoteBuffer(v.Buffer)
	case ValuePrincipal:
		return "'" + v.Principal
	default:
		return "none"
	}
}

func quoteBuffer(buf []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range buf {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// List is a parenthesised sequence of expressions.
type List struct {
	nodeImpl

	Elements []SymbolicExpression
}

func NewList(elements ...SymbolicExpression) *List {
	return &List{nodeImpl: newNodeImpl(NodeList), Elements: elements}
}

func (l *List) String() string {
	parts := make([]string, 0, len(l.Elements))
	for _, el := range l.Elements {
		if el == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, el.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// MatchAtom returns the symbol name when expr is an Atom.
func MatchAtom(expr SymbolicExpression) (string, bool) {
	atom, ok := expr.(*Atom)
	if !ok || atom == nil {
		return "", false
	}
	return atom.Name, true
}

// MatchList returns the list elements when expr is a List.
func MatchList(expr SymbolicExpression) ([]SymbolicExpression, bool) {
	list, ok := expr.(*List)
	if !ok || list == nil {
		return nil, false
	}
	return list.Elements, true
}
