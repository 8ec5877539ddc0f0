package ast

import "fmt"

// SetSpan annotates the node with the provided span.
func SetSpan(node SymbolicExpression, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s == Span{}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Walk visits expr and every nested expression depth-first, parents first.
// Returning false from visit skips the node's children.
func Walk(expr SymbolicExpression, visit func(SymbolicExpression) bool) {
	if expr == nil {
		return
	}
	if !visit(expr) {
		return
	}
	if list, ok := expr.(*List); ok {
		for _, el := range list.Elements {
			Walk(el, visit)
		}
	}
}
