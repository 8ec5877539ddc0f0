package ast

import "math/big"

// Helpers for building expressions by hand, mostly from tests.

func Sym(name string) *Atom { return NewAtom(name) }

func Int(v int64) *AtomValue { return NewIntValue(big.NewInt(v)) }

func Bool(v bool) *AtomValue { return NewBoolValue(v) }

func Str(v string) *AtomValue { return NewBufferValue([]byte(v)) }

func None() *AtomValue { return NewNoneValue() }

func L(elements ...SymbolicExpression) *List { return NewList(elements...) }

// Call builds `(name args...)`.
func Call(name string, args ...SymbolicExpression) *List {
	elements := make([]SymbolicExpression, 0, len(args)+1)
	elements = append(elements, NewAtom(name))
	elements = append(elements, args...)
	return NewList(elements...)
}
