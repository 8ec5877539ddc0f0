package ast

import (
	"strings"
	"testing"
)

func TestStringRendersSourceSyntax(t *testing.T) {
	expr := Call("if", Call("eq?", Sym("x"), Int(-3)),
		L(L(Sym("a"), Str("say \"hi\"\n"))),
		Call("list", Bool(true), Bool(false), None()))
	want := `(if (eq? x -3) ((a "say \"hi\"\n")) (list 'true 'false none))`
	if got := expr.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
	if got := NewPrincipalValue("SP000").String(); got != "'SP000" {
		t.Fatalf("principal = %s", got)
	}
}

func TestWalkVisitsParentsFirst(t *testing.T) {
	expr := Call("+", Int(1), Call("*", Int(2), Int(3)))
	var seen []string
	Walk(expr, func(node SymbolicExpression) bool {
		if name, ok := MatchAtom(node); ok {
			seen = append(seen, name)
		}
		return true
	})
	if got := strings.Join(seen, " "); got != "+ *" {
		t.Fatalf("visited %q", got)
	}

	count := 0
	Walk(expr, func(node SymbolicExpression) bool {
		count++
		_, isList := MatchList(node)
		return !isList
	})
	if count != 1 {
		t.Fatalf("returning false should skip children, visited %d nodes", count)
	}
}

func TestSpans(t *testing.T) {
	node := Sym("x")
	if !node.Span().IsZero() {
		t.Fatalf("new nodes carry no span")
	}
	SetSpan(node, Span{Start: Position{Line: 2, Column: 5}, End: Position{Line: 2, Column: 6}})
	if got := node.Span().Start.String(); got != "2:5" {
		t.Fatalf("span start = %s", got)
	}
	if !ZeroSpan().IsZero() {
		t.Fatalf("ZeroSpan should be zero")
	}
}
