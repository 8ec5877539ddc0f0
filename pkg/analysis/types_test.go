package analysis

import (
	"testing"

	"clarity/analysis-go/pkg/parser"
)

func mustType(t *testing.T, src string) TypeSignature {
	t.Helper()
	expr, err := parser.ParseOne(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	sig, err := ParseTypeExpression(expr)
	if err != nil {
		t.Fatalf("type %q: %v", src, err)
	}
	return sig
}

func sampleTypes(t *testing.T) []TypeSignature {
	t.Helper()
	sources := []string{
		"int",
		"bool",
		"principal",
		"(buff 5)",
		"(list 3 int)",
		"(list 2 (list 4 (buff 1)))",
		"(tuple (name (buff 5)) (owner principal))",
		"(optional (tuple (k int)))",
		"(response int bool)",
		"(response (optional int) (list 1 bool))",
	}
	out := []TypeSignature{None}
	for _, src := range sources {
		out = append(out, mustType(t, src))
	}
	return out
}

func TestAdmitsIsReflexive(t *testing.T) {
	for _, sig := range sampleTypes(t) {
		if !Admits(sig, sig) {
			t.Fatalf("expected %s to admit itself", sig)
		}
	}
}

func TestAdmitsBufferLengths(t *testing.T) {
	five := BufferType{MaxLen: 5}
	three := BufferType{MaxLen: 3}
	if !Admits(five, three) {
		t.Fatalf("expected (buff 5) to admit (buff 3)")
	}
	if Admits(three, five) {
		t.Fatalf("did not expect (buff 3) to admit (buff 5)")
	}
}

func TestAdmitsStructuralRules(t *testing.T) {
	cases := []struct {
		expected string
		actual   string
		want     bool
	}{
		{"(list 5 int)", "(list 3 int)", true},
		{"(list 3 int)", "(list 5 int)", false},
		{"(list 3 int)", "(list 3 bool)", false},
		{"(list 2 (buff 4))", "(list 2 (buff 2))", true},
		{"(tuple (a int) (b bool))", "(tuple (b bool) (a int))", true},
		{"(tuple (a int) (b bool))", "(tuple (a int))", false},
		{"(tuple (a int))", "(tuple (a int) (b bool))", false},
		{"(tuple (a (buff 5)))", "(tuple (a (buff 2)))", true},
		{"(optional (buff 5))", "(optional (buff 1))", true},
		{"(optional bool)", "(optional int)", false},
		{"(response int bool)", "(response int bool)", true},
		{"(response int bool)", "(response bool int)", false},
		{"int", "bool", false},
		{"principal", "principal", true},
	}
	for _, tc := range cases {
		got := Admits(mustType(t, tc.expected), mustType(t, tc.actual))
		if got != tc.want {
			t.Fatalf("Admits(%s, %s) = %v, want %v", tc.expected, tc.actual, got, tc.want)
		}
	}
}

func TestNoTypeAdmitsAndIsAdmitted(t *testing.T) {
	for _, sig := range sampleTypes(t) {
		if !Admits(None, sig) || !Admits(sig, None) {
			t.Fatalf("expected no-type to be compatible with %s", sig)
		}
	}
	opt := OptionalType{Inner: None}
	if !Admits(mustType(t, "(optional int)"), opt) {
		t.Fatalf("expected (optional int) to admit (optional no-type)")
	}
}

func TestLeastSupertype(t *testing.T) {
	cases := []struct {
		a, b string
		want string
	}{
		{"(buff 6)", "(buff 3)", "(buff 6)"},
		{"(buff 1)", "(buff 6)", "(buff 6)"},
		{"(list 2 int)", "(list 7 int)", "(list 7 int)"},
		{"(tuple (a (buff 1)))", "(tuple (a (buff 4)))", "(tuple (a (buff 4)))"},
		{"(response int bool)", "(response int bool)", "(response int bool)"},
	}
	for _, tc := range cases {
		got, err := LeastSupertype(mustType(t, tc.a), mustType(t, tc.b))
		if err != nil {
			t.Fatalf("LeastSupertype(%s, %s): %v", tc.a, tc.b, err)
		}
		if got.String() != tc.want {
			t.Fatalf("LeastSupertype(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}

	got, err := LeastSupertype(None, Int)
	if err != nil || !TypesEqual(got, Int) {
		t.Fatalf("expected no-type to unify to int, got %v (%v)", got, err)
	}
	opt, err := LeastSupertype(OptionalType{Inner: Int}, OptionalType{Inner: None})
	if err != nil || opt.String() != "(optional int)" {
		t.Fatalf("expected (optional int), got %v (%v)", opt, err)
	}
	resp, err := LeastSupertype(ResponseType{Ok: Bool, Err: None}, ResponseType{Ok: None, Err: Int})
	if err != nil || resp.String() != "(response bool int)" {
		t.Fatalf("expected (response bool int), got %v (%v)", resp, err)
	}
}

func TestLeastSupertypeMismatch(t *testing.T) {
	pairs := [][2]string{
		{"int", "bool"},
		{"(buff 2)", "int"},
		{"(list 2 int)", "(list 2 bool)"},
		{"(tuple (a int))", "(tuple (b int))"},
		{"(optional int)", "(optional bool)"},
	}
	for _, pair := range pairs {
		a, b := mustType(t, pair[0]), mustType(t, pair[1])
		_, err := LeastSupertype(a, b)
		if !IsKind(err, TypeError) {
			t.Fatalf("LeastSupertype(%s, %s): expected TypeError, got %v", pair[0], pair[1], err)
		}
		checkErr := err.(*CheckError)
		if !TypesEqual(checkErr.Expected, a) || !TypesEqual(checkErr.Actual, b) {
			t.Fatalf("expected mismatch to carry the outer types, got %s / %s", checkErr.Expected, checkErr.Actual)
		}
	}
}

func TestTupleFieldsAreSortedAndUnique(t *testing.T) {
	tuple, err := NewTupleType([]TupleField{{Name: "zeta", Type: Int}, {Name: "alpha", Type: Bool}})
	if err != nil {
		t.Fatalf("NewTupleType: %v", err)
	}
	if tuple.String() != "(tuple (alpha bool) (zeta int))" {
		t.Fatalf("unexpected tuple rendering %s", tuple)
	}
	if ft, ok := tuple.FieldType("zeta"); !ok || !IsInt(ft) {
		t.Fatalf("expected zeta to be int, got %v", ft)
	}
	if _, ok := tuple.FieldType("beta"); ok {
		t.Fatalf("did not expect field beta")
	}
	_, err = NewTupleType([]TupleField{{Name: "a", Type: Int}, {Name: "a", Type: Bool}})
	if !IsKind(err, NameAlreadyUsed) {
		t.Fatalf("expected NameAlreadyUsed, got %v", err)
	}
	_, err = NewTupleType(nil)
	if !IsKind(err, BadSyntaxBinding) {
		t.Fatalf("expected BadSyntaxBinding, got %v", err)
	}
}

func TestCheckErrorMessages(t *testing.T) {
	err := TypeMismatch(Int, Bool)
	if err.Error() != "typechecker: type mismatch: expected int, found bool" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	unbound := UnboundVariableError("cursor")
	if unbound.Error() != "typechecker: use of unresolved name 'cursor'" {
		t.Fatalf("unexpected message %q", unbound.Error())
	}
	count := ArgumentCountMismatch(1, 3)
	if count.Error() != "typechecker: expected 1 arguments, got 3" {
		t.Fatalf("unexpected message %q", count.Error())
	}
}
