package typechecker

import (
	"testing"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/ast"
	"clarity/analysis-go/pkg/parser"
)

func mustParseOne(t *testing.T, src string) ast.SymbolicExpression {
	t.Helper()
	expr, err := parser.ParseOne(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return expr
}

// checkExpr checks the first expression of src on its own, outside any
// contract declarations.
func checkExpr(t *testing.T, src string) (analysis.TypeSignature, error) {
	t.Helper()
	exprs, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	var sig analysis.TypeSignature
	err = analysisdb.NewMemory().Execute(func(tx *analysisdb.Tx) error {
		checker := New(tx, analysis.TransientContract())
		var checkErr error
		sig, checkErr = checker.TypeCheck(exprs[0], NewTypingContext())
		return checkErr
	})
	return sig, err
}

func expectExprGood(t *testing.T, sources ...string) {
	t.Helper()
	for _, src := range sources {
		if _, err := checkExpr(t, src); err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
	}
}

func expectExprBad(t *testing.T, sources ...string) {
	t.Helper()
	for _, src := range sources {
		if sig, err := checkExpr(t, src); err == nil {
			t.Fatalf("%s: expected error, got type %s", src, sig)
		}
	}
}

func expectExprKind(t *testing.T, kind analysis.ErrorKind, sources ...string) {
	t.Helper()
	for _, src := range sources {
		_, err := checkExpr(t, src)
		if !analysis.IsKind(err, kind) {
			t.Fatalf("%s: expected %s, got %v", src, kind, err)
		}
	}
}

func expectExprType(t *testing.T, src, want string) {
	t.Helper()
	sig, err := checkExpr(t, src)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", src, err)
	}
	if sig.String() != want {
		t.Fatalf("%s: type = %s, want %s", src, sig, want)
	}
}

func mustCheckContract(t *testing.T, src string) *analysis.ContractAnalysis {
	t.Helper()
	result, err := MemTypeCheck(src)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, src)
	}
	return result
}

func expectContractKind(t *testing.T, kind analysis.ErrorKind, src string) {
	t.Helper()
	_, err := MemTypeCheck(src)
	if !analysis.IsKind(err, kind) {
		t.Fatalf("expected %s, got %v\n%s", kind, err, src)
	}
}
