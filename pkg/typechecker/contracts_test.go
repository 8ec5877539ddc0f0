package typechecker

import (
	"fmt"
	"testing"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/parser"
)

const kvStoreContractSrc = `
	(define-map kv-store ((key int)) ((value int)))
	(define-read-only (kv-get (key int))
	    (expects! (get value (map-get kv-store ((key key)))) 0))
	(define-public (kv-put (key int) (value int))
	    (begin (map-set! kv-store ((key key)) ((value value))) (ok value)))
	(begin (map-insert! kv-store ((key 42)) ((value 42))))`

func databaseWithKVStore(t *testing.T) *analysisdb.Database {
	t.Helper()
	db := analysisdb.NewMemory()
	exprs, err := parser.Parse(kvStoreContractSrc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = db.Execute(func(tx *analysisdb.Tx) error {
		_, err := TypeCheck(analysis.LocalContract("kv-store-contract"), exprs, tx, true)
		return err
	})
	if err != nil {
		t.Fatalf("checking kv-store-contract: %v", err)
	}
	return db
}

func checkTransient(t *testing.T, db *analysisdb.Database, src string) error {
	t.Helper()
	exprs, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return db.Execute(func(tx *analysisdb.Tx) error {
		_, err := TypeCheck(analysis.TransientContract(), exprs, tx, false)
		return err
	})
}

func TestContractMapGetMatchingSignatures(t *testing.T) {
	db := databaseWithKVStore(t)
	cases := []string{
		"contract-map-get kv-store-contract kv-store ((key key))",
		"contract-map-get kv-store-contract kv-store ((key 0))",
		"contract-map-get kv-store-contract kv-store (tuple (key 0))",
		"contract-map-get kv-store-contract kv-store (compatible-tuple)",
	}
	for _, body := range cases {
		src := fmt.Sprintf(`
			(define-private (compatible-tuple) (tuple (key 1)))
			(define-private (kv-get (key int)) (%s))`, body)
		if err := checkTransient(t, db, src); err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
	}
	if _, err := db.LoadContract(analysis.TransientContract()); !analysis.IsKind(err, analysis.NoSuchContract) {
		t.Fatalf("checks without insert must not publish an analysis, got %v", err)
	}
}

func TestContractMapGetMismatchingSignatures(t *testing.T) {
	db := databaseWithKVStore(t)
	cases := []string{
		"contract-map-get kv-store-contract kv-store ((incomptible-key key))",
		"contract-map-get kv-store-contract kv-store ((key 'true))",
		"contract-map-get kv-store-contract kv-store (incompatible-tuple)",
	}
	for _, body := range cases {
		src := fmt.Sprintf(`
			(define-map kv-store ((key int)) ((value int)))
			(define-private (incompatible-tuple) (tuple (k 1)))
			(define-private (kv-get (key int)) (%s))`, body)
		err := checkTransient(t, db, src)
		if !analysis.IsKind(err, analysis.TypeError) {
			t.Fatalf("%s: expected TypeError, got %v", body, err)
		}
	}
}

func TestContractMapGetUnboundVariables(t *testing.T) {
	db := databaseWithKVStore(t)
	err := checkTransient(t, db, `
		(define-map kv-store ((key int)) ((value int)))
		(define-private (kv-get (key int))
		   (contract-map-get kv-store-contract kv-store ((key unknown-value))))`)
	if !analysis.IsKind(err, analysis.UnboundVariable) {
		t.Fatalf("expected UnboundVariable, got %v", err)
	}
}

func TestContractMapGetUnknownTargets(t *testing.T) {
	db := databaseWithKVStore(t)
	err := checkTransient(t, db, "(contract-map-get no-such-contract kv-store ((key 1)))")
	if !analysis.IsKind(err, analysis.NoSuchContract) {
		t.Fatalf("expected NoSuchContract, got %v", err)
	}
	err = checkTransient(t, db, "(contract-map-get kv-store-contract other-map ((key 1)))")
	if !analysis.IsKind(err, analysis.NoSuchMap) {
		t.Fatalf("expected NoSuchMap, got %v", err)
	}
}

func TestContractCall(t *testing.T) {
	db := databaseWithKVStore(t)
	if err := checkTransient(t, db, `
		(define-public (proxy (key int))
		   (contract-call! kv-store-contract kv-put key 10))`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		src  string
		kind analysis.ErrorKind
	}{
		{"(contract-call! kv-store-contract kv-get 1)", analysis.NoSuchPublicFunction},
		{"(contract-call! kv-store-contract kv-put 1)", analysis.IncorrectArgumentCount},
		{"(contract-call! kv-store-contract kv-put 1 'true)", analysis.TypeError},
		{"(contract-call! missing kv-put 1 2)", analysis.NoSuchContract},
	}
	for _, tc := range cases {
		if err := checkTransient(t, db, tc.src); !analysis.IsKind(err, tc.kind) {
			t.Fatalf("%s: expected %s, got %v", tc.src, tc.kind, err)
		}
	}
}

func TestFailedCheckPublishesNothing(t *testing.T) {
	db := analysisdb.NewMemory()
	exprs, err := parser.Parse("(define-map m ((k int)) ((v int))) (define-private (f) (+ 1 'true))")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id := analysis.LocalContract("broken")
	err = db.Execute(func(tx *analysisdb.Tx) error {
		_, err := TypeCheck(id, exprs, tx, true)
		return err
	})
	if err == nil {
		t.Fatalf("expected check failure")
	}
	if _, err := db.LoadContract(id); !analysis.IsKind(err, analysis.NoSuchContract) {
		t.Fatalf("expected NoSuchContract after failed check, got %v", err)
	}
}

func TestCheckerWithoutDatabase(t *testing.T) {
	checker := New(nil, analysis.TransientContract())
	for _, src := range []string{
		"(contract-map-get kv-store-contract kv-store ((key 1)))",
		"(contract-call! kv-store-contract kv-put 1 1)",
	} {
		_, err := checker.CheckTopLevel(mustParseOne(t, src))
		if !analysis.IsKind(err, analysis.NoSuchContract) {
			t.Fatalf("%s: expected NoSuchContract, got %v", src, err)
		}
	}
}
