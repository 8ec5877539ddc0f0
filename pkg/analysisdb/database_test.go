package analysisdb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clarity/analysis-go/pkg/analysis"
)

func sampleAnalysis(t *testing.T, name string) *analysis.ContractAnalysis {
	t.Helper()
	a := analysis.NewContractAnalysis(analysis.LocalContract(name))
	key, err := analysis.NewTupleType([]analysis.TupleField{{Name: "key", Type: analysis.Int}})
	if err != nil {
		t.Fatalf("key tuple: %v", err)
	}
	value, err := analysis.NewTupleType([]analysis.TupleField{{Name: "value", Type: analysis.BufferType{MaxLen: 5}}})
	if err != nil {
		t.Fatalf("value tuple: %v", err)
	}
	if err := a.AddMap("kv-store", analysis.MapSignature{Key: key, Value: value}); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	if err := a.AddPersistedVariable("cursor", analysis.ListType{Element: analysis.Int, MaxLen: 3}); err != nil {
		t.Fatalf("AddPersistedVariable: %v", err)
	}
	if err := a.AddConstant("owner", analysis.Principal); err != nil {
		t.Fatalf("AddConstant: %v", err)
	}
	get := analysis.FixedFunction{
		Args:    []analysis.FunctionArg{{Name: "key", Type: analysis.Int}},
		Returns: analysis.OptionalType{Inner: analysis.Int},
	}
	if err := a.AddFunction(analysis.VisibilityReadOnly, "kv-get", get); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	set := analysis.FixedFunction{
		Args:    []analysis.FunctionArg{{Name: "key", Type: analysis.Int}, {Name: "flag", Type: analysis.Bool}},
		Returns: analysis.ResponseType{Ok: analysis.Bool, Err: analysis.None},
	}
	if err := a.AddFunction(analysis.VisibilityPublic, "kv-set", set); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := a.AddFunction(analysis.VisibilityPrivate, "helper", analysis.FixedFunction{Returns: analysis.Int}); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	a.SourceDigest = SourceDigest([]byte(name))
	return a
}

func TestExecuteCommitsOnSuccess(t *testing.T) {
	db := NewMemory()
	a := sampleAnalysis(t, "kv-store-contract")
	err := db.Execute(func(tx *Tx) error {
		if err := tx.InsertContract(a); err != nil {
			return err
		}
		if _, err := tx.LoadContract(a.ContractID); err != nil {
			t.Fatalf("pending analysis should be visible inside the transaction: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	loaded, err := db.LoadContract(a.ContractID)
	if err != nil {
		t.Fatalf("LoadContract: %v", err)
	}
	if _, ok := loaded.MapType("kv-store"); !ok {
		t.Fatalf("expected committed map kv-store")
	}
}

func TestExecuteDiscardsOnError(t *testing.T) {
	db := NewMemory()
	a := sampleAnalysis(t, "broken")
	boom := errors.New("boom")
	err := db.Execute(func(tx *Tx) error {
		if err := tx.InsertContract(a); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected closure error, got %v", err)
	}
	_, err = db.LoadContract(a.ContractID)
	if !analysis.IsKind(err, analysis.NoSuchContract) {
		t.Fatalf("expected NoSuchContract, got %v", err)
	}
}

func TestYAMLRoundTripPreservesSignatures(t *testing.T) {
	a := sampleAnalysis(t, "tokens")
	var buf bytes.Buffer
	if err := EncodeYAML(&buf, a); err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	text := buf.String()
	for _, want := range []string{"contract: " + a.ContractID.String(), "returns: (response bool no-type)", "key: (tuple (key int))"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}
	decoded, err := DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	fn, ok := decoded.PublicFunctionType("kv-set")
	if !ok || len(fn.Args) != 2 || fn.Args[1].Name != "flag" || !analysis.IsBool(fn.Args[1].Type) {
		t.Fatalf("unexpected decoded function %+v", fn)
	}
	if !analysis.TypesEqual(fn.Returns, a.PublicFunctions["kv-set"].Returns) {
		t.Fatalf("return type changed: %s", fn.Returns)
	}
	if v, _ := decoded.PersistedVariableType("cursor"); v == nil || v.String() != "(list 3 int)" {
		t.Fatalf("unexpected persisted variable %v", v)
	}
	if decoded.SourceDigest != a.SourceDigest {
		t.Fatalf("digest changed")
	}
}

func TestDecodeYAMLRejectsUnknownFields(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader("contract: kv\nunexpected: 1\n"))
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDirectoryStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDirectory(dir)
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	a := sampleAnalysis(t, "kv-store-contract")
	if err := db.Execute(func(tx *Tx) error { return tx.InsertContract(a) }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	path := filepath.Join(dir, analysis.LocalIssuer, "kv-store-contract.analysis.yml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected analysis file at %s: %v", path, err)
	}

	reopened, err := OpenDirectory(dir)
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	loaded, err := reopened.LoadContract(a.ContractID)
	if err != nil {
		t.Fatalf("LoadContract: %v", err)
	}
	if _, ok := loaded.ReadOnlyFunctionType("kv-get"); !ok {
		t.Fatalf("expected read-only function kv-get")
	}
	_, err = reopened.LoadContract(analysis.LocalContract("missing"))
	if !analysis.IsKind(err, analysis.NoSuchContract) {
		t.Fatalf("expected NoSuchContract, got %v", err)
	}
}

func TestSourceDigest(t *testing.T) {
	// Keccak-256 of the empty input.
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := SourceDigest(nil); got != want {
		t.Fatalf("SourceDigest(nil) = %s, want %s", got, want)
	}
	if SourceDigest([]byte("a")) == SourceDigest([]byte("b")) {
		t.Fatalf("distinct sources must not share a digest")
	}
}
