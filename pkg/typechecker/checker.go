package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/analysisdb"
	"clarity/analysis-go/pkg/ast"
	"clarity/analysis-go/pkg/parser"
)

// ContractLoader resolves the committed analysis of another contract.
type ContractLoader interface {
	LoadContract(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error)
}

type noContracts struct{}

func (noContracts) LoadContract(id analysis.ContractIdentifier) (*analysis.ContractAnalysis, error) {
	return nil, analysis.NamedError(analysis.NoSuchContract, id.String(), "")
}

// AnalysisStore is the transaction handle TypeCheck publishes into.
// *analysisdb.Tx satisfies it.
type AnalysisStore interface {
	ContractLoader
	InsertContract(a *analysis.ContractAnalysis) error
}

// TypeChecker checks the forms of one contract. It is not safe for
// concurrent use; independent contracts use independent checkers.
type TypeChecker struct {
	db       ContractLoader
	contract *analysis.ContractAnalysis
	topLevel *TypingContext
}

// New returns a checker for the contract id. Other contracts resolve through
// db; a nil db (the untyped nil interface, not a nil *analysisdb.Tx) means
// no other contract exists.
func New(db ContractLoader, id analysis.ContractIdentifier) *TypeChecker {
	if db == nil {
		db = noContracts{}
	}
	return &TypeChecker{
		db:       db,
		contract: analysis.NewContractAnalysis(id),
		topLevel: NewTypingContext(),
	}
}

// Analysis exposes the analysis built so far.
func (tc *TypeChecker) Analysis() *analysis.ContractAnalysis {
	return tc.contract
}

// TypeCheck checks all forms of a contract in order. With insert set the
// finished analysis is staged into db; it becomes visible to other contracts
// once the surrounding transaction commits.
func TypeCheck(id analysis.ContractIdentifier, exprs []ast.SymbolicExpression, db AnalysisStore, insert bool) (*analysis.ContractAnalysis, error) {
	tc := New(db, id)
	for _, expr := range exprs {
		if _, err := tc.checkTopLevel(expr); err != nil {
			return nil, err
		}
	}
	if insert {
		if err := db.InsertContract(tc.contract); err != nil {
			return nil, err
		}
	}
	return tc.contract, nil
}

// MemTypeCheck parses src and checks it as a transient contract against a
// throwaway in-memory database.
func MemTypeCheck(src string) (*analysis.ContractAnalysis, error) {
	exprs, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	var result *analysis.ContractAnalysis
	err = analysisdb.NewMemory().Execute(func(tx *analysisdb.Tx) error {
		checked, err := TypeCheck(analysis.TransientContract(), exprs, tx, true)
		result = checked
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckTopLevel checks one more top-level form. A failing form leaves the
// analysis exactly as it was. Declarations yield a nil signature.
func (tc *TypeChecker) CheckTopLevel(expr ast.SymbolicExpression) (analysis.TypeSignature, error) {
	snapshot := tc.contract.Clone()
	sig, err := tc.checkTopLevel(expr)
	if err != nil {
		tc.contract = snapshot
		return nil, err
	}
	return sig, nil
}

func (tc *TypeChecker) checkTopLevel(expr ast.SymbolicExpression) (analysis.TypeSignature, error) {
	if keyword, args, ok := matchDefine(expr); ok {
		if err := tc.checkDefine(keyword, args); err != nil {
			return nil, annotate(err, expr)
		}
		return nil, nil
	}
	return tc.TypeCheck(expr, tc.topLevel)
}

// TypeCheck infers the type of expr in ctx.
func (tc *TypeChecker) TypeCheck(expr ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	sig, err := tc.infer(expr, ctx)
	if err != nil {
		return nil, annotate(err, expr)
	}
	return sig, nil
}

func (tc *TypeChecker) typeCheckAll(exprs []ast.SymbolicExpression, ctx *TypingContext) ([]analysis.TypeSignature, error) {
	out := make([]analysis.TypeSignature, 0, len(exprs))
	for _, expr := range exprs {
		sig, err := tc.TypeCheck(expr, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, nil
}

func (tc *TypeChecker) infer(expr ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	switch node := expr.(type) {
	case *ast.AtomValue:
		return analysis.LiteralType(node)
	case *ast.Atom:
		return tc.lookupVariable(node.Name, ctx)
	case *ast.List:
		return tc.checkList(node, ctx)
	default:
		return nil, analysis.NewCheckError(analysis.CouldNotDetermineType)
	}
}

// lookupVariable resolves a bare symbol: local bindings first, then
// contract constants, then native variables. Persisted variables are not
// values; they are reached through var-get.
func (tc *TypeChecker) lookupVariable(name string, ctx *TypingContext) (analysis.TypeSignature, error) {
	if sig, ok := ctx.Lookup(name); ok {
		return sig, nil
	}
	if sig, ok := tc.contract.ConstantType(name); ok {
		return sig, nil
	}
	if sig, ok := nativeVariableType(name); ok {
		return sig, nil
	}
	return nil, analysis.UnboundVariableError(name)
}

func (tc *TypeChecker) checkList(node *ast.List, ctx *TypingContext) (analysis.TypeSignature, error) {
	if len(node.Elements) == 0 {
		return nil, analysis.NewCheckError(analysis.ExpectedListApplication)
	}
	head := node.Elements[0]
	if _, ok := ast.MatchList(head); ok {
		// ((name value) ...) is shorthand for (tuple (name value) ...).
		return tc.checkTupleCons(node.Elements, ctx)
	}
	name, ok := ast.MatchAtom(head)
	if !ok {
		return nil, analysis.NewCheckError(analysis.ExpectedListApplication)
	}
	args := node.Elements[1:]
	if isDefineKeyword(name) {
		return nil, analysis.NamedError(analysis.DefineFormNotTopLevel, name, "")
	}
	if native, ok := lookupNative(name); ok {
		return tc.checkNativeCall(native, args, ctx)
	}
	if fn, _, ok := tc.contract.Function(name); ok {
		return tc.checkCall(fn, args, ctx)
	}
	return nil, analysis.UnboundVariableError(name)
}

func (tc *TypeChecker) checkNativeCall(native NativeFunction, args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if _, special := native.signature().(analysis.SpecialFunction); special {
		return tc.checkSpecial(native, args, ctx)
	}
	return tc.checkCall(native.signature(), args, ctx)
}

// checkCall applies the ordinary call rule: arity first, then each
// argument left to right in the caller's context, then admission.
func (tc *TypeChecker) checkCall(fn analysis.FunctionType, args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := checkArity(fn, len(args)); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	return applyFunction(fn, argTypes)
}

func checkArity(fn analysis.FunctionType, count int) error {
	switch f := fn.(type) {
	case analysis.FixedFunction:
		if count != len(f.Args) {
			return analysis.ArgumentCountMismatch(len(f.Args), count)
		}
	case analysis.VariadicFunction:
		if count < f.MinArgs {
			return analysis.ArgumentCountMismatch(f.MinArgs, count)
		}
	case analysis.UnionArgsFunction:
		if count < f.Count || (!f.Variadic && count != f.Count) {
			return analysis.ArgumentCountMismatch(f.Count, count)
		}
	}
	return nil
}

func applyFunction(fn analysis.FunctionType, args []analysis.TypeSignature) (analysis.TypeSignature, error) {
	switch f := fn.(type) {
	case analysis.FixedFunction:
		return f.CheckArgs(args)
	case analysis.VariadicFunction:
		return f.CheckArgs(args)
	case analysis.UnionArgsFunction:
		return f.CheckArgs(args)
	case analysis.SpecialFunction:
		return nil, analysis.NamedError(analysis.IllegalFunctionApplication, f.Name, "")
	default:
		return nil, analysis.NewCheckError(analysis.CouldNotDetermineType)
	}
}

// annotate records where a check error arose. The innermost expression
// wins because spans are only attached once.
func annotate(err error, expr ast.SymbolicExpression) error {
	checkErr, ok := err.(*analysis.CheckError)
	if !ok || !checkErr.Span.IsZero() || expr == nil || expr.Span().IsZero() {
		return err
	}
	return checkErr.WithSpan(expr.Span())
}
