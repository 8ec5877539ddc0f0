package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

func blockInfoType(property string) (analysis.TypeSignature, bool) {
	switch property {
	case "time":
		return analysis.Int, true
	case "header-hash", "burnchain-header-hash", "vrf-seed":
		return hash32, true
	default:
		return nil, false
	}
}

// (get-block-info property height)
func (tc *TypeChecker) checkGetBlockInfo(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	property, err := expectName(args[0])
	if err != nil {
		return nil, err
	}
	result, ok := blockInfoType(property)
	if !ok {
		return nil, analysis.NamedError(analysis.NoSuchBlockInfoProperty, property, "")
	}
	height, err := tc.TypeCheck(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if !analysis.IsInt(height) {
		return nil, analysis.TypeMismatch(analysis.Int, height)
	}
	return result, nil
}

func (tc *TypeChecker) persistedVariable(expr ast.SymbolicExpression) (analysis.TypeSignature, error) {
	name, err := expectName(expr)
	if err != nil {
		return nil, err
	}
	declared, ok := tc.contract.PersistedVariableType(name)
	if !ok {
		return nil, analysis.NoSuchVariableError(name)
	}
	return declared, nil
}

func (tc *TypeChecker) checkVarGet(args []ast.SymbolicExpression) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	return tc.persistedVariable(args[0])
}

func (tc *TypeChecker) checkVarSet(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	declared, err := tc.persistedVariable(args[0])
	if err != nil {
		return nil, err
	}
	value, err := tc.TypeCheck(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if !analysis.Admits(declared, value) {
		return nil, analysis.TypeMismatch(declared, value)
	}
	return analysis.Bool, nil
}

func (tc *TypeChecker) localMap(expr ast.SymbolicExpression) (analysis.MapSignature, error) {
	name, err := expectName(expr)
	if err != nil {
		return analysis.MapSignature{}, err
	}
	sig, ok := tc.contract.MapType(name)
	if !ok {
		return analysis.MapSignature{}, analysis.NamedError(analysis.NoSuchMap, name, "")
	}
	return sig, nil
}

// checkTupleArg infers a key or value expression and checks that the map
// schema admits it. Unbound names inside the expression fail before the
// structural comparison.
func (tc *TypeChecker) checkTupleArg(schema analysis.TupleType, expr ast.SymbolicExpression, ctx *TypingContext) error {
	actual, err := tc.TypeCheck(expr, ctx)
	if err != nil {
		return err
	}
	if !analysis.Admits(schema, actual) {
		return annotate(analysis.TypeMismatch(schema, actual), expr)
	}
	return nil
}

// (map-get name key)
func (tc *TypeChecker) checkMapGet(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	sig, err := tc.localMap(args[0])
	if err != nil {
		return nil, err
	}
	if err := tc.checkTupleArg(sig.Key, args[1], ctx); err != nil {
		return nil, err
	}
	return analysis.OptionalType{Inner: sig.Value}, nil
}

// (map-insert! name key value) and (map-set! name key value)
func (tc *TypeChecker) checkMapWrite(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	sig, err := tc.localMap(args[0])
	if err != nil {
		return nil, err
	}
	if err := tc.checkTupleArg(sig.Key, args[1], ctx); err != nil {
		return nil, err
	}
	if err := tc.checkTupleArg(sig.Value, args[2], ctx); err != nil {
		return nil, err
	}
	return analysis.Bool, nil
}

// (map-delete! name key)
func (tc *TypeChecker) checkMapDelete(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	sig, err := tc.localMap(args[0])
	if err != nil {
		return nil, err
	}
	if err := tc.checkTupleArg(sig.Key, args[1], ctx); err != nil {
		return nil, err
	}
	return analysis.Bool, nil
}
