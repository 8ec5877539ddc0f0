package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

// checkSpecial dispatches to the rule of a special form.
func (tc *TypeChecker) checkSpecial(native NativeFunction, args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	switch native {
	case NativeEquals:
		return tc.checkEquals(args, ctx)
	case NativeIf:
		return tc.checkIf(args, ctx)
	case NativeLet:
		return tc.checkLet(args, ctx)
	case NativeBegin:
		return tc.checkBegin(args, ctx)
	case NativePrint:
		return tc.checkPrint(args, ctx)
	case NativeTuple:
		return tc.checkTupleCons(args, ctx)
	case NativeGet:
		return tc.checkGet(args, ctx)
	case NativeList:
		return tc.checkListCons(args, ctx)
	case NativeMap:
		return tc.checkMap(args, ctx)
	case NativeFilter:
		return tc.checkFilter(args, ctx)
	case NativeFold:
		return tc.checkFold(args, ctx)
	case NativeSome:
		return tc.checkSome(args, ctx)
	case NativeOk:
		return tc.checkOk(args, ctx)
	case NativeErr:
		return tc.checkErr(args, ctx)
	case NativeDefaultTo:
		return tc.checkDefaultTo(args, ctx)
	case NativeExpects:
		return tc.checkExpects(args, ctx)
	case NativeExpectsErr:
		return tc.checkExpectsErr(args, ctx)
	case NativeIsNone:
		return tc.checkIsNone(args, ctx)
	case NativeIsOk:
		return tc.checkIsOk(args, ctx)
	case NativeGetBlockInfo:
		return tc.checkGetBlockInfo(args, ctx)
	case NativeVarGet:
		return tc.checkVarGet(args)
	case NativeVarSet:
		return tc.checkVarSet(args, ctx)
	case NativeMapGet:
		return tc.checkMapGet(args, ctx)
	case NativeMapInsert, NativeMapSet:
		return tc.checkMapWrite(args, ctx)
	case NativeMapDelete:
		return tc.checkMapDelete(args, ctx)
	case NativeContractMapGet:
		return tc.checkContractMapGet(args, ctx)
	case NativeContractCall:
		return tc.checkContractCall(args, ctx)
	default:
		return nil, analysis.NamedError(analysis.UnknownFunction, native.String(), "")
	}
}

func expectArgs(args []ast.SymbolicExpression, count int) error {
	if len(args) != count {
		return analysis.ArgumentCountMismatch(count, len(args))
	}
	return nil
}

func expectAtLeast(args []ast.SymbolicExpression, count int) error {
	if len(args) < count {
		return analysis.ArgumentCountMismatch(count, len(args))
	}
	return nil
}

// expectName reads a symbol argument such as a map or variable name.
func expectName(expr ast.SymbolicExpression) (string, error) {
	name, ok := ast.MatchAtom(expr)
	if !ok {
		return "", analysis.NewCheckError(analysis.ExpectedName)
	}
	return name, nil
}

func (tc *TypeChecker) checkEquals(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectAtLeast(args, 1); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	unified := argTypes[0]
	for _, next := range argTypes[1:] {
		merged, err := analysis.LeastSupertype(unified, next)
		if err != nil {
			return nil, analysis.UnionMismatch([]analysis.TypeSignature{unified}, next)
		}
		unified = merged
	}
	return analysis.Bool, nil
}

func (tc *TypeChecker) checkIf(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	if !analysis.IsBool(argTypes[0]) {
		return nil, analysis.TypeMismatch(analysis.Bool, argTypes[0])
	}
	return analysis.LeastSupertype(argTypes[1], argTypes[2])
}

// checkLet binds each (name value) pair into one child scope, so every
// value sees the bindings before it. The body's last expression gives the
// result type.
func (tc *TypeChecker) checkLet(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectAtLeast(args, 2); err != nil {
		return nil, err
	}
	bindings, ok := ast.MatchList(args[0])
	if !ok {
		return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
	}
	scope := ctx.Extend()
	for _, binding := range bindings {
		pair, ok := ast.MatchList(binding)
		if !ok || len(pair) != 2 {
			return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
		}
		name, ok := ast.MatchAtom(pair[0])
		if !ok {
			return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
		}
		if err := tc.checkNameFree(scope, name); err != nil {
			return nil, annotate(err, binding)
		}
		valueType, err := tc.TypeCheck(pair[1], scope)
		if err != nil {
			return nil, err
		}
		scope.define(name, valueType)
	}
	return tc.checkBody(args[1:], scope)
}

func (tc *TypeChecker) checkBegin(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectAtLeast(args, 1); err != nil {
		return nil, err
	}
	return tc.checkBody(args, ctx)
}

func (tc *TypeChecker) checkBody(body []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	var last analysis.TypeSignature
	for _, expr := range body {
		sig, err := tc.TypeCheck(expr, ctx)
		if err != nil {
			return nil, err
		}
		last = sig
	}
	return last, nil
}

func (tc *TypeChecker) checkPrint(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	return tc.TypeCheck(args[0], ctx)
}
