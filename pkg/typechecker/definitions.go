package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

// matchDefine recognises a top-level `(define-... args)` form.
func matchDefine(expr ast.SymbolicExpression) (string, []ast.SymbolicExpression, bool) {
	items, ok := ast.MatchList(expr)
	if !ok || len(items) == 0 {
		return "", nil, false
	}
	keyword, ok := ast.MatchAtom(items[0])
	if !ok || !isDefineKeyword(keyword) {
		return "", nil, false
	}
	return keyword, items[1:], true
}

// DefinedName reports the name a top-level declaration introduces.
func DefinedName(expr ast.SymbolicExpression) (keyword, name string, ok bool) {
	keyword, args, ok := matchDefine(expr)
	if !ok || len(args) == 0 {
		return "", "", false
	}
	target := args[0]
	if signature, isList := ast.MatchList(target); isList && len(signature) > 0 {
		target = signature[0]
	}
	name, isAtom := ast.MatchAtom(target)
	if !isAtom {
		return "", "", false
	}
	return keyword, name, true
}

func (tc *TypeChecker) checkDefine(keyword string, args []ast.SymbolicExpression) error {
	switch keyword {
	case defineMap:
		return tc.defineMap(args)
	case defineDataVar:
		return tc.definePersistedVariable(args)
	case defineConstant:
		return tc.defineConstant(args)
	case definePrivate:
		return tc.defineFunction(analysis.VisibilityPrivate, args)
	case definePublic:
		return tc.defineFunction(analysis.VisibilityPublic, args)
	case defineReadOnly:
		return tc.defineFunction(analysis.VisibilityReadOnly, args)
	default:
		return analysis.NamedError(analysis.UnknownFunction, keyword, "")
	}
}

func (tc *TypeChecker) declaredName(expr ast.SymbolicExpression) (string, error) {
	name, ok := ast.MatchAtom(expr)
	if !ok {
		return "", analysis.NewCheckError(analysis.BadSyntaxBinding)
	}
	if err := tc.checkNameFree(nil, name); err != nil {
		return "", annotate(err, expr)
	}
	return name, nil
}

// (define-map name key-schema value-schema)
func (tc *TypeChecker) defineMap(args []ast.SymbolicExpression) error {
	if err := expectArgs(args, 3); err != nil {
		return err
	}
	name, err := tc.declaredName(args[0])
	if err != nil {
		return err
	}
	key, err := analysis.ParseTupleSchema(args[1])
	if err != nil {
		return annotate(err, args[1])
	}
	value, err := analysis.ParseTupleSchema(args[2])
	if err != nil {
		return annotate(err, args[2])
	}
	return tc.contract.AddMap(name, analysis.MapSignature{Key: key, Value: value})
}

// (define-data-var name type initial)
func (tc *TypeChecker) definePersistedVariable(args []ast.SymbolicExpression) error {
	if err := expectArgs(args, 3); err != nil {
		return err
	}
	name, err := tc.declaredName(args[0])
	if err != nil {
		return err
	}
	declared, err := analysis.ParseTypeExpression(args[1])
	if err != nil {
		return annotate(err, args[1])
	}
	initial, err := tc.TypeCheck(args[2], tc.topLevel)
	if err != nil {
		return err
	}
	if !analysis.Admits(declared, initial) {
		return annotate(analysis.TypeMismatch(declared, initial), args[2])
	}
	return tc.contract.AddPersistedVariable(name, declared)
}

// (define-constant name value)
func (tc *TypeChecker) defineConstant(args []ast.SymbolicExpression) error {
	if err := expectArgs(args, 2); err != nil {
		return err
	}
	name, err := tc.declaredName(args[0])
	if err != nil {
		return err
	}
	value, err := tc.TypeCheck(args[1], tc.topLevel)
	if err != nil {
		return err
	}
	return tc.contract.AddConstant(name, value)
}

// (define-<visibility> (name (arg type) ...) body)
//
// The body is checked before the function is registered, so a function
// cannot call itself.
func (tc *TypeChecker) defineFunction(visibility analysis.FunctionVisibility, args []ast.SymbolicExpression) error {
	if len(args) != 2 {
		return analysis.NewCheckError(analysis.DefineFunctionBadSignature)
	}
	signature, ok := ast.MatchList(args[0])
	if !ok || len(signature) == 0 {
		return analysis.NewCheckError(analysis.DefineFunctionBadSignature)
	}
	if _, ok := ast.MatchAtom(signature[0]); !ok {
		return analysis.NewCheckError(analysis.DefineFunctionBadSignature)
	}
	name, err := tc.declaredName(signature[0])
	if err != nil {
		return err
	}

	scope := tc.topLevel.Extend()
	params := make([]analysis.FunctionArg, 0, len(signature)-1)
	for _, entry := range signature[1:] {
		pair, ok := ast.MatchList(entry)
		if !ok || len(pair) != 2 {
			return annotate(analysis.NewCheckError(analysis.BadSyntaxBinding), entry)
		}
		argName, ok := ast.MatchAtom(pair[0])
		if !ok {
			return annotate(analysis.NewCheckError(analysis.BadSyntaxBinding), entry)
		}
		if err := tc.checkNameFree(scope, argName); err != nil {
			return annotate(err, entry)
		}
		argType, err := analysis.ParseTypeExpression(pair[1])
		if err != nil {
			return annotate(err, pair[1])
		}
		scope.define(argName, argType)
		params = append(params, analysis.FunctionArg{Name: argName, Type: argType})
	}

	returns, err := tc.TypeCheck(args[1], scope)
	if err != nil {
		return err
	}
	if visibility == analysis.VisibilityPublic {
		if _, ok := returns.(analysis.ResponseType); !ok {
			return annotate(analysis.ExpectedTypeError(analysis.PublicFunctionMustReturnResponse, returns), args[1])
		}
	}
	return tc.contract.AddFunction(visibility, name, analysis.FixedFunction{Args: params, Returns: returns})
}
