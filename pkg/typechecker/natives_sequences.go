package typechecker

import (
	"fortio.org/safecast"

	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

// anyList is reported as the expected shape when a sequence argument is
// not a list.
var anyList = []analysis.TypeSignature{analysis.ListType{Element: analysis.None}}

func (tc *TypeChecker) checkTupleCons(entries []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if len(entries) == 0 {
		return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
	}
	fields := make([]analysis.TupleField, 0, len(entries))
	for _, entry := range entries {
		pair, ok := ast.MatchList(entry)
		if !ok || len(pair) != 2 {
			return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
		}
		name, ok := ast.MatchAtom(pair[0])
		if !ok {
			return nil, analysis.NewCheckError(analysis.BadSyntaxBinding)
		}
		fieldType, err := tc.TypeCheck(pair[1], ctx)
		if err != nil {
			return nil, err
		}
		fields = append(fields, analysis.TupleField{Name: name, Type: fieldType})
	}
	return analysis.NewTupleType(fields)
}

// checkGet reads a field of a tuple. Reading through an optional tuple
// yields an optional field.
func (tc *TypeChecker) checkGet(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	field, err := expectName(args[0])
	if err != nil {
		return nil, err
	}
	target, err := tc.TypeCheck(args[1], ctx)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case analysis.TupleType:
		return tupleField(t, field)
	case analysis.OptionalType:
		inner, ok := t.Inner.(analysis.TupleType)
		if !ok {
			return nil, analysis.ExpectedTypeError(analysis.ExpectedTuple, target)
		}
		fieldType, err := tupleField(inner, field)
		if err != nil {
			return nil, err
		}
		return analysis.OptionalType{Inner: fieldType}, nil
	default:
		return nil, analysis.ExpectedTypeError(analysis.ExpectedTuple, target)
	}
}

func tupleField(t analysis.TupleType, name string) (analysis.TypeSignature, error) {
	fieldType, ok := t.FieldType(name)
	if !ok {
		return nil, analysis.NamedError(analysis.NoSuchTupleField, name, t.String())
	}
	return fieldType, nil
}

func (tc *TypeChecker) checkListCons(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	element := analysis.None
	for _, next := range argTypes {
		element, err = analysis.LeastSupertype(element, next)
		if err != nil {
			return nil, err
		}
	}
	n, err := safecast.Conv[uint32](len(argTypes))
	if err != nil {
		return nil, analysis.NewCheckError(analysis.ValueTooLarge)
	}
	return analysis.ListType{Element: element, MaxLen: n}, nil
}

// functionValue resolves the operator handed to map, filter or fold.
func (tc *TypeChecker) functionValue(expr ast.SymbolicExpression) (analysis.FunctionType, error) {
	name, err := expectName(expr)
	if err != nil {
		return nil, err
	}
	if native, ok := lookupNative(name); ok {
		sig := native.signature()
		if _, special := sig.(analysis.SpecialFunction); special {
			return nil, analysis.NamedError(analysis.IllegalFunctionApplication, name, "")
		}
		return sig, nil
	}
	if fn, _, ok := tc.contract.Function(name); ok {
		return fn, nil
	}
	return nil, analysis.NamedError(analysis.UnknownFunction, name, "")
}

func (tc *TypeChecker) checkListArg(expr ast.SymbolicExpression, ctx *TypingContext) (analysis.ListType, error) {
	sig, err := tc.TypeCheck(expr, ctx)
	if err != nil {
		return analysis.ListType{}, err
	}
	list, ok := sig.(analysis.ListType)
	if !ok {
		return analysis.ListType{}, analysis.UnionMismatch(anyList, sig)
	}
	return list, nil
}

func (tc *TypeChecker) checkMap(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	fn, err := tc.functionValue(args[0])
	if err != nil {
		return nil, err
	}
	list, err := tc.checkListArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	mapped, err := applyFunction(fn, []analysis.TypeSignature{list.Element})
	if err != nil {
		return nil, err
	}
	return analysis.ListType{Element: mapped, MaxLen: list.MaxLen}, nil
}

func (tc *TypeChecker) checkFilter(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	fn, err := tc.functionValue(args[0])
	if err != nil {
		return nil, err
	}
	list, err := tc.checkListArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	keep, err := applyFunction(fn, []analysis.TypeSignature{list.Element})
	if err != nil {
		return nil, err
	}
	if !analysis.IsBool(keep) {
		return nil, analysis.TypeMismatch(analysis.Bool, keep)
	}
	return list, nil
}

// checkFold applies the operator to (element, accumulator); its result
// must fit back into the accumulator.
func (tc *TypeChecker) checkFold(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	fn, err := tc.functionValue(args[0])
	if err != nil {
		return nil, err
	}
	list, err := tc.checkListArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	initial, err := tc.TypeCheck(args[2], ctx)
	if err != nil {
		return nil, err
	}
	step, err := applyFunction(fn, []analysis.TypeSignature{list.Element, initial})
	if err != nil {
		return nil, err
	}
	if !analysis.Admits(initial, step) {
		return nil, analysis.TypeMismatch(initial, step)
	}
	return analysis.LeastSupertype(initial, step)
}
