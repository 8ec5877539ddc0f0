package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

func (tc *TypeChecker) checkUnary(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 1); err != nil {
		return nil, err
	}
	return tc.TypeCheck(args[0], ctx)
}

func (tc *TypeChecker) checkSome(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	inner, err := tc.checkUnary(args, ctx)
	if err != nil {
		return nil, err
	}
	return analysis.OptionalType{Inner: inner}, nil
}

func (tc *TypeChecker) checkOk(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	inner, err := tc.checkUnary(args, ctx)
	if err != nil {
		return nil, err
	}
	return analysis.ResponseType{Ok: inner, Err: analysis.None}, nil
}

func (tc *TypeChecker) checkErr(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	inner, err := tc.checkUnary(args, ctx)
	if err != nil {
		return nil, err
	}
	return analysis.ResponseType{Ok: analysis.None, Err: inner}, nil
}

// optionalInner unwraps an optional; a bare `none` counts as an optional of
// unknown content.
func optionalInner(sig analysis.TypeSignature) (analysis.TypeSignature, error) {
	if analysis.IsNoType(sig) {
		return analysis.None, nil
	}
	opt, ok := sig.(analysis.OptionalType)
	if !ok {
		return nil, analysis.ExpectedTypeError(analysis.ExpectedOptionalType, sig)
	}
	return opt.Inner, nil
}

// (default-to default optional)
func (tc *TypeChecker) checkDefaultTo(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	inner, err := optionalInner(argTypes[1])
	if err != nil {
		return nil, err
	}
	return analysis.LeastSupertype(argTypes[0], inner)
}

// (expects! input thrown) unwraps an optional or the ok side of a response.
func (tc *TypeChecker) checkExpects(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	if resp, ok := argTypes[0].(analysis.ResponseType); ok {
		return resp.Ok, nil
	}
	return optionalInner(argTypes[0])
}

func (tc *TypeChecker) checkExpectsErr(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 2); err != nil {
		return nil, err
	}
	argTypes, err := tc.typeCheckAll(args, ctx)
	if err != nil {
		return nil, err
	}
	resp, ok := argTypes[0].(analysis.ResponseType)
	if !ok {
		return nil, analysis.ExpectedTypeError(analysis.ExpectedResponseType, argTypes[0])
	}
	return resp.Err, nil
}

func (tc *TypeChecker) checkIsNone(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	input, err := tc.checkUnary(args, ctx)
	if err != nil {
		return nil, err
	}
	if _, err := optionalInner(input); err != nil {
		return nil, err
	}
	return analysis.Bool, nil
}

func (tc *TypeChecker) checkIsOk(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	input, err := tc.checkUnary(args, ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := input.(analysis.ResponseType); !ok {
		return nil, analysis.ExpectedTypeError(analysis.ExpectedResponseType, input)
	}
	return analysis.Bool, nil
}
