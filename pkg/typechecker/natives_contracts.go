package typechecker

import (
	"clarity/analysis-go/pkg/analysis"
	"clarity/analysis-go/pkg/ast"
)

// externalContract loads the committed analysis of the contract named by
// expr. Bare names refer to local contracts.
func (tc *TypeChecker) externalContract(expr ast.SymbolicExpression) (*analysis.ContractAnalysis, error) {
	name, err := expectName(expr)
	if err != nil {
		return nil, err
	}
	id, err := analysis.ParseContractIdentifier(name)
	if err != nil {
		return nil, analysis.NamedError(analysis.NoSuchContract, name, "")
	}
	return tc.db.LoadContract(id)
}

// (contract-map-get contract map key)
func (tc *TypeChecker) checkContractMapGet(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectArgs(args, 3); err != nil {
		return nil, err
	}
	other, err := tc.externalContract(args[0])
	if err != nil {
		return nil, err
	}
	mapName, err := expectName(args[1])
	if err != nil {
		return nil, err
	}
	sig, ok := other.MapType(mapName)
	if !ok {
		return nil, analysis.NamedError(analysis.NoSuchMap, mapName, other.ContractID.String())
	}
	if err := tc.checkTupleArg(sig.Key, args[2], ctx); err != nil {
		return nil, err
	}
	return analysis.OptionalType{Inner: sig.Value}, nil
}

// (contract-call! contract function args...)
func (tc *TypeChecker) checkContractCall(args []ast.SymbolicExpression, ctx *TypingContext) (analysis.TypeSignature, error) {
	if err := expectAtLeast(args, 2); err != nil {
		return nil, err
	}
	other, err := tc.externalContract(args[0])
	if err != nil {
		return nil, err
	}
	fnName, err := expectName(args[1])
	if err != nil {
		return nil, err
	}
	fn, ok := other.PublicFunctionType(fnName)
	if !ok {
		return nil, analysis.NamedError(analysis.NoSuchPublicFunction, fnName, other.ContractID.String())
	}
	return tc.checkCall(fn, args[2:], ctx)
}
