package typechecker

import "clarity/analysis-go/pkg/analysis"

// TypingContext is a lexical scope. Children read through to their parent
// but never write to it.
type TypingContext struct {
	parent    *TypingContext
	variables map[string]analysis.TypeSignature
}

func NewTypingContext() *TypingContext {
	return &TypingContext{variables: make(map[string]analysis.TypeSignature)}
}

// Extend returns an empty child scope.
func (c *TypingContext) Extend() *TypingContext {
	return &TypingContext{parent: c, variables: make(map[string]analysis.TypeSignature)}
}

// Lookup searches the scope chain.
func (c *TypingContext) Lookup(name string) (analysis.TypeSignature, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if t, ok := scope.variables[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (c *TypingContext) define(name string, t analysis.TypeSignature) {
	c.variables[name] = t
}

// bind introduces name into scope after checking that it shadows nothing:
// not a visible binding, not a contract-level declaration and not a native.
func (tc *TypeChecker) bind(scope *TypingContext, name string, t analysis.TypeSignature) error {
	if err := tc.checkNameFree(scope, name); err != nil {
		return err
	}
	scope.define(name, t)
	return nil
}

func (tc *TypeChecker) checkNameFree(scope *TypingContext, name string) error {
	if scope != nil {
		if _, ok := scope.Lookup(name); ok {
			return analysis.NameAlreadyUsedError(name)
		}
	}
	if tc.contract.HasTopLevelName(name) || isReservedName(name) {
		return analysis.NameAlreadyUsedError(name)
	}
	return nil
}
