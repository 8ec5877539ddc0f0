package analysis

import (
	"maps"
	"slices"
)

type FunctionVisibility string

const (
	VisibilityPrivate  FunctionVisibility = "private"
	VisibilityPublic   FunctionVisibility = "public"
	VisibilityReadOnly FunctionVisibility = "read-only"
)

// MapSignature is the declared key and value schema of a contract map.
type MapSignature struct {
	Key   TupleType
	Value TupleType
}

// ContractAnalysis summarises the public surface of a checked contract.
// The checker fills it in declaration order; once handed to the analysis
// database it is treated as immutable.
type ContractAnalysis struct {
	ContractID ContractIdentifier

	PrivateFunctions   map[string]FixedFunction
	PublicFunctions    map[string]FixedFunction
	ReadOnlyFunctions  map[string]FixedFunction
	Maps               map[string]MapSignature
	PersistedVariables map[string]TypeSignature
	Constants          map[string]TypeSignature

	// SourceDigest identifies the source the analysis was produced from.
	SourceDigest string
	// DependencyDigests maps each contract the analysis was checked against
	// to that contract's SourceDigest at the time.
	DependencyDigests map[string]string
}

func NewContractAnalysis(id ContractIdentifier) *ContractAnalysis {
	return &ContractAnalysis{
		ContractID:         id,
		PrivateFunctions:   make(map[string]FixedFunction),
		PublicFunctions:    make(map[string]FixedFunction),
		ReadOnlyFunctions:  make(map[string]FixedFunction),
		Maps:               make(map[string]MapSignature),
		PersistedVariables: make(map[string]TypeSignature),
		Constants:          make(map[string]TypeSignature),
	}
}

func (a *ContractAnalysis) PrivateFunction(name string) (FixedFunction, bool) {
	fn, ok := a.PrivateFunctions[name]
	return fn, ok
}

func (a *ContractAnalysis) PublicFunctionType(name string) (FixedFunction, bool) {
	fn, ok := a.PublicFunctions[name]
	return fn, ok
}

func (a *ContractAnalysis) ReadOnlyFunctionType(name string) (FixedFunction, bool) {
	fn, ok := a.ReadOnlyFunctions[name]
	return fn, ok
}

func (a *ContractAnalysis) MapType(name string) (MapSignature, bool) {
	sig, ok := a.Maps[name]
	return sig, ok
}

func (a *ContractAnalysis) PersistedVariableType(name string) (TypeSignature, bool) {
	t, ok := a.PersistedVariables[name]
	return t, ok
}

func (a *ContractAnalysis) ConstantType(name string) (TypeSignature, bool) {
	t, ok := a.Constants[name]
	return t, ok
}

// Function finds a user function of any visibility.
func (a *ContractAnalysis) Function(name string) (FixedFunction, FunctionVisibility, bool) {
	if fn, ok := a.PrivateFunctions[name]; ok {
		return fn, VisibilityPrivate, true
	}
	if fn, ok := a.PublicFunctions[name]; ok {
		return fn, VisibilityPublic, true
	}
	if fn, ok := a.ReadOnlyFunctions[name]; ok {
		return fn, VisibilityReadOnly, true
	}
	return FixedFunction{}, "", false
}

// HasTopLevelName reports whether name is taken by any contract-level
// declaration: a function, constant, map or persisted variable.
func (a *ContractAnalysis) HasTopLevelName(name string) bool {
	if _, _, ok := a.Function(name); ok {
		return true
	}
	if _, ok := a.Constants[name]; ok {
		return true
	}
	if _, ok := a.Maps[name]; ok {
		return true
	}
	_, ok := a.PersistedVariables[name]
	return ok
}

func (a *ContractAnalysis) AddMap(name string, sig MapSignature) error {
	if a.HasTopLevelName(name) {
		return NameAlreadyUsedError(name)
	}
	a.Maps[name] = sig
	return nil
}

func (a *ContractAnalysis) AddPersistedVariable(name string, t TypeSignature) error {
	if a.HasTopLevelName(name) {
		return NameAlreadyUsedError(name)
	}
	a.PersistedVariables[name] = t
	return nil
}

func (a *ContractAnalysis) AddConstant(name string, t TypeSignature) error {
	if a.HasTopLevelName(name) {
		return NameAlreadyUsedError(name)
	}
	a.Constants[name] = t
	return nil
}

func (a *ContractAnalysis) AddFunction(visibility FunctionVisibility, name string, fn FixedFunction) error {
	if a.HasTopLevelName(name) {
		return NameAlreadyUsedError(name)
	}
	switch visibility {
	case VisibilityPublic:
		a.PublicFunctions[name] = fn
	case VisibilityReadOnly:
		a.ReadOnlyFunctions[name] = fn
	default:
		a.PrivateFunctions[name] = fn
	}
	return nil
}

// Clone returns a copy whose namespaces can be mutated independently.
// Signatures are values and are shared.
func (a *ContractAnalysis) Clone() *ContractAnalysis {
	out := *a
	out.PrivateFunctions = maps.Clone(a.PrivateFunctions)
	out.PublicFunctions = maps.Clone(a.PublicFunctions)
	out.ReadOnlyFunctions = maps.Clone(a.ReadOnlyFunctions)
	out.Maps = maps.Clone(a.Maps)
	out.PersistedVariables = maps.Clone(a.PersistedVariables)
	out.Constants = maps.Clone(a.Constants)
	out.DependencyDigests = maps.Clone(a.DependencyDigests)
	return &out
}

// SortedNames returns the keys of one of the analysis namespaces in order.
func SortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
