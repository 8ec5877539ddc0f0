package analysis

import (
	"errors"
	"fmt"
	"strings"

	"clarity/analysis-go/pkg/ast"
)

type ErrorKind string

const (
	TypeError              ErrorKind = "TypeError"
	UnionTypeError         ErrorKind = "UnionTypeError"
	IncorrectArgumentCount ErrorKind = "IncorrectArgumentCount"
	BadSyntaxBinding       ErrorKind = "BadSyntaxBinding"
	UnboundVariable        ErrorKind = "UnboundVariable"
	NoSuchVariable         ErrorKind = "NoSuchVariable"
	NameAlreadyUsed        ErrorKind = "NameAlreadyUsed"

	NoSuchMap                        ErrorKind = "NoSuchMap"
	NoSuchContract                   ErrorKind = "NoSuchContract"
	NoSuchPublicFunction             ErrorKind = "NoSuchPublicFunction"
	NoSuchTupleField                 ErrorKind = "NoSuchTupleField"
	NoSuchBlockInfoProperty          ErrorKind = "NoSuchBlockInfoProperty"
	UnknownFunction                  ErrorKind = "UnknownFunction"
	UnknownTypeName                  ErrorKind = "UnknownTypeName"
	ExpectedName                     ErrorKind = "ExpectedName"
	ExpectedListApplication          ErrorKind = "ExpectedListApplication"
	ExpectedOptionalType             ErrorKind = "ExpectedOptionalType"
	ExpectedResponseType             ErrorKind = "ExpectedResponseType"
	ExpectedTuple                    ErrorKind = "ExpectedTuple"
	CouldNotDetermineType            ErrorKind = "CouldNotDetermineType"
	IllegalFunctionApplication       ErrorKind = "IllegalFunctionApplication"
	PublicFunctionMustReturnResponse ErrorKind = "PublicFunctionMustReturnResponse"
	DefineFunctionBadSignature       ErrorKind = "DefineFunctionBadSignature"
	DefineFormNotTopLevel            ErrorKind = "DefineFormNotTopLevel"
	ValueTooLarge                    ErrorKind = "ValueTooLarge"
)

// CheckError is the single error value produced by analysis. Only the
// fields relevant to Kind are populated.
type CheckError struct {
	Kind ErrorKind

	Expected TypeSignature
	Actual   TypeSignature
	Allowed  []TypeSignature

	Name  string
	Owner string

	ExpectedCount int
	ActualCount   int

	// Span is attached by callers that know where the failing form lives.
	Span ast.Span
}

func NewCheckError(kind ErrorKind) *CheckError {
	return &CheckError{Kind: kind}
}

func TypeMismatch(expected, actual TypeSignature) *CheckError {
	return &CheckError{Kind: TypeError, Expected: expected, Actual: actual}
}

func UnionMismatch(allowed []TypeSignature, actual TypeSignature) *CheckError {
	return &CheckError{Kind: UnionTypeError, Allowed: allowed, Actual: actual}
}

func ArgumentCountMismatch(expected, actual int) *CheckError {
	return &CheckError{Kind: IncorrectArgumentCount, ExpectedCount: expected, ActualCount: actual}
}

func UnboundVariableError(name string) *CheckError {
	return &CheckError{Kind: UnboundVariable, Name: name}
}

func NoSuchVariableError(name string) *CheckError {
	return &CheckError{Kind: NoSuchVariable, Name: name}
}

func NameAlreadyUsedError(name string) *CheckError {
	return &CheckError{Kind: NameAlreadyUsed, Name: name}
}

// NamedError builds one of the reference errors that carry an offending name
// and optionally the name of its owner (a contract, a tuple type).
func NamedError(kind ErrorKind, name, owner string) *CheckError {
	return &CheckError{Kind: kind, Name: name, Owner: owner}
}

func ExpectedTypeError(kind ErrorKind, actual TypeSignature) *CheckError {
	return &CheckError{Kind: kind, Actual: actual}
}

// WithSpan returns a copy of the error annotated with span.
func (e *CheckError) WithSpan(span ast.Span) *CheckError {
	if e == nil {
		return nil
	}
	out := *e
	out.Span = span
	return &out
}

func (e *CheckError) Error() string {
	if e == nil {
		return "typechecker: <nil>"
	}
	return "typechecker: " + e.describe()
}

func (e *CheckError) describe() string {
	switch e.Kind {
	case TypeError:
		return fmt.Sprintf("type mismatch: expected %s, found %s", typeString(e.Expected), typeString(e.Actual))
	case UnionTypeError:
		allowed := make([]string, 0, len(e.Allowed))
		for _, t := range e.Allowed {
			allowed = append(allowed, typeString(t))
		}
		return fmt.Sprintf("expected one of [%s], found %s", strings.Join(allowed, ", "), typeString(e.Actual))
	case IncorrectArgumentCount:
		return fmt.Sprintf("expected %d arguments, got %d", e.ExpectedCount, e.ActualCount)
	case BadSyntaxBinding:
		return "malformed binding"
	case UnboundVariable:
		return fmt.Sprintf("use of unresolved name '%s'", e.Name)
	case NoSuchVariable:
		return fmt.Sprintf("no data variable named '%s'", e.Name)
	case NameAlreadyUsed:
		return fmt.Sprintf("name '%s' is already in use", e.Name)
	case NoSuchMap:
		if e.Owner != "" {
			return fmt.Sprintf("contract '%s' has no map named '%s'", e.Owner, e.Name)
		}
		return fmt.Sprintf("no map named '%s'", e.Name)
	case NoSuchContract:
		return fmt.Sprintf("no analysis found for contract '%s'", e.Name)
	case NoSuchPublicFunction:
		return fmt.Sprintf("contract '%s' has no public function named '%s'", e.Owner, e.Name)
	case NoSuchTupleField:
		return fmt.Sprintf("tuple %s has no field named '%s'", e.Owner, e.Name)
	case NoSuchBlockInfoProperty:
		return fmt.Sprintf("unknown block info property '%s'", e.Name)
	case UnknownFunction:
		return fmt.Sprintf("unknown function '%s'", e.Name)
	case UnknownTypeName:
		return fmt.Sprintf("unknown type name '%s'", e.Name)
	case ExpectedName:
		return "expected a name"
	case ExpectedListApplication:
		return "expected a function application"
	case ExpectedOptionalType:
		return fmt.Sprintf("expected an optional type, found %s", typeString(e.Actual))
	case ExpectedResponseType:
		return fmt.Sprintf("expected a response type, found %s", typeString(e.Actual))
	case ExpectedTuple:
		return fmt.Sprintf("expected a tuple type, found %s", typeString(e.Actual))
	case CouldNotDetermineType:
		return "could not determine the type of the expression"
	case IllegalFunctionApplication:
		return fmt.Sprintf("'%s' cannot be applied as a function value", e.Name)
	case PublicFunctionMustReturnResponse:
		return fmt.Sprintf("public functions must return a response type, found %s", typeString(e.Actual))
	case DefineFunctionBadSignature:
		return "invalid function signature"
	case DefineFormNotTopLevel:
		return fmt.Sprintf("'%s' may only appear at the top level of a contract", e.Name)
	case ValueTooLarge:
		return "length parameter is out of range"
	default:
		return string(e.Kind)
	}
}

// KindOf extracts the error kind of a CheckError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var checkErr *CheckError
	if errors.As(err, &checkErr) && checkErr != nil {
		return checkErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a CheckError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
