package analysis

import (
	"fmt"

	"fortio.org/safecast"

	"clarity/analysis-go/pkg/ast"
	"clarity/analysis-go/pkg/parser"
)

const noTypeName = "no-type"

// ParseTypeExpression converts a written type such as `(list 5 (buff 3))`
// into its signature.
func ParseTypeExpression(expr ast.SymbolicExpression) (TypeSignature, error) {
	return parseType(expr, false)
}

// ParseTupleSchema reads a map key or value schema. Besides the explicit
// `(tuple (name T) ...)` form it accepts the bare `((name T) ...)` list.
func ParseTupleSchema(expr ast.SymbolicExpression) (TupleType, error) {
	items, ok := ast.MatchList(expr)
	if !ok {
		return TupleType{}, NewCheckError(BadSyntaxBinding)
	}
	if len(items) > 0 {
		if head, isAtom := ast.MatchAtom(items[0]); isAtom && head == "tuple" {
			return parseTupleFields(items[1:], false)
		}
	}
	return parseTupleFields(items, false)
}

// ParseStoredType decodes a signature rendered by TypeSignature.String.
// Unlike contract source it may contain `no-type`.
func ParseStoredType(text string) (TypeSignature, error) {
	expr, err := parser.ParseOne(text)
	if err != nil {
		return nil, fmt.Errorf("analysis: decode type %q: %w", text, err)
	}
	sig, err := parseType(expr, true)
	if err != nil {
		return nil, fmt.Errorf("analysis: decode type %q: %w", text, err)
	}
	return sig, nil
}

func parseType(expr ast.SymbolicExpression, allowNoType bool) (TypeSignature, error) {
	if name, ok := ast.MatchAtom(expr); ok {
		switch name {
		case "int":
			return Int, nil
		case "bool":
			return Bool, nil
		case "principal":
			return Principal, nil
		case noTypeName:
			if allowNoType {
				return None, nil
			}
		}
		return nil, NamedError(UnknownTypeName, name, "")
	}
	items, ok := ast.MatchList(expr)
	if !ok || len(items) == 0 {
		return nil, NewCheckError(BadSyntaxBinding)
	}
	head, ok := ast.MatchAtom(items[0])
	if !ok {
		return nil, NewCheckError(BadSyntaxBinding)
	}
	args := items[1:]
	switch head {
	case "buff":
		if len(args) != 1 {
			return nil, NewCheckError(BadSyntaxBinding)
		}
		n, err := parseLength(args[0])
		if err != nil {
			return nil, err
		}
		return BufferType{MaxLen: n}, nil
	case "list":
		if len(args) != 2 {
			return nil, NewCheckError(BadSyntaxBinding)
		}
		n, err := parseLength(args[0])
		if err != nil {
			return nil, err
		}
		elem, err := parseType(args[1], allowNoType)
		if err != nil {
			return nil, err
		}
		return ListType{Element: elem, MaxLen: n}, nil
	case "tuple":
		return parseTupleFields(args, allowNoType)
	case "optional":
		if len(args) != 1 {
			return nil, NewCheckError(BadSyntaxBinding)
		}
		inner, err := parseType(args[0], allowNoType)
		if err != nil {
			return nil, err
		}
		return OptionalType{Inner: inner}, nil
	case "response":
		if len(args) != 2 {
			return nil, NewCheckError(BadSyntaxBinding)
		}
		okType, err := parseType(args[0], allowNoType)
		if err != nil {
			return nil, err
		}
		errType, err := parseType(args[1], allowNoType)
		if err != nil {
			return nil, err
		}
		return ResponseType{Ok: okType, Err: errType}, nil
	default:
		return nil, NamedError(UnknownTypeName, head, "")
	}
}

func parseTupleFields(entries []ast.SymbolicExpression, allowNoType bool) (TupleType, error) {
	fields := make([]TupleField, 0, len(entries))
	for _, entry := range entries {
		pair, ok := ast.MatchList(entry)
		if !ok || len(pair) != 2 {
			return TupleType{}, NewCheckError(BadSyntaxBinding)
		}
		name, ok := ast.MatchAtom(pair[0])
		if !ok {
			return TupleType{}, NewCheckError(BadSyntaxBinding)
		}
		fieldType, err := parseType(pair[1], allowNoType)
		if err != nil {
			return TupleType{}, err
		}
		fields = append(fields, TupleField{Name: name, Type: fieldType})
	}
	return NewTupleType(fields)
}

func parseLength(expr ast.SymbolicExpression) (uint32, error) {
	lit, ok := expr.(*ast.AtomValue)
	if !ok || lit.Kind != ast.ValueInt || lit.Int == nil {
		return 0, NewCheckError(BadSyntaxBinding)
	}
	if !lit.Int.IsInt64() {
		return 0, NewCheckError(ValueTooLarge)
	}
	n, err := safecast.Conv[uint32](lit.Int.Int64())
	if err != nil {
		return 0, NewCheckError(ValueTooLarge)
	}
	return n, nil
}

// LiteralType is the intrinsic type of a literal value.
func LiteralType(v *ast.AtomValue) (TypeSignature, error) {
	switch v.Kind {
	case ast.ValueInt:
		return Int, nil
	case ast.ValueBool:
		return Bool, nil
	case ast.ValuePrincipal:
		return Principal, nil
	case ast.ValueNone:
		return None, nil
	case ast.ValueBuffer:
		n, err := safecast.Conv[uint32](len(v.Buffer))
		if err != nil {
			return nil, NewCheckError(ValueTooLarge)
		}
		return BufferType{MaxLen: n}, nil
	default:
		return nil, NewCheckError(CouldNotDetermineType)
	}
}
