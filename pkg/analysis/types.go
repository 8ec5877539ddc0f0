package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// TypeSignature is the static type of a contract value.
type TypeSignature interface {
	// String renders the signature in the contract's own type syntax.
	String() string
	isTypeSignature()
}

// NoType is the type of `none` and of empty sequences before a use site
// narrows them. It admits, and is admitted by, every other signature.
type NoType struct{}

type IntType struct{}

type BoolType struct{}

type PrincipalType struct{}

type BufferType struct {
	MaxLen uint32
}

type ListType struct {
	Element TypeSignature
	MaxLen  uint32
}

// TupleField is a single named component of a TupleType.
type TupleField struct {
	Name string
	Type TypeSignature
}

// TupleType holds fields sorted by name; names are unique.
type TupleType struct {
	Fields []TupleField
}

type OptionalType struct {
	Inner TypeSignature
}

type ResponseType struct {
	Ok  TypeSignature
	Err TypeSignature
}

func (NoType) isTypeSignature()        {}
func (IntType) isTypeSignature()       {}
func (BoolType) isTypeSignature()      {}
func (PrincipalType) isTypeSignature() {}
func (BufferType) isTypeSignature()    {}
func (ListType) isTypeSignature()      {}
func (TupleType) isTypeSignature()     {}
func (OptionalType) isTypeSignature()  {}
func (ResponseType) isTypeSignature()  {}

func (NoType) String() string        { return "no-type" }
func (IntType) String() string       { return "int" }
func (BoolType) String() string      { return "bool" }
func (PrincipalType) String() string { return "principal" }

func (b BufferType) String() string {
	return fmt.Sprintf("(buff %d)", b.MaxLen)
}

func (l ListType) String() string {
	return fmt.Sprintf("(list %d %s)", l.MaxLen, typeString(l.Element))
}

func (t TupleType) String() string {
	var b strings.Builder
	b.WriteString("(tuple")
	for _, field := range t.Fields {
		fmt.Fprintf(&b, " (%s %s)", field.Name, typeString(field.Type))
	}
	b.WriteString(")")
	return b.String()
}

func (o OptionalType) String() string {
	return fmt.Sprintf("(optional %s)", typeString(o.Inner))
}

func (r ResponseType) String() string {
	return fmt.Sprintf("(response %s %s)", typeString(r.Ok), typeString(r.Err))
}

func typeString(t TypeSignature) string {
	if t == nil {
		return "no-type"
	}
	return t.String()
}

// NewTupleType builds a tuple from fields, sorting them by name. Duplicate
// names are rejected with NameAlreadyUsed and an empty field list with
// BadSyntaxBinding.
func NewTupleType(fields []TupleField) (TupleType, error) {
	if len(fields) == 0 {
		return TupleType{}, NewCheckError(BadSyntaxBinding)
	}
	sorted := make([]TupleField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return TupleType{}, NameAlreadyUsedError(sorted[i].Name)
		}
	}
	return TupleType{Fields: sorted}, nil
}

// FieldType returns the type of the named field.
func (t TupleType) FieldType(name string) (TypeSignature, bool) {
	idx := sort.Search(len(t.Fields), func(i int) bool { return t.Fields[i].Name >= name })
	if idx < len(t.Fields) && t.Fields[idx].Name == name {
		return t.Fields[idx].Type, true
	}
	return nil, false
}

// Common signatures.
var (
	Int       TypeSignature = IntType{}
	Bool      TypeSignature = BoolType{}
	Principal TypeSignature = PrincipalType{}
	None      TypeSignature = NoType{}
)

func IsNoType(t TypeSignature) bool {
	if t == nil {
		return true
	}
	_, ok := t.(NoType)
	return ok
}

func IsBool(t TypeSignature) bool {
	_, ok := t.(BoolType)
	return ok
}

func IsInt(t TypeSignature) bool {
	_, ok := t.(IntType)
	return ok
}

// TypesEqual reports structural equality.
func TypesEqual(a, b TypeSignature) bool {
	if a == nil || b == nil {
		return IsNoType(a) && IsNoType(b)
	}
	switch av := a.(type) {
	case ListType:
		bv, ok := b.(ListType)
		return ok && av.MaxLen == bv.MaxLen && TypesEqual(av.Element, bv.Element)
	case TupleType:
		bv, ok := b.(TupleType)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !TypesEqual(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	case OptionalType:
		bv, ok := b.(OptionalType)
		return ok && TypesEqual(av.Inner, bv.Inner)
	case ResponseType:
		bv, ok := b.(ResponseType)
		return ok && TypesEqual(av.Ok, bv.Ok) && TypesEqual(av.Err, bv.Err)
	default:
		return a == b
	}
}
