package analysis

// Admits reports whether a value of type actual may be used where expected
// is required. It is the only compatibility test used by the checker.
func Admits(expected, actual TypeSignature) bool {
	if IsNoType(expected) || IsNoType(actual) {
		return true
	}
	switch exp := expected.(type) {
	case IntType, BoolType, PrincipalType:
		return TypesEqual(expected, actual)
	case BufferType:
		act, ok := actual.(BufferType)
		return ok && act.MaxLen <= exp.MaxLen
	case ListType:
		act, ok := actual.(ListType)
		if !ok {
			return false
		}
		return act.MaxLen <= exp.MaxLen && Admits(exp.Element, act.Element)
	case TupleType:
		act, ok := actual.(TupleType)
		if !ok || len(act.Fields) != len(exp.Fields) {
			return false
		}
		for i, field := range exp.Fields {
			other := act.Fields[i]
			if other.Name != field.Name || !Admits(field.Type, other.Type) {
				return false
			}
		}
		return true
	case OptionalType:
		act, ok := actual.(OptionalType)
		return ok && Admits(exp.Inner, act.Inner)
	case ResponseType:
		act, ok := actual.(ResponseType)
		return ok && Admits(exp.Ok, act.Ok) && Admits(exp.Err, act.Err)
	default:
		return false
	}
}

// LeastSupertype unifies two types, returning the tighter signature able to
// hold values of both, or a TypeError when neither admits the other.
func LeastSupertype(a, b TypeSignature) (TypeSignature, error) {
	if IsNoType(a) {
		return orNoType(b), nil
	}
	if IsNoType(b) {
		return a, nil
	}
	mismatch := TypeMismatch(a, b)
	switch av := a.(type) {
	case IntType, BoolType, PrincipalType:
		if TypesEqual(a, b) {
			return a, nil
		}
		return nil, mismatch
	case BufferType:
		bv, ok := b.(BufferType)
		if !ok {
			return nil, mismatch
		}
		return BufferType{MaxLen: max(av.MaxLen, bv.MaxLen)}, nil
	case ListType:
		bv, ok := b.(ListType)
		if !ok {
			return nil, mismatch
		}
		elem, err := LeastSupertype(av.Element, bv.Element)
		if err != nil {
			return nil, mismatch
		}
		return ListType{Element: elem, MaxLen: max(av.MaxLen, bv.MaxLen)}, nil
	case TupleType:
		bv, ok := b.(TupleType)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return nil, mismatch
		}
		fields := make([]TupleField, len(av.Fields))
		for i, field := range av.Fields {
			other := bv.Fields[i]
			if field.Name != other.Name {
				return nil, mismatch
			}
			unified, err := LeastSupertype(field.Type, other.Type)
			if err != nil {
				return nil, mismatch
			}
			fields[i] = TupleField{Name: field.Name, Type: unified}
		}
		return TupleType{Fields: fields}, nil
	case OptionalType:
		bv, ok := b.(OptionalType)
		if !ok {
			return nil, mismatch
		}
		inner, err := LeastSupertype(av.Inner, bv.Inner)
		if err != nil {
			return nil, mismatch
		}
		return OptionalType{Inner: inner}, nil
	case ResponseType:
		bv, ok := b.(ResponseType)
		if !ok {
			return nil, mismatch
		}
		okType, err := LeastSupertype(av.Ok, bv.Ok)
		if err != nil {
			return nil, mismatch
		}
		errType, err := LeastSupertype(av.Err, bv.Err)
		if err != nil {
			return nil, mismatch
		}
		return ResponseType{Ok: okType, Err: errType}, nil
	default:
		return nil, mismatch
	}
}

func orNoType(t TypeSignature) TypeSignature {
	if t == nil {
		return None
	}
	return t
}
