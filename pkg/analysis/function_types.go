package analysis

import (
	"fmt"
	"strings"
)

type FunctionArg struct {
	Name string
	Type TypeSignature
}

// FunctionType describes how a callable checks its arguments.
type FunctionType interface {
	String() string
	isFunctionType()
}

// FixedFunction takes exactly len(Args) arguments. Every user-defined
// function is a FixedFunction.
type FixedFunction struct {
	Args    []FunctionArg
	Returns TypeSignature
}

// VariadicFunction takes at least MinArgs arguments, each admitted by Element.
type VariadicFunction struct {
	Element TypeSignature
	MinArgs int
	Returns TypeSignature
}

// UnionArgsFunction accepts arguments matching any of Allowed. Count is the
// exact arity unless Variadic is set, in which case it is the minimum.
type UnionArgsFunction struct {
	Allowed  []TypeSignature
	Count    int
	Variadic bool
	Returns  TypeSignature
}

// SpecialFunction is checked by a dedicated rule in the type checker.
type SpecialFunction struct {
	Name string
}

func (FixedFunction) isFunctionType()     {}
func (VariadicFunction) isFunctionType()  {}
func (UnionArgsFunction) isFunctionType() {}
func (SpecialFunction) isFunctionType()   {}

func (f FixedFunction) String() string {
	var b strings.Builder
	b.WriteString("(fn (")
	for i, arg := range f.Args {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "(%s %s)", arg.Name, typeString(arg.Type))
	}
	fmt.Fprintf(&b, ") %s)", typeString(f.Returns))
	return b.String()
}

func (f VariadicFunction) String() string {
	return fmt.Sprintf("(fn (%s ...) %s)", typeString(f.Element), typeString(f.Returns))
}

func (f UnionArgsFunction) String() string {
	names := make([]string, 0, len(f.Allowed))
	for _, t := range f.Allowed {
		names = append(names, typeString(t))
	}
	suffix := ""
	if f.Variadic {
		suffix = " ..."
	}
	return fmt.Sprintf("(fn ([%s]%s) %s)", strings.Join(names, " | "), suffix, typeString(f.Returns))
}

func (f SpecialFunction) String() string {
	return fmt.Sprintf("(special %s)", f.Name)
}

// CheckArgs applies the ordinary call rule to already inferred argument
// types and returns the call's result type.
func (f FixedFunction) CheckArgs(args []TypeSignature) (TypeSignature, error) {
	if len(args) != len(f.Args) {
		return nil, ArgumentCountMismatch(len(f.Args), len(args))
	}
	for i, param := range f.Args {
		if !Admits(param.Type, args[i]) {
			return nil, TypeMismatch(param.Type, args[i])
		}
	}
	return f.Returns, nil
}

func (f VariadicFunction) CheckArgs(args []TypeSignature) (TypeSignature, error) {
	if len(args) < f.MinArgs {
		return nil, ArgumentCountMismatch(f.MinArgs, len(args))
	}
	for _, arg := range args {
		if !Admits(f.Element, arg) {
			return nil, TypeMismatch(f.Element, arg)
		}
	}
	return f.Returns, nil
}

func (f UnionArgsFunction) CheckArgs(args []TypeSignature) (TypeSignature, error) {
	if f.Variadic {
		if len(args) < f.Count {
			return nil, ArgumentCountMismatch(f.Count, len(args))
		}
	} else if len(args) != f.Count {
		return nil, ArgumentCountMismatch(f.Count, len(args))
	}
	for _, arg := range args {
		if !f.accepts(arg) {
			return nil, UnionMismatch(f.Allowed, arg)
		}
	}
	return f.Returns, nil
}

func (f UnionArgsFunction) accepts(arg TypeSignature) bool {
	if IsNoType(arg) {
		return true
	}
	for _, allowed := range f.Allowed {
		// Buffers of any length are hashable, so a bare buffer entry matches
		// on shape alone.
		if _, isBuffer := allowed.(BufferType); isBuffer {
			if _, ok := arg.(BufferType); ok {
				return true
			}
			continue
		}
		if Admits(allowed, arg) {
			return true
		}
	}
	return false
}
