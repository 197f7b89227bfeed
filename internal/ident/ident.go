// Package ident holds the interned identifiers and structured
// type/method references used throughout the type system, before and
// after resolution.
package ident

import "strings"

// Name is an interned, structurally-comparable identifier for a type,
// method, or field. It is a thin string wrapper rather than a true
// intern table: equality is just Go string equality, which is already
// O(1)-comparable and GC-friendly enough for this VM's scale.
type Name string

// CoreAssembly is the sentinel assembly name holding every primitive type.
const CoreAssembly Name = "!"

// GenericMarker is the substring every generic type definition's name must
// contain (e.g. "Array`1"). A name without it cannot be instantiated.
const GenericMarker = "`"

// IsGeneric reports whether n names a generic type definition.
func (n Name) IsGeneric() bool {
	return strings.Contains(string(n), GenericMarker)
}

func (n Name) String() string { return string(n) }

// StaticCtor is the reserved method name for a type's static constructor.
const StaticCtor Name = ".sctor()"

// InstanceCtorPrefix is the prefix shared by every instance constructor
// name; the remainder is a comma-separated list of canonical argument
// type-reference forms, e.g. ".ctor([!]System.UInt64)".
const InstanceCtorPrefix = ".ctor("

// TypeRef is a sum describing how to name a type prior to resolution.
// Exactly one of the three forms is populated; Kind says which.
type TypeRef struct {
	Kind TypeRefKind

	// Single and WithGeneric.
	Assembly Name
	Type     Name

	// Generic only.
	Param Name

	// WithGeneric only. Ordered: iterate Order, look up Args.
	Order []Name
	Args  map[Name]TypeRef
}

type TypeRefKind uint8

const (
	RefSingle TypeRefKind = iota
	RefGeneric
	RefWithGeneric
)

// Single builds a TypeRef naming a concrete, non-generic type.
func Single(assembly, typ Name) TypeRef {
	return TypeRef{Kind: RefSingle, Assembly: assembly, Type: typ}
}

// GenericParam builds a TypeRef standing for an as-yet-unbound type
// parameter.
func GenericParam(param Name) TypeRef {
	return TypeRef{Kind: RefGeneric, Param: param}
}

// WithGeneric builds a TypeRef naming a generic instantiation. args must
// preserve the declaration order of the generic definition's type
// parameters; order carries that ordering since Go maps are unordered.
func WithGeneric(assembly, typ Name, order []Name, args map[Name]TypeRef) TypeRef {
	return TypeRef{Kind: RefWithGeneric, Assembly: assembly, Type: typ, Order: order, Args: args}
}

// String returns the canonical printed form used as a generic
// instantiation cache key and as the round-trip form consumed by
// AssemblyManager.GetType.
func (r TypeRef) String() string {
	switch r.Kind {
	case RefSingle:
		return "[" + string(r.Assembly) + "]" + string(r.Type)
	case RefGeneric:
		return "@" + string(r.Param)
	case RefWithGeneric:
		var b strings.Builder
		b.WriteByte('[')
		b.WriteString(string(r.Assembly))
		b.WriteByte(']')
		b.WriteString(string(r.Type))
		b.WriteByte('[')
		for i, name := range r.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('@')
			b.WriteString(string(name))
			b.WriteByte(':')
			b.WriteString(r.Args[name].String())
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "<invalid TypeRef>"
	}
}

// Base returns the RefSingle form naming the generic definition itself,
// dropping the argument list. Only meaningful for RefWithGeneric.
func (r TypeRef) Base() TypeRef {
	return Single(r.Assembly, r.Type)
}

// MethodRefKind distinguishes a plain method reference from a generic
// method instantiation.
type MethodRefKind uint8

const (
	MethodSingle MethodRefKind = iota
	MethodWithGeneric
)

// MethodRef names a method to look up on a method table, optionally with
// generic arguments to bind.
type MethodRef struct {
	Kind  MethodRefKind
	Name  Name
	Order []Name
	Args  map[Name]TypeRef
}

// SingleMethod builds a MethodRef naming a non-generic method.
func SingleMethod(name Name) MethodRef {
	return MethodRef{Kind: MethodSingle, Name: name}
}

// GenericMethod builds a MethodRef naming a generic method instantiation.
func GenericMethod(name Name, order []Name, args map[Name]TypeRef) MethodRef {
	return MethodRef{Kind: MethodWithGeneric, Name: name, Order: order, Args: args}
}

// String returns the canonical printed form of the method reference,
// matching the form Method.MakeGeneric assigns as the instantiated
// method's Name.
func (m MethodRef) String() string {
	if m.Kind == MethodSingle {
		return string(m.Name)
	}
	var b strings.Builder
	b.WriteString(string(m.Name))
	b.WriteByte('[')
	for i, name := range m.Order {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('@')
		b.WriteString(string(name))
		b.WriteByte(':')
		b.WriteString(m.Args[name].String())
	}
	b.WriteByte(']')
	return b.String()
}
