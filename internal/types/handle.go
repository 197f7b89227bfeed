// Package types implements the VM's type system and runtime value model:
// type handles, classes/structs/interfaces, method tables, and the tagged
// Value/Object/Array representation the instruction set operates on.
//
// These are kept in one package — mirroring internal/gocore's choice to
// keep Type, Object, and Root in a single package, rather than the
// spec's component table, because they are mutually recursive: a Class
// holds a MethodTable whose methods mention the Class's own TypeHandle,
// and an Object's runtime shape is entirely determined by its Class.
package types

import "github.com/vanta-vm/vanta/internal/ident"

// AssemblyRef is the narrow view of an owning Assembly a Class/Struct/
// Interface needs: its own name (for building a fully-qualified TypeRef)
// and the type lookup/registration used by generic instantiation. Kept
// as an interface here, implemented by assembly.Assembly, so that
// package types never imports package assembly (which itself imports
// types for Class/Struct/Interface/TypeHandle).
type AssemblyRef interface {
	AssemblyName() ident.Name
	LookupType(name ident.Name) (TypeHandle, bool)
	RegisterType(name ident.Name, h TypeHandle)
}

// HandleKind tags the variant held by a TypeHandle.
type HandleKind uint8

const (
	HandleUnloaded HandleKind = iota
	HandleClass
	HandleStruct
	HandleInterface
	HandleGeneric
)

func (k HandleKind) String() string {
	switch k {
	case HandleUnloaded:
		return "Unloaded"
	case HandleClass:
		return "Class"
	case HandleStruct:
		return "Struct"
	case HandleInterface:
		return "Interface"
	case HandleGeneric:
		return "Generic"
	default:
		return "?"
	}
}

// TypeHandle is a resolved (or not-yet-resolved) reference to a type
// record. Two handles are Equal when their Kind and Name agree — spec.md
// §4.3 calls this "equality by name", since generic instantiations share
// a general_name but differ in their fully-qualified name.
type TypeHandle struct {
	Kind HandleKind

	class     *Class
	strct     *Struct
	iface     *Interface
	generic   ident.Name
	unresolved ident.TypeRef
}

func UnloadedHandle(ref ident.TypeRef) TypeHandle {
	return TypeHandle{Kind: HandleUnloaded, unresolved: ref}
}

func GenericHandle(param ident.Name) TypeHandle {
	return TypeHandle{Kind: HandleGeneric, generic: param}
}

func ClassHandle(c *Class) TypeHandle   { return TypeHandle{Kind: HandleClass, class: c} }
func StructHandle(s *Struct) TypeHandle { return TypeHandle{Kind: HandleStruct, strct: s} }
func InterfaceHandle(i *Interface) TypeHandle { return TypeHandle{Kind: HandleInterface, iface: i} }

func (h TypeHandle) Resolved() bool { return h.Kind != HandleUnloaded }

func (h TypeHandle) Class() *Class         { return h.class }
func (h TypeHandle) Struct() *Struct       { return h.strct }
func (h TypeHandle) Interface() *Interface { return h.iface }
func (h TypeHandle) GenericParam() ident.Name { return h.generic }
func (h TypeHandle) Unresolved() ident.TypeRef { return h.unresolved }

// Name returns the handle's identifying name: the class/struct/
// interface's fully-qualified name, the generic parameter's name, or the
// unresolved TypeRef's printed form.
func (h TypeHandle) Name() ident.Name {
	switch h.Kind {
	case HandleClass:
		return h.class.Name
	case HandleStruct:
		return h.strct.Name
	case HandleInterface:
		return h.iface.Name
	case HandleGeneric:
		return h.generic
	default:
		return ident.Name(h.unresolved.String())
	}
}

// Equal implements equality-by-name across resolved and unresolved
// handles alike.
func (h TypeHandle) Equal(o TypeHandle) bool {
	return h.Kind == o.Kind && h.Name() == o.Name()
}

func (h TypeHandle) String() string { return string(h.Name()) }

// MethodTableOf returns the handle's method table, or nil for Generic/
// Unloaded handles (which have none).
func (h TypeHandle) MethodTableOf() *MethodTable {
	switch h.Kind {
	case HandleClass:
		return h.class.MT
	case HandleStruct:
		return h.strct.MT
	case HandleInterface:
		return h.iface.MT
	default:
		return nil
	}
}

// AssemblyOf returns the handle's owning assembly, or nil for Generic/
// Unloaded handles.
func (h TypeHandle) AssemblyOf() AssemblyRef {
	switch h.Kind {
	case HandleClass:
		return h.class.Assembly
	case HandleStruct:
		return h.strct.Assembly
	case HandleInterface:
		return h.iface.Assembly
	default:
		return nil
	}
}

// StringReference returns the canonical TypeRef a resolved handle's own
// name round-trips through: manager.GetType(h.StringReference()) must
// yield h again (spec.md §8, round-trip law).
func (h TypeHandle) StringReference() ident.TypeRef {
	if h.Kind == HandleUnloaded {
		return h.unresolved
	}
	if h.Kind == HandleGeneric {
		return ident.GenericParam(h.generic)
	}
	asm := h.AssemblyOf()
	general := h.generalName()
	if !general.IsGeneric() || general == h.Name() {
		// Non-generic, or a still-uninstantiated generic definition.
		return ident.Single(asm.AssemblyName(), h.Name())
	}
	return instantiationTypeRef(asm.AssemblyName(), general, h.typeVars())
}

func (h TypeHandle) generalName() ident.Name {
	switch h.Kind {
	case HandleClass:
		return h.class.GeneralName
	case HandleStruct:
		return h.strct.GeneralName
	case HandleInterface:
		return h.iface.GeneralName
	default:
		return h.Name()
	}
}

func (h TypeHandle) typeVars() *TypeVarMap {
	switch h.Kind {
	case HandleClass:
		return h.class.TypeVars
	case HandleStruct:
		return h.strct.TypeVars
	case HandleInterface:
		return h.iface.TypeVars
	default:
		return nil
	}
}

func instantiationTypeRef(assembly, general ident.Name, vars *TypeVarMap) ident.TypeRef {
	if vars == nil || vars.Len() == 0 {
		return ident.Single(assembly, general)
	}
	order := vars.Keys()
	args := make(map[ident.Name]ident.TypeRef, len(order))
	for _, name := range order {
		tv, _ := vars.Get(name)
		if tv.Kind == TypeVarBound {
			args[name] = tv.Bound.StringReference()
		} else {
			args[name] = ident.GenericParam(name)
		}
	}
	return ident.WithGeneric(assembly, general, order, args)
}
