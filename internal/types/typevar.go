package types

import (
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
)

// TypeVarMap is the ordered Name -> TypeVar mapping carried by every
// generic class, struct, interface, and method.
type TypeVarMap = omap.Map[ident.Name, TypeVar]

// TypeVarKind tags the variant held by a TypeVar.
type TypeVarKind uint8

const (
	// TypeVarBound means the parameter has been substituted with a
	// concrete handle (produced by generic instantiation).
	TypeVarBound TypeVarKind = iota
	// TypeVarCanon means the parameter is still unbound and carries its
	// declared constraints.
	TypeVarCanon
)

// TypeVar is a single generic type parameter: either bound to a concrete
// TypeHandle, or canonical (unbound) and carrying the constraints it must
// eventually satisfy.
type TypeVar struct {
	Kind TypeVarKind

	// Valid when Kind == TypeVarBound.
	Bound TypeHandle

	// Valid when Kind == TypeVarCanon.
	ImplementedInterfaces []TypeHandle
	Parent                *TypeHandle
}

func BoundTypeVar(h TypeHandle) TypeVar {
	return TypeVar{Kind: TypeVarBound, Bound: h}
}

func CanonTypeVar(parent *TypeHandle, ifaces []TypeHandle) TypeVar {
	return TypeVar{Kind: TypeVarCanon, Parent: parent, ImplementedInterfaces: ifaces}
}

// SatisfiedBy reports whether arg, a concrete handle proposed as this
// parameter's binding, honors the Canon constraints.
//
// This resolves spec.md §9's open question ("the implementation should
// additionally verify that every provided argument satisfies the
// original constraints") in the affirmative — see DESIGN.md. The check is
// necessarily partial: spec.md's external TypeDef (§6) carries no
// "implements" declaration for classes/structs, only a single parent
// link, so an interface constraint can only be checked against arg's own
// identity rather than a full implements-set; the parent constraint,
// which the data model does support, is checked by walking the method
// table's Parent chain to a fixed point.
func (tv TypeVar) SatisfiedBy(arg TypeHandle) bool {
	if tv.Kind != TypeVarCanon {
		return true
	}
	if tv.Parent != nil && !descendsFromOrEquals(arg, *tv.Parent) {
		return false
	}
	for _, want := range tv.ImplementedInterfaces {
		if !arg.Equal(want) {
			return false
		}
	}
	return true
}

func descendsFromOrEquals(h, ancestor TypeHandle) bool {
	for cur := h; ; {
		if cur.Equal(ancestor) {
			return true
		}
		mt := cur.MethodTableOf()
		if mt == nil || mt.Parent == nil {
			return false
		}
		cur = *mt.Parent
	}
}
