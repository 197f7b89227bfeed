package types

import (
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// MethodTable is a per-type method map with a parent link for
// inheritance. Owner is a weak back-reference (a TypeHandle, not a raw
// pointer cycle) to the Class/Struct/Interface this table belongs to.
type MethodTable struct {
	Methods    *omap.Map[ident.Name, *Method]
	Owner      TypeHandle
	Parent     *TypeHandle
	FieldCount int
}

func NewMethodTable(owner TypeHandle, parent *TypeHandle) *MethodTable {
	return &MethodTable{Methods: omap.New[ident.Name, *Method](), Owner: owner, Parent: parent}
}

// GetMethod implements spec.md §4.4's get_method: a Single reference
// checks this table then falls through to Parent; a WithGeneric
// reference is looked up on this table only (no inheritance search) and
// then instantiated via Method.MakeGeneric.
func (mt *MethodTable) GetMethod(ref ident.MethodRef, resolve func(ident.TypeRef) (TypeHandle, error)) (*Method, error) {
	switch ref.Kind {
	case ident.MethodSingle:
		return mt.getSingle(ref.Name)
	case ident.MethodWithGeneric:
		m, ok := mt.Methods.Get(ref.Name)
		if !ok {
			return nil, vmerr.New(vmerr.FailedGetMethod, ref.String(), nil)
		}
		args := make(map[ident.Name]TypeHandle, len(ref.Args))
		for name, tr := range ref.Args {
			h, err := resolve(tr)
			if err != nil {
				return nil, err
			}
			args[name] = h
		}
		return m.MakeGeneric(ref.Order, args)
	default:
		return nil, vmerr.New(vmerr.FailedGetMethod, ref.String(), nil)
	}
}

func (mt *MethodTable) getSingle(name ident.Name) (*Method, error) {
	if m, ok := mt.Methods.Get(name); ok {
		return m, nil
	}
	if mt.Parent != nil {
		if pmt := mt.Parent.MethodTableOf(); pmt != nil {
			return pmt.getSingle(name)
		}
	}
	return nil, vmerr.New(vmerr.FailedGetMethod, string(name), nil)
}
