package assembly

import (
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// Instantiate implements spec.md §4.3: compute the canonical printed
// name of the instantiation, return the cached handle if the owning
// assembly already produced it, otherwise clone the generic definition
// (substituting every TypeVar::Canon occurrence of a named parameter
// with TypeVar::Type(arg)) and register the clone in that cache.
//
// Every provided argument is additionally checked against the
// corresponding parameter's constraints (spec.md §9's resolved open
// question); a violation is reported as DynamicCheckingFailed.
func (m *Manager) Instantiate(base types.TypeHandle, order []ident.Name, args map[ident.Name]types.TypeHandle) (types.TypeHandle, error) {
	generalName := base.Name()
	if !generalName.IsGeneric() {
		return types.TypeHandle{}, vmerr.New(vmerr.NonGenericType, string(generalName), nil)
	}
	asm := base.AssemblyOf()
	canonical := ident.Name(instantiationRefString(asm.AssemblyName(), generalName, order, args))

	if existing, ok := asm.LookupType(canonical); ok {
		return existing, nil
	}

	if err := checkConstraints(base, order, args); err != nil {
		return types.TypeHandle{}, err
	}

	var out types.TypeHandle
	switch base.Kind {
	case types.HandleClass:
		out = types.ClassHandle(cloneClass(base.Class(), canonical, order, args))
	case types.HandleStruct:
		out = types.StructHandle(cloneStruct(base.Struct(), canonical, order, args))
	case types.HandleInterface:
		out = types.InterfaceHandle(cloneInterface(base.Interface(), canonical, order, args))
	default:
		return types.TypeHandle{}, vmerr.New(vmerr.NonGenericType, string(generalName), nil)
	}
	asm.RegisterType(canonical, out)
	return out, nil
}

func instantiationRefString(assembly, general ident.Name, order []ident.Name, args map[ident.Name]types.TypeHandle) string {
	argRefs := make(map[ident.Name]ident.TypeRef, len(args))
	for name, h := range args {
		argRefs[name] = h.StringReference()
	}
	return ident.WithGeneric(assembly, general, order, argRefs).String()
}

func checkConstraints(base types.TypeHandle, order []ident.Name, args map[ident.Name]types.TypeHandle) error {
	vars := genericTypeVars(base)
	if vars == nil {
		return nil
	}
	for _, name := range order {
		tv, ok := vars.Get(name)
		if !ok {
			continue
		}
		arg := args[name]
		if !tv.SatisfiedBy(arg) {
			return vmerr.New(vmerr.DynamicCheckingFailed, string(name)+": "+arg.String(), nil)
		}
	}
	return nil
}

func genericTypeVars(h types.TypeHandle) *types.TypeVarMap {
	switch h.Kind {
	case types.HandleClass:
		return h.Class().TypeVars
	case types.HandleStruct:
		return h.Struct().TypeVars
	case types.HandleInterface:
		return h.Interface().TypeVars
	default:
		return nil
	}
}

func boundTypeVars(order []ident.Name, args map[ident.Name]types.TypeHandle) *types.TypeVarMap {
	out := omap.New[ident.Name, types.TypeVar]()
	for _, name := range order {
		out.Set(name, types.BoundTypeVar(args[name]))
	}
	return out
}

func cloneMethodTable(mt *types.MethodTable, newOwner types.TypeHandle) *types.MethodTable {
	clone := types.NewMethodTable(newOwner, mt.Parent)
	clone.FieldCount = mt.FieldCount
	for _, name := range mt.Methods.Keys() {
		meth, _ := mt.Methods.Get(name)
		methClone := *meth
		methClone.OwningMT = clone
		clone.Methods.Set(name, &methClone)
	}
	return clone
}

func cloneClass(c *types.Class, canonical ident.Name, order []ident.Name, args map[ident.Name]types.TypeHandle) *types.Class {
	clone := &types.Class{
		Assembly:    c.Assembly,
		Attributes:  c.Attributes,
		Name:        canonical,
		GeneralName: c.GeneralName,
		Fields:      c.Fields.Clone(),
		TypeVars:    boundTypeVars(order, args),
	}
	clone.MT = cloneMethodTable(c.MT, types.ClassHandle(clone))
	return clone
}

func cloneStruct(s *types.Struct, canonical ident.Name, order []ident.Name, args map[ident.Name]types.TypeHandle) *types.Struct {
	clone := &types.Struct{
		Assembly:    s.Assembly,
		Attributes:  s.Attributes,
		Name:        canonical,
		GeneralName: s.GeneralName,
		Fields:      s.Fields.Clone(),
		TypeVars:    boundTypeVars(order, args),
	}
	clone.MT = cloneMethodTable(s.MT, types.StructHandle(clone))
	return clone
}

func cloneInterface(i *types.Interface, canonical ident.Name, order []ident.Name, args map[ident.Name]types.TypeHandle) *types.Interface {
	clone := &types.Interface{
		Assembly:    i.Assembly,
		Name:        canonical,
		GeneralName: i.GeneralName,
		TypeVars:    boundTypeVars(order, args),
	}
	clone.MT = cloneMethodTable(i.MT, types.InterfaceHandle(clone))
	return clone
}
