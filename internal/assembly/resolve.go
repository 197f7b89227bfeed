package assembly

import (
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// GenericScope looks up a bound handle for an unbound generic parameter
// name, e.g. the type variables in scope for the method currently
// executing. Returns ok=false if the name isn't bound in this scope.
type GenericScope func(ident.Name) (types.TypeHandle, bool)

// GetTypeScoped implements spec.md §4.2's resolver lookup rule:
//
//   - Single{a,t}      -> find assembly a, look up t in its types map.
//   - Generic(g)       -> consult scope; fail if absent.
//   - WithGeneric{...} -> resolve the base Single (must be generic),
//     recursively resolve each arg, then instantiate.
func (m *Manager) GetTypeScoped(ref ident.TypeRef, scope GenericScope) (types.TypeHandle, error) {
	switch ref.Kind {
	case ident.RefSingle:
		asm, err := m.GetAssembly(ref.Assembly)
		if err != nil {
			return types.TypeHandle{}, err
		}
		h, ok := asm.LookupType(ref.Type)
		if !ok {
			return types.TypeHandle{}, vmerr.New(vmerr.FailedGetType, ref.String(), nil)
		}
		return h, nil

	case ident.RefGeneric:
		h, ok := scope(ref.Param)
		if !ok {
			return types.TypeHandle{}, vmerr.New(vmerr.FailedGetType, ref.String(), nil)
		}
		return h, nil

	case ident.RefWithGeneric:
		base, err := m.GetTypeScoped(ref.Base(), scope)
		if err != nil {
			return types.TypeHandle{}, err
		}
		if !ref.Type.IsGeneric() {
			return types.TypeHandle{}, vmerr.New(vmerr.NonGenericType, string(ref.Type), nil)
		}
		args := make(map[ident.Name]types.TypeHandle, len(ref.Order))
		for _, name := range ref.Order {
			argRef := ref.Args[name]
			argHandle, err := m.GetTypeScoped(argRef, scope)
			if err != nil {
				return types.TypeHandle{}, err
			}
			args[name] = argHandle
		}
		return m.Instantiate(base, ref.Order, args)

	default:
		return types.TypeHandle{}, vmerr.New(vmerr.FailedGetType, ref.String(), nil)
	}
}

// ResolveAll is the post-load resolution pass (spec.md §4.2): it walks
// every type in every assembly and rewrites every Unloaded handle
// reachable through method tables and generic type-variable bindings into
// a resolved handle. A resolution failure partway through leaves earlier
// rewrites in place (spec.md §9's documented partial-publication
// behavior) — it is the caller's responsibility to discard a Manager that
// failed to fully resolve.
func (m *Manager) ResolveAll() error {
	for _, asm := range m.Assemblies() {
		for _, name := range asm.TypeNames() {
			h, _ := asm.LookupType(name)
			if err := m.resolveHandle(h); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) resolveHandle(h types.TypeHandle) error {
	switch h.Kind {
	case types.HandleClass:
		return m.resolveClass(h.Class())
	case types.HandleStruct:
		return m.resolveStruct(h.Struct())
	case types.HandleInterface:
		return m.resolveInterface(h.Interface())
	default:
		return nil
	}
}

func (m *Manager) resolveClass(c *types.Class) error {
	scope := typeVarScope(c.TypeVars)
	if err := m.resolveTypeVars(c.TypeVars, scope); err != nil {
		return err
	}
	if err := m.resolveMethodTable(c.MT, scope); err != nil {
		return err
	}
	if c.Fields != nil {
		for _, name := range c.Fields.Keys() {
			f, _ := c.Fields.Get(name)
			resolved, err := m.resolveMaybeUnloaded(f.Type, scope)
			if err != nil {
				return err
			}
			f.Type = resolved
			c.Fields.Set(name, f)
		}
	}
	return nil
}

func (m *Manager) resolveStruct(s *types.Struct) error {
	scope := typeVarScope(s.TypeVars)
	if err := m.resolveTypeVars(s.TypeVars, scope); err != nil {
		return err
	}
	if err := m.resolveMethodTable(s.MT, scope); err != nil {
		return err
	}
	if s.Fields != nil {
		for _, name := range s.Fields.Keys() {
			f, _ := s.Fields.Get(name)
			resolved, err := m.resolveMaybeUnloaded(f.Type, scope)
			if err != nil {
				return err
			}
			f.Type = resolved
			s.Fields.Set(name, f)
		}
	}
	return nil
}

func (m *Manager) resolveInterface(i *types.Interface) error {
	scope := typeVarScope(i.TypeVars)
	if err := m.resolveTypeVars(i.TypeVars, scope); err != nil {
		return err
	}
	return m.resolveMethodTable(i.MT, scope)
}

func (m *Manager) resolveTypeVars(vars *types.TypeVarMap, scope GenericScope) error {
	if vars == nil {
		return nil
	}
	for _, name := range vars.Keys() {
		tv, _ := vars.Get(name)
		if tv.Kind != types.TypeVarCanon {
			continue
		}
		if tv.Parent != nil {
			resolved, err := m.resolveMaybeUnloaded(*tv.Parent, scope)
			if err != nil {
				return err
			}
			tv.Parent = &resolved
		}
		for i, iface := range tv.ImplementedInterfaces {
			resolved, err := m.resolveMaybeUnloaded(iface, scope)
			if err != nil {
				return err
			}
			tv.ImplementedInterfaces[i] = resolved
		}
		vars.Set(name, tv)
	}
	return nil
}

func (m *Manager) resolveMethodTable(mt *types.MethodTable, scope GenericScope) error {
	if mt == nil {
		return nil
	}
	if mt.Parent != nil {
		resolved, err := m.resolveMaybeUnloaded(*mt.Parent, scope)
		if err != nil {
			return err
		}
		mt.Parent = &resolved
	}
	for _, name := range mt.Methods.Keys() {
		meth, _ := mt.Methods.Get(name)
		if err := m.resolveMethod(meth, scope); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) resolveMethod(meth *types.Method, scope GenericScope) error {
	methodScope := combineScopes(typeVarScope(meth.TypeVars), scope)
	if err := m.resolveTypeVars(meth.TypeVars, methodScope); err != nil {
		return err
	}
	resolvedRet, err := m.resolveMaybeUnloaded(meth.ReturnType, methodScope)
	if err != nil {
		return err
	}
	meth.ReturnType = resolvedRet
	for i, at := range meth.ArgTypes {
		resolved, err := m.resolveMaybeUnloaded(at, methodScope)
		if err != nil {
			return err
		}
		meth.ArgTypes[i] = resolved
	}
	return nil
}

// resolveMaybeUnloaded resolves h if it is Unloaded; any already-resolved
// handle (including Generic) passes through unchanged.
func (m *Manager) resolveMaybeUnloaded(h types.TypeHandle, scope GenericScope) (types.TypeHandle, error) {
	if h.Resolved() {
		return h, nil
	}
	return m.GetTypeScoped(h.Unresolved(), scope)
}

func typeVarScope(vars *types.TypeVarMap) GenericScope {
	return func(name ident.Name) (types.TypeHandle, bool) {
		if vars == nil {
			return types.TypeHandle{}, false
		}
		tv, ok := vars.Get(name)
		if !ok || tv.Kind != types.TypeVarBound {
			return types.TypeHandle{}, false
		}
		return tv.Bound, true
	}
}

func combineScopes(first, second GenericScope) GenericScope {
	return func(name ident.Name) (types.TypeHandle, bool) {
		if h, ok := first(name); ok {
			return h, true
		}
		return second(name)
	}
}

// SolveTypeRef implements spec.md §4.4's solve_type_ref: a Generic(g)
// reference first checks the running method's own type_vars, then its
// owning type's type_vars; any other reference delegates to the manager,
// with both scopes forwarded as the generic lookup.
func (m *Manager) SolveTypeRef(ref ident.TypeRef, method *types.Method) (types.TypeHandle, error) {
	scope := combineScopes(typeVarScope(method.TypeVars), typeVarScope(ownerTypeVars(method.OwningMT)))
	return m.GetTypeScoped(ref, scope)
}

func ownerTypeVars(mt *types.MethodTable) *types.TypeVarMap {
	if mt == nil {
		return nil
	}
	switch mt.Owner.Kind {
	case types.HandleClass:
		return mt.Owner.Class().TypeVars
	case types.HandleStruct:
		return mt.Owner.Struct().TypeVars
	case types.HandleInterface:
		return mt.Owner.Interface().TypeVars
	default:
		return nil
	}
}
