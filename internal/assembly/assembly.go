// Package assembly implements the name -> assembly -> name -> type
// lookup chain, the deferred-reference resolution pass, and generic
// instantiation caching described in spec.md §4.2-4.3.
package assembly

import (
	"sync"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// Assembly is a named container of types. Its types map doubles as the
// generic instantiation cache (spec.md §4.3 step 2).
type Assembly struct {
	mu      sync.RWMutex
	name    ident.Name
	manager *Manager
	types   *omap.Map[ident.Name, types.TypeHandle]
}

func newAssembly(name ident.Name, mgr *Manager) *Assembly {
	return &Assembly{name: name, manager: mgr, types: omap.New[ident.Name, types.TypeHandle]()}
}

func (a *Assembly) AssemblyName() ident.Name { return a.name }

func (a *Assembly) LookupType(name ident.Name) (types.TypeHandle, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.types.Get(name)
}

func (a *Assembly) RegisterType(name ident.Name, h types.TypeHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types.Set(name, h)
}

// TypeNames returns every registered type name, in registration order,
// including generic instantiations cached after load.
func (a *Assembly) TypeNames() []ident.Name {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]ident.Name(nil), a.types.Keys()...)
}

// Manager owns every loaded Assembly. The distinguished core assembly
// (ident.CoreAssembly, "!") holds every primitive type.
type Manager struct {
	mu         sync.RWMutex
	assemblies map[ident.Name]*Assembly
}

func NewManager() *Manager {
	return &Manager{assemblies: make(map[ident.Name]*Assembly)}
}

// GetOrCreateAssembly returns the named assembly, creating an empty one
// on first use. The loader calls this once per AssemblyDescriptor.
func (m *Manager) GetOrCreateAssembly(name ident.Name) *Assembly {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assemblies[name]; ok {
		return a
	}
	a := newAssembly(name, m)
	m.assemblies[name] = a
	return a
}

// GetAssembly looks up an already-loaded assembly by name.
func (m *Manager) GetAssembly(name ident.Name) (*Assembly, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assemblies[name]
	if !ok {
		return nil, vmerr.New(vmerr.FailedGetAssembly, string(name), nil)
	}
	return a, nil
}

// Assemblies returns every loaded assembly. Order is unspecified (map
// iteration); callers that need determinism should sort by name.
func (m *Manager) Assemblies() []*Assembly {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Assembly, 0, len(m.assemblies))
	for _, a := range m.assemblies {
		out = append(out, a)
	}
	return out
}

// GetType is GetTypeScoped with no enclosing generic-variable scope —
// the entry point a caller with a fully concrete TypeRef in hand uses.
func (m *Manager) GetType(ref ident.TypeRef) (types.TypeHandle, error) {
	return m.GetTypeScoped(ref, noGenericScope)
}

func noGenericScope(ident.Name) (types.TypeHandle, bool) { return types.TypeHandle{}, false }
