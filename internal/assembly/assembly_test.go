package assembly_test

import (
	"testing"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
)

func coreArrayHandle(t *testing.T, mgr *assembly.Manager) types.TypeHandle {
	t.Helper()
	h, err := mgr.GetType(ident.CoreRef(ident.NameArray))
	if err != nil {
		t.Fatalf("GetType(Array`1): %v", err)
	}
	return h
}

func TestInstantiateCachesByCanonicalName(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	base := coreArrayHandle(t, mgr)
	stringHandle, err := mgr.GetType(ident.CoreRef(ident.NameString))
	if err != nil {
		t.Fatalf("GetType(String): %v", err)
	}

	order := []ident.Name{ident.ArrayTypeVar}
	args := map[ident.Name]types.TypeHandle{ident.ArrayTypeVar: stringHandle}

	first, err := mgr.Instantiate(base, order, args)
	if err != nil {
		t.Fatalf("Instantiate #1: %v", err)
	}
	second, err := mgr.Instantiate(base, order, args)
	if err != nil {
		t.Fatalf("Instantiate #2: %v", err)
	}

	if first.Class() != second.Class() {
		t.Fatal("two instantiations with identical args produced distinct Class records, want the cached one reused")
	}

	argRefs := map[ident.Name]ident.TypeRef{ident.ArrayTypeVar: stringHandle.StringReference()}
	viaGetType, err := mgr.GetType(ident.WithGeneric(ident.CoreAssembly, ident.NameArray, order, argRefs))
	if err != nil {
		t.Fatalf("GetType(WithGeneric): %v", err)
	}
	if viaGetType.Class() != first.Class() {
		t.Fatal("GetType on the equivalent WithGeneric ref bypassed the instantiation cache")
	}
}

func TestInstantiateRejectsNonGenericBase(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}
	boolHandle, err := mgr.GetType(ident.CoreRef(ident.NameBoolean))
	if err != nil {
		t.Fatalf("GetType(Boolean): %v", err)
	}
	if _, err := mgr.Instantiate(boolHandle, nil, nil); err == nil {
		t.Fatal("Instantiate over a non-generic base: want error, got nil")
	}
}

func TestGetTypeUnknownAssemblyFails(t *testing.T) {
	mgr := assembly.NewManager()
	if _, err := mgr.GetType(ident.Single("NoSuchAssembly", "Whatever")); err == nil {
		t.Fatal("GetType in an unloaded assembly: want error, got nil")
	}
}
