package staticinit_test

import (
	"testing"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/staticinit"
	"github.com/vanta-vm/vanta/internal/statics"
	"github.com/vanta-vm/vanta/internal/types"
)

const statAsm ident.Name = "StatAsm"

func buildCounterAssembly(t *testing.T) *assembly.Manager {
	t.Helper()
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	fields := omap.New[ident.Name, loader.FieldDef]()
	fields.Set("n", loader.FieldDef{Name: "n", Type: ident.CoreRef(ident.NameUInt64)})

	methods := omap.New[ident.Name, loader.MethodDef]()
	methods.Set(ident.StaticCtor, loader.MethodDef{
		Name:       ident.StaticCtor,
		Attrs:      types.MethodAttributes{RegisterCount: 1},
		ReturnType: ident.CoreRef(ident.NameVoid),
		Instructions: []isa.Instruction{
			isa.LoadU64(0, 5),
			isa.SetField(0, "n"),
		},
	})

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Counter", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Counter",
		Methods: methods,
		Fields:  fields,
	})

	desc := loader.AssemblyDescriptor{Name: statAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}
	return mgr
}

func TestLoadStaticsInvokesStaticConstructor(t *testing.T) {
	mgr := buildCounterAssembly(t)
	hp := heap.New()
	st := statics.New()

	if err := staticinit.LoadStatics(mgr, hp, st, false, nil); err != nil {
		t.Fatalf("LoadStatics: %v", err)
	}

	handle, err := mgr.GetType(ident.Single(statAsm, "Counter"))
	if err != nil {
		t.Fatalf("GetType(Counter): %v", err)
	}
	v, err := st.GetField(handle.StringReference().String(), "n")
	if err != nil {
		t.Fatalf("GetField(n): %v", err)
	}
	if got := v.UInt(); got != 5 {
		t.Fatalf("Counter.n = %d, want 5", got)
	}
}

func TestLoadStaticsWithoutStaticCtorRejectsUndeclaredField(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Plain", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Plain",
		Methods: omap.New[ident.Name, loader.MethodDef](),
		Fields:  omap.New[ident.Name, loader.FieldDef](),
	})
	desc := loader.AssemblyDescriptor{Name: statAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	hp := heap.New()
	st := statics.New()
	if err := staticinit.LoadStatics(mgr, hp, st, false, nil); err != nil {
		t.Fatalf("LoadStatics: %v", err)
	}

	handle, err := mgr.GetType(ident.Single(statAsm, "Plain"))
	if err != nil {
		t.Fatalf("GetType(Plain): %v", err)
	}
	if _, err := st.GetField(handle.StringReference().String(), "anything"); err == nil {
		t.Fatal("GetField on a type with no declared field: want error, got nil")
	}
}
