package loader_test

import (
	"testing"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
)

const shapesAsm ident.Name = "Shapes"

func TestLoadResolvesParentReferenceAndFieldLayout(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}

	baseFields := omap.New[ident.Name, loader.FieldDef]()
	baseFields.Set("id", loader.FieldDef{Name: "id", Type: ident.CoreRef(ident.NameUInt64)})

	typeDefs := omap.New[ident.Name, loader.TypeDef]()
	typeDefs.Set("Shape", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Shape",
		Parent:  nil,
		Methods: omap.New[ident.Name, loader.MethodDef](),
		Fields:  baseFields,
	})

	derivedFields := omap.New[ident.Name, loader.FieldDef]()
	derivedFields.Set("radius", loader.FieldDef{Name: "radius", Type: ident.CoreRef(ident.NameUInt64)})
	parentRef := ident.Single(shapesAsm, "Shape")
	typeDefs.Set("Circle", loader.TypeDef{
		Kind:    loader.DefClass,
		Name:    "Circle",
		Parent:  &parentRef,
		Methods: omap.New[ident.Name, loader.MethodDef](),
		Fields:  derivedFields,
	})

	desc := loader.AssemblyDescriptor{Name: shapesAsm, TypeDefs: typeDefs}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc}); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}

	circle, err := mgr.GetType(ident.Single(shapesAsm, "Circle"))
	if err != nil {
		t.Fatalf("GetType(Circle): %v", err)
	}
	if circle.MethodTableOf().Parent == nil {
		t.Fatal("Circle's method table has no resolved parent link")
	}
	if !circle.MethodTableOf().Parent.Resolved() {
		t.Fatal("Circle's parent TypeHandle was left Unloaded after ResolveAll")
	}

	layout := types.InstanceFieldLayout(circle.Class())
	want := []ident.Name{"id", "radius"}
	if len(layout) != len(want) {
		t.Fatalf("layout = %v, want %v", layout, want)
	}
	for i, n := range want {
		if layout[i] != n {
			t.Fatalf("layout[%d] = %s, want %s", i, layout[i], n)
		}
	}
}

func TestLoadRejectsDuplicateAssemblyName(t *testing.T) {
	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		t.Fatalf("corelib.Build: %v", err)
	}
	desc := loader.AssemblyDescriptor{Name: shapesAsm, TypeDefs: omap.New[ident.Name, loader.TypeDef]()}
	if err := loader.Load(mgr, []loader.AssemblyDescriptor{desc, desc}); err == nil {
		t.Fatal("Load with a repeated assembly name: want error, got nil")
	}
}
