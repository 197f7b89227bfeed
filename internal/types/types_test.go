package types_test

import (
	"testing"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
)

func TestValueKindsRoundTrip(t *testing.T) {
	if !types.True().Bool() {
		t.Fatal("True().Bool() = false")
	}
	if types.False().Bool() {
		t.Fatal("False().Bool() = true")
	}
	if got := types.UInt64(1234).UInt(); got != 1234 {
		t.Fatalf("UInt64(1234).UInt() = %d", got)
	}
	if got := types.Int32(-7).Int(); got != -7 {
		t.Fatalf("Int32(-7).Int() = %d", got)
	}
	if !types.Void().IsVoid() {
		t.Fatal("Void().IsVoid() = false")
	}
}

func TestBoolHelperPicksVariant(t *testing.T) {
	if types.Bool(true).Kind() != types.KindTrue {
		t.Fatalf("Bool(true).Kind() = %v, want KindTrue", types.Bool(true).Kind())
	}
	if types.Bool(false).Kind() != types.KindFalse {
		t.Fatalf("Bool(false).Kind() = %v, want KindFalse", types.Bool(false).Kind())
	}
}

// newLeafClass builds a parentless class with the given own field names,
// each typed as an unresolved reference (never resolved in these tests,
// since field layout ordering doesn't require a concrete type).
func newLeafClass(name ident.Name, ownFields ...ident.Name) *types.Class {
	fm := omap.New[ident.Name, types.ClassField]()
	for _, f := range ownFields {
		fm.Set(f, types.ClassField{Name: f, Type: types.UnloadedHandle(ident.CoreRef(ident.NameUInt64))})
	}
	c := &types.Class{Name: name, GeneralName: name, Fields: fm}
	c.MT = types.NewMethodTable(types.ClassHandle(c), nil)
	return c
}

func TestInstanceFieldLayoutOrdersParentFirst(t *testing.T) {
	base := newLeafClass("Base", "a", "b")
	baseHandle := types.ClassHandle(base)

	derivedFields := omap.New[ident.Name, types.ClassField]()
	derivedFields.Set("c", types.ClassField{Name: "c", Type: types.UnloadedHandle(ident.CoreRef(ident.NameUInt64))})
	derived := &types.Class{Name: "Derived", GeneralName: "Derived", Fields: derivedFields}
	derived.MT = types.NewMethodTable(types.ClassHandle(derived), &baseHandle)

	layout := types.InstanceFieldLayout(derived)
	want := []ident.Name{"a", "b", "c"}
	if len(layout) != len(want) {
		t.Fatalf("layout = %v, want %v", layout, want)
	}
	for i, n := range want {
		if layout[i] != n {
			t.Fatalf("layout[%d] = %s, want %s", i, layout[i], n)
		}
	}
}

func TestNewObjectInitializesDeclaredFieldsToVoid(t *testing.T) {
	base := newLeafClass("Base", "x")
	obj := types.NewObject(base.MT)
	v, ok := obj.Fields.Get("x")
	if !ok {
		t.Fatal("NewObject did not lay out declared field \"x\"")
	}
	if !v.IsVoid() {
		t.Fatalf("field x = %v, want Void", v)
	}
}

func TestStructObjectCloneIsIndependent(t *testing.T) {
	base := newLeafClass("Point", "x", "y")
	s := types.NewStructObject(base.MT)
	s.Fields.Set("x", types.UInt64(1))

	clone := s.Clone()
	clone.Fields.Set("x", types.UInt64(2))

	orig, _ := s.Fields.Get("x")
	if orig.UInt() != 1 {
		t.Fatalf("mutating clone changed original: x = %d, want 1", orig.UInt())
	}
}
