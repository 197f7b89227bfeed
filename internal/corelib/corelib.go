// Package corelib builds the core assembly (spec.md §6's sentinel "!")
// programmatically: every primitive type and its native method bindings,
// since native entries have no representation in the loader's external
// AssemblyDescriptor format (spec.md §4.8 expansion).
package corelib

import (
	"strings"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
)

// Build constructs every core type and registers it into mgr's core
// assembly. Call once per Manager, before Load and ResolveAll run over
// any user assemblies that reference core types.
func Build(mgr *assembly.Manager) error {
	asm := mgr.GetOrCreateAssembly(ident.CoreAssembly)

	object := newClass(asm, ident.NameObject, nil)
	addNative(object.MT, "ToString", false, nil, strHandle(), toStringNative)
	addNative(object.MT, "Equals", false, []types.TypeHandle{types.ClassHandle(object)}, boolHandle(), equalsNative)
	addNative(object.MT, "GetHashCode", false, nil, uint64Handle(), hashCodeNative)
	objectHandle := types.ClassHandle(object)
	asm.RegisterType(ident.NameObject, objectHandle)

	valueType := newClass(asm, ident.NameValueType, &objectHandle)
	valueTypeHandle := types.ClassHandle(valueType)
	asm.RegisterType(ident.NameValueType, valueTypeHandle)

	voidType := newClass(asm, ident.NameVoid, &objectHandle)
	asm.RegisterType(ident.NameVoid, types.ClassHandle(voidType))

	boolean := newStruct(asm, ident.NameBoolean, &valueTypeHandle)
	asm.RegisterType(ident.NameBoolean, types.StructHandle(boolean))

	enum := newClass(asm, ident.NameEnum, &valueTypeHandle)
	asm.RegisterType(ident.NameEnum, types.ClassHandle(enum))

	if err := buildNumerics(asm, valueTypeHandle); err != nil {
		return err
	}
	if err := buildString(asm, objectHandle); err != nil {
		return err
	}
	if err := buildArray(asm, objectHandle); err != nil {
		return err
	}
	if err := buildConsole(asm, objectHandle); err != nil {
		return err
	}
	return nil
}

func newClass(asm *assembly.Assembly, name ident.Name, parent *types.TypeHandle) *types.Class {
	c := &types.Class{
		Assembly:    asm,
		Attributes:  types.ClassAttributes{Visibility: types.Public},
		Name:        name,
		GeneralName: name,
		Fields:      omap.New[ident.Name, types.ClassField](),
		TypeVars:    omap.New[ident.Name, types.TypeVar](),
	}
	c.MT = types.NewMethodTable(types.ClassHandle(c), parent)
	return c
}

func newStruct(asm *assembly.Assembly, name ident.Name, parent *types.TypeHandle) *types.Struct {
	s := &types.Struct{
		Assembly:    asm,
		Attributes:  types.ClassAttributes{Visibility: types.Public},
		Name:        name,
		GeneralName: name,
		Fields:      omap.New[ident.Name, types.ClassField](),
		TypeVars:    omap.New[ident.Name, types.TypeVar](),
	}
	s.MT = types.NewMethodTable(types.StructHandle(s), parent)
	return s
}

// signatureName builds the argument-type-encoded method name convention
// spec.md §6 uses for constructors and demonstrates for ordinary methods
// (e.g. "__op_Index([!]System.UInt64)"): base name, or base name followed
// by a parenthesized, comma-separated list of each argument's canonical
// TypeRef form.
func signatureName(base ident.Name, argTypes []types.TypeHandle) ident.Name {
	if len(argTypes) == 0 {
		return base
	}
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.StringReference().String()
	}
	return ident.Name(string(base) + "(" + strings.Join(parts, ", ") + ")")
}

func addNative(mt *types.MethodTable, base ident.Name, static bool, argTypes []types.TypeHandle, ret types.TypeHandle, fn types.NativeFunc) {
	name := signatureName(base, argTypes)
	mt.Methods.Set(name, &types.Method{
		Name:       name,
		Attrs:      types.MethodAttributes{Visibility: types.Public, Static: static},
		OwningMT:   mt,
		ReturnType: ret,
		ArgTypes:   argTypes,
		Entry:      types.NativeEntry(fn),
	})
}

// toStringNative is System.Object's ToString: the canonical printed name
// of the receiver's dynamic type, matching the original's
// `this_val.ty(cpu)?.string_reference().string_name_repr()`. Shared by
// every core type; the numeric structs bind this same function as their
// own ToString entry (see buildNumerics), so they too print their type
// name rather than their numeric value.
func toStringNative(ctx types.NativeContext, args []types.Value) (types.Value, error) {
	handle, err := ctx.DynamicTypeOf(args[0])
	if err != nil {
		return types.Value{}, err
	}
	return ctx.NewString(handle.StringReference().String()), nil
}

func equalsNative(ctx types.NativeContext, args []types.Value) (types.Value, error) {
	return types.Bool(valuesEqual(args[0], args[1])), nil
}

func hashCodeNative(ctx types.NativeContext, args []types.Value) (types.Value, error) {
	h := uint64(0)
	for _, r := range args[0].String() {
		h = h*31 + uint64(r)
	}
	return types.UInt64(h), nil
}

func valuesEqual(a, b types.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case types.KindReference:
		return a.Ref().ID() == b.Ref().ID()
	default:
		return a.String() == b.String()
	}
}

// These return Unloaded placeholder handles: a native method's declared
// ReturnType/ArgTypes are descriptive metadata only (disasm output,
// MakeGeneric's substitution), never dereferenced by the dispatcher,
// which determines a native call's actual result from the Value the Go
// function returns.
func boolHandle() types.TypeHandle   { return types.UnloadedHandle(ident.CoreRef(ident.NameBoolean)) }
func uint64Handle() types.TypeHandle { return types.UnloadedHandle(ident.CoreRef(ident.NameUInt64)) }
func strHandle() types.TypeHandle    { return types.UnloadedHandle(ident.CoreRef(ident.NameString)) }
