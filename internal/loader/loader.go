// Package loader converts AssemblyDescriptor records — the external,
// binary-format-loader-produced input named in spec.md §6 — into the
// typed in-memory Class/Struct/MethodTable form the rest of the VM
// operates on. Every cross-type reference starts out Unloaded; a
// separate resolution pass (internal/assembly.Manager.ResolveAll) rewrites
// them afterward.
package loader

import (
	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// FieldDef describes a single declared field.
type FieldDef struct {
	Name ident.Name
	Type ident.TypeRef
}

// GenericBinding describes a type parameter's constraints prior to
// resolution.
type GenericBinding struct {
	ImplementedInterfaces []ident.TypeRef
	Parent                *ident.TypeRef
}

// MethodDef describes a single declared method.
type MethodDef struct {
	Name         ident.Name
	Attrs        types.MethodAttributes
	ReturnType   ident.TypeRef
	Args         []ident.TypeRef
	Instructions []isa.Instruction
	TypeVars     *omap.Map[ident.Name, GenericBinding]
}

// TypeDefKind tags whether a TypeDef describes a class or a struct.
type TypeDefKind uint8

const (
	DefClass TypeDefKind = iota
	DefStruct
)

// TypeDef describes a single declared class or struct.
type TypeDef struct {
	Kind     TypeDefKind
	Name     ident.Name
	Attrs    types.ClassAttributes
	Parent   *ident.TypeRef
	Methods  *omap.Map[ident.Name, MethodDef]
	Fields   *omap.Map[ident.Name, FieldDef]
	TypeVars *omap.Map[ident.Name, GenericBinding]
}

// AssemblyDescriptor is the opaque record this package's Load consumes —
// the binary assembly format loader's output, treated here purely as data
// (spec.md §1's "out of scope" boundary).
type AssemblyDescriptor struct {
	Name     ident.Name
	TypeDefs *omap.Map[ident.Name, TypeDef]
}

// Load registers every descriptor's types into mgr, then runs the
// resolution pass. Assembly names must be unique: loading the same name
// twice is rejected before anything is mutated, matching the teacher's
// own practice of validating externally-sourced input with a returned
// error rather than a panic (internal/gocore's dwarf.go wraps every
// malformed-input case in fmt.Errorf; panics there are reserved for the
// package's own invariant violations).
func Load(mgr *assembly.Manager, descs []AssemblyDescriptor) error {
	seen := make(map[ident.Name]bool, len(descs))
	for _, d := range descs {
		if seen[d.Name] {
			return vmerr.New(vmerr.FailedGetAssembly, string(d.Name), nil)
		}
		seen[d.Name] = true
	}
	for _, d := range descs {
		if err := loadAssembly(mgr, d); err != nil {
			return err
		}
	}
	return mgr.ResolveAll()
}

func loadAssembly(mgr *assembly.Manager, d AssemblyDescriptor) error {
	asm := mgr.GetOrCreateAssembly(d.Name)
	if d.TypeDefs == nil {
		return nil
	}
	for _, name := range d.TypeDefs.Keys() {
		td, _ := d.TypeDefs.Get(name)
		var handle types.TypeHandle
		switch td.Kind {
		case DefClass:
			handle = types.ClassHandle(buildClass(asm, td))
		case DefStruct:
			handle = types.StructHandle(buildStruct(asm, td))
		default:
			return vmerr.New(vmerr.FailedGetType, string(name), nil)
		}
		asm.RegisterType(name, handle)
	}
	return nil
}

// refToHandle translates a TypeRef the way spec.md §4.2 requires: a
// Generic(name) reference becomes TypeHandle::Generic directly; every
// other reference becomes TypeHandle::Unloaded, deferred to the
// resolution pass.
func refToHandle(ref ident.TypeRef) types.TypeHandle {
	if ref.Kind == ident.RefGeneric {
		return types.GenericHandle(ref.Param)
	}
	return types.UnloadedHandle(ref)
}

func buildTypeVars(src *omap.Map[ident.Name, GenericBinding]) *types.TypeVarMap {
	out := omap.New[ident.Name, types.TypeVar]()
	if src == nil {
		return out
	}
	for _, name := range src.Keys() {
		gb, _ := src.Get(name)
		var parent *types.TypeHandle
		if gb.Parent != nil {
			h := refToHandle(*gb.Parent)
			parent = &h
		}
		ifaces := make([]types.TypeHandle, len(gb.ImplementedInterfaces))
		for i, r := range gb.ImplementedInterfaces {
			ifaces[i] = refToHandle(r)
		}
		out.Set(name, types.CanonTypeVar(parent, ifaces))
	}
	return out
}

func buildMethod(mt *types.MethodTable, md MethodDef) *types.Method {
	argTypes := make([]types.TypeHandle, len(md.Args))
	for i, a := range md.Args {
		argTypes[i] = refToHandle(a)
	}
	return &types.Method{
		Name:         md.Name,
		Attrs:        md.Attrs,
		OwningMT:     mt,
		Instructions: md.Instructions,
		ReturnType:   refToHandle(md.ReturnType),
		ArgTypes:     argTypes,
		TypeVars:     buildTypeVars(md.TypeVars),
		Entry:        types.BytecodeEntry(),
	}
}

func buildMethodTable(owner types.TypeHandle, parentRef *ident.TypeRef, methods *omap.Map[ident.Name, MethodDef], fieldCount int) *types.MethodTable {
	var parent *types.TypeHandle
	if parentRef != nil {
		h := refToHandle(*parentRef)
		parent = &h
	}
	mt := types.NewMethodTable(owner, parent)
	mt.FieldCount = fieldCount
	if methods != nil {
		for _, name := range methods.Keys() {
			md, _ := methods.Get(name)
			mt.Methods.Set(name, buildMethod(mt, md))
		}
	}
	return mt
}

func buildFields(src *omap.Map[ident.Name, FieldDef]) *types.FieldMap {
	out := omap.New[ident.Name, types.ClassField]()
	if src == nil {
		return out
	}
	for _, name := range src.Keys() {
		fd, _ := src.Get(name)
		out.Set(name, types.ClassField{Name: fd.Name, Type: refToHandle(fd.Type)})
	}
	return out
}

func buildClass(asm *assembly.Assembly, td TypeDef) *types.Class {
	c := &types.Class{
		Assembly:    asm,
		Attributes:  td.Attrs,
		Name:        td.Name,
		GeneralName: td.Name,
		Fields:      buildFields(td.Fields),
		TypeVars:    buildTypeVars(td.TypeVars),
	}
	handle := types.ClassHandle(c)
	fieldCount := c.Fields.Len()
	c.MT = buildMethodTable(handle, td.Parent, td.Methods, fieldCount)
	return c
}

func buildStruct(asm *assembly.Assembly, td TypeDef) *types.Struct {
	s := &types.Struct{
		Assembly:    asm,
		Attributes:  td.Attrs,
		Name:        td.Name,
		GeneralName: td.Name,
		Fields:      buildFields(td.Fields),
		TypeVars:    buildTypeVars(td.TypeVars),
	}
	handle := types.StructHandle(s)
	fieldCount := s.Fields.Len()
	s.MT = buildMethodTable(handle, td.Parent, td.Methods, fieldCount)
	return s
}
