// Package asmjson is a JSON encoding for loader.AssemblyDescriptor,
// letting cmd/vantavm read fixture assemblies from disk without a real
// binary assembly format parser (spec.md §1 treats that parser as out of
// scope; this package exists purely so the CLI has something concrete to
// feed loader.Load). It is not part of the VM's external interface.
package asmjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
)

type assemblyFile struct {
	Name     ident.Name    `json:"name"`
	TypeDefs []typeDefFile `json:"type_defs"`
}

type typeDefFile struct {
	Kind     string              `json:"kind"` // "class" | "struct"
	Name     ident.Name          `json:"name"`
	Attrs    types.ClassAttributes `json:"attrs"`
	Parent   *ident.TypeRef      `json:"parent,omitempty"`
	Methods  []methodDefFile     `json:"methods"`
	Fields   []fieldDefFile      `json:"fields"`
	TypeVars []genericBindingFile `json:"type_vars,omitempty"`
}

type fieldDefFile struct {
	Name ident.Name    `json:"name"`
	Type ident.TypeRef `json:"type"`
}

type methodDefFile struct {
	Name         ident.Name           `json:"name"`
	Attrs        types.MethodAttributes `json:"attrs"`
	ReturnType   ident.TypeRef        `json:"return_type"`
	Args         []ident.TypeRef      `json:"args"`
	Instructions []isa.Instruction    `json:"instructions"`
	TypeVars     []genericBindingFile `json:"type_vars,omitempty"`
}

type genericBindingFile struct {
	Name                  ident.Name      `json:"name"`
	ImplementedInterfaces []ident.TypeRef `json:"implemented_interfaces,omitempty"`
	Parent                *ident.TypeRef  `json:"parent,omitempty"`
}

// Decode reads one assembly descriptor from r.
func Decode(r io.Reader) (loader.AssemblyDescriptor, error) {
	var af assemblyFile
	if err := json.NewDecoder(r).Decode(&af); err != nil {
		return loader.AssemblyDescriptor{}, fmt.Errorf("decode assembly: %w", err)
	}
	return af.toDescriptor()
}

func (af assemblyFile) toDescriptor() (loader.AssemblyDescriptor, error) {
	defs := omap.New[ident.Name, loader.TypeDef]()
	for _, td := range af.TypeDefs {
		d, err := td.toTypeDef()
		if err != nil {
			return loader.AssemblyDescriptor{}, fmt.Errorf("type %s: %w", td.Name, err)
		}
		defs.Set(td.Name, d)
	}
	return loader.AssemblyDescriptor{Name: af.Name, TypeDefs: defs}, nil
}

func (td typeDefFile) toTypeDef() (loader.TypeDef, error) {
	var kind loader.TypeDefKind
	switch td.Kind {
	case "class":
		kind = loader.DefClass
	case "struct":
		kind = loader.DefStruct
	default:
		return loader.TypeDef{}, fmt.Errorf("unknown type_def kind %q", td.Kind)
	}

	methods := omap.New[ident.Name, loader.MethodDef]()
	for _, md := range td.Methods {
		methods.Set(md.Name, md.toMethodDef())
	}

	fields := omap.New[ident.Name, loader.FieldDef]()
	for _, fd := range td.Fields {
		fields.Set(fd.Name, loader.FieldDef{Name: fd.Name, Type: fd.Type})
	}

	return loader.TypeDef{
		Kind:     kind,
		Name:     td.Name,
		Attrs:    td.Attrs,
		Parent:   td.Parent,
		Methods:  methods,
		Fields:   fields,
		TypeVars: bindingsToMap(td.TypeVars),
	}, nil
}

func (md methodDefFile) toMethodDef() loader.MethodDef {
	return loader.MethodDef{
		Name:         md.Name,
		Attrs:        md.Attrs,
		ReturnType:   md.ReturnType,
		Args:         md.Args,
		Instructions: md.Instructions,
		TypeVars:     bindingsToMap(md.TypeVars),
	}
}

func bindingsToMap(bs []genericBindingFile) *omap.Map[ident.Name, loader.GenericBinding] {
	m := omap.New[ident.Name, loader.GenericBinding]()
	for _, b := range bs {
		m.Set(b.Name, loader.GenericBinding{
			ImplementedInterfaces: b.ImplementedInterfaces,
			Parent:                b.Parent,
		})
	}
	return m
}
