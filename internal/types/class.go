package types

import "github.com/vanta-vm/vanta/internal/omap"
import "github.com/vanta-vm/vanta/internal/ident"

// Visibility is a method/class's declared accessibility.
type Visibility uint8

const (
	Public Visibility = iota
	Private
	Protected
)

// ClassAttributes holds a class or struct's declaration-level flags.
type ClassAttributes struct {
	Visibility Visibility
	Abstract   bool
}

// ClassField describes a single declared instance or static field.
type ClassField struct {
	Name ident.Name
	Type TypeHandle
}

type FieldMap = omap.Map[ident.Name, ClassField]

// Class is a reference type's record: fields, method table, and generic
// parameters. name equals general_name for a non-generic class, or for
// the uninstantiated generic definition itself; after instantiation name
// becomes the canonical printed form of the full TypeRef (spec.md §3).
type Class struct {
	Assembly    AssemblyRef
	Attributes  ClassAttributes
	Name        ident.Name
	GeneralName ident.Name
	MT          *MethodTable
	Fields      *FieldMap
	TypeVars    *TypeVarMap
}

// Struct is semantically a value type: copied by value when held in a
// Value::Struct. Its record shape is identical to Class.
type Struct struct {
	Assembly    AssemblyRef
	Attributes  ClassAttributes
	Name        ident.Name
	GeneralName ident.Name
	MT          *MethodTable
	Fields      *FieldMap
	TypeVars    *TypeVarMap
}

// Interface carries no fields: only a method table (for the signatures it
// declares) and its own generic parameters.
type Interface struct {
	Assembly    AssemblyRef
	Name        ident.Name
	GeneralName ident.Name
	MT          *MethodTable
	TypeVars    *TypeVarMap
}

// fieldOwner is the narrow view InstanceFieldLayout/StructFieldLayout
// need of a Class or Struct.
type fieldOwner interface {
	ownFields() *FieldMap
	parentHandle() *TypeHandle
}

func (c *Class) ownFields() *FieldMap       { return c.Fields }
func (c *Class) parentHandle() *TypeHandle  { return c.MT.Parent }
func (s *Struct) ownFields() *FieldMap      { return s.Fields }
func (s *Struct) parentHandle() *TypeHandle { return s.MT.Parent }

// InstanceFieldLayout returns the field names of c in the order an Object
// allocates them: parent fields (recursively) first, then c's own fields,
// in declaration order — spec.md §3's layout invariant.
func InstanceFieldLayout(c *Class) []ident.Name {
	return fieldLayout(fieldOwner(c))
}

func fieldLayout(o fieldOwner) []ident.Name {
	var names []ident.Name
	if ph := o.parentHandle(); ph != nil && ph.Resolved() {
		switch ph.Kind {
		case HandleClass:
			names = append(names, fieldLayout(fieldOwner(ph.class))...)
		case HandleStruct:
			names = append(names, fieldLayout(fieldOwner(ph.strct))...)
		}
	}
	if o.ownFields() != nil {
		names = append(names, o.ownFields().Keys()...)
	}
	return names
}

// StructFieldLayout is InstanceFieldLayout's counterpart for value types.
func StructFieldLayout(s *Struct) []ident.Name {
	return fieldLayout(fieldOwner(s))
}
