package types

import (
	"strings"

	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
)

// Object is a heap-allocated instance of a Class. Field storage preserves
// declaration order: parent fields (recursively), then this class's own
// instance fields, exactly as spec.md §3's layout invariant requires —
// the layout is fixed once when the object is constructed (see
// NewObject), not recomputed per access.
type Object struct {
	MT     *MethodTable
	Fields *omap.Map[ident.Name, Value]
}

// NewObject constructs an Object for mt's owning class, with every
// instance field initialized to Void. Callers invoke the constructor
// method afterward to give fields their real values.
func NewObject(mt *MethodTable) *Object {
	o := &Object{MT: mt, Fields: omap.New[ident.Name, Value]()}
	for _, name := range ownerFieldLayout(mt.Owner) {
		o.Fields.Set(name, Void())
	}
	return o
}

func (o *Object) Trace(mark func(heap.ID)) {
	for _, v := range o.Fields.Values() {
		v.Trace(mark)
	}
}

func (o *Object) String() string {
	return "object(" + string(o.MT.Owner.Name()) + ")"
}

// StructObject is identical in shape to Object but denotes a value type:
// it is copied by value whenever held in a Value::Struct, never placed
// behind a heap.Handle directly (though it may be nested inside one via
// an Object or Array field).
type StructObject struct {
	MT     *MethodTable
	Fields *omap.Map[ident.Name, Value]
}

func NewStructObject(mt *MethodTable) *StructObject {
	o := &StructObject{MT: mt, Fields: omap.New[ident.Name, Value]()}
	for _, name := range ownerFieldLayout(mt.Owner) {
		o.Fields.Set(name, Void())
	}
	return o
}

// ownerFieldLayout dispatches InstanceFieldLayout/StructFieldLayout by the
// owning handle's concrete kind.
func ownerFieldLayout(owner TypeHandle) []ident.Name {
	switch owner.Kind {
	case HandleClass:
		return InstanceFieldLayout(owner.Class())
	case HandleStruct:
		return StructFieldLayout(owner.Struct())
	default:
		return nil
	}
}

// Clone returns a copy with its own Fields map holding the same Values.
// The copy is shallow: a nested Struct field value still shares its
// StructObject, and a Reference field still points at the same heap
// payload.
func (s *StructObject) Clone() *StructObject {
	out := &StructObject{MT: s.MT, Fields: s.Fields.Clone()}
	return out
}

func (s *StructObject) Trace(mark func(heap.ID)) {
	for _, v := range s.Fields.Values() {
		v.Trace(mark)
	}
}

func (s *StructObject) String() string {
	return "struct(" + string(s.MT.Owner.Name()) + ")"
}

// Array is a heap-allocated, dynamically-sized sequence of Values sharing
// a declared element type.
type Array struct {
	ElemType TypeHandle
	Items    []Value
}

func NewArray(elem TypeHandle, items []Value) *Array {
	return &Array{ElemType: elem, Items: items}
}

func (a *Array) Trace(mark func(heap.ID)) {
	for _, v := range a.Items {
		v.Trace(mark)
	}
}

func (a *Array) String() string {
	parts := make([]string, len(a.Items))
	for i, v := range a.Items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ByRefKind tags the variant held by a ByRefValue.
type ByRefKind uint8

const (
	ByRefObject ByRefKind = iota
	ByRefArray
	ByRefString
	ByRefNull
)

// ByRefValue is the heap-allocated payload behind a Value::Reference.
type ByRefValue struct {
	Kind ByRefKind
	Obj  *Object
	Arr  *Array
	Str  string
}

func NewByRefObject(o *Object) *ByRefValue  { return &ByRefValue{Kind: ByRefObject, Obj: o} }
func NewByRefArray(a *Array) *ByRefValue    { return &ByRefValue{Kind: ByRefArray, Arr: a} }
func NewByRefString(s string) *ByRefValue   { return &ByRefValue{Kind: ByRefString, Str: s} }
func NewByRefNull() *ByRefValue             { return &ByRefValue{Kind: ByRefNull} }

func (b *ByRefValue) Trace(mark func(heap.ID)) {
	switch b.Kind {
	case ByRefObject:
		if b.Obj != nil {
			b.Obj.Trace(mark)
		}
	case ByRefArray:
		if b.Arr != nil {
			b.Arr.Trace(mark)
		}
	}
}

func (b *ByRefValue) String() string {
	switch b.Kind {
	case ByRefObject:
		return b.Obj.String()
	case ByRefArray:
		return b.Arr.String()
	case ByRefString:
		return b.Str
	default:
		return "null"
	}
}
