package types

import (
	"io"

	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// MethodAttributes holds a method's declaration-level flags.
type MethodAttributes struct {
	Visibility    Visibility
	Static        bool
	RegisterCount int
}

// EntryKind tags a method body's variant.
type EntryKind uint8

const (
	EntryBytecode EntryKind = iota
	EntryNative
)

// NativeContext is the narrow view a Native method body gets of the
// executing VM: heap access, string/array construction, and the ability
// to call back into the dispatcher. Defined here (not in package cpu) so
// that types.Method can hold a NativeFunc without types importing cpu;
// package cpu implements this interface instead.
type NativeContext interface {
	Heap() *heap.Heap
	NewString(s string) Value
	NewArray(elem TypeHandle, items []Value) Value
	NewObject(typeRef ident.TypeRef, ctor ident.MethodRef, args []Value) (Value, error)
	CallInstance(receiver Value, method ident.MethodRef, args []Value) (Value, error)
	CallStatic(typeRef ident.TypeRef, method ident.MethodRef, args []Value) (Value, error)
	// DynamicTypeOf resolves v's concrete runtime TypeHandle, following a
	// Reference to the TypeHandle of its pointee rather than the
	// reference itself (spec.md §4's dynamic dispatch rule). A native
	// body needs this to answer questions about "the type of this value"
	// rather than the narrower declared-signature type.
	DynamicTypeOf(v Value) (TypeHandle, error)
	Stdout() io.Writer
}

// NativeFunc is a method body implemented directly in Go rather than in
// bytecode — the binding layer for core-library types (spec.md §4's
// "Core library bindings").
type NativeFunc func(ctx NativeContext, args []Value) (Value, error)

// Entry is a method's body: either a bytecode instruction stream (carried
// on the owning Method's Instructions field) or a Native function
// pointer.
type Entry struct {
	Kind   EntryKind
	Native NativeFunc
}

func BytecodeEntry() Entry             { return Entry{Kind: EntryBytecode} }
func NativeEntry(fn NativeFunc) Entry  { return Entry{Kind: EntryNative, Native: fn} }

// Method is a single method record, shared by instance and static
// methods alike (Attrs.Static distinguishes them).
type Method struct {
	Name         ident.Name
	Attrs        MethodAttributes
	OwningMT     *MethodTable
	Instructions []isa.Instruction
	ReturnType   TypeHandle
	ArgTypes     []TypeHandle
	TypeVars     *TypeVarMap
	Entry        Entry
}

// MakeGeneric produces a new Method whose Name is the canonical printed
// form of (m.Name, args) and whose TypeVars are all TypeVarBound,
// overriding whatever Canon constraints m declared (spec.md §4.4).
func (m *Method) MakeGeneric(order []ident.Name, args map[ident.Name]TypeHandle) (*Method, error) {
	if m.TypeVars == nil || m.TypeVars.Len() == 0 {
		return nil, vmerr.New(vmerr.FailedMakeGeneric, string(m.Name), nil)
	}
	bound := m.TypeVars.Clone()
	for _, name := range order {
		arg, ok := args[name]
		if !ok {
			return nil, vmerr.New(vmerr.FailedMakeGeneric, string(name), nil)
		}
		bound.Set(name, BoundTypeVar(arg))
	}
	argNames := make(map[ident.Name]ident.TypeRef, len(args))
	for name, h := range args {
		argNames[name] = h.StringReference()
	}
	clone := *m
	clone.Name = ident.Name(ident.GenericMethod(m.Name, order, argNames).String())
	clone.TypeVars = bound
	return &clone, nil
}

// CallableRegisterWindow is the number of contiguous registers a call
// frame for this method needs, per spec.md §4.6.
func (m *Method) CallableRegisterWindow() int { return m.Attrs.RegisterCount }
