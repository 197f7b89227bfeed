package types

import (
	"fmt"
	"math/big"

	"github.com/vanta-vm/vanta/internal/heap"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindTrue
	KindFalse
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindStruct
	KindReference
	KindRegisterReference
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindTrue:
		return "True"
	case KindFalse:
		return "False"
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128:
		return "Int"
	case KindStruct:
		return "Struct"
	case KindReference:
		return "Reference"
	case KindRegisterReference:
		return "RegisterReference"
	default:
		return "Unknown"
	}
}

// Value is the tagged union threaded through the register file. It is
// immutable in transit: every write clones rather than aliasing a shared
// Value, matching spec.md §3's "immutable in transit" requirement. The
// payload it points to via Reference, by contrast, is freely mutable.
type Value struct {
	kind Kind

	// small holds UInt8..UInt64 (zero-extended) and Int8..Int64
	// (sign-extended into a uint64 bit pattern); which interpretation
	// applies is determined by kind.
	small uint64
	// big holds UInt128/Int128 magnitudes; nil for every other kind.
	big *big.Int

	str    *StructObject
	ref    heap.Handle[*ByRefValue]
	regIdx uint64
}

func Void() Value               { return Value{kind: KindVoid} }
func True() Value                { return Value{kind: KindTrue} }
func False() Value               { return Value{kind: KindFalse} }
func Bool(b bool) Value {
	if b {
		return True()
	}
	return False()
}

func UInt8(v uint8) Value   { return Value{kind: KindUInt8, small: uint64(v)} }
func UInt16(v uint16) Value { return Value{kind: KindUInt16, small: uint64(v)} }
func UInt32(v uint32) Value { return Value{kind: KindUInt32, small: uint64(v)} }
func UInt64(v uint64) Value { return Value{kind: KindUInt64, small: v} }
func Int8(v int8) Value     { return Value{kind: KindInt8, small: uint64(v)} }
func Int16(v int16) Value   { return Value{kind: KindInt16, small: uint64(v)} }
func Int32(v int32) Value   { return Value{kind: KindInt32, small: uint64(v)} }
func Int64(v int64) Value   { return Value{kind: KindInt64, small: uint64(v)} }

func UInt128(v *big.Int) Value { return Value{kind: KindUInt128, big: new(big.Int).Set(v)} }
func Int128(v *big.Int) Value  { return Value{kind: KindInt128, big: new(big.Int).Set(v)} }

func StructValue(s *StructObject) Value { return Value{kind: KindStruct, str: s} }

// CopyForTransit returns v, deep-copying the StructObject payload if v
// holds one. Every other kind is already either immutable by value or
// a Reference (whose pointee is meant to alias), so it passes through
// unchanged. Called at every point a Value moves between a register and
// its surroundings, so a Value::Struct really is copied by value rather
// than sharing its StructObject with whoever it came from.
func (v Value) CopyForTransit() Value {
	if v.kind == KindStruct && v.str != nil {
		return Value{kind: KindStruct, str: v.str.Clone()}
	}
	return v
}

func Reference(h heap.Handle[*ByRefValue]) Value { return Value{kind: KindReference, ref: h} }

// RegisterReference denotes a deferred indirection to another register,
// letting an instruction return a register handle rather than a value
// directly (spec.md §9, "Value::RegisterReference").
func RegisterReference(addr uint64) Value { return Value{kind: KindRegisterReference, regIdx: addr} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsVoid() bool { return v.kind == KindVoid }

// Bool reports the held boolean. Panics if Kind is not True/False.
func (v Value) Bool() bool {
	switch v.kind {
	case KindTrue:
		return true
	case KindFalse:
		return false
	default:
		panic(fmt.Sprintf("types: Bool() on a %s value", v.kind))
	}
}

// UInt returns the value as an unsigned 64-bit integer. Valid only for
// the fixed-width unsigned kinds up to UInt64.
func (v Value) UInt() uint64 { return v.small }

// Int returns the value as a signed 64-bit integer, sign-extended from
// its declared width. Valid only for the fixed-width signed kinds up to
// Int64.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt8:
		return int64(int8(v.small))
	case KindInt16:
		return int64(int16(v.small))
	case KindInt32:
		return int64(int32(v.small))
	default:
		return int64(v.small)
	}
}

// Big returns the big-integer magnitude for a 128-bit value.
func (v Value) Big() *big.Int { return v.big }

func (v Value) Struct() *StructObject                   { return v.str }
func (v Value) Ref() heap.Handle[*ByRefValue]           { return v.ref }
func (v Value) RegisterAddr() uint64                    { return v.regIdx }

// Trace reports the heap allocations this value directly references, for
// use by the collector and by any containing Tracer (struct fields,
// object fields, array elements).
func (v Value) Trace(mark func(heap.ID)) {
	switch v.kind {
	case KindReference:
		mark(v.ref.ID())
	case KindStruct:
		if v.str != nil {
			v.str.Trace(mark)
		}
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindVoid:
		return "void"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return fmt.Sprintf("%d", v.small)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fmt.Sprintf("%d", v.Int())
	case KindUInt128, KindInt128:
		return v.big.String()
	case KindStruct:
		return v.str.String()
	case KindReference:
		return "ref"
	case KindRegisterReference:
		return fmt.Sprintf("reg(%d)", v.regIdx)
	default:
		return "?"
	}
}
