package corelib

import (
	"math/big"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
)

// numericKind describes one fixed-width integer family: its core type
// name and how to construct/read a types.Value of that kind.
type numericKind struct {
	name   ident.Name
	wide   bool // true for UInt128/Int128 (big.Int-backed)
	signed bool
	make64 func(uint64) types.Value
	makeBig func(*big.Int) types.Value
}

var numericKinds = []numericKind{
	{name: ident.NameUInt8, make64: func(v uint64) types.Value { return types.UInt8(uint8(v)) }},
	{name: ident.NameUInt16, make64: func(v uint64) types.Value { return types.UInt16(uint16(v)) }},
	{name: ident.NameUInt32, make64: func(v uint64) types.Value { return types.UInt32(uint32(v)) }},
	{name: ident.NameUInt64, make64: func(v uint64) types.Value { return types.UInt64(v) }},
	{name: ident.NameUInt128, wide: true, makeBig: types.UInt128},
	{name: ident.NameInt8, signed: true, make64: func(v uint64) types.Value { return types.Int8(int8(v)) }},
	{name: ident.NameInt16, signed: true, make64: func(v uint64) types.Value { return types.Int16(int16(v)) }},
	{name: ident.NameInt32, signed: true, make64: func(v uint64) types.Value { return types.Int32(int32(v)) }},
	{name: ident.NameInt64, signed: true, make64: func(v uint64) types.Value { return types.Int64(int64(v)) }},
	{name: ident.NameInt128, wide: true, signed: true, makeBig: types.Int128},
}

// buildNumerics builds every fixed-width integer family as a Struct
// deriving from ValueType, with __op_Add/__op_Sub/__op_Mul native
// arithmetic operators over same-typed operands.
func buildNumerics(asm *assembly.Assembly, valueType types.TypeHandle) error {
	for _, k := range numericKinds {
		k := k
		s := newStruct(asm, k.name, &valueType)
		self := types.StructHandle(s)
		addNative(s.MT, "__op_Add", false, []types.TypeHandle{self}, self, k.arith(func(a, b int64) int64 { return a + b }, func(a, b uint64) uint64 { return a + b }, (*big.Int).Add))
		addNative(s.MT, "__op_Sub", false, []types.TypeHandle{self}, self, k.arith(func(a, b int64) int64 { return a - b }, func(a, b uint64) uint64 { return a - b }, (*big.Int).Sub))
		addNative(s.MT, "__op_Mul", false, []types.TypeHandle{self}, self, k.arith(func(a, b int64) int64 { return a * b }, func(a, b uint64) uint64 { return a * b }, (*big.Int).Mul))
		addNative(s.MT, "ToString", false, nil, strHandle(), toStringNative)
		asm.RegisterType(k.name, self)
	}
	return nil
}

// arith builds a native binary operator: args[0] is the receiver, args[1]
// the operand. signedOp/unsignedOp apply to the fixed-width kinds;
// bigOp.(x, a, b *big.Int) applies to the 128-bit kinds, matching how
// math/big's own methods mutate their receiver and return it.
func (k numericKind) arith(signedOp func(a, b int64) int64, unsignedOp func(a, b uint64) uint64, bigOp func(x, a, b *big.Int) *big.Int) types.NativeFunc {
	return func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		recv, operand := args[0], args[1]
		if k.wide {
			out := bigOp(new(big.Int), recv.Big(), operand.Big())
			return k.makeBig(out), nil
		}
		if k.signed {
			return k.make64(uint64(signedOp(recv.Int(), operand.Int()))), nil
		}
		return k.make64(unsignedOp(recv.UInt(), operand.UInt())), nil
	}
}
