// Package isa defines the VM's fixed, tagged instruction set. Every
// variant carries explicit operand registers; there is no implicit
// stack. Instructions carry only ident.TypeRef and ident.Name — never a
// resolved type handle — so a loaded method's instruction stream needs
// no rewriting during the resolution pass (spec.md §4.2).
package isa

import "github.com/vanta-vm/vanta/internal/ident"

// Op tags the instruction variant.
type Op uint8

const (
	OpLoadTrue Op = iota
	OpLoadFalse
	OpLoadU8
	OpLoadU8K // small constant k in [0,5], carried in U8
	OpLoadU64
	OpLoadArg
	OpLoadAllArgsAsArray
	OpLoadStatic
	OpNewObject
	OpInstanceCall
	OpStaticCall
	OpReturnVal
	OpSetField
)

// Reg is a register index, always interpreted as an offset from the
// executing frame's register_start (spec.md §4.6).
type Reg uint32

// Instruction is a single tagged VM instruction. Only the fields
// meaningful for Op are populated; the zero value of the rest is
// harmless since Op alone selects interpretation.
type Instruction struct {
	Op Op

	Dst Reg
	Src Reg

	// LoadU8 / LoadU8K
	U8 uint8
	// LoadU64
	U64 uint64

	// LoadArg
	Arg int

	// LoadStatic / NewObject / StaticCall
	TypeRef ident.TypeRef
	// LoadStatic / SetField
	FieldName ident.Name
	// NewObject
	CtorName ident.Name
	// InstanceCall / StaticCall / NewObject
	MethodRef ident.MethodRef
	Receiver  Reg
	Args      []Reg
}

func LoadTrue(dst Reg) Instruction  { return Instruction{Op: OpLoadTrue, Dst: dst} }
func LoadFalse(dst Reg) Instruction { return Instruction{Op: OpLoadFalse, Dst: dst} }

func LoadU8(dst Reg, val uint8) Instruction { return Instruction{Op: OpLoadU8, Dst: dst, U8: val} }

// LoadU8K is the small-constant form for k in [0,5]. k is carried in U8,
// exactly as LoadU8 carries its operand, and is not range-checked here.
func LoadU8K(dst Reg, k uint8) Instruction { return Instruction{Op: OpLoadU8K, Dst: dst, U8: k} }

func LoadU64(dst Reg, val uint64) Instruction {
	return Instruction{Op: OpLoadU64, Dst: dst, U64: val}
}

func LoadArg(dst Reg, arg int) Instruction { return Instruction{Op: OpLoadArg, Dst: dst, Arg: arg} }

func LoadAllArgsAsArray(dst Reg) Instruction {
	return Instruction{Op: OpLoadAllArgsAsArray, Dst: dst}
}

func LoadStatic(dst Reg, typeRef ident.TypeRef, field ident.Name) Instruction {
	return Instruction{Op: OpLoadStatic, Dst: dst, TypeRef: typeRef, FieldName: field}
}

func NewObject(typeRef ident.TypeRef, ctor ident.Name, args []Reg, dst Reg) Instruction {
	return Instruction{Op: OpNewObject, TypeRef: typeRef, CtorName: ctor, Args: args, Dst: dst}
}

func InstanceCall(receiver Reg, method ident.MethodRef, args []Reg, dst Reg) Instruction {
	return Instruction{Op: OpInstanceCall, Receiver: receiver, MethodRef: method, Args: args, Dst: dst}
}

func StaticCall(typeRef ident.TypeRef, method ident.MethodRef, args []Reg, dst Reg) Instruction {
	return Instruction{Op: OpStaticCall, TypeRef: typeRef, MethodRef: method, Args: args, Dst: dst}
}

func ReturnVal(src Reg) Instruction { return Instruction{Op: OpReturnVal, Src: src} }

func SetField(src Reg, field ident.Name) Instruction {
	return Instruction{Op: OpSetField, Src: src, FieldName: field}
}

func (op Op) String() string {
	switch op {
	case OpLoadTrue:
		return "LoadTrue"
	case OpLoadFalse:
		return "LoadFalse"
	case OpLoadU8:
		return "Load_u8"
	case OpLoadU8K:
		return "Load_u8_K"
	case OpLoadU64:
		return "Load_u64"
	case OpLoadArg:
		return "LoadArg"
	case OpLoadAllArgsAsArray:
		return "LoadAllArgsAsArray"
	case OpLoadStatic:
		return "LoadStatic"
	case OpNewObject:
		return "NewObject"
	case OpInstanceCall:
		return "InstanceCall"
	case OpStaticCall:
		return "StaticCall"
	case OpReturnVal:
		return "ReturnVal"
	case OpSetField:
		return "SetField"
	default:
		return "?"
	}
}
