package cpu

import (
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// dispatchBytecode executes meth's instruction stream sequentially from
// pc=0 over a freshly allocated register window. ReturnVal terminates
// the frame with its operand; running off the end of the stream yields
// Void. This is "tail-biased termination": a ReturnVal that isn't the
// last instruction still runs to the end of that iteration before the
// loop notices the frame is done, so anything after it in the same
// instruction slice is simply never reached, not actively skipped.
func (c *CPU) dispatchBytecode(meth *types.Method, this types.Value, args []types.Value) (types.Value, error) {
	window := c.regs.FindContinuousEmptyStart(meth.CallableRegisterWindow())
	defer c.regs.Release(window, meth.CallableRegisterWindow())

	result := types.Void()
	returned := false

	for _, instr := range meth.Instructions {
		if err := c.step(meth, this, args, window, instr, &result, &returned); err != nil {
			return types.Value{}, err
		}
		if returned {
			break
		}
	}
	return result, nil
}

func (c *CPU) reg(window int, r isa.Reg) isa.Reg { return isa.Reg(window) + r }

func (c *CPU) step(meth *types.Method, this types.Value, args []types.Value, window int, instr isa.Instruction, result *types.Value, returned *bool) error {
	switch instr.Op {
	case isa.OpLoadTrue:
		return c.regs.Write(c.reg(window, instr.Dst), types.True())

	case isa.OpLoadFalse:
		return c.regs.Write(c.reg(window, instr.Dst), types.False())

	case isa.OpLoadU8, isa.OpLoadU8K:
		return c.regs.Write(c.reg(window, instr.Dst), types.UInt8(instr.U8))

	case isa.OpLoadU64:
		return c.regs.Write(c.reg(window, instr.Dst), types.UInt64(instr.U64))

	case isa.OpLoadArg:
		if instr.Arg < 0 || instr.Arg >= len(args) {
			return vmerr.New(vmerr.FailedGetRegister, "arg", nil)
		}
		return c.regs.Write(c.reg(window, instr.Dst), args[instr.Arg])

	case isa.OpLoadAllArgsAsArray:
		stringType, err := c.coreType(ident.NameString)
		if err != nil {
			return err
		}
		items := append([]types.Value(nil), args...)
		return c.regs.Write(c.reg(window, instr.Dst), c.NewArray(stringType, items))

	case isa.OpLoadStatic:
		handle, err := c.mgr.SolveTypeRef(instr.TypeRef, meth)
		if err != nil {
			return err
		}
		v, err := c.statics.GetField(handle.StringReference().String(), instr.FieldName)
		if err != nil {
			return err
		}
		return c.regs.Write(c.reg(window, instr.Dst), v)

	case isa.OpNewObject:
		handle, err := c.mgr.SolveTypeRef(instr.TypeRef, meth)
		if err != nil {
			return err
		}
		ctorArgs, err := c.readRegs(window, instr.Args)
		if err != nil {
			return err
		}
		v, err := c.NewObject(handle.StringReference(), ident.SingleMethod(instr.CtorName), ctorArgs)
		if err != nil {
			return err
		}
		return c.regs.Write(c.reg(window, instr.Dst), v)

	case isa.OpInstanceCall:
		recv, err := c.regs.Read(c.reg(window, instr.Receiver))
		if err != nil {
			return err
		}
		handle, err := c.dynamicTypeOf(recv, window)
		if err != nil {
			return err
		}
		mt := handle.MethodTableOf()
		if mt == nil {
			return vmerr.New(vmerr.UnsupportedInstanceType, handle.String(), nil)
		}
		callee, err := mt.GetMethod(instr.MethodRef, c.resolveAgainst(meth))
		if err != nil {
			return err
		}
		callArgs, err := c.readRegs(window, instr.Args)
		if err != nil {
			return err
		}
		v, err := c.invoke(callee, recv, callArgs)
		if err != nil {
			return err
		}
		return c.regs.Write(c.reg(window, instr.Dst), v)

	case isa.OpStaticCall:
		handle, err := c.mgr.SolveTypeRef(instr.TypeRef, meth)
		if err != nil {
			return err
		}
		mt := handle.MethodTableOf()
		if mt == nil {
			return vmerr.New(vmerr.UnsupportedInstanceType, handle.String(), nil)
		}
		callee, err := mt.GetMethod(instr.MethodRef, c.resolveAgainst(meth))
		if err != nil {
			return err
		}
		callArgs, err := c.readRegs(window, instr.Args)
		if err != nil {
			return err
		}
		v, err := c.invoke(callee, types.Void(), callArgs)
		if err != nil {
			return err
		}
		return c.regs.Write(c.reg(window, instr.Dst), v)

	case isa.OpReturnVal:
		v, err := c.regs.Read(c.reg(window, instr.Src))
		if err != nil {
			return err
		}
		*result = v
		*returned = true
		return nil

	case isa.OpSetField:
		v, err := c.regs.Read(c.reg(window, instr.Src))
		if err != nil {
			return err
		}
		return c.setField(this, instr.FieldName, v, window, 0)

	default:
		return vmerr.New(vmerr.FailedGetField, instr.Op.String(), nil)
	}
}

func (c *CPU) readRegs(window int, regs []isa.Reg) ([]types.Value, error) {
	out := make([]types.Value, len(regs))
	for i, r := range regs {
		v, err := c.regs.Read(c.reg(window, r))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// setField implements spec.md §4.5's SetField semantics: Struct and
// Reference(Object) mutate in place; Reference(Array|String) and the
// primitive/empty variants fail; RegisterReference recurses through the
// named register, bounded by maxRegisterReferenceDepth, and writes the
// (possibly unchanged) resolved value back afterward.
func (c *CPU) setField(this types.Value, field ident.Name, v types.Value, window, depth int) error {
	if depth > maxRegisterReferenceDepth {
		return vmerr.New(vmerr.FailedReadRegister, "register reference depth exceeded", nil)
	}
	switch this.Kind() {
	case types.KindStruct:
		this.Struct().Fields.Set(field, v)
		return nil

	case types.KindReference:
		brv := this.Ref().Get()
		switch brv.Kind {
		case types.ByRefObject:
			brv.Obj.Fields.Set(field, v)
			return nil
		case types.ByRefArray, types.ByRefString:
			return vmerr.New(vmerr.UnsupportedGettingField, string(field), nil)
		default:
			return vmerr.New(vmerr.FailedGetField, string(field), nil)
		}

	case types.KindRegisterReference:
		addr := isa.Reg(window + int(this.RegisterAddr()))
		inner, err := c.regs.Read(addr)
		if err != nil {
			return err
		}
		if err := c.setField(inner, field, v, window, depth+1); err != nil {
			return err
		}
		return c.regs.Write(addr, inner)

	default:
		return vmerr.New(vmerr.FailedGetField, string(field), nil)
	}
}
