package corelib

import (
	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// buildString wires System.String's native bindings: Length, indexing
// (returning the byte at the given position as a UInt8), and
// concatenation — spec.md §4.8's "concatenation, indexing, Length".
func buildString(asm *assembly.Assembly, object types.TypeHandle) error {
	s := newClass(asm, ident.NameString, &object)
	self := types.ClassHandle(s)

	addNative(s.MT, "Length", false, nil, uint64Handle(), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		str, err := receiverString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		return types.UInt64(uint64(len(str))), nil
	})

	addNative(s.MT, "__op_Index", false, []types.TypeHandle{uint64Handle()}, types.UnloadedHandle(ident.CoreRef(ident.NameUInt8)), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		str, err := receiverString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		idx := args[1].UInt()
		if idx >= uint64(len(str)) {
			return types.Value{}, vmerr.New(vmerr.ArrayIndexOutOfRange, str, nil)
		}
		return types.UInt8(str[idx]), nil
	})

	addNative(s.MT, "Concat", false, []types.TypeHandle{self}, self, func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		a, err := receiverString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		b, err := receiverString(args[1])
		if err != nil {
			return types.Value{}, err
		}
		return ctx.NewString(a + b), nil
	})

	asm.RegisterType(ident.NameString, self)
	return nil
}

func receiverString(v types.Value) (string, error) {
	if v.Kind() != types.KindReference {
		return "", vmerr.New(vmerr.WrongType, v.Kind().String(), nil)
	}
	brv := v.Ref().Get()
	if brv.Kind != types.ByRefString {
		return "", vmerr.New(vmerr.WrongType, brv.String(), nil)
	}
	return brv.Str, nil
}
