package corelib

import (
	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/omap"
	"github.com/vanta-vm/vanta/internal/types"
	"github.com/vanta-vm/vanta/internal/vmerr"
)

// buildArray builds the generic array definition System.Array`1[T] with
// native __op_Index and Length bindings (spec.md §4.8). Per-element-type
// instantiation is handled by internal/assembly.Manager.Instantiate,
// which clones this method table unchanged (native entries carry no
// per-instantiation state).
func buildArray(asm *assembly.Assembly, object types.TypeHandle) error {
	c := &types.Class{
		Assembly:    asm,
		Attributes:  types.ClassAttributes{Visibility: types.Public},
		Name:        ident.NameArray,
		GeneralName: ident.NameArray,
		Fields:      omap.New[ident.Name, types.ClassField](),
		TypeVars:    omap.New[ident.Name, types.TypeVar](),
	}
	c.TypeVars.Set(ident.ArrayTypeVar, types.CanonTypeVar(nil, nil))
	c.MT = types.NewMethodTable(types.ClassHandle(c), &object)
	self := types.ClassHandle(c)

	addNative(c.MT, "__op_Index", false, []types.TypeHandle{uint64Handle()}, types.GenericHandle(ident.ArrayTypeVar), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		arr, err := receiverArray(args[0])
		if err != nil {
			return types.Value{}, err
		}
		idx := args[1].UInt()
		if idx >= uint64(len(arr.Items)) {
			return types.Value{}, vmerr.New(vmerr.ArrayIndexOutOfRange, arr.String(), nil)
		}
		return arr.Items[idx], nil
	})

	addNative(c.MT, "Length", false, nil, uint64Handle(), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		arr, err := receiverArray(args[0])
		if err != nil {
			return types.Value{}, err
		}
		return types.UInt64(uint64(len(arr.Items))), nil
	})

	asm.RegisterType(ident.NameArray, self)
	return nil
}

func receiverArray(v types.Value) (*types.Array, error) {
	if v.Kind() != types.KindReference {
		return nil, vmerr.New(vmerr.WrongType, v.Kind().String(), nil)
	}
	brv := v.Ref().Get()
	if brv.Kind != types.ByRefArray {
		return nil, vmerr.New(vmerr.WrongType, brv.String(), nil)
	}
	return brv.Arr, nil
}
