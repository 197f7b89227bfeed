package corelib

import (
	"fmt"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/types"
)

// buildConsole builds System.Console's WriteLine/Write static bindings,
// writing through the executing CPU's injected io.Writer (spec.md §4.8
// expansion) rather than directly to os.Stdout, so tests capture output.
func buildConsole(asm *assembly.Assembly, object types.TypeHandle) error {
	c := newClass(asm, ident.NameConsole, &object)

	addNative(c.MT, "WriteLine", true, []types.TypeHandle{strHandle()}, voidHandleRef(), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		s, err := receiverString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		fmt.Fprintln(ctx.Stdout(), s)
		return types.Void(), nil
	})

	addNative(c.MT, "Write", true, []types.TypeHandle{strHandle()}, voidHandleRef(), func(ctx types.NativeContext, args []types.Value) (types.Value, error) {
		s, err := receiverString(args[0])
		if err != nil {
			return types.Value{}, err
		}
		fmt.Fprint(ctx.Stdout(), s)
		return types.Void(), nil
	})

	asm.RegisterType(ident.NameConsole, types.ClassHandle(c))
	return nil
}

func voidHandleRef() types.TypeHandle { return types.UnloadedHandle(ident.CoreRef(ident.NameVoid)) }
