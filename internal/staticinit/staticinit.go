// Package staticinit implements spec.md §4.7: ordered invocation of every
// loaded type's static constructor, populating the VM-wide statics map
// before normal execution begins.
package staticinit

import (
	"fmt"
	"io"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/cpu"
	"github.com/vanta-vm/vanta/internal/heap"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/statics"
	"github.com/vanta-vm/vanta/internal/types"
)

// Logger receives one line per invoked static constructor when verbose
// logging is enabled, matching the diagnostic-trace style the rest of
// the module uses (plain fmt.Fprintf, no structured logging library).
type Logger func(format string, args ...interface{})

// LoadStatics enumerates every type across every loaded assembly and, for
// each Class or Struct, builds its static-field-layout value, invokes
// its static constructor (if declared) on it, and stores the result in
// st keyed by the type's canonical TypeRef string. Interfaces and
// uninstantiated generic placeholders are skipped.
//
// The external TypeDef format (spec.md §6) carries a single `fields` map
// with no static/instance distinction, so the static value's layout
// reuses the exact field ordering instance allocation uses
// (InstanceFieldLayout/StructFieldLayout) — see DESIGN.md.
//
// A failing static constructor stops the walk immediately, leaving
// earlier entries in st exactly as populated (spec.md §9's decision: no
// rollback).
func LoadStatics(mgr *assembly.Manager, hp *heap.Heap, st *statics.Map, verbose bool, log Logger) error {
	c := cpu.New(0, mgr, hp, st, cpu.Config{}, io.Discard)
	if log == nil {
		log = func(string, ...interface{}) {}
	}

	for _, asm := range mgr.Assemblies() {
		for _, name := range asm.TypeNames() {
			handle, ok := asm.LookupType(name)
			if !ok {
				continue
			}
			if err := initType(c, hp, st, handle, log); err != nil {
				return err
			}
		}
	}
	return nil
}

func initType(c *cpu.CPU, hp *heap.Heap, st *statics.Map, handle types.TypeHandle, log Logger) error {
	switch handle.Kind {
	case types.HandleClass:
		return initClass(c, hp, st, handle, log)
	case types.HandleStruct:
		return initStruct(c, st, handle, log)
	default:
		return nil
	}
}

func initClass(c *cpu.CPU, hp *heap.Heap, st *statics.Map, handle types.TypeHandle, log Logger) error {
	class := handle.Class()
	obj := types.NewObject(class.MT)
	h := heap.Alloc(hp, types.NewByRefObject(obj))
	receiver := types.Reference(h)

	if class.MT.Methods.Has(ident.StaticCtor) {
		log("%s -> sctor invoked", class.Name)
	}
	if err := invokeStaticCtor(c, class.MT, receiver); err != nil {
		return fmt.Errorf("static init %s: %w", class.Name, err)
	}
	st.Set(handle.StringReference().String(), receiver)
	return nil
}

func initStruct(c *cpu.CPU, st *statics.Map, handle types.TypeHandle, log Logger) error {
	strct := handle.Struct()
	so := types.NewStructObject(strct.MT)
	v := types.StructValue(so)

	if strct.MT.Methods.Has(ident.StaticCtor) {
		log("%s -> sctor invoked", strct.Name)
	}
	if err := invokeStaticCtor(c, strct.MT, v); err != nil {
		return fmt.Errorf("static init %s: %w", strct.Name, err)
	}
	st.Set(handle.StringReference().String(), v)
	return nil
}

// invokeStaticCtor calls receiver's own (non-inherited) static
// constructor, if one was declared directly on mt. A parent's static
// constructor runs separately, when the parent type itself is visited by
// LoadStatics, so the lookup here deliberately does not fall through the
// parent chain the way MethodTable.GetMethod's Single form does.
func invokeStaticCtor(c *cpu.CPU, mt *types.MethodTable, receiver types.Value) error {
	if !mt.Methods.Has(ident.StaticCtor) {
		return nil
	}
	_, err := c.CallInstance(receiver, ident.SingleMethod(ident.StaticCtor), nil)
	return err
}
