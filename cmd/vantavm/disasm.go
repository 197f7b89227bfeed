package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vanta-vm/vanta/internal/assembly"
	"github.com/vanta-vm/vanta/internal/corelib"
	"github.com/vanta-vm/vanta/internal/isa"
	"github.com/vanta-vm/vanta/internal/loader"
	"github.com/vanta-vm/vanta/internal/types"
)

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <assembly-dir-or-file>",
		Short: "Print every loaded method's instruction stream",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runDisasm(args[0])
		},
	}
}

func runDisasm(path string) {
	descs, err := loadDescriptors(path)
	if err != nil {
		exitf("%s: %v\n", path, err)
	}

	mgr := assembly.NewManager()
	if err := corelib.Build(mgr); err != nil {
		exitf("%v\n", err)
	}
	if err := loader.Load(mgr, descs); err != nil {
		exitf("%v\n", err)
	}
	if err := mgr.ResolveAll(); err != nil {
		exitf("%v\n", err)
	}

	t := newTabWriter(os.Stdout)
	for _, asm := range mgr.Assemblies() {
		for _, name := range asm.TypeNames() {
			h, ok := asm.LookupType(name)
			if !ok {
				continue
			}
			mt := h.MethodTableOf()
			if mt == nil {
				continue
			}
			for _, meth := range mt.Methods.Values() {
				disasmMethod(t, name, meth)
			}
		}
	}
	t.Flush()
}

func disasmMethod(t *tabwriter.Writer, owner interface{ String() string }, m *types.Method) {
	fmt.Fprintf(t, "%s::%s\n", owner, m.Name)
	if m.Entry.Kind == types.EntryNative {
		fmt.Fprintf(t, "  \t<native>\n")
		return
	}
	for i, instr := range m.Instructions {
		fmt.Fprintf(t, "  %d\t%s\n", i, formatInstr(instr))
	}
}

func formatInstr(in isa.Instruction) string {
	switch in.Op {
	case isa.OpLoadTrue:
		return fmt.Sprintf("LoadTrue\tR[%d]", in.Dst)
	case isa.OpLoadFalse:
		return fmt.Sprintf("LoadFalse\tR[%d]", in.Dst)
	case isa.OpLoadU8:
		return fmt.Sprintf("LoadU8\tR[%d], %d", in.Dst, in.U8)
	case isa.OpLoadU8K:
		return fmt.Sprintf("LoadU8K\tR[%d], %d", in.Dst, in.U8)
	case isa.OpLoadU64:
		return fmt.Sprintf("LoadU64\tR[%d], %d", in.Dst, in.U64)
	case isa.OpLoadArg:
		return fmt.Sprintf("LoadArg\tR[%d], args[%d]", in.Dst, in.Arg)
	case isa.OpLoadAllArgsAsArray:
		return fmt.Sprintf("LoadAllArgsAsArray\tR[%d]", in.Dst)
	case isa.OpLoadStatic:
		return fmt.Sprintf("LoadStatic\tR[%d], %s.%s", in.Dst, in.TypeRef, in.FieldName)
	case isa.OpNewObject:
		return fmt.Sprintf("NewObject\tR[%d], %s::%s", in.Dst, in.TypeRef, in.CtorName)
	case isa.OpInstanceCall:
		return fmt.Sprintf("InstanceCall\tR[%d] <- R[%d].%s(%v)", in.Dst, in.Receiver, in.MethodRef, in.Args)
	case isa.OpStaticCall:
		return fmt.Sprintf("StaticCall\tR[%d] <- %s::%s(%v)", in.Dst, in.TypeRef, in.MethodRef, in.Args)
	case isa.OpReturnVal:
		return fmt.Sprintf("ReturnVal\tR[%d]", in.Src)
	case isa.OpSetField:
		return fmt.Sprintf("SetField\tthis.%s = R[%d]", in.FieldName, in.Src)
	default:
		return "?"
	}
}
