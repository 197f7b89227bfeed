package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanta-vm/vanta/internal/coredump"
	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/runtimevm"
)

func heapStatsCmd() *cobra.Command {
	var entryType, entryAssembly string
	var progArgs []string

	cmd := &cobra.Command{
		Use:   "heap-stats <assembly-dir-or-file>",
		Short: "Run an entry point, then print final heap allocation/root counts",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runHeapStats(args[0], entryAssembly, entryType, progArgs)
		},
	}
	cmd.Flags().StringVar(&entryAssembly, "assembly", "", "entry assembly name (defaults to the sole loaded assembly)")
	cmd.Flags().StringVar(&entryType, "type", "", "entry class name (required)")
	cmd.Flags().StringArrayVar(&progArgs, "arg", nil, "program argument (repeatable)")
	cmd.MarkFlagRequired("type")
	return cmd
}

func runHeapStats(path, asmName, entryType string, progArgs []string) {
	descs, err := loadDescriptors(path)
	if err != nil {
		exitf("%s: %v\n", path, err)
	}
	if asmName == "" {
		if len(descs) != 1 {
			exitf("--assembly is required when loading more than one assembly\n")
		}
		asmName = string(descs[0].Name)
	}

	vm, err := runtimevm.New(runtimevm.Config{Stdout: os.Stdout})
	if err != nil {
		exitf("%v\n", err)
	}
	if err := vm.LoadAssemblies(descs); err != nil {
		exitf("%v\n", err)
	}
	if err := vm.LoadStatics(); err != nil {
		exitf("%v\n", err)
	}
	code, runErr := vm.Run(ident.Name(asmName), ident.Name(entryType), progArgs)

	vm.Heap().Collect()
	snap := coredump.Take(vm.Heap())

	t := newTabWriter(os.Stdout)
	fmt.Fprintf(t, "exit code\t%d\n", code)
	if runErr != nil {
		fmt.Fprintf(t, "run error\t%v\n", runErr)
	}
	fmt.Fprintf(t, "live allocations\t%d\n", snap.Live)
	fmt.Fprintf(t, "rooted allocations\t%d\n", snap.Rooted)
	for _, kc := range snap.ByKind {
		fmt.Fprintf(t, "  %s\t%d\n", coredump.KindString(kc.Kind), kc.Count)
	}
	t.Flush()

	if len(snap.ByClass) > 0 {
		fmt.Fprintln(os.Stdout, "\nlive objects by class:")
		ct := newTabWriter(os.Stdout)
		for _, cc := range snap.ByClass {
			fmt.Fprintf(ct, "  %s\t%d\n", cc.Name, cc.Count)
		}
		ct.Flush()
	}
}
