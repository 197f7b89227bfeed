package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vanta-vm/vanta/internal/ident"
	"github.com/vanta-vm/vanta/internal/runtimevm"
)

func runCmd() *cobra.Command {
	var verbose, dynamicChecking bool
	var assembly, entryType string

	cmd := &cobra.Command{
		Use:   "run <assembly-dir-or-file> [-- program args]",
		Short: "Load assemblies, run static initialization, and invoke an entry point",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runRun(args[0], assembly, entryType, verbose, dynamicChecking, args[1:])
		},
	}
	cmd.Flags().StringVar(&assembly, "assembly", "", "entry assembly name (defaults to the sole loaded assembly)")
	cmd.Flags().StringVar(&entryType, "type", "", "entry class name (required)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log static-constructor invocation")
	cmd.Flags().BoolVar(&dynamicChecking, "check", false, "enable dynamic argument-count checking")
	cmd.MarkFlagRequired("type")
	return cmd
}

func runRun(path, asmName, entryType string, verbose, dynamicChecking bool, progArgs []string) {
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

	vm, err := runtimevm.New(runtimevm.Config{
		DynamicChecking: dynamicChecking,
		Verbose:         verbose,
		Stdout:          os.Stdout,
	})
	if err != nil {
		exitf("%v\n", err)
	}
	if err := vm.LoadAssemblies(descs); err != nil {
		exitf("%v\n", err)
	}
	if err := vm.LoadStatics(); err != nil {
		exitf("%v\n", err)
	}

	code, err := vm.Run(ident.Name(asmName), ident.Name(entryType), progArgs)
	if err != nil {
		exitf("%v\n", err)
	}
	os.Exit(int(code))
}
