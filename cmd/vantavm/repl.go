package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vanta-vm/vanta/internal/replshell"
	"github.com/vanta-vm/vanta/internal/runtimevm"
)

func replCmd() *cobra.Command {
	var verbose, dynamicChecking bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell over a fresh VM",
		Run: func(cmd *cobra.Command, args []string) {
			vm, err := runtimevm.New(runtimevm.Config{
				DynamicChecking: dynamicChecking,
				Verbose:         verbose,
				Stdout:          os.Stdout,
			})
			if err != nil {
				exitf("%v\n", err)
			}
			if err := replshell.New(vm, os.Stdout).Run(); err != nil {
				exitf("%v\n", err)
			}
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log static-constructor invocation")
	cmd.Flags().BoolVar(&dynamicChecking, "check", false, "enable dynamic argument-count checking")
	return cmd
}
