// The vantavm tool loads assembly descriptors and runs them on the
// managed-language VM. Run "vantavm help" for a list of commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		exitf("%v\n", err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vantavm",
		Short: "A register-based managed-language virtual machine",
	}
	root.AddCommand(runCmd(), disasmCmd(), replCmd(), heapStatsCmd())
	return root
}

func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(2)
}
