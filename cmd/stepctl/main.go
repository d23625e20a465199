package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stepctl",
		Short: "Generate and solve step-based math problems in the terminal",
		Long: `stepctl drives the problem engines without the HTTP service.

It lists the registered engines, prints fully worked grids with their
steps, and runs an interactive solving session on stdin.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newEnginesCmd(),
		newGenerateCmd(),
		newSolveCmd(),
	)
	return rootCmd
}
