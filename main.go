package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barisgit/fluxdoc/cmd"
	"github.com/barisgit/fluxdoc/internal/diag"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fluxdoc",
		Short: "fluxdoc - OpenAPI documents from annotated Go code",
		Long: `fluxdoc statically analyzes annotated controllers and validated types in a Go
project and writes an OpenAPI 3.1 document, without running the application.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "📘 fluxdoc v"+version)
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'fluxdoc --help' for available commands")
		},
	}

	rootCmd.AddCommand(cmd.GenerateCmd())
	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.InitCmd())
	rootCmd.AddCommand(cmd.ConfigCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		diag.Fatal(err)
	}
}
