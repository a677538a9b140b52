// Package cmd implements wasmccli's Cobra command tree: compile, repl, and
// version, mirroring cmd/ailang/main.go's colourised command dispatch but
// through Cobra subcommands rather than a flat `flag` switch.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wasmccli",
	Short: "Compile a typed, class-based source language to WebAssembly IR",
	Long: bold("wasmccli") + ` walks a resolved program and emits an
in-memory WebAssembly module representation: diagnostics, a function/global
listing, and (with --full) the complete IR tree, for inspection or further
tooling. There is no WAT or binary encoder — the emitted module tree is
the deliverable.`,
}

// Execute runs the root command, dispatching to whichever subcommand the
// arguments name.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)
}
