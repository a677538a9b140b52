package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version, Commit, and BuildTime are set by ldflags during build, mirroring
// cmd/ailang/main.go's version variables.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wasmccli %s\n", bold(Version))
		if Commit != "unknown" {
			fmt.Printf("commit: %s\n", Commit)
		}
		if BuildTime != "unknown" {
			fmt.Printf("built:  %s\n", BuildTime)
		}
	},
}
