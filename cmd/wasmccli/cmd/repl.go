package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sunholo/wasmc/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session compiling one declaration or statement at a time",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}
		session := repl.New(repl.Config{Options: opts, Version: Version})
		session.Start(os.Stdout)
		return nil
	},
}

func init() {
	addOptionFlags(replCmd)
}
