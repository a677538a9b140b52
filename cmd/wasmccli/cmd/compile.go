package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunholo/wasmc/internal/diagnostics"
	"github.com/sunholo/wasmc/internal/pipeline"
)

var (
	flagJSON bool
	flagFull bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file.wsc>",
	Short: "Compile one source file and print its diagnostics and emitted IR",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	addOptionFlags(compileCmd)
	compileCmd.Flags().BoolVar(&flagJSON, "json", false, "emit diagnostics and the IR dump as schema-versioned JSON")
	compileCmd.Flags().BoolVar(&flagFull, "full", false, "include full function bodies in the IR dump instead of just a summary")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read file %q: %w", path, err)
	}

	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	result := pipeline.Compile(string(content), path, opts)

	if flagJSON {
		printDiagnosticsJSON(result.Diags)
	} else {
		printDiagnosticsText(result.Diags)
	}

	if result.Module == nil {
		return fmt.Errorf("compilation failed")
	}

	if !flagJSON {
		fmt.Printf("%s %d function(s), %d global(s), %d import(s)\n",
			green("✓"), len(result.Module.Functions), len(result.Module.Globals), len(result.Module.Imports))
	}
	return dumpModule(result.Module, flagFull, flagJSON)
}

func printDiagnosticsText(reports []*diagnostics.Report) {
	for _, r := range reports {
		colorFn := yellow
		if r.Severity != diagnostics.SeverityWarning.String() {
			colorFn = red
		}
		loc := ""
		if r.Range != nil {
			loc = " " + cyan(r.Range.Start.String())
		}
		fmt.Fprintf(os.Stderr, "%s[%s]%s %s\n", colorFn(strings.ToUpper(r.Severity)), r.Code, loc, r.Message)
	}
}

func printDiagnosticsJSON(reports []*diagnostics.Report) {
	enc := json.NewEncoder(os.Stderr)
	for _, r := range reports {
		_ = enc.Encode(r)
	}
}
