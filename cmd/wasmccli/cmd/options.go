package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/config"
	"github.com/sunholo/wasmc/internal/typesys"
)

// Flag variables shared by every subcommand that accepts compiler.Options
// (compile and repl); cobra.Command.Flags().Changed lets buildOptions tell
// an explicitly-passed flag apart from its default, which is what makes
// config-file values (applied first, below) overridable per-flag rather than
// all-or-nothing.
var (
	flagTarget        string
	flagNoTreeShaking bool
	flagNoAssert      bool
	flagImportMemory  bool
	flagImportTable   bool
	flagSourceMap     bool
	flagMemoryBase    int32
	flagFeatures      []string
	flagGlobalAlias   []string
	flagConfig        string
)

// addOptionFlags registers the compiler.Options-mirroring flags on cmd.
func addOptionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagTarget, "target", "wasm32", "target pointer width: wasm32 or wasm64")
	f.BoolVar(&flagNoTreeShaking, "no-tree-shaking", false, "compile every declaration, not just exports reachable from main")
	f.BoolVar(&flagNoAssert, "no-assert", false, "omit runtime assertions")
	f.BoolVar(&flagImportMemory, "import-memory", false, "import the module's linear memory instead of defining it")
	f.BoolVar(&flagImportTable, "import-table", false, "import the module's function table instead of defining it")
	f.BoolVar(&flagSourceMap, "source-map", false, "invoke the source-map hook while lowering")
	f.Int32Var(&flagMemoryBase, "memory-base", 0, "offset the static data segments begin at")
	f.StringSliceVar(&flagFeatures, "feature", nil, "enable a compiler feature (sign-extension, mutable-global), repeatable")
	f.StringSliceVar(&flagGlobalAlias, "global-alias", nil, "rename an exported global, name=alias, repeatable")
	f.StringVar(&flagConfig, "config", "", "YAML file supplying default options, overridden by any flag explicitly set")
}

// buildOptions composes a compiler.Options from, in increasing precedence:
// the compiled-in default (wasm32, every feature off), --config's file, and
// any flag the user actually passed on cmd's own command line.
func buildOptions(cmd *cobra.Command) (compiler.Options, error) {
	opts := compiler.Options{Target: typesys.Wasm32}

	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return opts, err
		}
		opts = cfg.Options(opts)
	}

	changed := cmd.Flags().Changed
	if changed("target") {
		switch flagTarget {
		case "wasm32":
			opts.Target = typesys.Wasm32
		case "wasm64":
			opts.Target = typesys.Wasm64
		default:
			return opts, fmt.Errorf("unknown --target %q (want \"wasm32\" or \"wasm64\")", flagTarget)
		}
	}
	if changed("no-tree-shaking") {
		opts.NoTreeShaking = flagNoTreeShaking
	}
	if changed("no-assert") {
		opts.NoAssert = flagNoAssert
	}
	if changed("import-memory") {
		opts.ImportMemory = flagImportMemory
	}
	if changed("import-table") {
		opts.ImportTable = flagImportTable
	}
	if changed("source-map") {
		opts.SourceMap = flagSourceMap
	}
	if changed("memory-base") {
		opts.MemoryBase = flagMemoryBase
	}
	if changed("feature") {
		for _, name := range flagFeatures {
			switch name {
			case "sign-extension":
				opts.Features |= compiler.FeatureSignExtension
			case "mutable-global":
				opts.Features |= compiler.FeatureMutableGlobal
			default:
				return opts, fmt.Errorf("unknown --feature %q", name)
			}
		}
	}
	if changed("global-alias") {
		opts.GlobalAliases = map[string]string{}
		for _, kv := range flagGlobalAlias {
			name, alias, ok := strings.Cut(kv, "=")
			if !ok {
				return opts, fmt.Errorf("--global-alias wants name=alias, got %q", kv)
			}
			opts.GlobalAliases[name] = alias
		}
	}

	return opts, nil
}
