// Package config loads YAML-backed compiler defaults, mirroring the
// teacher's internal/eval_harness.LoadSpec: read the file, unmarshal with
// yaml.v3, validate the handful of fields that must make sense together,
// and hand back a plain struct the CLI composes with its own flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/typesys"
)

// Config is the on-disk shape of a wasmccli config file. Every field mirrors
// one compiler.Options field; zero values mean "use the compiler default",
// matching how Options itself is built (a zero Options is a usable one).
type Config struct {
	Target        string            `yaml:"target"`
	NoTreeShaking bool              `yaml:"no_tree_shaking"`
	NoAssert      bool              `yaml:"no_assert"`
	ImportMemory  bool              `yaml:"import_memory"`
	ImportTable   bool              `yaml:"import_table"`
	SourceMap     bool              `yaml:"source_map"`
	MemoryBase    int32             `yaml:"memory_base"`
	GlobalAliases map[string]string `yaml:"global_aliases"`
	Features      []string          `yaml:"features"`
}

// Load reads and validates a config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Target != "" && cfg.Target != "wasm32" && cfg.Target != "wasm64" {
		return nil, fmt.Errorf("config: unknown target %q (want \"wasm32\" or \"wasm64\")", cfg.Target)
	}
	for _, f := range cfg.Features {
		if _, ok := featureNames[f]; !ok {
			return nil, fmt.Errorf("config: unknown feature %q", f)
		}
	}

	return &cfg, nil
}

var featureNames = map[string]compiler.Feature{
	"sign-extension": compiler.FeatureSignExtension,
	"mutable-global": compiler.FeatureMutableGlobal,
}

// Options builds a compiler.Options from cfg, layering cfg over base so that
// a zero/missing field in the config file falls back to whatever the caller
// already set (typically compiler.Options{}; the CLI applies its explicitly
// set flags on top of the result afterwards).
func (cfg *Config) Options(base compiler.Options) compiler.Options {
	opts := base
	switch cfg.Target {
	case "wasm32":
		opts.Target = typesys.Wasm32
	case "wasm64":
		opts.Target = typesys.Wasm64
	}
	opts.NoTreeShaking = opts.NoTreeShaking || cfg.NoTreeShaking
	opts.NoAssert = opts.NoAssert || cfg.NoAssert
	opts.ImportMemory = opts.ImportMemory || cfg.ImportMemory
	opts.ImportTable = opts.ImportTable || cfg.ImportTable
	opts.SourceMap = opts.SourceMap || cfg.SourceMap
	if cfg.MemoryBase != 0 {
		opts.MemoryBase = cfg.MemoryBase
	}
	if len(cfg.GlobalAliases) > 0 {
		if opts.GlobalAliases == nil {
			opts.GlobalAliases = map[string]string{}
		}
		for k, v := range cfg.GlobalAliases {
			opts.GlobalAliases[k] = v
		}
	}
	for _, f := range cfg.Features {
		opts.Features |= featureNames[f]
	}
	return opts
}
