package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/wasmc/internal/compiler"
	"github.com/sunholo/wasmc/internal/typesys"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wasmc.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
target: wasm64
no_tree_shaking: true
memory_base: 1024
features: ["sign-extension"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wasm64", cfg.Target)
	assert.True(t, cfg.NoTreeShaking)

	opts := cfg.Options(compiler.Options{})
	assert.Equal(t, typesys.Wasm64, opts.Target)
	assert.True(t, opts.NoTreeShaking)
	assert.EqualValues(t, 1024, opts.MemoryBase)
	assert.True(t, opts.Features.Has(compiler.FeatureSignExtension))
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	path := writeConfig(t, "target: wasm16\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFeature(t *testing.T) {
	path := writeConfig(t, "features: [\"does-not-exist\"]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestOptionsLeavesBaseAloneWhenConfigEmpty(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)

	base := compiler.Options{Target: typesys.Wasm64, MemoryBase: 4096}
	opts := cfg.Options(base)
	assert.Equal(t, base, opts)
}
