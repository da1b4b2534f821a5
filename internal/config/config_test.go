package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlay/internal/relation"
)

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "single", cfg.Backend)
	assert.Equal(t, 1, cfg.Partitions)
	assert.Equal(t, relation.DefaultBoundaryDepth, cfg.NBD)
}

func TestLoadOrDefaultFallsBackWhenFileMissing(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "single", cfg.Backend)
	assert.Equal(t, 1, cfg.Partitions)
}
