package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spacetraveling.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, `
name = "Do arquivo"
addr = ":4000"
revalidate = "2h"
`)
	fs, opts := newFlagSet("serve")
	require.NoError(t, parse(fs, []string{"-config", path, "-addr", ":5000", "-blocking-fallback"}))

	cfg, err := opts.config(fs)
	require.NoError(t, err)
	assert.Equal(t, "Do arquivo", cfg.Name)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Revalidate)
	assert.True(t, cfg.BlockingFallback)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	path := writeConfig(t, `addr = ":4000"`)
	t.Setenv("SPACETRAVELING_ADDR", ":6000")
	t.Setenv("SPACETRAVELING_API_ENDPOINT", "https://example.cdn.prismic.io/api/v2")

	fs, opts := newFlagSet("serve")
	require.NoError(t, parse(fs, []string{"-config", path}))

	cfg, err := opts.config(fs)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Addr)
	assert.Equal(t, "https://example.cdn.prismic.io/api/v2", cfg.APIEndpoint)
}

func TestMissingConfigFileUsesFlagsOnly(t *testing.T) {
	fs, opts := newFlagSet("build")
	require.NoError(t, parse(fs, []string{"-config", filepath.Join(t.TempDir(), "none.toml"), "-db", "x.db"}))

	cfg, err := opts.config(fs)
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.DatabasePath)
	assert.Empty(t, cfg.Name, "defaults are applied by the app")
}
