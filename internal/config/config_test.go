package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidesk/internal/model"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "apidesk.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
title: Pet Store
dark_mode: true
spec: https://petstore.example/v2/swagger.json
request_timeout: 30s
data_dir: `+dir+`
global_headers:
  - key: X-Client
    value: apidesk
environments:
  - name: local
    base_url: http://localhost:8080
  - name: staging
    base_url: https://staging.example
`), 0o644))

	cfg, err := Load(New(), file)
	require.NoError(t, err)
	assert.Equal(t, "Pet Store", cfg.Title)
	assert.True(t, cfg.DarkMode)
	assert.Equal(t, "https://petstore.example/v2/swagger.json", cfg.Spec)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []model.Header{{Key: "X-Client", Value: "apidesk"}}, cfg.GlobalHeaders)
	assert.Equal(t, []model.Environment{
		{Name: "local", BaseURL: "http://localhost:8080"},
		{Name: "staging", BaseURL: "https://staging.example"},
	}, cfg.Environments)
	assert.Equal(t, filepath.Join(dir, "apidesk.db"), cfg.DatabasePath())
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APIDESK_BASE_URL", " http://env.example ")
	t.Setenv("APIDESK_DEBUG", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "apidesk", cfg.Title)
	assert.False(t, cfg.DarkMode)
	assert.Equal(t, "http://env.example", cfg.BaseURL)
	assert.True(t, cfg.Debug)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Equal(t, ".apidesk", filepath.Base(cfg.DataDir))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSpecSource(t *testing.T) {
	assert.Equal(t, "", SpecSource("  "))
	assert.Equal(t, "http://h/openapi.json", SpecSource("http://h/openapi.json"))
	assert.Equal(t, "@/tmp/a.json", SpecSource("@/tmp/a.json"))

	dir := t.TempDir()
	chdir(t, dir)
	got := SpecSource("docs/openapi.json")
	assert.Equal(t, "@"+filepath.Join(dir, "docs", "openapi.json"), got)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.NoError(t, os.Chdir(abs))
	t.Setenv("PWD", abs)
	t.Cleanup(func() { _ = os.Chdir(old) })
}
