package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range append([]string{
		"CITEVIEW_BACKEND_URL", "CITEVIEW_BACKEND_TIMEOUT", "CITEVIEW_RELAY_ADDR",
		"CITEVIEW_LOG_FILE", "CITEVIEW_LOG_LEVEL", "CITEVIEW_CACHE_DIR",
	}, legacyBackendVars...) {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Options{Dir: t.TempDir()})
	require.NoError(t, err)

	require.Len(t, cfg.Documents, 2)
	assert.Equal(t, "pdf1", cfg.Documents[0].ID)
	assert.Equal(t, "PDF 1", cfg.Documents[0].Title)
	assert.Equal(t, "assets/2024-conocophillips-proxy-statement.pdf", cfg.Documents[1].Source)
	assert.Empty(t, cfg.Backend.URL)
	assert.Zero(t, cfg.Backend.Timeout)
	assert.Equal(t, ":8787", cfg.Relay.Addr)
	assert.Equal(t, "citeview.log", cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CITEVIEW_BACKEND_URL", "http://backend:8000")
	t.Setenv("CITEVIEW_BACKEND_TIMEOUT", "45s")
	t.Setenv("CITEVIEW_RELAY_ADDR", "127.0.0.1:9000")
	t.Setenv("CITEVIEW_LOG_LEVEL", "debug")
	t.Setenv("CITEVIEW_CACHE_DIR", "/tmp/citeview-cache")

	cfg, err := Load(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Relay.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/citeview-cache", cfg.Cache.Dir)
}

func TestLoadLegacyBackendVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "http://second")
	t.Setenv("VITE_BACKEND_URL", "http://first")

	cfg, err := Load(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "http://first", cfg.Backend.URL)

	t.Setenv("CITEVIEW_BACKEND_URL", "http://primary")
	cfg, err = Load(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "http://primary", cfg.Backend.URL)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".env", "CITEVIEW_BACKEND_URL=http://from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("CITEVIEW_BACKEND_URL") })

	cfg, err := Load(Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv", cfg.Backend.URL)
}

func TestLoadYAMLFileReplacesCatalog(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "citeview.yaml", `
documents:
  - id: annual
    title: Annual Report
    source: docs/annual.pdf
    aliases: [ar.pdf]
backend:
  url: http://yaml-backend
log:
  level: warn
`)
	cfg, err := Load(Options{Dir: dir})
	require.NoError(t, err)
	require.Len(t, cfg.Documents, 1)
	assert.Equal(t, "annual", cfg.Documents[0].ID)
	assert.Equal(t, []string{"ar.pdf"}, cfg.Documents[0].Aliases)
	assert.Equal(t, "http://yaml-backend", cfg.Backend.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":8787", cfg.Relay.Addr)
}

func TestLoadExplicitJSONFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "custom.json", `{"relay":{"addr":":9999"}}`)
	cfg, err := Load(Options{Path: path, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Relay.Addr)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cases := []struct {
		name string
		path string
	}{
		{name: "missing", path: filepath.Join(dir, "nope.yaml")},
		{name: "unsupported", path: writeFile(t, dir, "cfg.toml", "a = 1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(Options{Path: tc.path, Dir: dir})
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Documents: []Document{
				{ID: "a", Source: "a.pdf"},
				{ID: "b", Source: "b.pdf"},
			},
			Relay: Relay{Addr: ":8787"},
			Log:   Log{Level: "info"},
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty catalog", mutate: func(c *Config) { c.Documents = nil }},
		{name: "missing id", mutate: func(c *Config) { c.Documents[0].ID = "" }},
		{name: "missing source", mutate: func(c *Config) { c.Documents[1].Source = "" }},
		{name: "duplicate id", mutate: func(c *Config) { c.Documents[1].ID = "a" }},
		{name: "duplicate source", mutate: func(c *Config) { c.Documents[1].Source = "a.pdf" }},
		{name: "alias clash", mutate: func(c *Config) { c.Documents[1].Aliases = []string{"a.pdf"} }},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		{name: "no relay addr", mutate: func(c *Config) { c.Relay.Addr = "" }},
	}

	base := valid()
	require.NoError(t, base.Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCatalogFallsBackToIDForTitle(t *testing.T) {
	cfg := Config{Documents: []Document{{ID: "deck", Source: "deck.pdf"}}}
	docs := cfg.Catalog()
	require.Len(t, docs, 1)
	assert.Equal(t, "deck", docs[0].Title)
}
