package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	home := isolate(t)

	cfg, path, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, 8, cfg.Engine.MaxSuggestions)
	assert.Equal(t, 100, cfg.Engine.FetchDelayMs)
	assert.True(t, cfg.Sources.History.Enabled)
	assert.Equal(t, filepath.Join(home, ".suggester", "history.db"), cfg.Sources.History.Path)
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".config", "suggester", "config.yaml")
	writeFile(t, path, `
engine:
  max_suggestions: 4
sources:
  static:
    path: ~/fruits.yaml
    watch: true
  fuzzy:
    enabled: true
log:
  level: debug
`)

	cfg, loaded, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, path, loaded)
	assert.Equal(t, 4, cfg.Engine.MaxSuggestions)
	assert.Equal(t, 100, cfg.Engine.FetchDelayMs, "unset values keep defaults")
	assert.Equal(t, filepath.Join(home, "fruits.yaml"), cfg.Sources.Static.Path)
	assert.True(t, cfg.Sources.Static.Watch)
	assert.True(t, cfg.Sources.Fuzzy.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_XDGTakesPrecedence(t *testing.T) {
	home := isolate(t)
	xdg := filepath.Join(home, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	writeFile(t, filepath.Join(xdg, "suggester", "config.yaml"), "engine: {max_suggestions: 3}\n")
	writeFile(t, filepath.Join(home, ".config", "suggester", "config.yaml"), "engine: {max_suggestions: 5}\n")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.MaxSuggestions)
}

func TestLoad_Explicit(t *testing.T) {
	home := isolate(t)

	_, _, err := Load(filepath.Join(home, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, "server: {addr: ':9000'}\n")

	cfg, loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_Malformed(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "bad.yaml")
	writeFile(t, path, "engine: [not, a, map\n")

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max suggestions", func(c *Config) { c.Engine.MaxSuggestions = 0 }},
		{"negative delay", func(c *Config) { c.Engine.FetchDelayMs = -1 }},
		{"negative timeout", func(c *Config) { c.Engine.FetchTimeoutMs = -1 }},
		{"negative remote timeout", func(c *Config) { c.Sources.Remote.TimeoutMs = -5 }},
		{"fuzzy without list", func(c *Config) { c.Sources.Fuzzy.Enabled = true }},
		{"history without path", func(c *Config) { c.Sources.History.Path = "" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine = EngineConfig{MaxSuggestions: 4, FetchDelayMs: 50, FetchTimeoutMs: 0}

	options := cfg.EngineOptions()
	assert.Equal(t, 4, options.MaxSuggestions)
	assert.Equal(t, 50*time.Millisecond, options.FetchDelay)
	assert.Zero(t, options.FetchTimeout)
}

func TestSave_RoundTrips(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "nested", "config.yaml")

	cfg := Default()
	cfg.Engine.MaxSuggestions = 6
	cfg.Sources.Wordserve.Command = []string{"wordserve", "-d", "dict"}
	require.NoError(t, cfg.Save(path))

	loaded, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Engine.MaxSuggestions)
	assert.Equal(t, []string{"wordserve", "-d", "dict"}, loaded.Sources.Wordserve.Command)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExpandHome(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "a", "b"), ExpandHome("~/a/b"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
	assert.Equal(t, "", ExpandHome(""))
}
