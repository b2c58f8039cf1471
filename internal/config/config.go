package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robottwo/suggester/pkg/suggester"
)

const appName = "suggester"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Sources SourcesConfig `yaml:"sources"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type EngineConfig struct {
	MaxSuggestions int `yaml:"max_suggestions"`
	FetchDelayMs   int `yaml:"fetch_delay_ms"`
	// FetchTimeoutMs of zero leaves fetches unbounded.
	FetchTimeoutMs int `yaml:"fetch_timeout_ms"`
}

type SourcesConfig struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Static     StaticConfig     `yaml:"static"`
	History    HistoryConfig    `yaml:"history"`
	Fuzzy      FuzzyConfig      `yaml:"fuzzy"`
	Remote     RemoteConfig     `yaml:"remote"`
	Wordserve  WordserveConfig  `yaml:"wordserve"`
}

// DictionaryConfig points at a word list with one "word<TAB>frequency" entry
// per line.
type DictionaryConfig struct {
	Path string `yaml:"path"`
}

type StaticConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FuzzyConfig switches the static list from prefix to fuzzy matching.
type FuzzyConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RemoteConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// WordserveConfig starts a wordserve-compatible completion process.
type WordserveConfig struct {
	Command []string `yaml:"command"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File is a plain path, or a zstd:// URL for a compressed log.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxSuggestions: suggester.DefaultMaxSuggestions,
			FetchDelayMs:   int(suggester.DefaultFetchDelay / time.Millisecond),
			FetchTimeoutMs: 2000,
		},
		Sources: SourcesConfig{
			History: HistoryConfig{
				Enabled: true,
				Path:    filepath.Join("~", "."+appName, "history.db"),
			},
			Remote: RemoteConfig{TimeoutMs: 2000},
		},
		Server: ServerConfig{Addr: "127.0.0.1:8089"},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join("~", "."+appName, appName+".log"),
		},
	}
}

// Paths returns the locations checked for a config file, in order.
func Paths() []string {
	var paths []string

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, appName, "config.yaml"))
	}
	if home := homeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.yaml"))
	}

	return paths
}

// Load reads the config file at explicit, or the first file found in Paths
// when explicit is empty. Values missing from the file keep their defaults.
// It returns the path that was loaded, empty when only defaults apply.
func Load(explicit string) (*Config, string, error) {
	cfg := Default()

	if explicit != "" {
		if err := cfg.loadFile(explicit); err != nil {
			return nil, "", err
		}
		cfg.expand()
		return cfg, explicit, nil
	}

	for _, path := range Paths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.loadFile(path); err != nil {
			return nil, "", err
		}
		cfg.expand()
		return cfg, path, nil
	}

	cfg.expand()
	return cfg, "", nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return c.Validate()
}

// expand resolves "~" in every path setting.
func (c *Config) expand() {
	for _, p := range []*string{
		&c.Sources.Dictionary.Path,
		&c.Sources.Static.Path,
		&c.Sources.History.Path,
		&c.Log.File,
	} {
		*p = ExpandHome(*p)
	}
}

// Validate rejects values the engine or the sources cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Engine.MaxSuggestions <= 0:
		return errors.Wrapf(ErrInvalidConfig, "engine.max_suggestions must be positive, got %d", c.Engine.MaxSuggestions)
	case c.Engine.FetchDelayMs < 0:
		return errors.Wrapf(ErrInvalidConfig, "engine.fetch_delay_ms must not be negative, got %d", c.Engine.FetchDelayMs)
	case c.Engine.FetchTimeoutMs < 0:
		return errors.Wrapf(ErrInvalidConfig, "engine.fetch_timeout_ms must not be negative, got %d", c.Engine.FetchTimeoutMs)
	case c.Sources.Remote.TimeoutMs < 0:
		return errors.Wrapf(ErrInvalidConfig, "sources.remote.timeout_ms must not be negative, got %d", c.Sources.Remote.TimeoutMs)
	case c.Sources.Fuzzy.Enabled && c.Sources.Static.Path == "":
		return errors.Wrap(ErrInvalidConfig, "sources.fuzzy needs sources.static.path")
	case c.Sources.History.Enabled && c.Sources.History.Path == "":
		return errors.Wrap(ErrInvalidConfig, "sources.history.path is required when history is enabled")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	return nil
}

// EngineOptions converts the engine section into engine options.
func (c *Config) EngineOptions() suggester.Options {
	options := suggester.NewOptions()
	options.MaxSuggestions = c.Engine.MaxSuggestions
	options.FetchDelay = time.Duration(c.Engine.FetchDelayMs) * time.Millisecond
	options.FetchTimeout = time.Duration(c.Engine.FetchTimeoutMs) * time.Millisecond
	return options
}

// Save writes c to path as YAML. Concurrent writers are serialized with a
// lock file next to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	lockPath := path + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return errors.Wrap(err, "failed to open lock file")
	}
	defer func() {
		_ = unlockFile(lock)
		_ = lock.Close()
	}()

	if err := lockFile(lock); err != nil {
		return errors.Wrap(err, "failed to acquire lock")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return errors.Wrap(os.Rename(tmp, path), "failed to replace config")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home := homeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, path[1:])
}

// homeDir returns the user's home directory, using os.UserHomeDir() for portability
// across different platforms (including Windows where HOME is not typically set).
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to HOME env var if os.UserHomeDir() fails
		return os.Getenv("HOME")
	}
	return home
}
