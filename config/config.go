// Package config loads the project configuration from via.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vialang/via/compiler/ir"
)

// DefaultPath is where the loader looks when no path is given.
const DefaultPath = "via.yaml"

// IRNone disables the IR snapshot when set as the ir value.
const IRNone = "none"

// Config is the root project configuration. Relative paths inside it
// resolve against Root.
type Config struct {
	// App is the directory searched for definition sources.
	App string `yaml:"app"`

	// Out is the output root the generated module is written into.
	Out string `yaml:"out"`

	// IR is the IR snapshot path; the extension selects the codec.
	// IRNone disables the snapshot.
	IR string `yaml:"ir"`

	// Module is the module path of the generated backend.
	Module string `yaml:"module"`

	// Workers bounds parallel parsing and emission.
	Workers int `yaml:"workers"`

	// Log configures command-line logging.
	Log LogConfig `yaml:"log"`

	// Root is the directory the configuration was loaded from. It
	// comes from the file's location, never from its contents.
	Root string `yaml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "console" or "json"
}

// SnapshotPath returns the IR snapshot path, or "" when the snapshot
// is disabled.
func (c *Config) SnapshotPath() string {
	if c.IR == IRNone {
		return ""
	}
	return c.IR
}

// Default returns the configuration used when no via.yaml exists,
// rooted at dir.
func Default(dir string) *Config {
	cfg := &Config{Root: dir}
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Environment variables in
// the file are expanded, VIA_* variables override individual fields
// and defaults fill whatever is left.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Root = filepath.Dir(path)

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults
// rooted at the path's directory otherwise. VIA_* overrides apply in
// both cases.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	cfg := &Config{Root: filepath.Dir(path)}
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies VIA_* environment variables. They always
// win over file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VIA_APP"); v != "" {
		cfg.App = v
	}
	if v := os.Getenv("VIA_OUT"); v != "" {
		cfg.Out = v
	}
	if v := os.Getenv("VIA_IR"); v != "" {
		cfg.IR = v
	}
	if v := os.Getenv("VIA_MODULE"); v != "" {
		cfg.Module = v
	}
	if v := os.Getenv("VIA_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("VIA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VIA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.App == "" {
		cfg.App = "app"
	}
	if cfg.Out == "" {
		cfg.Out = "gen"
	}
	if cfg.IR == "" {
		cfg.IR = path.Join(cfg.Out, "via.ir.json")
	}
	if cfg.Module == "" {
		cfg.Module = "viagen"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func validate(cfg *Config) error {
	if snap := cfg.SnapshotPath(); snap != "" {
		switch path.Ext(snap) {
		case ir.ExtJSON, ir.ExtMsgpack, ir.ExtBin:
		default:
			return fmt.Errorf("ir must end in %s, %s or %s (or be %q), got %q", ir.ExtJSON, ir.ExtMsgpack, ir.ExtBin, IRNone, cfg.IR)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[cfg.Log.Format] {
		return fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format)
	}

	return nil
}
