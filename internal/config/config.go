// Package config loads the studio configuration file.
//
// The file may be YAML (.yaml, .yml) or TOML (.toml). Unknown keys are
// rejected in both formats. Keys left out keep their defaults.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// Config is the resolved configuration.
type Config struct {
	// Database is the SQLite path used when --db is not given.
	Database string `yaml:"database" toml:"database" json:"database"`

	// DefaultPreset applies to scenarios that do not name a preset.
	DefaultPreset string `yaml:"default_preset" toml:"default_preset" json:"default_preset"`

	// PresetsFile is an optional CUE file of extra presets. A relative path
	// is resolved against the config file's directory.
	PresetsFile string `yaml:"presets_file" toml:"presets_file" json:"presets_file,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`
}

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:      "studio.db",
		DefaultPreset: string(preset.Default),
		LogLevel:      "info",
	}
}

// Load reads path and applies it over Default. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	case ".toml":
		err = decodeTOML(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.normalize()
	if cfg.PresetsFile != "" && !filepath.IsAbs(cfg.PresetsFile) {
		cfg.PresetsFile = filepath.Join(filepath.Dir(path), cfg.PresetsFile)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func decodeTOML(data []byte, cfg *Config) error {
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func (c *Config) normalize() {
	c.Database = strings.TrimSpace(c.Database)
	c.DefaultPreset = strings.TrimSpace(c.DefaultPreset)
	c.PresetsFile = strings.TrimSpace(c.PresetsFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DefaultPreset == "" {
		c.DefaultPreset = string(preset.Default)
	}
}

// Validate checks values that do not depend on other files.
func (c Config) Validate() error {
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("log_level %q: must be one of %v", c.LogLevel, LogLevels)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Catalog returns the built-in presets merged with PresetsFile, if set.
// DefaultPreset must name a preset of the result.
func (c Config) Catalog() (*preset.Catalog, error) {
	cat := preset.Builtin()
	if c.PresetsFile != "" {
		extra, err := preset.CompileFile(c.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("presets_file: %w", err)
		}
		cat = cat.Merge(extra)
	}
	if c.DefaultPreset != "" && !cat.Has(preset.Name(c.DefaultPreset)) {
		return nil, fmt.Errorf("default_preset %q is not defined (have %v)", c.DefaultPreset, cat.Names())
	}
	return cat, nil
}
