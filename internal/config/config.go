// Package config loads the quotesnap.toml settings shared by the CLI and the
// HTTP server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the default config file name.
const FileName = "quotesnap.toml"

// Environment variables that override values from the file.
const (
	EnvListen      = "QUOTESNAP_LISTEN"
	EnvStaticRoot  = "QUOTESNAP_STATIC_ROOT"
	EnvLogLevel    = "QUOTESNAP_LOG_LEVEL"
	EnvRenderLimit = "QUOTESNAP_RENDER_TIMEOUT"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Assets    AssetsConfig    `toml:"assets"`
	Fonts     FontsConfig     `toml:"fonts"`
	Templates TemplatesConfig `toml:"templates"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen               string `toml:"listen"`
	RenderTimeoutSeconds int    `toml:"render_timeout_seconds"`
}

// AssetsConfig controls where background images come from.
type AssetsConfig struct {
	StaticRoot          string `toml:"static_root"`
	FetchRetries        int    `toml:"fetch_retries"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
}

// FontsConfig controls font discovery.
type FontsConfig struct {
	Dir      string   `toml:"dir"`
	Patterns []string `toml:"patterns"`
}

// TemplatesConfig points at an optional template overrides file.
type TemplatesConfig struct {
	Overrides string `toml:"overrides"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"` // empty logs to stderr
	MaxSizeMB int    `toml:"max_size_mb"`
}

// RenderTimeout returns the per-render deadline.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Server.RenderTimeoutSeconds) * time.Second
}

// FetchTimeout returns the per-attempt timeout for remote backgrounds.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Assets.FetchTimeoutSeconds) * time.Second
}

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:               ":3000",
			RenderTimeoutSeconds: 30,
		},
		Assets: AssetsConfig{
			StaticRoot:          "public",
			FetchRetries:        2,
			FetchTimeoutSeconds: 10,
		},
		Fonts: FontsConfig{
			Dir:      "fonts",
			Patterns: []string{"**/*.{ttf,otf,woff,woff2}"},
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads the config at path on top of the defaults and applies
// environment overrides. A missing file yields the defaults. Unknown keys
// are returned as warnings.
func Load(path string) (*Config, []string, error) {
	cfg := DefaultConfig()
	var warnings []string

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, nil, fmt.Errorf("read config file: %w", err)
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("parse config: %w", err)
		}
		for _, key := range md.Undecoded() {
			warnings = append(warnings, fmt.Sprintf("unknown config key %q, ignored", key.String()))
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, warnings, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("validate config: %w", err)
	}
	return cfg, warnings, nil
}

// resolvePaths makes relative paths in a loaded file relative to the file.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Assets.StaticRoot, &c.Fonts.Dir, &c.Templates.Overrides, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv(EnvStaticRoot); v != "" {
		c.Assets.StaticRoot = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if raw := os.Getenv(EnvRenderLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a number of seconds (got %q): %w", EnvRenderLimit, raw, err)
		}
		c.Server.RenderTimeoutSeconds = n
	}
	return nil
}

// Save writes the config as TOML. The file is replaced atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".quotesnap-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels mirrors the names logger.ParseLevel understands.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "fail": true,
}

// Validate checks that all values are within acceptable ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.RenderTimeoutSeconds <= 0 {
		return fmt.Errorf("render_timeout_seconds must be > 0, got %d", c.Server.RenderTimeoutSeconds)
	}
	if c.Assets.FetchRetries < 0 {
		return fmt.Errorf("fetch_retries must be >= 0, got %d", c.Assets.FetchRetries)
	}
	if c.Assets.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds must be > 0, got %d", c.Assets.FetchTimeoutSeconds)
	}
	if !validLogLevels[strings.ToLower(strings.TrimSpace(c.Log.Level))] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, error, or fail", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("max_size_mb must be >= 0, got %d", c.Log.MaxSizeMB)
	}
	return nil
}
