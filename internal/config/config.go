// Package config loads ganttagent settings from a TOML file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/pelletier/go-toml/v2"
)

// Config is the complete service configuration.
type Config struct {
	LLM      llm.Config    `toml:"llm"`
	Server   ServerConfig  `toml:"server"`
	History  HistoryConfig `toml:"history"`
	Prompt   PromptConfig  `toml:"prompt"`
	Log      LogConfig     `toml:"log"`
	Timezone string        `toml:"timezone"` // IANA name; empty means the host zone
}

type ServerConfig struct {
	Port         int      `toml:"port"`
	CORSOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty means ~/.ganttagent/history.db
}

type PromptConfig struct {
	TemplatePath string `toml:"template_path"` // empty means the embedded template
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultCORSOrigins are the front-end dev servers allowed by default.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5173",
}

func DefaultConfig() Config {
	return Config{
		LLM: llm.DefaultConfig(),
		Server: ServerConfig{
			Port:         8000,
			CORSOrigins:  append([]string(nil), DefaultCORSOrigins...),
			MaxBodyBytes: 1 << 20,
		},
		History: HistoryConfig{Enabled: true},
		Log:     LogConfig{Level: "info"},
	}
}

// ConfigPath returns $GANTTAGENT_CONFIG or ~/.config/ganttagent/config.toml.
func ConfigPath() (string, error) {
	if v := os.Getenv("GANTTAGENT_CONFIG"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ganttagent", "config.toml"), nil
}

// Load reads the config file at ConfigPath, then applies env overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path, then applies env overrides.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	llm.ApplyEnv(&cfg.LLM)

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("GANTTAGENT_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	if v := os.Getenv("GANTTAGENT_HISTORY_DB"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("GANTTAGENT_PROMPT_TEMPLATE"); v != "" {
		cfg.Prompt.TemplatePath = v
	}
	if v := os.Getenv("GANTTAGENT_TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("GANTTAGENT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// HistoryPath returns the SQLite file for translation history.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".ganttagent", "history.db"), nil
}

// Location resolves Timezone, defaulting to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps Log.Level to a slog level; unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Server.Port)
}
