package anthropic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables consulted by LoadConfig. They take precedence over
// the config file.
const (
	EnvAPIKey  = "ANTHROPIC_API_KEY" //nolint:gosec // variable name, not a credential
	EnvBaseURL = "ANTHROPIC_BASE_URL"
)

// fileConfig is the on-disk TOML shape.
type fileConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	APIVersion string `toml:"api_version"`
	UserAgent  string `toml:"user_agent"`
}

// DefaultConfigPath returns the conventional config file location,
// $XDG_CONFIG_HOME/anthropic/config.toml (or ~/.config/anthropic/config.toml).
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "anthropic", "config.toml"), nil
}

// LoadConfig assembles a Config from the TOML file at path (or the default
// location when path is empty) overlaid with environment variables. A missing
// file is not an error; a file that fails to parse is.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
	}
	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg := Config{
		APIKey:     file.APIKey,
		BaseURL:    file.BaseURL,
		APIVersion: file.APIVersion,
		UserAgent:  file.UserAgent,
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}
	if base := os.Getenv(EnvBaseURL); base != "" {
		cfg.BaseURL = base
	}
	return cfg, nil
}

// NewClientFromEnv builds a client from the config file and environment.
func NewClientFromEnv() (*Client, error) {
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	return NewClient(cfg)
}
