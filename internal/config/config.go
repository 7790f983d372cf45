// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"dbrelay/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings. Connection identity lives in the
// auth state file and the account password in the OS keychain, not here.
type Config struct {
	LogLevel string       `json:"log_level"`
	Export   ExportConfig `json:"export"`
}

// ExportConfig holds default settings for result-set exports.
type ExportConfig struct {
	Delimiter     string `json:"delimiter"`
	LineSeparator string `json:"line_separator"`
	Quote         string `json:"quote"`
	Header        bool   `json:"header"`
	Encoding      string `json:"encoding"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Defaults returns the configuration used when no config file exists.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Export: ExportConfig{
			Delimiter: ",",
			Quote:     `"`,
			Encoding:  "utf-8",
		},
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
