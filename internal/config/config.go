// Package config loads the optional YAML configuration for the CLI and
// supplies defaults matching the other ports of this client.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default request parameters shared with the other ports.
const (
	DefaultModel     = "claude-opus-4-5"
	DefaultMaxTokens = 4096
)

// ModelAliases maps short model names accepted by the CLI to full model IDs.
var ModelAliases = map[string]string{
	"haiku":  "claude-haiku-4-5-20251001",
	"sonnet": "claude-sonnet-4-20250514",
	"opus":   "claude-opus-4-20250514",
}

// Config holds the application configuration.
type Config struct {
	// Model is the default model for chat requests; a short alias or a full model ID.
	Model string `yaml:"model"`
	// MaxTokens is the default max token count for chat requests.
	MaxTokens int `yaml:"max-tokens"`
	// CallbackPort is the local port for the OAuth callback listener.
	CallbackPort int `yaml:"callback-port"`
	// AuthDir is the directory holding the credential file. Empty selects the
	// per-user default (~/.claude-oauth).
	AuthDir string `yaml:"auth-dir"`
	// LogDir enables rotating file logging into the given directory when set.
	LogDir string `yaml:"log-dir"`
	// Debug raises the log level to debug.
	Debug bool `yaml:"debug"`
}

// DefaultConfigPath returns the default config file location inside the
// per-user auth directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude-oauth", "config.yaml")
	}
	return filepath.Join(home, ".claude-oauth", "config.yaml")
}

// LoadConfig reads the YAML config at path, falling back to defaults when the
// file does not exist. A present-but-malformed file is an error; silently
// ignoring it would mask typos in user configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Model:     DefaultModel,
		MaxTokens: DefaultMaxTokens,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s failed: %w", path, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s failed: %w", path, err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return cfg, nil
}

// ResolveModel expands a short model alias to its full model ID. Unknown
// names pass through unchanged so full model IDs keep working.
func ResolveModel(name string) string {
	if full, ok := ModelAliases[name]; ok {
		return full
	}
	return name
}
