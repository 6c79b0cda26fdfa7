// Package config loads skycast settings from a TOML file with environment
// overrides. API credentials are taken from the environment only and are
// never written to disk.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ProviderConfig selects and configures the LLM backend.
type ProviderConfig struct {
	ID      string `toml:"id"` // "openai", "anthropic", or "ollama"
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	ListenAddr string         `toml:"listen_addr"`
	Provider   ProviderConfig `toml:"provider"`
}

// Load reads settings.toml if present, falls back to defaults otherwise,
// and applies environment overrides last.
func Load() (*Config, error) {
	cfg := Default()

	path := SettingsFilePath()
	if FileExists(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("SKYCAST_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if id := os.Getenv("SKYCAST_PROVIDER"); id != "" {
		c.Provider.ID = id
	}
	if baseURL := os.Getenv("SKYCAST_BASE_URL"); baseURL != "" {
		c.Provider.BaseURL = baseURL
	}
	if model := os.Getenv("SKYCAST_MODEL"); model != "" {
		c.Provider.Model = model
	}
}

// APIKey returns the credential for the configured provider from the
// environment, along with the variable name it was read from. Ollama needs
// no credential.
func (c *Config) APIKey() (key, envVar string) {
	switch c.Provider.ID {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY"), "ANTHROPIC_API_KEY"
	case "ollama":
		return "", ""
	default:
		return os.Getenv("OPENAI_API_KEY"), "OPENAI_API_KEY"
	}
}

// Debug reports whether debug logging is requested.
func Debug() bool {
	v := os.Getenv("SKYCAST_DEBUG")
	return v == "true" || v == "1"
}
