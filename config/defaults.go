package config

// Default returns the built-in configuration: OpenAI on the public API,
// serving on :8080.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Provider: ProviderConfig{
			ID: "openai",
		},
	}
}

// GenerateSettingsTemplate returns a commented settings.toml skeleton.
func GenerateSettingsTemplate() string {
	return `# skycast configuration
# Location: ~/.config/skycast/settings.toml
# This file uses TOML format: https://toml.io

# Address the web UI and API listen on
listen_addr = ":8080"

[provider]
# LLM backend: "openai", "anthropic", or "ollama"
id = "openai"

# Override the API base URL (optional)
# base_url = "https://api.openai.com/v1"

# Model to use (optional; each provider has a sensible default)
# model = "gpt-4o-mini"

# Credentials are read from the environment, never from this file:
#   OPENAI_API_KEY or ANTHROPIC_API_KEY
`
}
