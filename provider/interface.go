// Package provider implements the model.Provider interface for the LLM
// backends skycast can talk to (OpenAI, Anthropic, local Ollama).
//
// The abstraction keeps the dialogue agent provider-agnostic: the agent
// works with model.Message and model.ToolCall, and this package handles all
// conversions to and from each backend's wire types. See conversions.go.
package provider

// Type identifies the provider implementation.
type Type string

const (
	TypeOpenAI    Type = "openai"
	TypeAnthropic Type = "anthropic"
	TypeOllama    Type = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    Type
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
