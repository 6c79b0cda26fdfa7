package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM backends (OpenAI, Anthropic, Ollama) using
// provider-agnostic types from the model layer.
//
// The interface lives here rather than in the provider package to avoid an
// import cycle: provider implementations import model, and the agent uses
// the interface without importing any concrete provider.
type Provider interface {
	// ChatWithTools sends messages along with available tool definitions and
	// streams the response. Tool calls requested by the model are delivered
	// through the callback in provider-agnostic form.
	ChatWithTools(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// GetModel returns the active model name.
	GetModel() string

	// Ping checks if the backend is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of a streamed response.
type StreamCallback func(chunk string, toolCalls []ToolCall) error
