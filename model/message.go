package model

import "time"

// Message roles as they appear in conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents one entry in a conversation history.
//
// An assistant message may carry pending tool calls. A tool message answers
// exactly one prior tool call, matched by ToolCallID; it must never be
// appended without a preceding assistant message containing that call.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ToolCall is a provider-agnostic request to invoke a tool.
//
// ID is assigned by the provider when the backend supplies one (OpenAI) and
// synthesized otherwise, so tool results can always be matched to the
// invocation they answer.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// SystemMessage is a convenience constructor for system-role messages.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

// UserMessage is a convenience constructor for user-role messages.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}
