package provider

import (
	"strings"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantModel string
		wantErr   bool
	}{
		{
			name:      "openai with defaults",
			config:    Config{Type: TypeOpenAI, APIKey: "sk-test"},
			wantModel: "gpt-4o-mini",
		},
		{
			name:      "openai with explicit model",
			config:    Config{Type: TypeOpenAI, APIKey: "sk-test", Model: "gpt-4.1"},
			wantModel: "gpt-4.1",
		},
		{
			name:      "anthropic",
			config:    Config{Type: TypeAnthropic, APIKey: "sk-ant-test"},
			wantModel: "claude",
		},
		{
			name:      "ollama",
			config:    Config{Type: TypeOllama},
			wantModel: "llama3.1:latest",
		},
		{
			name:    "unknown type",
			config:  Config{Type: "gemini"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(strings.ToLower(p.GetModel()), tt.wantModel) {
				t.Errorf("expected model containing %q, got %q", tt.wantModel, p.GetModel())
			}
		})
	}
}

func TestModelSupportsToolCalling(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"llama3.1:latest", true},
		{"llama3.1:70b", true},
		{"qwen2.5:7b", true},
		{"mistral:latest", true},
		{"llama2:latest", false},
		{"gemma:7b", false},
		{"totally-unknown-model", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := ModelSupportsToolCalling(tt.model); got != tt.want {
				t.Errorf("ModelSupportsToolCalling(%q): want %v, got %v", tt.model, tt.want, got)
			}
		})
	}
}
