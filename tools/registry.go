package tools

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Executor is implemented by each tool the agent can invoke.
type Executor interface {
	// Definition describes the tool to the LLM.
	Definition() mcptypes.Tool

	// Execute runs the tool with arguments extracted by the model. Failures
	// are encoded in the Result, never returned as errors.
	Execute(ctx context.Context, args map[string]any) Result
}

// Registry maps tool names to their executors.
type Registry struct {
	order     []string
	executors map[string]Executor
}

// NewRegistry builds a registry from the given executors, keyed by the name
// in each tool's definition. Registration order is preserved for the
// definitions sent to the model.
func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{
		executors: make(map[string]Executor, len(executors)),
	}
	for _, e := range executors {
		name := e.Definition().Name
		if _, dup := r.executors[name]; !dup {
			r.order = append(r.order, name)
		}
		r.executors[name] = e
	}
	return r
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []mcptypes.Tool {
	defs := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.executors[name].Definition())
	}
	return defs
}

// Execute dispatches a call to the named tool. An unknown name is a failure
// result, not an error: the model sees the text and can correct itself.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	e, ok := r.executors[name]
	if !ok {
		return Failure(fmt.Sprintf("Unknown tool: %s", name))
	}
	return e.Execute(ctx, args)
}
