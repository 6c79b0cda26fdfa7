// Package agent implements the slot-filling dialogue controller: an
// explicit state machine that alternates model reasoning with tool
// execution until a user-facing answer is produced.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"skycast/forecast"
	"skycast/model"
	"skycast/session"
	"skycast/tools"
)

// State of the controller within one user turn.
type State int

const (
	StateAwaitingInput State = iota
	StateReasoning
	StateAwaitingTool
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateReasoning:
		return "reasoning"
	case StateAwaitingTool:
		return "awaiting_tool"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// MaxToolCallsPerTurn bounds the reasoning/tool loop for one user turn.
// The loop has no natural ceiling, so a runaway model cannot spin forever.
const MaxToolCallsPerTurn = 8

// apologyMessage is the user-facing text for a failed model call. The
// session history stays intact so the user can retry.
const apologyMessage = "I'm sorry, something went wrong while processing that. Please try again."

// loopCeilingMessage surfaces when the per-turn invocation ceiling is hit.
const loopCeilingMessage = "I'm sorry, I wasn't able to complete that request. Please try rephrasing it."

// TurnEvents receives progress notifications during a turn. Either field
// may be nil.
type TurnEvents struct {
	// OnSnapshot delivers the accumulated assistant text so far. The final
	// snapshot of the turn is marked Done.
	OnSnapshot func(model.Snapshot)
	// OnToolCall fires when the controller dispatches a tool invocation.
	OnToolCall func(model.ToolCall)
}

// Controller runs the slot-filling dialogue over an injected provider,
// tool registry, and session store. It is safe for concurrent use across
// sessions; turns within one session are serialized by the store.
type Controller struct {
	provider model.Provider
	registry *tools.Registry
	store    *session.Store
	log      *logrus.Entry
	now      func() time.Time
}

// New constructs a controller. No process-wide state is involved; every
// collaborator is injected.
func New(p model.Provider, registry *tools.Registry, store *session.Store, log *logrus.Entry) *Controller {
	return &Controller{
		provider: p,
		registry: registry,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the controller's clock. Used in tests.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// RunTurn processes one user message for a session and returns the final
// assistant text. Tool outputs feed back into history and the loop
// continues until the model produces a message with no tool invocation, or
// the per-turn ceiling is hit.
//
// Only this method appends to the session's history: the system prompt (on
// the first turn), the user message, assistant messages, and tool results.
// The caller is responsible for serializing turns within a session (see
// session.Store.BeginTurn).
func (c *Controller) RunTurn(ctx context.Context, sessionKey, userText string, events TurnEvents) (string, error) {
	log := c.log.WithField("session", sessionKey)

	history, err := c.store.History(sessionKey)
	if err != nil {
		return "", err
	}
	if len(history) == 0 {
		sys := model.SystemMessage(systemPrompt(c.now()))
		if err := c.store.Append(sessionKey, sys); err != nil {
			return "", err
		}
		history = append(history, sys)
	}

	if lat, lon, ok := ParseLocationHint(userText); ok {
		log.WithFields(logrus.Fields{"latitude": lat, "longitude": lon}).
			Debug("location hint attached, coordinates already known")
	}

	userMsg := model.UserMessage(userText)
	if err := c.store.Append(sessionKey, userMsg); err != nil {
		return "", err
	}
	messages := append(history, userMsg)

	state := StateAwaitingInput
	setState := func(next State) {
		log.WithFields(logrus.Fields{"from": state.String(), "to": next.String()}).Debug("state transition")
		state = next
	}
	setState(StateReasoning)

	forecastDone := false
	invocations := 0

	for {
		var builder strings.Builder
		var pending []model.ToolCall

		// After a successful forecast result the next output must be a
		// final answer, so tools are withheld from the model.
		var defs []mcptypes.Tool
		if !forecastDone {
			defs = c.registry.Definitions()
		}

		err := c.provider.ChatWithTools(ctx, messages, defs, func(chunk string, calls []model.ToolCall) error {
			if len(calls) > 0 {
				pending = append(pending, calls...)
			}
			if chunk != "" {
				builder.WriteString(chunk)
				if events.OnSnapshot != nil {
					events.OnSnapshot(model.Snapshot{Text: builder.String()})
				}
			}
			return nil
		})
		if err != nil {
			log.WithError(err).WithField("state", state.String()).Error("model call failed")
			c.emitFinal(events, apologyMessage)
			return apologyMessage, fmt.Errorf("model call failed: %w", err)
		}

		if len(pending) == 0 {
			final := builder.String()
			if final == "" {
				final = apologyMessage
			}
			assistant := model.Message{Role: model.RoleAssistant, Content: final, Timestamp: c.now()}
			if err := c.store.Append(sessionKey, assistant); err != nil {
				return "", err
			}
			setState(StateDone)
			c.emitFinal(events, final)
			log.WithField("invocations", invocations).Debug("turn complete")
			return final, nil
		}

		if invocations >= MaxToolCallsPerTurn {
			log.WithField("invocations", invocations).Warn("tool invocation ceiling reached")
			assistant := model.Message{Role: model.RoleAssistant, Content: loopCeilingMessage, Timestamp: c.now()}
			if err := c.store.Append(sessionKey, assistant); err != nil {
				return "", err
			}
			setState(StateDone)
			c.emitFinal(events, loopCeilingMessage)
			return loopCeilingMessage, nil
		}

		// Exactly one invocation per round; extras are dropped and the
		// model re-requests them with the tool result in context.
		call := pending[0]
		setState(StateAwaitingTool)

		assistant := model.Message{
			Role:      model.RoleAssistant,
			Content:   builder.String(),
			ToolCalls: []model.ToolCall{call},
			Timestamp: c.now(),
		}
		if err := c.store.Append(sessionKey, assistant); err != nil {
			return "", err
		}
		messages = append(messages, assistant)

		if events.OnToolCall != nil {
			events.OnToolCall(call)
		}
		log.WithFields(logrus.Fields{"tool": call.Name, "call_id": call.ID}).Info("dispatching tool call")

		result := c.registry.Execute(ctx, call.Name, call.Arguments)
		if result.Kind != tools.ResultOk {
			log.WithFields(logrus.Fields{"tool": call.Name, "kind": result.Kind}).
				Warn("tool returned a non-ok result")
		}

		toolMsg := model.Message{
			Role:       model.RoleTool,
			Content:    result.Text(),
			ToolCallID: call.ID,
			Timestamp:  c.now(),
		}
		if err := c.store.Append(sessionKey, toolMsg); err != nil {
			return "", err
		}
		messages = append(messages, toolMsg)

		if call.Name == forecast.ToolName && result.Kind == tools.ResultOk {
			forecastDone = true
		}

		invocations++
		setState(StateReasoning)
	}
}

func (c *Controller) emitFinal(events TurnEvents, text string) {
	if events.OnSnapshot != nil {
		events.OnSnapshot(model.Snapshot{Text: text, Done: true})
	}
}
