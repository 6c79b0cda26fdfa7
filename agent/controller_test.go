package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"skycast/model"
	"skycast/provider/testutil"
	"skycast/session"
	"skycast/tools"
)

type fakeTool struct {
	name   string
	result tools.Result
	calls  []map[string]any
}

func (f *fakeTool) Definition() mcptypes.Tool {
	return mcptypes.Tool{Name: f.name, InputSchema: mcptypes.ToolInputSchema{Type: "object"}}
}

func (f *fakeTool) Execute(ctx context.Context, args map[string]any) tools.Result {
	f.calls = append(f.calls, args)
	return f.result
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newController(p model.Provider, store *session.Store, executors ...tools.Executor) *Controller {
	return New(p, tools.NewRegistry(executors...), store, testLog())
}

func TestRunTurnClarifyingQuestion(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		return cb("Which dates would you like the forecast for?", nil)
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store)

	var snapshots []model.Snapshot
	events := TurnEvents{OnSnapshot: func(s model.Snapshot) { snapshots = append(snapshots, s) }}

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "What's the weather in Paris?", events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != "Which dates would you like the forecast for?" {
		t.Errorf("unexpected final text: %q", final)
	}

	last := snapshots[len(snapshots)-1]
	if !last.Done || last.Text != final {
		t.Errorf("final snapshot should carry the full text and Done, got %+v", last)
	}

	history, _ := store.History(sess.ID)
	if len(history) != 3 {
		t.Fatalf("expected system, user, assistant in history, got %d messages", len(history))
	}
	if history[0].Role != model.RoleSystem {
		t.Errorf("first message should be the system prompt, got %s", history[0].Role)
	}
	if !strings.Contains(history[0].Content, "weather assistant") {
		t.Errorf("system prompt content missing: %q", history[0].Content[:40])
	}
	if history[1].Role != model.RoleUser || history[2].Role != model.RoleAssistant {
		t.Errorf("history order wrong: %s, %s", history[1].Role, history[2].Role)
	}
}

func TestRunTurnSystemPromptOnlyOnce(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store)

	ctrl.RunTurn(context.Background(), sess.ID, "first", TurnEvents{})
	ctrl.RunTurn(context.Background(), sess.ID, "second", TurnEvents{})

	history, _ := store.History(sess.ID)
	systems := 0
	for _, m := range history {
		if m.Role == model.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Errorf("expected exactly one system prompt, got %d", systems)
	}
}

func TestRunTurnSystemPromptCarriesDate(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	store := session.NewStore()
	sess := store.Create()
	day, _ := time.Parse("2006-01-02", "2026-08-30")
	ctrl := newController(mock, store).WithClock(func() time.Time { return day })

	ctrl.RunTurn(context.Background(), sess.ID, "hello", TurnEvents{})

	history, _ := store.History(sess.ID)
	if !strings.Contains(history[0].Content, "2026-08-30") {
		t.Error("system prompt should carry the current date")
	}
}

func TestRunTurnToolRoundTrip(t *testing.T) {
	geocoder := &fakeTool{
		name:   "geocode_address",
		result: tools.Ok("Location: \"Paris\"\nLatitude: 48.85\nLongitude: 2.35"),
	}

	round := 0
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		round++
		if round == 1 {
			return cb("", []model.ToolCall{{
				ID:        "call_1",
				Name:      "geocode_address",
				Arguments: map[string]any{"address": "Paris"},
			}})
		}
		// The tool result must be visible to the second round.
		last := messages[len(messages)-1]
		if last.Role != model.RoleTool || last.ToolCallID != "call_1" {
			t.Errorf("second round should see the tool result last, got role=%s id=%s", last.Role, last.ToolCallID)
		}
		return cb("Paris is at 48.85, 2.35. What dates?", nil)
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store, geocoder)

	var toolCalls []model.ToolCall
	events := TurnEvents{OnToolCall: func(c model.ToolCall) { toolCalls = append(toolCalls, c) }}

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "Weather in Paris", events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != "Paris is at 48.85, 2.35. What dates?" {
		t.Errorf("unexpected final text: %q", final)
	}

	if len(geocoder.calls) != 1 {
		t.Fatalf("expected 1 tool execution, got %d", len(geocoder.calls))
	}
	if geocoder.calls[0]["address"] != "Paris" {
		t.Errorf("arguments not forwarded: %v", geocoder.calls[0])
	}
	if len(toolCalls) != 1 || toolCalls[0].Name != "geocode_address" {
		t.Errorf("OnToolCall not fired correctly: %v", toolCalls)
	}

	history, _ := store.History(sess.ID)
	// system, user, assistant(tool call), tool, assistant(final)
	if len(history) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(history))
	}
	if len(history[2].ToolCalls) != 1 {
		t.Errorf("assistant message should record the tool call")
	}
	if history[3].Role != model.RoleTool || history[3].ToolCallID != "call_1" {
		t.Errorf("tool message should answer call_1, got %+v", history[3])
	}
}

func TestRunTurnWithholdsToolsAfterForecast(t *testing.T) {
	forecaster := &fakeTool{
		name:   "get_weather_forecast",
		result: tools.Ok("Weather Forecast for (48.85, 2.35)\nTimezone: auto"),
	}

	var defsPerRound []int
	round := 0
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		round++
		defsPerRound = append(defsPerRound, len(defs))
		if round == 1 {
			return cb("", []model.ToolCall{{
				ID:        "call_1",
				Name:      "get_weather_forecast",
				Arguments: map[string]any{"latitude": 48.85, "longitude": 2.35},
			}})
		}
		return cb("Here is the forecast for Paris.", nil)
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store, forecaster)

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "forecast please", TurnEvents{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != "Here is the forecast for Paris." {
		t.Errorf("unexpected final text: %q", final)
	}

	if len(defsPerRound) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(defsPerRound))
	}
	if defsPerRound[0] != 1 {
		t.Errorf("first round should offer the tools, got %d", defsPerRound[0])
	}
	if defsPerRound[1] != 0 {
		t.Errorf("tools must be withheld after a successful forecast, got %d", defsPerRound[1])
	}
}

func TestRunTurnFailedToolKeepsToolsAvailable(t *testing.T) {
	forecaster := &fakeTool{
		name:   "get_weather_forecast",
		result: tools.Failure("Error fetching weather data: API Error: 500 - boom"),
	}

	var defsPerRound []int
	round := 0
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		round++
		defsPerRound = append(defsPerRound, len(defs))
		if round == 1 {
			return cb("", []model.ToolCall{{ID: "call_1", Name: "get_weather_forecast", Arguments: map[string]any{}}})
		}
		return cb("I couldn't fetch the forecast, sorry.", nil)
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store, forecaster)

	if _, err := ctrl.RunTurn(context.Background(), sess.ID, "forecast please", TurnEvents{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if defsPerRound[1] != 1 {
		t.Errorf("a failed forecast must not withhold tools, got %d", defsPerRound[1])
	}
}

func TestRunTurnExecutesOneCallPerRound(t *testing.T) {
	geocoder := &fakeTool{name: "geocode_address", result: tools.Ok("Location: \"Paris\"")}

	round := 0
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		round++
		if round == 1 {
			return cb("", []model.ToolCall{
				{ID: "call_1", Name: "geocode_address", Arguments: map[string]any{"address": "Paris"}},
				{ID: "call_2", Name: "geocode_address", Arguments: map[string]any{"address": "London"}},
			})
		}
		return cb("done", nil)
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store, geocoder)

	if _, err := ctrl.RunTurn(context.Background(), sess.ID, "compare Paris and London", TurnEvents{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(geocoder.calls) != 1 {
		t.Errorf("only the first pending call should execute, got %d", len(geocoder.calls))
	}
	if geocoder.calls[0]["address"] != "Paris" {
		t.Errorf("wrong call executed: %v", geocoder.calls[0])
	}
}

func TestRunTurnInvocationCeiling(t *testing.T) {
	geocoder := &fakeTool{name: "geocode_address", result: tools.Ok("Location: \"Paris\"")}

	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		return cb("", []model.ToolCall{{ID: "loop", Name: "geocode_address", Arguments: map[string]any{}}})
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store, geocoder)

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "loop forever", TurnEvents{})
	if err != nil {
		t.Fatalf("the ceiling is not an error: %v", err)
	}
	if final != loopCeilingMessage {
		t.Errorf("expected the ceiling message, got %q", final)
	}
	if len(geocoder.calls) != MaxToolCallsPerTurn {
		t.Errorf("expected exactly %d tool executions, got %d", MaxToolCallsPerTurn, len(geocoder.calls))
	}
}

func TestRunTurnProviderError(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		return errors.New("connection refused")
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store)

	var last model.Snapshot
	events := TurnEvents{OnSnapshot: func(s model.Snapshot) { last = s }}

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "hello", events)
	if err == nil {
		t.Fatal("expected the provider error to propagate")
	}
	if final != apologyMessage {
		t.Errorf("expected the apology as user-facing text, got %q", final)
	}
	if !last.Done || last.Text != apologyMessage {
		t.Errorf("final snapshot should carry the apology, got %+v", last)
	}

	// The user message stays in history so the user can retry.
	history, _ := store.History(sess.ID)
	if len(history) != 2 || history[1].Role != model.RoleUser {
		t.Errorf("history should keep system and user messages, got %d messages", len(history))
	}
}

func TestRunTurnEmptyFinalText(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		return nil // model produced nothing at all
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store)

	final, err := ctrl.RunTurn(context.Background(), sess.ID, "hello", TurnEvents{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final != apologyMessage {
		t.Errorf("empty output should degrade to the apology, got %q", final)
	}
}

func TestRunTurnUnknownSession(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	ctrl := newController(mock, session.NewStore())

	if _, err := ctrl.RunTurn(context.Background(), "no-such-session", "hello", TurnEvents{}); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunTurnSnapshotsAccumulate(t *testing.T) {
	mock := testutil.NewMockProvider("test-model")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, defs []mcptypes.Tool, cb model.StreamCallback) error {
		for _, chunk := range []string{"It ", "looks ", "sunny."} {
			if err := cb(chunk, nil); err != nil {
				return err
			}
		}
		return nil
	}

	store := session.NewStore()
	sess := store.Create()
	ctrl := newController(mock, store)

	var snapshots []model.Snapshot
	events := TurnEvents{OnSnapshot: func(s model.Snapshot) { snapshots = append(snapshots, s) }}

	if _, err := ctrl.RunTurn(context.Background(), sess.ID, "weather?", events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every snapshot carries the accumulated text, not a delta.
	want := []string{"It ", "It looks ", "It looks sunny.", "It looks sunny."}
	if len(snapshots) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(snapshots))
	}
	for i, w := range want {
		if snapshots[i].Text != w {
			t.Errorf("snapshot %d: want %q, got %q", i, w, snapshots[i].Text)
		}
	}
	if snapshots[len(snapshots)-1].Done != true {
		t.Error("last snapshot must be marked Done")
	}
	for _, s := range snapshots[:len(snapshots)-1] {
		if s.Done {
			t.Error("only the last snapshot may be marked Done")
		}
	}
}
