package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"skycast/agent"
	"skycast/model"
	"skycast/session"
)

type chatRequest struct {
	Content string `json:"content"`
	// Browser geolocation, when the user granted it. Both must be set for
	// the hint to be attached.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// handleChat runs one dialogue turn and streams progress as SSE. Each event
// is a JSON object with a "type" field:
//
//	snapshot  {text, done}   full assistant text so far
//	tool_call {name}         a tool invocation started
//	done      {session}      the turn finished
func (s *Server) handleChat(c *echo.Context) error {
	if s.controller == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat is not configured (missing provider credential)")
	}

	id := c.Param("id")

	var req chatRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content required")
	}

	// The first message under a client-generated key creates the session.
	s.store.GetOrCreate(id)
	if err := s.store.BeginTurn(id); err != nil {
		if errors.Is(err, session.ErrTurnInFlight) {
			return echo.NewHTTPError(http.StatusConflict, "a turn is already running for this session")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer s.store.EndTurn(id)

	userText := req.Content
	if req.Latitude != nil && req.Longitude != nil {
		userText = agent.FormatLocationHint(*req.Latitude, *req.Longitude) + " " + userText
	}

	rw := c.Response()
	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")
	rw.Header().Set("X-Accel-Buffering", "no")
	rw.WriteHeader(http.StatusOK)

	emit := func(eventType string, obj any) {
		inner, _ := json.Marshal(obj)
		data, _ := json.Marshal(map[string]json.RawMessage{
			"type":    json.RawMessage(`"` + eventType + `"`),
			"payload": inner,
		})
		fmt.Fprintf(rw, "data: %s\n\n", data)
		if f, ok := rw.(http.Flusher); ok {
			f.Flush()
		}
	}

	events := agent.TurnEvents{
		OnSnapshot: func(snap model.Snapshot) {
			emit("snapshot", map[string]any{"text": snap.Text, "done": snap.Done})
		},
		OnToolCall: func(call model.ToolCall) {
			emit("tool_call", map[string]any{"name": call.Name})
		},
	}

	if _, err := s.controller.RunTurn(c.Request().Context(), id, userText, events); err != nil {
		// Headers are already out; the error has to travel as an event.
		s.log.WithError(err).WithField("session", id).Error("turn failed")
		emit("error", map[string]any{"message": "something went wrong, please try again"})
	}

	emit("done", map[string]any{"session": id})
	return nil
}
