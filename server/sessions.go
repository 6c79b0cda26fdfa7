package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"skycast/model"
	"skycast/session"
)

type sessionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
	Messages  int    `json:"messages"`
}

type messageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ToolCalls []struct {
		Name string `json:"name"`
	} `json:"toolCalls,omitempty"`
	CreatedTs int64 `json:"createdTs"`
}

func (s *Server) listSessions(c *echo.Context) error {
	metas := s.store.List()
	resp := make([]sessionResponse, 0, len(metas))
	for _, m := range metas {
		resp = append(resp, sessionResponse{
			ID:        m.ID,
			Name:      m.Name,
			CreatedTs: m.CreatedAt.Unix(),
			UpdatedTs: m.UpdatedAt.Unix(),
			Messages:  m.MessageCount,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createSession(c *echo.Context) error {
	sess := s.store.Create()
	return c.JSON(http.StatusCreated, sessionResponse{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedTs: sess.CreatedAt.Unix(),
		UpdatedTs: sess.UpdatedAt.Unix(),
	})
}

func (s *Server) deleteSession(c *echo.Context) error {
	if err := s.store.Delete(c.Param("id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) resetSession(c *echo.Context) error {
	sess := s.store.Reset(c.Param("id"))
	return c.JSON(http.StatusCreated, sessionResponse{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedTs: sess.CreatedAt.Unix(),
		UpdatedTs: sess.UpdatedAt.Unix(),
	})
}

func (s *Server) listMessages(c *echo.Context) error {
	history, err := s.store.History(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	resp := make([]messageResponse, 0, len(history))
	for _, m := range history {
		// System and tool messages are dialogue plumbing; the transcript
		// endpoint returns only what the user saw.
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			continue
		}
		mr := messageResponse{
			Role:      m.Role,
			Content:   m.Content,
			CreatedTs: m.Timestamp.Unix(),
		}
		for _, tc := range m.ToolCalls {
			mr.ToolCalls = append(mr.ToolCalls, struct {
				Name string `json:"name"`
			}{Name: tc.Name})
		}
		resp = append(resp, mr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) searchMessages(c *echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}
	history, err := s.store.History(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, session.SearchMessages(history, query))
}
