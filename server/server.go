// Package server exposes the forecast assistant over HTTP: a JSON API for
// session management, a server-sent-events chat endpoint, and the embedded
// browser page.
package server

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"

	"skycast/agent"
	"skycast/geocode"
	"skycast/session"
)

// Server holds the wired application pieces behind the HTTP handlers.
// controller is nil when no provider credential was found at startup; the
// chat endpoint answers 503 in that case instead of crashing.
type Server struct {
	controller *agent.Controller
	store      *session.Store
	geocoder   *geocode.Client
	log        *logrus.Entry
}

// New builds a server from its dependencies. controller may be nil.
func New(controller *agent.Controller, store *session.Store, geocoder *geocode.Client, log *logrus.Entry) *Server {
	return &Server{
		controller: controller,
		store:      store,
		geocoder:   geocoder,
		log:        log,
	}
}

// RegisterRoutes attaches all handlers to e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/", s.index)

	g := e.Group("/api")
	g.GET("/sessions", s.listSessions)
	g.POST("/sessions", s.createSession)
	g.DELETE("/sessions/:id", s.deleteSession)
	g.POST("/sessions/:id/reset", s.resetSession)
	g.GET("/sessions/:id/messages", s.listMessages)
	g.GET("/sessions/:id/search", s.searchMessages)
	g.POST("/sessions/:id/chat", s.handleChat)
	g.GET("/geocode/reverse", s.reverseGeocode)
}

func (s *Server) index(c *echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}
