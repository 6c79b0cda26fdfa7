package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"

	"skycast/agent"
	"skycast/config"
	"skycast/forecast"
	"skycast/geocode"
	"skycast/model"
	"skycast/provider"
	"skycast/server"
	"skycast/session"
	"skycast/tools"
)

const Version = "v0.1.0"

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if config.Debug() {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	writeSettingsTemplate(log)

	geocoder := geocode.NewClient()
	forecaster := forecast.NewClient()
	registry := tools.NewRegistry(
		geocode.NewTool(geocoder, log.WithField("tool", geocode.ToolName)),
		forecast.NewTool(forecaster, log.WithField("tool", forecast.ToolName)),
	)

	store := session.NewStore()

	var controller *agent.Controller
	if p := buildProvider(cfg, log); p != nil {
		controller = agent.New(p, registry, store, log.WithField("component", "agent"))
	}

	srv := server.New(controller, store, geocoder, log.WithField("component", "server"))

	e := echo.New()
	srv.RegisterRoutes(e)

	log.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"provider": cfg.Provider.ID,
		"version":  Version,
	}).Info("starting skycast")
	if err := e.Start(cfg.ListenAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// buildProvider constructs the configured LLM backend. A missing credential
// is a warning, not a fatal error: the server still comes up and the chat
// endpoint reports the problem per request.
func buildProvider(cfg *config.Config, log *logrus.Logger) model.Provider {
	key, envVar := cfg.APIKey()
	if key == "" && envVar != "" {
		log.Warnf("%s is not set; chat will be unavailable until it is", envVar)
		return nil
	}

	p, err := provider.NewProvider(provider.Config{
		Type:    provider.Type(cfg.Provider.ID),
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		APIKey:  key,
	})
	if err != nil {
		log.WithError(err).Warn("failed to initialize provider; chat will be unavailable")
		return nil
	}
	if provider.Type(cfg.Provider.ID) == provider.TypeOllama && !provider.ModelSupportsToolCalling(p.GetModel()) {
		log.Warnf("model %s is not known to support tool calling; the assistant may not be able to fetch forecasts", p.GetModel())
	}

	// Reachability check at startup. A failure is a warning only: the
	// backend may come up later, and chat errors surface per request.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		log.WithError(err).Warnf("%s backend is not reachable; check the credential and base URL", cfg.Provider.ID)
	}
	return p
}

// writeSettingsTemplate drops a commented settings.toml on first run so the
// available options are discoverable.
func writeSettingsTemplate(log *logrus.Logger) {
	path := config.SettingsFilePath()
	if config.FileExists(path) {
		return
	}
	if err := config.EnsureDir(config.ConfigDir()); err != nil {
		log.WithError(err).Debug("could not create config directory")
		return
	}
	if err := os.WriteFile(path, []byte(config.GenerateSettingsTemplate()), 0o644); err != nil {
		log.WithError(err).Debug("could not write settings template")
		return
	}
	fmt.Fprintf(os.Stderr, "wrote default settings to %s\n", path)
}
