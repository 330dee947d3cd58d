package cmd

import (
	"fmt"

	"github.com/fncall/config"
	"github.com/fncall/handlers"
	"github.com/fncall/integrations"
	"github.com/fncall/logger"
	"github.com/fncall/models"
	"github.com/fncall/orchestrator"
	"github.com/fncall/registry"
	"github.com/fncall/transport"

	"github.com/google/uuid"
)

// app is the wiring shared by every front-end.
type app struct {
	conf *config.Config
	svc  *handlers.Service
}

func newApp() (*app, error) {
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, err
	}
	conf, err := config.Load(v, secrets)
	if err != nil {
		return nil, err
	}

	client := transport.NewHTTPClient(conf.Transport)
	reg, err := registry.New(integrations.Builtin(client, conf.Integrations)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build function registry: %w", err)
	}
	sel, err := models.Build(conf.Models, client, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure models: %w", err)
	}

	logger.NewLogger("App", uuid.NewString()).Info("configured",
		"functions", reg.Names(), "models", sel.Models(), "budget", conf.Loop.Budget)

	loop := orchestrator.New(reg, conf.Loop.Budget)
	return &app{conf: conf, svc: handlers.NewService(sel, loop)}, nil
}
