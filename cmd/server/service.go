package main

import (
	"time"

	"github.com/JaimeStill/resource-lab/internal/api"
	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/internal/infrastructure"
	"github.com/JaimeStill/resource-lab/internal/server"
)

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	infra *infrastructure.Infrastructure
	http  server.System
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	handler, err := api.NewHandler(cfg, infra)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"service initialized",
		"addr", cfg.Server.Addr(),
		"store", cfg.Store.Driver,
		"resources", len(cfg.Resources),
	)

	return &Service{
		infra: infra,
		http:  server.New(&cfg.Server, handler, infra.Logger),
	}, nil
}

// Start begins all subsystems and returns without waiting for them to become ready.
func (s *Service) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Service) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
