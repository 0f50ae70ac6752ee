// Package api assembles the HTTP handler that serves every configured resource.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/internal/infrastructure"
	"github.com/JaimeStill/resource-lab/pkg/middleware"
	"github.com/JaimeStill/resource-lab/pkg/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewHandler builds the routed, middleware-wrapped handler for cfg over infra.
// Each call uses its own metrics registry.
func NewHandler(cfg *config.Config, infra *infrastructure.Infrastructure) (http.Handler, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	r := routes.New(runtime.Logger)
	if err := registerRoutes(r, cfg, runtime, domain, reg); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	mw := middleware.New()
	mw.Use(middleware.Logger(runtime.Logger))
	mw.Use(middleware.CORS(&cfg.API.CORS))
	mw.Use(metrics.Middleware())
	mw.Use(middleware.TrimSlash())

	return mw.Apply(r.Build()), nil
}
