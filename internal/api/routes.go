package api

import (
	"net/http"

	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/pkg/handlers"
	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/openapi"
	"github.com/JaimeStill/resource-lab/pkg/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes mounts resource and file groups under the API base path,
// along with the OpenAPI document describing them. Operational endpoints
// sit at the root.
func registerRoutes(r routes.System, cfg *config.Config, runtime *Runtime, domain *Domain, gatherer prometheus.Gatherer) error {
	api := routes.Group{
		Prefix:      cfg.API.BasePath,
		Description: "Configured resources",
	}
	for _, h := range domain.Resources {
		api.Children = append(api.Children, h.Routes())
	}
	for _, h := range domain.Files {
		api.Children = append(api.Children, h.Routes())
	}

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	api.AddToSpec("", spec)

	doc, err := openapi.MarshalJSON(spec)
	if err != nil {
		return err
	}

	api.Routes = append(api.Routes, routes.Route{
		Method:  "GET",
		Pattern: "/openapi.json",
		Handler: openapi.ServeSpec(doc),
	})
	r.RegisterGroup(api)

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		},
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: readiness(runtime.Lifecycle),
	})

	metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/metrics",
		Handler: metrics.ServeHTTP,
	})

	return nil
}

func readiness(rc lifecycle.ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
