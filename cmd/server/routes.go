package main

import (
	"net/http"

	"github.com/JaimeStill/unpdf/internal/images"
	"github.com/JaimeStill/unpdf/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service.
func registerRoutes(r routes.System, imagesSys images.System) {
	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterGroup(imagesSys.Handler().Routes())
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
