package api

import (
	"net/http"

	"nearby-route-service/internal/api/handlers"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/live"
	"nearby-route-service/internal/platform/metrics"
	"nearby-route-service/internal/ports"
	"nearby-route-service/internal/services"
)

// Dependencies of the HTTP API. Repo and Locations may be nil.
type Deps struct {
	Controller    *services.RouteController
	Hub           *live.Hub
	Repo          ports.ConsumerRepository
	Locations     ports.LocationStore
	DefaultOrigin domain.Coordinates
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Controller: d.Controller}
	consumerHandler := &handlers.ConsumerHandler{Controller: d.Controller}
	routeHandler := &handlers.RouteHandler{
		Controller:    d.Controller,
		Repo:          d.Repo,
		Locations:     d.Locations,
		DefaultOrigin: d.DefaultOrigin,
	}
	simHandler := &handlers.SimulationHandler{
		Controller:    d.Controller,
		DefaultOrigin: d.DefaultOrigin,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/consumers", consumerHandler.List)
	mux.HandleFunc("/routes/plan", routeHandler.Plan)
	mux.HandleFunc("/routes/refresh", routeHandler.Refresh)
	mux.HandleFunc("/routes/current", routeHandler.Current)
	mux.HandleFunc("/simulation/start", simHandler.Start)
	mux.HandleFunc("/simulation/stop", simHandler.Stop)
	mux.HandleFunc("/simulation", simHandler.Status)
	mux.Handle("/metrics", metrics.Handler())
	if d.Hub != nil {
		mux.Handle("/ws/positions", d.Hub)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
