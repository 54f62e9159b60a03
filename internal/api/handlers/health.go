package handlers

import (
	"net/http"

	"nearby-route-service/internal/services"
)

// HealthHandler provides a minimal liveness check endpoint.
type HealthHandler struct {
	Controller *services.RouteController
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res := map[string]string{
		"status":     "ok",
		"simulation": string(h.Controller.Status()),
	}
	writeJSON(w, r, http.StatusOK, res)
}
