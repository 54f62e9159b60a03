package handlers

import (
	"net/http"

	"nearby-route-service/internal/api/dto"
	"nearby-route-service/internal/services"
)

// ConsumerHandler exposes the roster currently owned by the controller,
// including simulated positions.
type ConsumerHandler struct {
	Controller *services.RouteController
}

func (h *ConsumerHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	roster := h.Controller.Roster()
	res := dto.ListConsumersResponse{
		Version:   roster.Version,
		Origin:    dto.FromCoordinates(roster.Origin),
		Consumers: dto.FromConsumers(roster.Consumers),
	}

	writeJSON(w, r, http.StatusOK, res)
}
