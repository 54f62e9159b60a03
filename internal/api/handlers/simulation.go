package handlers

import (
	"errors"
	"log"
	"net/http"

	"nearby-route-service/internal/api/dto"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
	"nearby-route-service/internal/services"
)

type SimulationHandler struct {
	Controller    *services.RouteController
	DefaultOrigin domain.Coordinates
}

// Start enters simulation mode. Without consumers in the body the demo
// roster is seeded around the origin.
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.StartSimulationRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	origin, msg := resolveOrigin(req.Origin, h.DefaultOrigin)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}
	consumers, msg := toConsumers(req.Consumers)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	_, err := h.Controller.StartSimulation(r.Context(), origin, consumers)
	switch {
	case errors.Is(err, services.ErrSimulationRunning):
		writeError(w, r, http.StatusConflict, "simulation already running")
		return
	case err != nil:
		log.Printf("start simulation failed: req_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeStatus(w, r, http.StatusCreated)
}

func (h *SimulationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	h.Controller.StopSimulation()
	h.writeStatus(w, r, http.StatusOK)
}

func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeStatus(w, r, http.StatusOK)
}

func (h *SimulationHandler) writeStatus(w http.ResponseWriter, r *http.Request, status int) {
	roster := h.Controller.Roster()
	res := dto.SimulationStatusResponse{
		Status:        string(h.Controller.Status()),
		ElapsedMs:     h.Controller.Elapsed().Milliseconds(),
		RosterVersion: roster.Version,
		Consumers:     dto.FromConsumers(roster.Consumers),
	}
	writeJSON(w, r, status, res)
}
