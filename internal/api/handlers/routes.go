package handlers

import (
	"errors"
	"log"
	"net/http"

	"nearby-route-service/internal/api/dto"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
	"nearby-route-service/internal/ports"
	"nearby-route-service/internal/services"
)

type RouteHandler struct {
	Controller    *services.RouteController
	Repo          ports.ConsumerRepository
	Locations     ports.LocationStore
	DefaultOrigin domain.Coordinates
}

// Plan computes a route for the roster in the request body without touching
// controller state.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRouteRequest
	if !decodeJSON(w, r, &req, false) {
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

	result := services.PlanRoute(origin, consumers)
	writeJSON(w, r, http.StatusOK, dto.FromRouteResult(result, len(consumers)))
}

// Refresh re-plans the controller's roster. When nothing is loaded yet the
// roster is read from the repository first.
func (h *RouteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	ctx := r.Context()
	_, err := h.Controller.Replan(ctx)
	if errors.Is(err, services.ErrNoRoster) && h.Repo != nil {
		var consumers []domain.Consumer
		consumers, err = services.LoadRoster(ctx, h.Repo, h.Locations)
		if err == nil {
			_, err = h.Controller.Load(ctx, h.DefaultOrigin, consumers)
		}
	}

	switch {
	case errors.Is(err, services.ErrNoRoster):
		writeError(w, r, http.StatusConflict, "no roster loaded")
		return
	case errors.Is(err, services.ErrRosterReplaced):
		writeError(w, r, http.StatusConflict, "roster replaced while planning, retry")
		return
	case err != nil:
		log.Printf("refresh route failed: req_id=%s err=%v", obs.RequestID(ctx), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeCurrent(w, r)
}

// Current returns the last published route and whether it is stale.
func (h *RouteHandler) Current(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeCurrent(w, r)
}

func (h *RouteHandler) writeCurrent(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Controller.Current()
	if !ok {
		writeError(w, r, http.StatusNotFound, "no route available")
		return
	}

	res := dto.CurrentRouteResponse{
		RouteResponse: dto.FromRouteResult(snap.Result, snap.Summary.Consumers),
		RosterVersion: snap.RosterVersion,
		PlannedAt:     snap.PlannedAt,
		Stale:         snap.Stale,
		Summary:       dto.FromSummary(snap.Summary),
	}
	writeJSON(w, r, http.StatusOK, res)
}
