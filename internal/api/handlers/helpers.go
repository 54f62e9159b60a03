package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"nearby-route-service/internal/api/dto"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
)

// Caps request bodies; rosters are a handful of consumers.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object into v. An empty body is accepted
// when optional is true. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// resolveOrigin returns the requested origin or the fallback, rejecting
// malformed coordinates at the boundary.
func resolveOrigin(req *dto.Coordinates, fallback domain.Coordinates) (domain.Coordinates, string) {
	if req == nil {
		return fallback, ""
	}
	origin := req.ToDomain()
	if !origin.Valid() {
		return domain.Coordinates{}, "origin must have lat in [-90,90] and lon in [-180,180]"
	}
	return origin, ""
}

// toConsumers validates and converts request consumers.
func toConsumers(in []dto.Consumer) ([]domain.Consumer, string) {
	out := make([]domain.Consumer, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		if c.ID == "" {
			return nil, "consumer id is required"
		}
		if c.ID == domain.OriginID {
			return nil, "consumer id \"vendor\" is reserved"
		}
		if _, dup := seen[c.ID]; dup {
			return nil, "duplicate consumer id " + c.ID
		}
		seen[c.ID] = struct{}{}

		d := c.ToDomain()
		if !d.Coords.Valid() {
			return nil, "consumer " + c.ID + " has invalid coordinates"
		}
		out = append(out, d)
	}
	return out, ""
}
