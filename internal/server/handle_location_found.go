package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type LocationFoundRequest struct {
	LocationKey  string `json:"locationKey"`
	LocationName string `json:"locationName"`
	IsCompletion bool   `json:"isCompletion"`
}

type LocationFoundResponse struct {
	Success         bool `json:"success"`
	PointsAwarded   int  `json:"pointsAwarded"`
	CompletionBonus int  `json:"completionBonus"`
	User            User `json:"user"`
}

// duplicateResponse mirrors the original API: a duplicate award is a 400
// that still carries the current user state so clients can reconcile.
type duplicateResponse struct {
	Error string `json:"error"`
	User  User   `json:"user"`
}

func handleLocationFound(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		var req LocationFoundRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.LocationKey = strings.TrimSpace(req.LocationKey)
		if req.LocationKey == "" {
			writeError(w, http.StatusBadRequest, "locationKey is required")
			return
		}

		out, err := store.RecordLocationFound(r.Context(), username, req.LocationKey, req.IsCompletion)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, ErrLocationRecorded) {
			writeJSON(w, http.StatusBadRequest, duplicateResponse{
				Error: "Location already found",
				User:  out.User,
			})
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(username, AwardEvent{
			Type:           "location_found",
			LocationKey:    req.LocationKey,
			TotalPoints:    out.User.TotalPoints,
			LocationsFound: len(out.User.LocationsFound),
			IsCompletion:   out.CompletionBonus > 0,
		})

		writeJSON(w, http.StatusOK, LocationFoundResponse{
			Success:         true,
			PointsAwarded:   out.PointsAwarded,
			CompletionBonus: out.CompletionBonus,
			User:            out.User,
		})
	}
}
