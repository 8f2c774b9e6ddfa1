package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Rasnov Town Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Points-sync backend for the Rasnov scavenger hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the account store.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/user/create
	postUser, _ := r.NewOperationContext(http.MethodPost, "/api/user/create")
	postUser.SetSummary("Create or fetch user")
	postUser.SetDescription("Creates an account for the username, or returns the existing one.")
	postUser.AddReqStructure(CreateUserRequest{})
	postUser.AddRespStructure(User{}, openapi.WithHTTPStatus(http.StatusCreated))
	postUser.AddRespStructure(User{}, openapi.WithHTTPStatus(http.StatusOK))
	postUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postUser)

	// GET /api/user/{username}
	getUser, _ := r.NewOperationContext(http.MethodGet, "/api/user/{username}")
	getUser.SetSummary("Get user")
	getUser.SetDescription("Returns the account for the username.")
	getUser.AddRespStructure(User{}, openapi.WithHTTPStatus(http.StatusOK))
	getUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getUser)

	// POST /api/user/{username}/location-found
	postFound, _ := r.NewOperationContext(http.MethodPost, "/api/user/{username}/location-found")
	postFound.SetSummary("Record a found location")
	postFound.SetDescription("Credits a discovered location once; duplicates return 400 with the current account state.")
	postFound.AddReqStructure(LocationFoundRequest{})
	postFound.AddRespStructure(LocationFoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postFound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postFound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postFound)

	// GET /api/user/{username}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/user/{username}/events")
	getEvents.SetSummary("SSE award stream")
	getEvents.SetDescription("Server-Sent Events stream of award events for the user.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Top 10 users by points, ties broken by arrival order.")
	getBoard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// POST /api/progress
	saveProgress, _ := r.NewOperationContext(http.MethodPost, "/api/progress")
	saveProgress.SetSummary("Save progress backup cookie")
	saveProgress.SetDescription("Refreshes the cookie mirror of locally stored hunt progress.")
	saveProgress.AddReqStructure(hunt.Progress{})
	saveProgress.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	saveProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(saveProgress)

	// GET /api/progress
	loadProgress, _ := r.NewOperationContext(http.MethodGet, "/api/progress")
	loadProgress.SetSummary("Load progress from backup cookie")
	loadProgress.SetDescription("Returns the hunt progress stored in the cookie mirror, if any.")
	loadProgress.AddRespStructure(hunt.Progress{}, openapi.WithHTTPStatus(http.StatusOK))
	loadProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(loadProgress)

	// GET /api/locations
	getLocations, _ := r.NewOperationContext(http.MethodGet, "/api/locations")
	getLocations.SetSummary("List hunt locations")
	getLocations.SetDescription("The hunt catalog with coordinates and localized display text (lang=ro).")
	getLocations.AddRespStructure([]LocationInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLocations)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
