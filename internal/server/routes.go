package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, catalog *hunt.Catalog, db *sql.DB, siteDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Rasnov Town Hunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/create", handleCreateUser(store))
		r.Get("/user/{username}", handleGetUser(store))
		r.Post("/user/{username}/location-found", handleLocationFound(store, broker))
		r.Get("/user/{username}/events", handleEvents(store, broker))
		r.Get("/leaderboard", handleLeaderboard(store))
		r.Get("/locations", handleListLocations(catalog))
		r.Post("/progress", handleSaveProgress())
		r.Get("/progress", handleLoadProgress())
	})

	if siteDir != "" {
		if info, err := os.Stat(siteDir); err == nil && info.IsDir() {
			logger.Info("serving static site", "dir", siteDir)
			r.NotFound(handleSite(siteDir))
		}
	}
}
