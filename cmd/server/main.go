package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rasnovtravel/townhunt/internal/config"
	"github.com/rasnovtravel/townhunt/internal/database"
	"github.com/rasnovtravel/townhunt/internal/hunt"
	"github.com/rasnovtravel/townhunt/internal/migrations"
	"github.com/rasnovtravel/townhunt/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	catalog := hunt.RasnovCatalog()

	// --- Account store ---
	var (
		store server.Store
		db    *sql.DB
	)
	if cfg.DBPath != "" {
		db, err = database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = server.NewSQLiteStore(db)
		logger.Info("using sqlite account store", "path", cfg.DBPath)
	} else {
		store = server.NewMemoryStore()
		logger.Info("using in-memory account store", "note", "accounts are lost on restart")
	}

	// --- HTTP server ---
	srv := server.New(cfg.HTTPAddr, logger, store, catalog, db, cfg.SiteDir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr,
			"points_per_location", hunt.PointsPerLocation,
			"completion_bonus", hunt.CompletionBonus,
		)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
