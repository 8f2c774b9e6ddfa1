package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":3000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// SiteDir is the static tourist site served behind the API. Empty
	// disables static serving.
	SiteDir string `env:"SITE_DIR" envDefault:"site"`

	// DBPath enables the SQLite account store. Empty keeps accounts in
	// a process-local map, lost on restart.
	DBPath string `env:"DB_PATH"`

	// DataDir holds hunt progress and captured photos for the embedded
	// hunt engine (demo mode).
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// AllowTestingMode exposes the relaxed-threshold testing affordance
	// of the hunt engine in demo builds.
	AllowTestingMode bool `env:"ALLOW_TESTING_MODE" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
