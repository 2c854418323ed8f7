package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/devrewind/github-rewind/internal/api"
	"github.com/devrewind/github-rewind/internal/collector"
	"github.com/devrewind/github-rewind/internal/config"
	"github.com/devrewind/github-rewind/internal/slides"
	"github.com/devrewind/github-rewind/internal/storage"
	"github.com/devrewind/github-rewind/internal/storage/postgres"
	"github.com/devrewind/github-rewind/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Report history is optional
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to initialize PostgreSQL storage", "err", err)
		}
	case "sqlite":
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to initialize SQLite storage", "err", err)
		}
	}
	if store != nil {
		defer store.Close()
	}

	var generator slides.Generator
	if cfg.SlidesURL != "" {
		generator = slides.NewClient(cfg.SlidesURL)
	}

	// One collector per request: the credential travels with the request
	// and is never retained
	factory := func(token string) collector.Collector {
		opts := []collector.Option{collector.WithLogger(logger)}
		if cfg.PacerEnabled {
			opts = append(opts, collector.WithPacer(collector.NewPacer(10, 100*time.Millisecond)))
		}
		return collector.NewGitHubCollector(token, opts...)
	}

	handler := api.NewHandler(factory, store, generator, cfg.GitHubToken)
	router := api.SetupRoutes(handler)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info("starting API server", "addr", addr, "storage", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		logger.Fatal("failed to start server", "err", err)
	}
}
