// Command seed populates the configured database with a demo farm.
//
// Usage:
//
//	go run ./cmd/seed
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"agrisense/config"
	"agrisense/database"
	"agrisense/internal/seed"
	"agrisense/pkg/observability"
)

func main() {
	cfg := config.Load()
	observability.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	if _, err := seed.Run(context.Background(), db, clockwork.NewRealClock()); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
