// Command compute runs the stress index pipeline once: it loads the raw
// monthly sources, computes per-basin standard scores and the composite
// index, and replaces the table and latest-snapshot artifacts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
	"github.com/aquiferwatch/aquiferpulse/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, logger, metrics, clockwork.NewRealClock())
	if _, err := p.Run(ctx); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}
