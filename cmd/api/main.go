// Command api serves the read-only query API over the computed artifacts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/aquiferwatch/aquiferpulse/internal/adapter/http"
	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
	"github.com/aquiferwatch/aquiferpulse/internal/query"
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

	engine := query.New(cfg, logger, metrics)
	srv := httpadapter.NewServer(cfg, engine, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
