// Package http exposes the query engine over a REST API. It is a thin
// adapter: all date, ranking, and coverage semantics live in the query and
// domain packages.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
	"github.com/aquiferwatch/aquiferpulse/internal/query"
)

// Server bundles the router and its dependencies.
type Server struct {
	cfg     *config.Config
	queries *query.Engine
	logger  *slog.Logger
	engine  *gin.Engine
}

// NewServer constructs a server with routes and middleware.
func NewServer(cfg *config.Config, queries *query.Engine, logger *slog.Logger, metrics *observability.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(metricsMiddleware(metrics))

	s := &Server{cfg: cfg, queries: queries, logger: logger, engine: engine}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails, then drains connections within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.GET("/asi/latest", s.handleLatest)
	s.engine.GET("/asi/at", s.handleAt)
	s.engine.GET("/asi/top10", s.handleTop10)
	s.engine.GET("/asi/summary", s.handleSummary)
	s.engine.GET("/asi/history", s.handleHistory)
	s.engine.GET("/asi/latest_date", s.handleLatestDate)
	s.engine.GET("/asi/date_range", s.handleDateRange)

	// Legacy aliases kept for older dashboards. Pure redirects to the same
	// operations, no extra semantics.
	s.engine.GET("/api/asi", s.handleLatest)
	s.engine.GET("/api/asi_at", s.handleAt)
	s.engine.GET("/api/summary", s.handleSummary)
	s.engine.GET("/api/top10", s.handleTop10)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func metricsMiddleware(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
