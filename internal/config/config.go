package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
// Every artifact location is an explicit path so the pipeline and query
// layer can run against temporary directories in tests.
type Config struct {
	DataDir string

	// Raw monthly sources.
	GracePath string // basin_id,date,twsa
	Era5Path  string // basin_id,date,sm
	ImergPath string // basin_id,date,rain|rain_def

	// Static basin geometries (read-only input).
	BasinsPath string

	// Computed artifacts, replaced wholesale by each pipeline run.
	TablePath  string
	LatestPath string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Query-layer tuning.
	SnapshotCacheSize int
	RankingLimit      int
}

// Load reads configuration from environment variables, applying defaults
// where unset. Per-file env vars override the DATA_DIR-derived layout.
func Load() (*Config, error) {
	dataDir := envOrDefault("DATA_DIR", "data")

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("SNAPSHOT_CACHE_SIZE", 32)
	if err != nil {
		return nil, err
	}

	rankingLimit, err := parsePositiveInt("RANKING_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:           dataDir,
		GracePath:         envOrDefault("GRACE_PATH", filepath.Join(dataDir, "interim", "grace.csv")),
		Era5Path:          envOrDefault("ERA5_PATH", filepath.Join(dataDir, "interim", "era5.csv")),
		ImergPath:         envOrDefault("IMERG_PATH", filepath.Join(dataDir, "interim", "imerg.csv")),
		BasinsPath:        envOrDefault("BASINS_PATH", filepath.Join(dataDir, "static", "basins.geojson")),
		TablePath:         envOrDefault("TABLE_PATH", filepath.Join(dataDir, "processed", "asi_table.csv")),
		LatestPath:        envOrDefault("LATEST_PATH", filepath.Join(dataDir, "processed", "asi_latest.geojson")),
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		SnapshotCacheSize: cacheSize,
		RankingLimit:      rankingLimit,
	}

	if cfg.BasinsPath == "" {
		return nil, errors.New("BASINS_PATH is required")
	}
	if cfg.TablePath == "" {
		return nil, errors.New("TABLE_PATH is required")
	}
	if cfg.LatestPath == "" {
		return nil, errors.New("LATEST_PATH is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
