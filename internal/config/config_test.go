package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_DIR", "GRACE_PATH", "ERA5_PATH", "IMERG_PATH",
		"BASINS_PATH", "TABLE_PATH", "LATEST_PATH",
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"SHUTDOWN_TIMEOUT", "SNAPSHOT_CACHE_SIZE", "RANKING_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "interim", "grace.csv"), cfg.GracePath)
	assert.Equal(t, filepath.Join("data", "interim", "era5.csv"), cfg.Era5Path)
	assert.Equal(t, filepath.Join("data", "interim", "imerg.csv"), cfg.ImergPath)
	assert.Equal(t, filepath.Join("data", "static", "basins.geojson"), cfg.BasinsPath)
	assert.Equal(t, filepath.Join("data", "processed", "asi_table.csv"), cfg.TablePath)
	assert.Equal(t, filepath.Join("data", "processed", "asi_latest.geojson"), cfg.LatestPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 32, cfg.SnapshotCacheSize)
	assert.Equal(t, 10, cfg.RankingLimit)
}

func TestLoad_DataDirDerivesPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/var/asi")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/var/asi", "interim", "grace.csv"), cfg.GracePath)
	assert.Equal(t, filepath.Join("/var/asi", "processed", "asi_table.csv"), cfg.TablePath)
	assert.Equal(t, filepath.Join("/var/asi", "processed", "asi_latest.geojson"), cfg.LatestPath)
}

func TestLoad_ExplicitPathsOverrideDataDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/var/asi")
	t.Setenv("TABLE_PATH", "/mnt/shared/table.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/mnt/shared/table.csv", cfg.TablePath)
	assert.Equal(t, filepath.Join("/var/asi", "interim", "grace.csv"), cfg.GracePath)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9191")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "45s")
	t.Setenv("SNAPSHOT_CACHE_SIZE", "4")
	t.Setenv("RANKING_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9191", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 45*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4, cfg.SnapshotCacheSize)
	assert.Equal(t, 25, cfg.RankingLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-5s"},
		{"unparsable cache size", "SNAPSHOT_CACHE_SIZE", "many"},
		{"zero cache size", "SNAPSHOT_CACHE_SIZE", "0"},
		{"negative ranking limit", "RANKING_LIMIT", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
