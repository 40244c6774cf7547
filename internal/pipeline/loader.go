package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/domain"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
)

// ErrNoSources means every raw source was absent or empty. A single missing
// source only degrades coverage; losing all three leaves nothing to compute.
var ErrNoSources = errors.New("no usable source data")

// Key identifies one basin-month across all sources.
type Key struct {
	BasinID string
	Date    string // canonical YYYY-MM-DD month start, comparable as a map key
}

// Sources holds the harmonized per-source observations. A nil map means the
// source was absent; a nil value means the basin-month row was present but
// carried no usable number.
type Sources struct {
	Twsa map[Key]*float64
	Sm   map[Key]*float64
	Rain map[Key]*float64

	// RainIsDeficit records which column the precipitation source carried.
	// Downstream sign handling depends on it: an amount column feeds the
	// surplus score directly, a deficit column must be negated first.
	RainIsDeficit bool
}

// Empty reports whether no source contributed any row.
func (s *Sources) Empty() bool {
	return len(s.Twsa) == 0 && len(s.Sm) == 0 && len(s.Rain) == 0
}

// Loader reads the raw monthly CSVs and harmonizes identifiers and months.
type Loader struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader over the configured source paths.
func NewLoader(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{cfg: cfg, logger: logger, metrics: metrics}
}

// Load reads all three sources. Missing or malformed source files degrade
// to empty tables with a warning; Load fails only when nothing at all was
// loaded.
func (l *Loader) Load() (*Sources, error) {
	src := &Sources{}

	src.Twsa, _ = l.loadSource(l.cfg.GracePath, "grace", []string{"twsa"})
	src.Sm, _ = l.loadSource(l.cfg.Era5Path, "era5", []string{"sm"})

	rain, rainCol := l.loadSource(l.cfg.ImergPath, "imerg", []string{"rain", "rain_def"})
	src.Rain = rain
	src.RainIsDeficit = rainCol == "rain_def"

	if src.Empty() {
		return nil, fmt.Errorf("%w: checked %s, %s, %s",
			ErrNoSources, l.cfg.GracePath, l.cfg.Era5Path, l.cfg.ImergPath)
	}
	return src, nil
}

// loadSource reads one CSV keyed by (basin_id, month). valueCols lists the
// acceptable value column names in preference order; the first one present
// in the header wins and is returned.
func (l *Loader) loadSource(path, source string, valueCols []string) (map[Key]*float64, string) {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("source missing, continuing without it", "source", source, "path", path)
		return nil, ""
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		l.logger.Warn("source unreadable, continuing without it", "source", source, "path", path, "error", err)
		return nil, ""
	}
	if len(rows) < 1 {
		l.logger.Warn("source empty", "source", source, "path", path)
		return nil, ""
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.TrimSpace(name)] = i
	}

	basinIdx, hasBasin := idx["basin_id"]
	dateIdx, hasDate := idx["date"]
	valueIdx, valueCol := -1, ""
	for _, col := range valueCols {
		if i, ok := idx[col]; ok {
			valueIdx, valueCol = i, col
			break
		}
	}
	if !hasBasin || !hasDate || valueIdx < 0 {
		l.logger.Warn("source lacks required columns, continuing without it",
			"source", source, "path", path, "need", []string{"basin_id", "date"}, "value_columns", valueCols)
		return nil, ""
	}

	out := make(map[Key]*float64, len(rows)-1)
	dropped := 0
	for _, row := range rows[1:] {
		if basinIdx >= len(row) || dateIdx >= len(row) {
			dropped++
			continue
		}
		date, ok := domain.ParseSourceDate(strings.TrimSpace(row[dateIdx]))
		if !ok {
			dropped++
			continue
		}
		key := Key{
			BasinID: strings.TrimSpace(row[basinIdx]),
			Date:    domain.FormatDate(date),
		}
		out[key] = parseSourceValue(row, valueIdx)
	}

	l.metrics.SourceRows.WithLabelValues(source).Add(float64(len(out)))
	if dropped > 0 {
		l.metrics.RowsDropped.WithLabelValues(source).Add(float64(dropped))
		l.logger.Warn("dropped rows with unparsable dates", "source", source, "dropped", dropped)
	}
	l.logger.Info("source loaded", "source", source, "rows", len(out), "value_column", valueCol)
	return out, valueCol
}

func parseSourceValue(row []string, i int) *float64 {
	if i >= len(row) {
		return nil
	}
	s := strings.TrimSpace(row[i])
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
