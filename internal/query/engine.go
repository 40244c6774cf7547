// Package query answers read-only requests against the computed stress
// index artifacts. It never mutates persisted state: each operation is a
// self-contained read of the table, the latest snapshot, or the static
// basin geometries.
package query

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/aquiferwatch/aquiferpulse/internal/artifact"
	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/domain"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
)

var (
	// ErrTableMissing means the stress index table has not been produced
	// yet; the compute pipeline must run first.
	ErrTableMissing = errors.New("stress index table not found, run the compute pipeline")

	// ErrBadDate means the client's date parameter was not YYYY-MM or
	// YYYY-MM-DD.
	ErrBadDate = errors.New("invalid date parameter")

	// ErrUnknownBasin means history was requested for a basin id with zero
	// table rows. A known basin whose values are all missing is not an
	// error.
	ErrUnknownBasin = errors.New("no history for basin")
)

// Engine serves snapshots, rankings, summaries, and histories.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	cache   *snapshotCache
}

// RankingEntry is one row of a stress ranking, most stressed first.
type RankingEntry struct {
	BasinID string   `json:"basin_id"`
	Name    string   `json:"name"`
	Asi     *float64 `json:"asi"`
	Class   string   `json:"class"`
	Date    string   `json:"date"`
}

// Summary aggregates one snapshot by severity tier.
type Summary struct {
	AsOf   *string        `json:"as_of"`
	Counts map[string]int `json:"counts"`
	MinAsi *float64       `json:"min_asi"`
	MaxAsi *float64       `json:"max_asi"`
}

// HistoryEntry is one month of a basin's derived record.
type HistoryEntry struct {
	Date     string   `json:"date"`
	TwsaZ    *float64 `json:"twsa_z"`
	SmZ      *float64 `json:"sm_z"`
	RainZ    *float64 `json:"rain_z"`
	RainDefZ *float64 `json:"rain_def_z"`
	Asi      *float64 `json:"asi"`
	Class    string   `json:"class"`
}

// DateRange is the chronological span of months present in the table,
// independent of data completeness.
type DateRange struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

// New creates an Engine over the configured artifact paths.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		cache:   newSnapshotCache(cfg.SnapshotCacheSize),
	}
}

// Snapshot returns the feature collection for a month. An empty date means
// the default (coverage-selected) snapshot, which degrades to an all
// no-data collection when no pipeline run has happened yet; an explicit
// date requires the table to exist.
func (e *Engine) Snapshot(date string) (*geojson.FeatureCollection, error) {
	if date == "" {
		return e.latestSnapshot()
	}
	return e.snapshotAt(date)
}

// latestSnapshot serves the prebuilt artifact, falling back to the bare
// basin geometries marked no-data. Geometries alone are always servable.
func (e *Engine) latestSnapshot() (*geojson.FeatureCollection, error) {
	fc, err := artifact.ReadCollection(e.cfg.LatestPath)
	if err == nil {
		return fc, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("latest snapshot unreadable, serving no-data fallback", "error", err)
	}

	fc, err = artifact.ReadCollection(e.cfg.BasinsPath)
	if err != nil {
		return nil, err
	}
	artifact.EnrichCollection(fc, nil, time.Time{})
	return fc, nil
}

// snapshotAt rebuilds (or serves from cache) the collection for one month.
func (e *Engine) snapshotAt(date string) (*geojson.FeatureCollection, error) {
	month, err := domain.ParseMonthParam(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	key := domain.FormatDate(month)

	st, err := os.Stat(e.cfg.TablePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTableMissing
		}
		return nil, fmt.Errorf("stat stress index table: %w", err)
	}

	if fc, ok := e.cache.get(key, st.ModTime()); ok {
		e.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return fc, nil
	}
	e.metrics.SnapshotCache.WithLabelValues("miss").Inc()

	records, err := e.readTable()
	if err != nil {
		return nil, err
	}
	monthRows := make([]domain.Record, 0)
	for _, r := range records {
		if r.Date.Equal(month) {
			monthRows = append(monthRows, r)
		}
	}

	fc, err := artifact.ReadCollection(e.cfg.BasinsPath)
	if err != nil {
		return nil, err
	}
	artifact.EnrichCollection(fc, monthRows, month)

	e.cache.put(key, st.ModTime(), fc)
	return fc, nil
}

// Ranking extracts the numeric-scored features of a snapshot, optionally
// filtered to a set of severity classes, sorted ascending by ASI (most
// stressed first) and truncated to limit. A negative limit counts as zero.
func (e *Engine) Ranking(date string, limit int, classes []string) ([]RankingEntry, error) {
	fc, err := e.Snapshot(date)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		wanted[c] = struct{}{}
	}

	entries := make([]RankingEntry, 0, len(fc.Features))
	for _, f := range fc.Features {
		asi, ok := numericProp(f.Properties, "asi")
		if !ok {
			continue
		}
		class, _ := f.Properties["class"].(string)
		if len(wanted) > 0 {
			if _, ok := wanted[class]; !ok {
				continue
			}
		}
		name, _ := f.Properties["name"].(string)
		dateStr, _ := f.Properties["date"].(string)
		entries = append(entries, RankingEntry{
			BasinID: featureBasinID(f),
			Name:    name,
			Asi:     domain.Round3(&asi),
			Class:   class,
			Date:    dateStr,
		})
	}

	// Stable keeps the collection's feature order for equal scores.
	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].Asi < *entries[j].Asi
	})

	if limit < 0 {
		limit = 0
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Summarize counts a snapshot's features per severity tier and reports the
// representative date plus the numeric ASI extremes.
func (e *Engine) Summarize(date string) (Summary, error) {
	fc, err := e.Snapshot(date)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{Counts: make(map[string]int)}
	for _, f := range fc.Features {
		class, ok := f.Properties["class"].(string)
		if !ok || class == "" {
			class = domain.ClassNoData
		}
		s.Counts[class]++

		if s.AsOf == nil {
			if d, ok := f.Properties["date"].(string); ok && d != "" {
				s.AsOf = &d
			}
		}
		if asi, ok := numericProp(f.Properties, "asi"); ok {
			if s.MinAsi == nil || asi < *s.MinAsi {
				s.MinAsi = domain.Float(asi)
			}
			if s.MaxAsi == nil || asi > *s.MaxAsi {
				s.MaxAsi = domain.Float(asi)
			}
		}
	}
	return s, nil
}

// History returns every table row for a basin in chronological order.
// Zero rows is ErrUnknownBasin; a basin whose scores are all missing still
// returns its rows.
func (e *Engine) History(basinID string) ([]HistoryEntry, error) {
	records, err := e.readTable()
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0)
	for _, r := range records {
		if r.BasinID != basinID {
			continue
		}
		entries = append(entries, HistoryEntry{
			Date:     domain.FormatDate(r.Date),
			TwsaZ:    domain.Round3(r.TwsaZ),
			SmZ:      domain.Round3(r.SmZ),
			RainZ:    domain.Round3(r.RainZ),
			RainDefZ: domain.Round3(r.RainDefZ),
			Asi:      domain.Round3(r.Asi),
			Class:    r.Class,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBasin, basinID)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// DateBounds reports the chronological minimum and maximum month present.
func (e *Engine) DateBounds() (DateRange, error) {
	records, err := e.readTable()
	if err != nil {
		return DateRange{}, err
	}

	var bounds DateRange
	for _, r := range records {
		d := domain.FormatDate(r.Date)
		if bounds.Min == nil || d < *bounds.Min {
			bounds.Min = &d
		}
		if bounds.Max == nil || d > *bounds.Max {
			bounds.Max = &d
		}
	}
	return bounds, nil
}

// LatestDate reports the chronological maximum month present, regardless
// of whether that month has any numeric scores. The default snapshot uses
// coverage selection instead; the two can differ.
func (e *Engine) LatestDate() (*string, error) {
	bounds, err := e.DateBounds()
	if err != nil {
		return nil, err
	}
	return bounds.Max, nil
}

func (e *Engine) readTable() ([]domain.Record, error) {
	records, err := artifact.ReadTable(e.cfg.TablePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTableMissing
		}
		return nil, err
	}
	return records, nil
}

func numericProp(p geojson.Properties, key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func featureBasinID(f *geojson.Feature) string {
	if id := artifact.BasinIDString(f.Properties["basin_id"]); id != "" {
		return id
	}
	return artifact.BasinIDString(f.ID)
}
