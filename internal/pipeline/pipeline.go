package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aquiferwatch/aquiferpulse/internal/artifact"
	"github.com/aquiferwatch/aquiferpulse/internal/config"
	"github.com/aquiferwatch/aquiferpulse/internal/domain"
	"github.com/aquiferwatch/aquiferpulse/internal/observability"
)

// Pipeline runs one full compute pass: load sources, merge, standardize,
// score, classify, and replace the table and latest-snapshot artifacts.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// Result summarizes a completed run.
type Result struct {
	Records  int
	Basins   int
	Snapshot time.Time // month the latest snapshot was built for
	Covered  int       // features with a numeric ASI in that snapshot
	Elapsed  time.Duration
}

// New creates a Pipeline. Pass clockwork.NewRealClock() outside tests.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger, metrics: metrics, clock: clock}
}

// Run executes the batch pipeline once. The previous artifacts stay intact
// until the replacement rename, so concurrent readers never see a partial
// file.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()

	sources, err := NewLoader(p.cfg, p.logger, p.metrics).Load()
	if err != nil {
		p.metrics.PipelineFailures.Inc()
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	records := merge(sources)
	normalize(records, sources)
	for i := range records {
		records[i].Asi = domain.Composite(records[i].TwsaZ, records[i].SmZ, records[i].RainZ)
		records[i].Class = domain.Classify(records[i].Asi)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].BasinID != records[j].BasinID {
			return records[i].BasinID < records[j].BasinID
		}
		return records[i].Date.Before(records[j].Date)
	})

	if err := artifact.WriteTable(p.cfg.TablePath, records); err != nil {
		p.metrics.PipelineFailures.Inc()
		return Result{}, err
	}
	p.logger.Info("stress index table written", "path", p.cfg.TablePath, "records", len(records))

	snapshot := latestWithCoverage(records)
	covered, err := p.writeLatestSnapshot(records, snapshot)
	if err != nil {
		p.metrics.PipelineFailures.Inc()
		return Result{}, err
	}

	res := Result{
		Records:  len(records),
		Basins:   countBasins(records),
		Snapshot: snapshot,
		Covered:  covered,
		Elapsed:  p.clock.Since(start),
	}

	p.metrics.PipelineRuns.Inc()
	p.metrics.PipelineDuration.Observe(res.Elapsed.Seconds())
	p.metrics.TableRecords.Set(float64(res.Records))
	p.logger.Info("pipeline complete",
		"records", res.Records,
		"basins", res.Basins,
		"snapshot_month", domain.FormatDate(res.Snapshot),
		"covered", res.Covered,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// merge builds the outer union of all basin-months seen in any source,
// one record per (basin_id, month). The rain value lands in the column
// matching the source's interpretation.
func merge(src *Sources) []domain.Record {
	keys := make(map[Key]struct{})
	for k := range src.Twsa {
		keys[k] = struct{}{}
	}
	for k := range src.Sm {
		keys[k] = struct{}{}
	}
	for k := range src.Rain {
		keys[k] = struct{}{}
	}

	records := make([]domain.Record, 0, len(keys))
	for k := range keys {
		date, _ := domain.ParseSourceDate(k.Date)
		rec := domain.Record{
			BasinID: k.BasinID,
			Date:    date,
			Twsa:    src.Twsa[k],
			Sm:      src.Sm[k],
		}
		if src.RainIsDeficit {
			rec.RainDef = src.Rain[k]
		} else {
			rec.Rain = src.Rain[k]
		}
		records = append(records, rec)
	}
	return records
}

// normalize fills the z-score columns, each signal standardized per basin
// over that basin's own history. The rain score is estimated once from the
// loaded column; its mirror is the exact negation.
func normalize(records []domain.Record, src *Sources) {
	zTransform(records,
		func(r *domain.Record) *float64 { return r.Twsa },
		func(r *domain.Record, z *float64) { r.TwsaZ = z })
	zTransform(records,
		func(r *domain.Record) *float64 { return r.Sm },
		func(r *domain.Record, z *float64) { r.SmZ = z })

	if src.RainIsDeficit {
		zTransform(records,
			func(r *domain.Record) *float64 { return r.RainDef },
			func(r *domain.Record, z *float64) { r.RainDefZ = z })
		for i := range records {
			records[i].RainZ = domain.Neg(records[i].RainDefZ)
		}
		return
	}
	zTransform(records,
		func(r *domain.Record) *float64 { return r.Rain },
		func(r *domain.Record, z *float64) { r.RainZ = z })
	for i := range records {
		records[i].RainDefZ = domain.Neg(records[i].RainZ)
	}
}

// zTransform groups one signal by basin, computes each basin's stats once,
// then applies the standard score in a single pass.
func zTransform(records []domain.Record, get func(*domain.Record) *float64, set func(*domain.Record, *float64)) {
	grouped := make(map[string][]float64)
	for i := range records {
		if v := get(&records[i]); v != nil {
			grouped[records[i].BasinID] = append(grouped[records[i].BasinID], *v)
		}
	}

	stats := make(map[string]domain.BasinStats, len(grouped))
	for id, values := range grouped {
		stats[id] = domain.NewBasinStats(values)
	}

	for i := range records {
		set(&records[i], stats[records[i].BasinID].Z(get(&records[i])))
	}
}

// latestWithCoverage picks the most recent month having at least one
// numeric composite. When no month has any, it falls back to the
// chronologically latest month present, which will render entirely as
// no-data.
func latestWithCoverage(records []domain.Record) time.Time {
	var latestAny, latestCovered time.Time
	for _, r := range records {
		if r.Date.After(latestAny) {
			latestAny = r.Date
		}
		if r.Asi != nil && r.Date.After(latestCovered) {
			latestCovered = r.Date
		}
	}
	if !latestCovered.IsZero() {
		return latestCovered
	}
	return latestAny
}

// writeLatestSnapshot joins the selected month's records onto the static
// basin geometries and replaces the latest-snapshot artifact.
func (p *Pipeline) writeLatestSnapshot(records []domain.Record, snapshot time.Time) (int, error) {
	fc, err := artifact.ReadCollection(p.cfg.BasinsPath)
	if err != nil {
		return 0, err
	}

	monthRows := make([]domain.Record, 0)
	covered := 0
	for _, r := range records {
		if r.Date.Equal(snapshot) {
			monthRows = append(monthRows, r)
			if r.Asi != nil {
				covered++
			}
		}
	}

	artifact.EnrichCollection(fc, monthRows, snapshot)
	if err := artifact.WriteCollection(p.cfg.LatestPath, fc); err != nil {
		return 0, err
	}

	p.metrics.SnapshotBasins.Set(float64(len(fc.Features)))
	p.logger.Info("latest snapshot written",
		"path", p.cfg.LatestPath,
		"month", domain.FormatDate(snapshot),
		"features", len(fc.Features),
		"covered", covered,
	)
	return covered, nil
}

func countBasins(records []domain.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.BasinID] = struct{}{}
	}
	return len(seen)
}
