// Command validate checks a computed stress index table against the
// system's own invariants: column layout, sort order, the rain-score
// negation rule, classification thresholds, weight renormalization, and
// output rounding. It exits non-zero if any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -table data/processed/asi_table.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/aquiferwatch/aquiferpulse/internal/artifact"
	"github.com/aquiferwatch/aquiferpulse/internal/domain"
)

// zTolerance absorbs the double rounding between stored z-scores (three
// decimals) and the stored composite, which is rounded from full precision.
const zTolerance = 2e-3

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	table := flag.String("table", "data/processed/asi_table.csv", "path to the stress index table")
	flag.Parse()

	os.Exit(run(*table))
}

func run(tablePath string) int {
	records, err := artifact.ReadTable(tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read table: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkHeader(tablePath),
		checkSortOrder(records),
		checkRainNegation(records),
		checkClassification(records),
		checkWeights(records),
		checkRounding(records),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("%d records checked, %d/%d phases passed\n", len(records), len(phases)-failed, len(phases))
	if failed > 0 {
		return 1
	}
	return 0
}

func checkHeader(path string) *phase {
	p := &phase{name: "header layout"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		p.errorf("read header: %v", err)
		return p
	}
	if len(header) != len(artifact.TableColumns) {
		p.errorf("expected %d columns, got %d", len(artifact.TableColumns), len(header))
		return p
	}
	for i, want := range artifact.TableColumns {
		if header[i] != want {
			p.errorf("column %d: expected %q, got %q", i, want, header[i])
		}
	}
	return p
}

func checkSortOrder(records []domain.Record) *phase {
	p := &phase{name: "sorted by basin_id, date"}
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.BasinID > cur.BasinID ||
			(prev.BasinID == cur.BasinID && prev.Date.After(cur.Date)) {
			p.errorf("row %d (%s %s) out of order after (%s %s)",
				i, cur.BasinID, domain.FormatDate(cur.Date), prev.BasinID, domain.FormatDate(prev.Date))
		}
	}
	return p
}

func checkRainNegation(records []domain.Record) *phase {
	p := &phase{name: "rain_z is the exact negation of rain_def_z"}
	for _, r := range records {
		switch {
		case (r.RainZ == nil) != (r.RainDefZ == nil):
			p.errorf("%s %s: one rain score missing without the other", r.BasinID, domain.FormatDate(r.Date))
		case r.RainZ != nil && math.Abs(*r.RainZ+*r.RainDefZ) > 1e-9:
			p.errorf("%s %s: rain_z=%v rain_def_z=%v", r.BasinID, domain.FormatDate(r.Date), *r.RainZ, *r.RainDefZ)
		}
	}
	return p
}

func checkClassification(records []domain.Record) *phase {
	p := &phase{name: "class matches composite thresholds"}
	for _, r := range records {
		if want := domain.Classify(r.Asi); r.Class != want {
			p.errorf("%s %s: asi=%v class=%q, expected %q",
				r.BasinID, domain.FormatDate(r.Date), fmtAsi(r.Asi), r.Class, want)
		}
	}
	return p
}

// checkWeights replays the composite from the stored z-scores. The stored
// values are rounded, so the replay matches within zTolerance.
func checkWeights(records []domain.Record) *phase {
	p := &phase{name: "composite is the renormalized weighted blend"}
	for _, r := range records {
		want := domain.Composite(r.TwsaZ, r.SmZ, r.RainZ)
		switch {
		case (want == nil) != (r.Asi == nil):
			p.errorf("%s %s: asi=%s but components say %s",
				r.BasinID, domain.FormatDate(r.Date), fmtAsi(r.Asi), fmtAsi(want))
		case want != nil && math.Abs(*want-*r.Asi) > zTolerance:
			p.errorf("%s %s: asi=%v, replayed %v", r.BasinID, domain.FormatDate(r.Date), *r.Asi, *want)
		}
	}
	return p
}

func checkRounding(records []domain.Record) *phase {
	p := &phase{name: "numerics rounded to 3 decimals"}
	for _, r := range records {
		for col, v := range map[string]*float64{
			"twsa_z": r.TwsaZ, "sm_z": r.SmZ, "rain_z": r.RainZ,
			"rain_def_z": r.RainDefZ, "asi": r.Asi,
		} {
			if v != nil && *domain.Round3(v) != *v {
				p.errorf("%s %s: %s=%v carries more than 3 decimals",
					r.BasinID, domain.FormatDate(r.Date), col, *v)
			}
		}
	}
	return p
}

func fmtAsi(v *float64) string {
	if v == nil {
		return "missing"
	}
	return fmt.Sprintf("%v", *v)
}
