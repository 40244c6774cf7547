// Command genmock generates a synthetic data directory for local runs and
// demos: the three raw monthly source CSVs plus a basins.geojson with
// simple box geometries. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data -basins 12 -months 24 -seed 7
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data", "data directory to populate")
	basins := flag.Int("basins", 12, "number of basins")
	months := flag.Int("months", 24, "number of months, ending at -end")
	end := flag.String("end", "2021-07", "last month to generate (YYYY-MM)")
	seed := flag.Int64("seed", 7, "random seed")
	deficit := flag.Bool("deficit", false, "emit rain_def instead of rain in imerg.csv")
	flag.Parse()

	endMonth, err := time.Parse("2006-01", *end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	ids := make([]string, *basins)
	for i := range ids {
		ids[i] = strconv.Itoa(101 + i)
	}

	dates := make([]time.Time, *months)
	for i := range dates {
		dates[i] = endMonth.AddDate(0, i-(*months-1), 0)
	}

	interim := filepath.Join(*outDir, "interim")
	static := filepath.Join(*outDir, "static")
	for _, dir := range []string{interim, static} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	rainCol := "rain"
	if *deficit {
		rainCol = "rain_def"
	}

	// Each basin gets its own baseline so z-scores stay per-basin. The last
	// generated month has depressed storage and soil moisture, so the
	// default snapshot lands there with a mix of tiers. A couple of basins
	// carry deliberate gaps to exercise weight renormalization.
	if err := writeSource(filepath.Join(interim, "grace.csv"), "twsa", ids, dates, rng,
		func(rng *rand.Rand, basin int, last bool) (float64, bool) {
			if basin == 2 {
				return 0, false // basin with no storage data at all
			}
			v := rng.NormFloat64() * 5
			if last {
				v -= 8
			}
			return v, true
		}); err != nil {
		return err
	}

	if err := writeSource(filepath.Join(interim, "era5.csv"), "sm", ids, dates, rng,
		func(rng *rand.Rand, basin int, last bool) (float64, bool) {
			v := 0.25 + rng.Float64()*0.1
			if last {
				v -= 0.08
			}
			return v, true
		}); err != nil {
		return err
	}

	if err := writeSource(filepath.Join(interim, "imerg.csv"), rainCol, ids, dates, rng,
		func(rng *rand.Rand, basin int, last bool) (float64, bool) {
			if basin == 5 && last {
				return 0, false // rain gap in the snapshot month
			}
			return 40 + rng.Float64()*80, true
		}); err != nil {
		return err
	}

	if err := writeBasins(filepath.Join(static, "basins.geojson"), ids); err != nil {
		return err
	}

	log.Printf("mock data written to %s: %d basins x %d months", *outDir, *basins, *months)
	return nil
}

func writeSource(path, valueCol string, ids []string, dates []time.Time, rng *rand.Rand,
	gen func(rng *rand.Rand, basin int, last bool) (float64, bool)) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"basin_id", "date", valueCol}); err != nil {
		return err
	}
	for i, id := range ids {
		for j, d := range dates {
			v, ok := gen(rng, i, j == len(dates)-1)
			if !ok {
				continue
			}
			row := []string{id, d.Format("2006-01-02"), strconv.FormatFloat(v, 'f', 4, 64)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeBasins lays the basins out on a grid of 1x1 degree boxes.
func writeBasins(path string, ids []string) error {
	fc := geojson.NewFeatureCollection()
	for i, id := range ids {
		x := float64(i%4)*1.5 - 75.0
		y := float64(i/4)*1.5 + 40.0
		ring := orb.Ring{
			{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["basin_id"] = id
		f.Properties["name"] = "Basin " + id
		fc.Append(f)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
