// Package artifact reads and writes the pipeline's durable outputs: the
// stress index table (CSV) and the basin feature collections (GeoJSON).
// Writes replace the target atomically so a concurrent reader never
// observes a half-written file.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/aquiferwatch/aquiferpulse/internal/domain"
)

// TableColumns is the stress index table header, in serialization order.
var TableColumns = []string{
	"basin_id", "date",
	"twsa", "sm", "rain", "rain_def",
	"twsa_z", "sm_z", "rain_z", "rain_def_z",
	"asi", "class",
}

// WriteTable serializes records to CSV at path, replacing any previous
// table. Numerics are rounded to three decimals; missing values serialize
// as empty fields, never as 0 or "NaN".
func WriteTable(path string, records []domain.Record) error {
	tmp, err := tempSibling(path)
	if err != nil {
		return err
	}
	defer tmp.cleanup()

	w := csv.NewWriter(tmp.file)
	if err := w.Write(TableColumns); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.BasinID,
			domain.FormatDate(rec.Date),
			formatValue(rec.Twsa),
			formatValue(rec.Sm),
			formatValue(rec.Rain),
			formatValue(rec.RainDef),
			formatValue(rec.TwsaZ),
			formatValue(rec.SmZ),
			formatValue(rec.RainZ),
			formatValue(rec.RainDefZ),
			formatValue(rec.Asi),
			rec.Class,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	return tmp.commit()
}

// ReadTable parses the stress index table at path, preserving row order.
// A missing file surfaces as an error matching fs.ErrNotExist.
func ReadTable(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stress index table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse stress index table: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		date, ok := domain.ParseSourceDate(field("date"))
		if !ok {
			continue
		}

		records = append(records, domain.Record{
			BasinID:  field("basin_id"),
			Date:     date,
			Twsa:     parseValue(field("twsa")),
			Sm:       parseValue(field("sm")),
			Rain:     parseValue(field("rain")),
			RainDef:  parseValue(field("rain_def")),
			TwsaZ:    parseValue(field("twsa_z")),
			SmZ:      parseValue(field("sm_z")),
			RainZ:    parseValue(field("rain_z")),
			RainDefZ: parseValue(field("rain_def_z")),
			Asi:      parseValue(field("asi")),
			Class:    field("class"),
		})
	}
	return records, nil
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*domain.Round3(v), 'f', -1, 64)
}

func parseValue(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
