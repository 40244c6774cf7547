package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/aquiferwatch/aquiferpulse/internal/domain"
)

// ReadCollection loads a GeoJSON FeatureCollection from path. Geometries
// are carried as orb values and never modified by this service.
func ReadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature collection: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection %s: %w", path, err)
	}
	return fc, nil
}

// WriteCollection serializes a FeatureCollection to path atomically.
func WriteCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}
	tmp, err := tempSibling(path)
	if err != nil {
		return err
	}
	defer tmp.cleanup()

	if _, err := tmp.file.Write(data); err != nil {
		return fmt.Errorf("write feature collection: %w", err)
	}
	return tmp.commit()
}

// EnrichCollection overlays one month's records onto the basin features.
// Every feature gets the snapshot date and the derived index properties;
// basins without a row for the month get null scores and class "no-data".
// Geometry and unrelated properties pass through untouched.
func EnrichCollection(fc *geojson.FeatureCollection, records []domain.Record, date time.Time) {
	byID := make(map[string]domain.Record, len(records))
	for _, rec := range records {
		byID[rec.BasinID] = rec
	}

	// A zero date means the table had no months at all; the snapshot date
	// is unknown rather than the year-one sentinel.
	var dateVal interface{}
	if !date.IsZero() {
		dateVal = domain.FormatDate(date)
	}

	for _, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		bid := BasinIDString(f.Properties["basin_id"])

		rec, ok := byID[bid]
		if !ok {
			f.Properties["date"] = dateVal
			f.Properties["twsa_z"] = nil
			f.Properties["sm_z"] = nil
			f.Properties["rain_z"] = nil
			f.Properties["rain_def_z"] = nil
			f.Properties["asi"] = nil
			f.Properties["class"] = domain.ClassNoData
			continue
		}

		f.Properties["date"] = dateVal
		f.Properties["twsa_z"] = jsonValue(rec.TwsaZ)
		f.Properties["sm_z"] = jsonValue(rec.SmZ)
		f.Properties["rain_z"] = jsonValue(rec.RainZ)
		f.Properties["rain_def_z"] = jsonValue(rec.RainDefZ)
		f.Properties["asi"] = jsonValue(rec.Asi)
		f.Properties["class"] = rec.Class
		if name, ok := f.Properties["name"].(string); !ok || name == "" {
			f.Properties["name"] = bid
		}
	}
}

// BasinIDString coerces a GeoJSON property to the canonical basin id form.
// JSON numbers decode as float64, so integral ids like 101 must round-trip
// to "101", matching how the table stores them.
func BasinIDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	default:
		return fmt.Sprintf("%v", id)
	}
}

func jsonValue(v *float64) interface{} {
	r := domain.Round3(v)
	if r == nil {
		return nil
	}
	return *r
}
