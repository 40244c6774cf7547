package artifact

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquiferwatch/aquiferpulse/internal/domain"
)

func testCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	named := geojson.NewFeature(orb.Point{1, 1})
	named.Properties["basin_id"] = "101"
	named.Properties["name"] = "Upper Test"
	fc.Append(named)

	// Numeric id, no display name: name must fall back to the id string.
	numeric := geojson.NewFeature(orb.Point{2, 2})
	numeric.Properties["basin_id"] = float64(102)
	fc.Append(numeric)

	orphan := geojson.NewFeature(orb.Point{3, 3})
	orphan.Properties["basin_id"] = "103"
	fc.Append(orphan)

	return fc
}

func TestEnrichCollection(t *testing.T) {
	fc := testCollection()
	date := time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC)

	EnrichCollection(fc, []domain.Record{
		{
			BasinID: "101",
			Date:    date,
			TwsaZ:   domain.Float(-1.23456),
			Asi:     domain.Float(-1.1),
			Class:   domain.ClassAlert,
		},
		{
			BasinID: "102",
			Date:    date,
			Asi:     domain.Float(-0.25),
			Class:   domain.ClassNormal,
		},
	}, date)

	named := fc.Features[0].Properties
	assert.Equal(t, "2021-07-01", named["date"])
	assert.Equal(t, -1.235, named["twsa_z"], "scores round to 3 decimals")
	assert.Nil(t, named["sm_z"])
	assert.Equal(t, -1.1, named["asi"])
	assert.Equal(t, domain.ClassAlert, named["class"])
	assert.Equal(t, "Upper Test", named["name"], "existing display name is kept")

	numeric := fc.Features[1].Properties
	assert.Equal(t, "102", numeric["name"], "name falls back to the basin id")
	assert.Equal(t, -0.25, numeric["asi"])

	orphan := fc.Features[2].Properties
	assert.Equal(t, "2021-07-01", orphan["date"])
	assert.Nil(t, orphan["asi"])
	assert.Equal(t, domain.ClassNoData, orphan["class"])
}

func TestEnrichCollection_ZeroDate(t *testing.T) {
	fc := testCollection()
	EnrichCollection(fc, nil, time.Time{})

	for _, f := range fc.Features {
		assert.Nil(t, f.Properties["date"])
		assert.Equal(t, domain.ClassNoData, f.Properties["class"])
	}
}

func TestBasinIDString(t *testing.T) {
	assert.Equal(t, "101", BasinIDString("101"))
	assert.Equal(t, "102", BasinIDString(float64(102)))
	assert.Equal(t, "2.5", BasinIDString(2.5))
	assert.Equal(t, "7", BasinIDString(7))
	assert.Equal(t, "", BasinIDString(nil))
}

func TestWriteCollection_ReadCollection_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basins.geojson")
	fc := testCollection()

	require.NoError(t, WriteCollection(path, fc))

	got, err := ReadCollection(path)
	require.NoError(t, err)
	require.Len(t, got.Features, 3)
	assert.Equal(t, "Upper Test", got.Features[0].Properties["name"])
	assert.Equal(t, orb.Point{1, 1}, got.Features[0].Geometry, "geometry passes through unmodified")
}
