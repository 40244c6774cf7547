package artifact

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquiferwatch/aquiferpulse/internal/domain"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestWriteTable_ReadTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asi_table.csv")

	records := []domain.Record{
		{
			BasinID: "101",
			Date:    month(2021, time.June),
			Twsa:    domain.Float(-4.2),
			Sm:      domain.Float(0.31),
			Rain:    domain.Float(88.5),
			TwsaZ:   domain.Float(-1.23456),
			SmZ:     domain.Float(0.5),
			RainZ:   domain.Float(0.75),
			Asi:     domain.Float(-0.39),
			Class:   domain.ClassNormal,
		},
		{
			BasinID: "102",
			Date:    month(2021, time.July),
			Class:   domain.ClassNoData,
		},
	}

	require.NoError(t, WriteTable(path, records))

	got, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "101", first.BasinID)
	assert.Equal(t, month(2021, time.June), first.Date)
	assert.Equal(t, -4.2, *first.Twsa)
	assert.Equal(t, -1.235, *first.TwsaZ, "z-scores round to 3 decimals on write")
	assert.Equal(t, domain.ClassNormal, first.Class)
	assert.Nil(t, first.RainDef)
	assert.Nil(t, first.RainDefZ)

	second := got[1]
	assert.Equal(t, "102", second.BasinID)
	assert.Nil(t, second.Twsa)
	assert.Nil(t, second.Asi)
	assert.Equal(t, domain.ClassNoData, second.Class)
}

func TestWriteTable_MissingSerializesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asi_table.csv")

	records := []domain.Record{
		{BasinID: "B1", Date: month(2021, time.July), Class: domain.ClassNoData},
	}
	require.NoError(t, WriteTable(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(TableColumns, ","), lines[0])
	assert.Equal(t, "B1,2021-07-01,,,,,,,,,,no-data", lines[1])
	assert.NotContains(t, string(data), "NaN")
	assert.NotContains(t, string(data), "nan")
}

func TestWriteTable_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asi_table.csv")

	require.NoError(t, WriteTable(path, []domain.Record{
		{BasinID: "A", Date: month(2021, time.June), Class: domain.ClassNoData},
	}))
	require.NoError(t, WriteTable(path, []domain.Record{
		{BasinID: "B", Date: month(2021, time.July), Class: domain.ClassNoData},
	}))

	got, err := ReadTable(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].BasinID)

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "asi_table.csv", entries[0].Name())
}

func TestReadTable_Missing(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
