package export

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"turfbook/internal/config"
	"turfbook/internal/models"
	"turfbook/internal/storage"
	"turfbook/internal/store"
	"turfbook/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededExporter(t *testing.T) (*Exporter, *store.Store) {
	t.Helper()
	ctx := context.Background()

	snap, err := storage.NewJSONSnapshot(t.TempDir(), "")
	require.NoError(t, err)
	st, err := store.Open(ctx, snap, worker.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)

	coupon := "TURF10"
	later, err := models.NewBookingRecord(models.Venue{}, st.NextID(), "Dev", "2026-09-02", 18, 1, models.TurfLarge, 14, 1500, nil)
	require.NoError(t, err)
	require.NoError(t, st.CommitIfFree(ctx, later))

	earlier, err := models.NewBookingRecord(models.Venue{}, st.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall, 10, 1440, &coupon)
	require.NoError(t, err)
	require.NoError(t, st.CommitIfFree(ctx, earlier))

	exp := NewExporter(st, config.ExportConfig{Path: t.TempDir()}, zerolog.Nop())
	return exp, st
}

func TestJSONExportMatchesStore(t *testing.T) {
	exp, st := seededExporter(t)

	data, err := exp.JSON()
	require.NoError(t, err)

	// The JSON export carries the persisted layout, no reshaping. Only the
	// indentation differs from the snapshot file.
	var got []models.BookingRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, st.Records(), got)

	persisted, err := json.Marshal(st.Records())
	require.NoError(t, err)
	assert.JSONEq(t, string(persisted), string(data))

	assert.Contains(t, string(data), `"turf": "5"`)
	assert.Contains(t, string(data), `"coupon": "TURF10"`)
	assert.Contains(t, string(data), `"coupon": null`)
}

func TestJSONExportEmptyStore(t *testing.T) {
	snap, err := storage.NewJSONSnapshot(t.TempDir(), "")
	require.NoError(t, err)
	st, err := store.Open(context.Background(), snap, worker.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)

	exp := NewExporter(st, config.ExportConfig{Path: t.TempDir()}, zerolog.Nop())
	data, err := exp.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestWriteJSON(t *testing.T) {
	exp, _ := seededExporter(t)

	path, err := exp.WriteJSON()
	require.NoError(t, err)
	assert.Equal(t, "turf-bookings.json", filepath.Base(path))
	assert.FileExists(t, path)
}

func TestExcelExport(t *testing.T) {
	exp, _ := seededExporter(t)

	f, err := exp.Excel()
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Name", "Date", "Start", "Duration", "Turf", "Players", "Total", "Coupon"}, rows[0])

	// Rows come out sorted by date then start hour, with display formatting.
	assert.Equal(t, "Asha", rows[1][1])
	assert.Equal(t, "10:00 AM", rows[1][3])
	assert.Equal(t, "2h", rows[1][4])
	assert.Equal(t, "5-a-side", rows[1][5])
	assert.Equal(t, "TURF10", rows[1][8])

	assert.Equal(t, "Dev", rows[2][1])
	assert.Equal(t, "6:00 PM", rows[2][3])
	assert.Equal(t, "7-a-side", rows[2][5])
}

func TestWriteExcel(t *testing.T) {
	exp, _ := seededExporter(t)

	path, err := exp.WriteExcel()
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assert.FileExists(t, path)
}
