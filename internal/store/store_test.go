package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"turfbook/internal/models"
	"turfbook/internal/storage"
	"turfbook/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, id int64, name, date string, start, duration int, turf models.TurfSize) *models.BookingRecord {
	t.Helper()
	rec, err := models.NewBookingRecord(models.Venue{}, id, name, date, start, duration, turf, 10, 1600, nil)
	require.NoError(t, err)
	return rec
}

func newTestStore(t *testing.T) (*Store, *storage.JSONSnapshot) {
	t.Helper()
	snap, err := storage.NewJSONSnapshot(t.TempDir(), "")
	require.NoError(t, err)

	s, err := Open(context.Background(), snap, worker.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)
	return s, snap
}

func TestStoreCommitAndReload(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	rec := mustRecord(t, s.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall)
	require.NoError(t, s.CommitIfFree(ctx, rec))

	// Every mutation rewrites the snapshot; a fresh store sees the booking.
	reloaded, err := Open(ctx, snap, worker.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, reloaded.Records(), 1)
	assert.Equal(t, rec.ID, reloaded.Records()[0].ID)
}

func TestStoreCommitIfFree(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first := mustRecord(t, s.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall)
	require.NoError(t, s.CommitIfFree(ctx, first))

	t.Run("OverlapRejected", func(t *testing.T) {
		stale := mustRecord(t, s.NextID(), "Dev", "2026-09-01", 11, 2, models.TurfSmall)
		err := s.CommitIfFree(ctx, stale)
		assert.ErrorIs(t, err, ErrConflict)
		// The pending record was discarded, not appended.
		assert.Len(t, s.Records(), 1)
	})

	t.Run("AdjacentAccepted", func(t *testing.T) {
		next := mustRecord(t, s.NextID(), "Dev", "2026-09-01", 12, 2, models.TurfSmall)
		assert.NoError(t, s.CommitIfFree(ctx, next))
	})

	t.Run("OtherTurfAccepted", func(t *testing.T) {
		other := mustRecord(t, s.NextID(), "Mia", "2026-09-01", 10, 2, models.TurfLarge)
		assert.NoError(t, s.CommitIfFree(ctx, other))
	})
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec := mustRecord(t, s.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall)
	require.NoError(t, s.CommitIfFree(ctx, rec))

	require.NoError(t, s.Remove(ctx, rec.ID))
	assert.Empty(t, s.Records())

	// Removing twice reports not-found; exactly one record went away.
	assert.ErrorIs(t, s.Remove(ctx, rec.ID), ErrNotFound)

	// The freed interval is bookable again.
	again := mustRecord(t, s.NextID(), "Dev", "2026-09-01", 10, 2, models.TurfSmall)
	assert.NoError(t, s.CommitIfFree(ctx, again))
}

func TestStoreNextID(t *testing.T) {
	s, _ := newTestStore(t)

	// Freeze the clock: ids within one millisecond must still be unique
	// and increasing.
	now := time.Now()
	s.now = func() time.Time { return now }

	a := s.NextID()
	b := s.NextID()
	c := s.NextID()
	assert.Equal(t, now.UnixMilli(), a)
	assert.Equal(t, a+1, b)
	assert.Equal(t, b+1, c)
}

func TestStoreNextIDAfterReload(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	rec := mustRecord(t, s.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall)
	require.NoError(t, s.CommitIfFree(ctx, rec))

	reloaded, err := Open(ctx, snap, worker.RetryPolicy{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Greater(t, reloaded.NextID(), rec.ID)
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.CommitIfFree(ctx, mustRecord(t, s.NextID(), "Zoya", "2026-09-02", 8, 1, models.TurfSmall)))
	require.NoError(t, s.CommitIfFree(ctx, mustRecord(t, s.NextID(), "Asha", "2026-09-01", 12, 1, models.TurfSmall)))
	require.NoError(t, s.CommitIfFree(ctx, mustRecord(t, s.NextID(), "Asha", "2026-09-01", 9, 1, models.TurfLarge)))

	t.Run("SortedByDateThenStart", func(t *testing.T) {
		got := s.Search(Query{})
		require.Len(t, got, 3)
		assert.Equal(t, 9, got[0].Start)
		assert.Equal(t, 12, got[1].Start)
		assert.Equal(t, "2026-09-02", got[2].Date)
	})

	t.Run("TurfFilter", func(t *testing.T) {
		got := s.Search(Query{Turf: models.TurfLarge})
		require.Len(t, got, 1)
		assert.Equal(t, models.TurfLarge, got[0].Turf)
	})

	t.Run("TextMatchesNameOrDate", func(t *testing.T) {
		assert.Len(t, s.Search(Query{Text: "asha"}), 2)
		assert.Len(t, s.Search(Query{Text: "2026-09-02"}), 1)
		assert.Empty(t, s.Search(Query{Text: "nobody"}))
	})
}

type failingSnapshot struct {
	records []models.BookingRecord
	saves   int
}

func (f *failingSnapshot) Load(ctx context.Context) ([]models.BookingRecord, error) {
	return f.records, nil
}

func (f *failingSnapshot) Save(ctx context.Context, records []models.BookingRecord) error {
	f.saves++
	return errors.New("disk full")
}

func (f *failingSnapshot) Close() error { return nil }

func TestStoreSurvivesSnapshotWriteFailure(t *testing.T) {
	ctx := context.Background()
	snap := &failingSnapshot{}

	s, err := Open(ctx, snap, worker.RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)

	// The write fails after retries, but the booking is not lost: the
	// in-memory store stays authoritative for the session.
	rec := mustRecord(t, s.NextID(), "Asha", "2026-09-01", 10, 2, models.TurfSmall)
	require.NoError(t, s.CommitIfFree(ctx, rec))
	assert.Len(t, s.Records(), 1)
	assert.Equal(t, 3, snap.saves)
}
