package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"turfbook/internal/availability"
	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/worker"

	"github.com/rs/zerolog"
)

var (
	// ErrConflict is returned by CommitIfFree when the requested interval is
	// no longer free at write time.
	ErrConflict = errors.New("slot no longer available")

	// ErrNotFound is returned when a booking id is absent from the store.
	ErrNotFound = errors.New("booking not found")
)

// Store owns the ordered booking collection. All mutation goes through it,
// serialized by a mutex, and every successful mutation rewrites the
// persisted snapshot. The in-memory set stays authoritative when a snapshot
// write fails; failed writes are retried and then surfaced as warnings, never
// by dropping the booking.
type Store struct {
	mu       sync.Mutex
	records  []models.BookingRecord
	snapshot domain.Snapshot
	retry    worker.RetryPolicy
	logger   zerolog.Logger
	lastID   int64

	// now is swappable in tests; ids are derived from it.
	now func() time.Time
}

// Open loads the snapshot and returns a ready store.
func Open(ctx context.Context, snapshot domain.Snapshot, retry worker.RetryPolicy, logger zerolog.Logger) (*Store, error) {
	records, err := snapshot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{
		records:  records,
		snapshot: snapshot,
		retry:    retry,
		logger:   logger,
		now:      time.Now,
	}
	for _, r := range records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}

	logger.Info().Int("bookings", len(records)).Msg("booking store loaded")
	return s, nil
}

// Records returns a copy of the full collection in insertion order.
func (s *Store) Records() []models.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BookingRecord(nil), s.records...)
}

// ByDateAndTurf returns the bookings sharing a calendar date and turf size.
func (s *Store) ByDateAndTurf(date string, turf models.TurfSize) []models.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.BookingRecord
	for _, r := range s.records {
		if r.Date == date && r.Turf == turf {
			out = append(out, r)
		}
	}
	return out
}

// Get looks a booking up by id.
func (s *Store) Get(id int64) (*models.BookingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, true
		}
	}
	return nil, false
}

// NextID issues a unique, monotonic, time-based identifier (Unix
// milliseconds, bumped past the previous id when two bookings land within
// the same millisecond).
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// CommitIfFree re-checks the record's interval against the current
// collection and appends only when no overlap exists. Check and append run
// under one lock acquisition, so the no-overlap invariant holds even when
// another booking was added after the caller last rendered availability.
func (s *Store) CommitIfFree(ctx context.Context, record *models.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if availability.Conflicts(record.Date, record.Turf, record.Start, record.Duration, s.records) {
		return ErrConflict
	}

	s.records = append(s.records, *record)
	s.persistLocked(ctx)
	return nil
}

// Remove deletes exactly one booking by id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.persistLocked(ctx)
			return nil
		}
	}
	return ErrNotFound
}

// Query filters and orders the collection for the bookings table: optional
// turf filter, optional free-text match on name or date, sorted by date then
// start hour.
type Query struct {
	Text string
	Turf models.TurfSize
}

func (s *Store) Search(q Query) []models.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]models.BookingRecord, 0, len(s.records))
	for _, r := range s.records {
		if q.Turf != "" && r.Turf != q.Turf {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(r.Name), text) && !strings.Contains(r.Date, text) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// persistLocked rewrites the snapshot from the current collection. Callers
// hold the mutex. Failure is recoverable: the booking already lives in
// memory, so the write is retried and then logged, not propagated.
func (s *Store) persistLocked(ctx context.Context) {
	snapshot := append([]models.BookingRecord(nil), s.records...)

	err := s.retry.Do(ctx, func() error {
		return s.snapshot.Save(ctx, snapshot)
	})
	if err != nil {
		metrics.IncSnapshotWriteFailure()
		s.logger.Warn().Err(err).Int("bookings", len(snapshot)).
			Msg("snapshot write failed; in-memory store remains authoritative")
	}
}
