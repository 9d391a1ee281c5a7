package domain

import (
	"context"

	"turfbook/internal/models"
)

// Snapshot is the persisted form of the booking store: loaded once at
// startup, rewritten after every mutation. Implementations must preserve the
// stable record layout so snapshots survive reimplementation.
type Snapshot interface {
	Load(ctx context.Context) ([]models.BookingRecord, error)
	Save(ctx context.Context, records []models.BookingRecord) error
	Close() error
}

// SelectionRepository holds transient per-session selection state. It is a
// separate lifecycle from the booking snapshot and may lose data freely.
type SelectionRepository interface {
	GetSelection(ctx context.Context, sessionID string) (*models.SelectionState, error)
	SetSelection(ctx context.Context, state *models.SelectionState) error
	ClearSelection(ctx context.Context, sessionID string) error
}

// EventPublisher fans a domain event out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingStore is the single source of truth both the availability engine and
// the commit protocol read. CommitIfFree performs the conflict re-check and
// the append as one step, so the no-overlap invariant holds even when a
// booking landed between grid render and confirm.
type BookingStore interface {
	Records() []models.BookingRecord
	ByDateAndTurf(date string, turf models.TurfSize) []models.BookingRecord
	Get(id int64) (*models.BookingRecord, bool)
	NextID() int64
	CommitIfFree(ctx context.Context, record *models.BookingRecord) error
	Remove(ctx context.Context, id int64) error
}
