package session

import (
	"context"
	"sync"
	"time"

	"turfbook/internal/domain"
	"turfbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSelectionRepository serves from the primary until it errors, then
// falls back to the secondary and probes the primary again after a minute.
// Losing a selection on failover only forces the user to re-pick a slot.
type FailoverSelectionRepository struct {
	primary  domain.SelectionRepository
	fallback domain.SelectionRepository
	logger   *zerolog.Logger

	mu        sync.Mutex
	down      bool
	lastCheck time.Time
}

func NewFailoverSelectionRepository(primary, fallback domain.SelectionRepository, logger *zerolog.Logger) *FailoverSelectionRepository {
	return &FailoverSelectionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSelectionRepository) primaryDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.down
}

func (r *FailoverSelectionRepository) markDown() {
	r.mu.Lock()
	r.down = true
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverSelectionRepository) markUp() {
	r.mu.Lock()
	r.down = false
	r.mu.Unlock()
}

// shouldProbe reports whether the probe window has elapsed, and claims the
// window so concurrent requests do not all hit a dead primary at once.
func (r *FailoverSelectionRepository) shouldProbe() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.down || time.Since(r.lastCheck) <= time.Minute {
		return false
	}
	r.lastCheck = time.Now()
	return true
}

func (r *FailoverSelectionRepository) GetSelection(ctx context.Context, sessionID string) (*models.SelectionState, error) {
	if !r.primaryDown() {
		state, err := r.primary.GetSelection(ctx, sessionID)
		if err == nil {
			return state, nil
		}
		r.logger.Error().Err(err).Msg("primary selection repository failed, falling back to memory")
		r.markDown()
	}

	// Probe the primary again after a minute of downtime.
	if r.shouldProbe() {
		state, err := r.primary.GetSelection(ctx, sessionID)
		if err == nil {
			r.markUp()
			return state, nil
		}
	}

	return r.fallback.GetSelection(ctx, sessionID)
}

func (r *FailoverSelectionRepository) SetSelection(ctx context.Context, state *models.SelectionState) error {
	if !r.primaryDown() {
		err := r.primary.SetSelection(ctx, state)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("primary selection repository failed, falling back to memory")
		r.markDown()
	}

	return r.fallback.SetSelection(ctx, state)
}

func (r *FailoverSelectionRepository) ClearSelection(ctx context.Context, sessionID string) error {
	if !r.primaryDown() {
		err := r.primary.ClearSelection(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("primary selection repository failed, falling back to memory")
		r.markDown()
	}

	return r.fallback.ClearSelection(ctx, sessionID)
}
