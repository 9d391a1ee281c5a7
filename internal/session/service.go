package session

import (
	"context"
	"time"

	"turfbook/internal/domain"
	"turfbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SelectionService manages the transient selection state of form sessions.
// A selection is only meaningful together with the inputs it was made under;
// changing date, turf or duration invalidates the highlighted hour.
type SelectionService struct {
	repo   domain.SelectionRepository
	logger zerolog.Logger
}

func NewSelectionService(repo domain.SelectionRepository, logger zerolog.Logger) *SelectionService {
	return &SelectionService{
		repo:   repo,
		logger: logger,
	}
}

// NewSession opens a fresh form session and returns its id.
func (s *SelectionService) NewSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	state := &models.SelectionState{SessionID: id, UpdatedAt: time.Now()}
	if err := s.repo.SetSelection(ctx, state); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the session's selection state, or nil for unknown sessions.
func (s *SelectionService) Get(ctx context.Context, sessionID string) (*models.SelectionState, error) {
	state, err := s.repo.GetSelection(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get selection state")
		return nil, err
	}
	return state, nil
}

// Select records the highlighted start hour together with the grid inputs it
// belongs to. When the inputs differ from the previous ones, any earlier
// highlight is gone with them; the applied coupon survives.
func (s *SelectionService) Select(ctx context.Context, sessionID, date string, turf models.TurfSize, duration, start int) error {
	prev, err := s.repo.GetSelection(ctx, sessionID)
	if err != nil {
		return err
	}

	state := &models.SelectionState{
		SessionID: sessionID,
		Date:      date,
		Turf:      turf,
		Duration:  duration,
		Start:     &start,
		UpdatedAt: time.Now(),
	}
	if prev != nil {
		state.Coupon = prev.Coupon
	}
	return s.repo.SetSelection(ctx, state)
}

// ApplyCoupon stores an already-validated coupon code on the session.
func (s *SelectionService) ApplyCoupon(ctx context.Context, sessionID, code string) error {
	state, err := s.repo.GetSelection(ctx, sessionID)
	if err != nil {
		return err
	}
	if state == nil {
		state = &models.SelectionState{SessionID: sessionID}
	}
	state.Coupon = &code
	state.UpdatedAt = time.Now()
	return s.repo.SetSelection(ctx, state)
}

// ResetStart drops the highlighted hour while keeping inputs and coupon.
// Called after every commit attempt, successful or not.
func (s *SelectionService) ResetStart(ctx context.Context, sessionID string) error {
	state, err := s.repo.GetSelection(ctx, sessionID)
	if err != nil || state == nil {
		return err
	}
	state.Start = nil
	state.UpdatedAt = time.Now()
	return s.repo.SetSelection(ctx, state)
}

// End discards the session entirely.
func (s *SelectionService) End(ctx context.Context, sessionID string) error {
	return s.repo.ClearSelection(ctx, sessionID)
}
