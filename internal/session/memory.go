package session

import (
	"context"
	"sync"

	"turfbook/internal/models"
)

// MemorySelectionRepository keeps selection state in-process. Used directly
// in the single-instance setup and as the failover fallback.
type MemorySelectionRepository struct {
	states sync.Map
}

func NewMemorySelectionRepository() *MemorySelectionRepository {
	return &MemorySelectionRepository{}
}

func (r *MemorySelectionRepository) GetSelection(ctx context.Context, sessionID string) (*models.SelectionState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	return val.(*models.SelectionState), nil
}

func (r *MemorySelectionRepository) SetSelection(ctx context.Context, state *models.SelectionState) error {
	r.states.Store(state.SessionID, state)
	return nil
}

func (r *MemorySelectionRepository) ClearSelection(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}
