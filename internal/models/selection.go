package models

import "time"

// SelectionState is the transient per-session form state: the inputs the slot
// grid was rendered for and the currently highlighted start hour. It is never
// written to the booking snapshot.
type SelectionState struct {
	SessionID string    `json:"session_id"`
	Date      string    `json:"date"`
	Turf      TurfSize  `json:"turf"`
	Duration  int       `json:"duration"`
	Start     *int      `json:"start"`
	Coupon    *string   `json:"coupon"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InputsMatch reports whether the grid inputs the selection was made under
// are still the ones in effect. A mismatch invalidates the selected start.
func (s *SelectionState) InputsMatch(date string, turf TurfSize, duration int) bool {
	return s.Date == date && s.Turf == turf && s.Duration == duration
}

// SelectedStart returns the highlighted hour, or ok=false when nothing is
// selected.
func (s *SelectionState) SelectedStart() (int, bool) {
	if s == nil || s.Start == nil {
		return 0, false
	}
	return *s.Start, true
}
