package models

import (
	"fmt"
	"strings"
	"time"
)

// TurfSize identifies the venue configuration a booking occupies.
type TurfSize string

const (
	TurfSmall TurfSize = "5" // 5-a-side
	TurfLarge TurfSize = "7" // 7-a-side
)

func (t TurfSize) Valid() bool {
	return t == TurfSmall || t == TurfLarge
}

func (t TurfSize) Label() string {
	if t == TurfLarge {
		return "7-a-side"
	}
	return "5-a-side"
}

// BookingRecord is immutable once created. JSON tags follow the persisted
// snapshot layout; changing a tag orphans existing stored bookings.
type BookingRecord struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Date     string   `json:"date"`
	Start    int      `json:"start"`
	Duration int      `json:"duration"`
	Turf     TurfSize `json:"turf"`
	Players  int      `json:"players"`
	Total    int      `json:"total"`
	Coupon   *string  `json:"coupon"`
}

// NewBookingRecord is the only constructor for records entering the store.
// It clamps players to [MinPlayers, MaxPlayers] and validates every field the
// store relies on, so a malformed record cannot be appended. Start and
// duration are bounded by the venue's configured operating hours.
func NewBookingRecord(venue Venue, id int64, name, date string, start, duration int, turf TurfSize, players, total int, coupon *string) (*BookingRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("booking name is required")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	if !turf.Valid() {
		return nil, fmt.Errorf("invalid turf size %q", turf)
	}
	open, closing := venue.Hours()
	if start < open || start >= closing {
		return nil, fmt.Errorf("start hour %d outside operating range [%d, %d)", start, open, closing)
	}
	if duration < 1 {
		return nil, fmt.Errorf("duration must be at least 1 hour")
	}
	// Same closing-time bound the availability engine applies.
	if start > closing-(duration-1) {
		return nil, fmt.Errorf("booking would run past closing time")
	}
	if total < 0 {
		return nil, fmt.Errorf("total must not be negative")
	}

	return &BookingRecord{
		ID:       id,
		Name:     name,
		Date:     date,
		Start:    start,
		Duration: duration,
		Turf:     turf,
		Players:  Clamp(players, MinPlayers, MaxPlayers),
		Total:    total,
		Coupon:   coupon,
	}, nil
}

// ParseDate validates an ISO calendar date (no time component).
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return t, nil
}

func Clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
