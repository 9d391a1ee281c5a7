package availability

import "turfbook/internal/models"

// Slot is one candidate start hour in the grid.
type Slot struct {
	Hour     int  `json:"hour"`
	Bookable bool `json:"bookable"`
}

// Overlaps reports whether [s1, s1+d1) intersects [s2, s2+d2). Half-open
// semantics: a booking ending at hour 10 does not conflict with one starting
// at hour 10.
func Overlaps(s1, d1, s2, d2 int) bool {
	lo := s1
	if s2 > lo {
		lo = s2
	}
	hi := s1 + d1
	if s2+d2 < hi {
		hi = s2 + d2
	}
	return lo < hi
}

// Conflicts reports whether a candidate interval collides with any existing
// booking on the same date and turf size. This is the exact check the commit
// protocol re-runs against the current store before writing.
func Conflicts(date string, turf models.TurfSize, start, duration int, existing []models.BookingRecord) bool {
	for _, b := range existing {
		if b.Date != date || b.Turf != turf {
			continue
		}
		if Overlaps(start, duration, b.Start, b.Duration) {
			return true
		}
	}
	return false
}

// ComputeAvailableStarts marks every hour of the venue's operating range as
// bookable or not for the given inputs. Hours whose booking would run past
// closing are never bookable; the rest are checked against existing bookings
// for the same date and turf. An unset date or turf yields no bookable hours.
// Pure query: the slice of existing bookings is not mutated.
func ComputeAvailableStarts(venue models.Venue, date string, turf models.TurfSize, duration int, existing []models.BookingRecord) []Slot {
	open, closing := venue.Hours()
	slots := make([]Slot, 0, closing-open)

	inputsSet := date != "" && turf.Valid() && duration >= 1

	// Latest start whose booking still ends by closing time.
	maxStart := closing - (duration - 1)

	for h := open; h < closing; h++ {
		bookable := inputsSet && h <= maxStart
		if bookable && Conflicts(date, turf, h, duration, existing) {
			bookable = false
		}
		slots = append(slots, Slot{Hour: h, Bookable: bookable})
	}
	return slots
}
