package models

// Venue bounds the bookable day. The zero value falls back to the stock
// operating range and duration cap, so Venue{} behaves like the original
// widget.
type Venue struct {
	OpenHour    int
	CloseHour   int
	MaxDuration int
}

// Hours returns the operating range [open, closing).
func (v Venue) Hours() (int, int) {
	if v.CloseHour <= v.OpenHour {
		return OpenHour, CloseHour
	}
	return v.OpenHour, v.CloseHour
}

// MaxDurationHours caps rental length in hours.
func (v Venue) MaxDurationHours() int {
	if v.MaxDuration < 1 {
		return DefaultMaxDuration
	}
	return v.MaxDuration
}
