package models

const (
	// OpenHour and CloseHour bound the venue's operating range [6, 22).
	OpenHour  = 6
	CloseHour = 22

	// PeakStartHour..PeakEndHour (inclusive) carry the peak multiplier.
	PeakStartHour = 18
	PeakEndHour   = 21

	MinPlayers = 2
	MaxPlayers = 20

	// DefaultMaxDuration caps rental length in hours.
	DefaultMaxDuration = 4

	DateLayout = "2006-01-02"

	// StorageKey names the persisted snapshot. Stable across versions so
	// existing stored bookings are not orphaned.
	StorageKey = "turfBookings_v1"

	// DefaultSessionTTL is the lifetime of a form session's selection state.
	DefaultSessionTTL = 24 * 60 * 60 // seconds

	DefaultRateSmall = 800
	DefaultRateLarge = 1200

	DefaultPeakMultiplier = 1.25

	DefaultCouponCode     = "TURF10"
	DefaultCouponDiscount = 0.10
)
