package pricing

import (
	"fmt"
	"math"
	"strings"

	"turfbook/internal/models"
)

// Quote is the priced result for a candidate booking.
type Quote struct {
	Total         int     `json:"total"`
	PeakApplied   bool    `json:"peakApplied"`
	CouponApplied *string `json:"couponApplied"`
}

// Calculator prices bookings from per-turf hourly rates, the peak multiplier
// and the known coupon codes. Zero-value fields fall back to the venue
// defaults, so Calculator{} prices exactly like the original widget.
type Calculator struct {
	Rates          map[models.TurfSize]int
	PeakMultiplier float64
	// Coupons maps upper-case code to fractional discount, e.g. "TURF10" -> 0.10.
	Coupons map[string]float64
}

func NewCalculator(rates map[models.TurfSize]int, peakMultiplier float64, coupons map[string]float64) *Calculator {
	return &Calculator{Rates: rates, PeakMultiplier: peakMultiplier, Coupons: coupons}
}

// FormatHour renders a 24-hour integer as 12-hour "H:00 AM/PM" (0 -> 12 AM,
// 13 -> 1 PM). Total for h in [0, 23].
func FormatHour(h int) string {
	am := "AM"
	if h >= 12 {
		am = "PM"
	}
	hr := ((h+11)%12 + 1)
	return fmt.Sprintf("%d:00 %s", hr, am)
}

// IsPeakHour reports whether a start hour carries the peak multiplier.
func IsPeakHour(h int) bool {
	return h >= models.PeakStartHour && h <= models.PeakEndHour
}

// BaseRatePerHour returns the hourly rate for a turf size.
func (c *Calculator) BaseRatePerHour(turf models.TurfSize) int {
	if rate, ok := c.Rates[turf]; ok {
		return rate
	}
	if turf == models.TurfLarge {
		return models.DefaultRateLarge
	}
	return models.DefaultRateSmall
}

// Calculate prices a booking. Peak applies if any covered hour is a peak
// hour. An unknown coupon code is ignored here; rejecting it is the caller's
// concern. The total is rounded once, at the end.
func (c *Calculator) Calculate(turf models.TurfSize, startHour, durationHours int, couponCode string) Quote {
	base := float64(c.BaseRatePerHour(turf) * durationHours)

	peak := false
	for i := 0; i < durationHours; i++ {
		if IsPeakHour(startHour + i) {
			peak = true
		}
	}

	total := base
	if peak {
		total *= c.peakMultiplier()
	}

	var applied *string
	if code := strings.ToUpper(strings.TrimSpace(couponCode)); code != "" {
		if discount, ok := c.coupons()[code]; ok {
			total *= 1 - discount
			applied = &code
		}
	}

	return Quote{
		Total:         int(math.Round(total)),
		PeakApplied:   peak,
		CouponApplied: applied,
	}
}

// KnownCoupon reports whether a code matches a configured coupon,
// case-insensitively, and returns its canonical form.
func (c *Calculator) KnownCoupon(code string) (string, bool) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if canonical == "" {
		return "", false
	}
	_, ok := c.coupons()[canonical]
	return canonical, ok
}

func (c *Calculator) peakMultiplier() float64 {
	if c.PeakMultiplier > 0 {
		return c.PeakMultiplier
	}
	return models.DefaultPeakMultiplier
}

func (c *Calculator) coupons() map[string]float64 {
	if c.Coupons != nil {
		return c.Coupons
	}
	return map[string]float64{models.DefaultCouponCode: models.DefaultCouponDiscount}
}
