package booking

import (
	"errors"
	"fmt"

	"turfbook/internal/store"
)

// ErrValidation is the base of every pre-commit failure: the attempt stays in
// the reviewing phase and no state is mutated.
var ErrValidation = errors.New("validation failed")

var (
	ErrNameRequired    = fmt.Errorf("%w: name is required", ErrValidation)
	ErrDateRequired    = fmt.Errorf("%w: date is required", ErrValidation)
	ErrTurfRequired    = fmt.Errorf("%w: turf size is required", ErrValidation)
	ErrNoStartSelected = fmt.Errorf("%w: no start hour selected", ErrValidation)
	ErrBadDuration     = fmt.Errorf("%w: duration out of range", ErrValidation)
	ErrUnknownCoupon   = fmt.Errorf("%w: unknown coupon code", ErrValidation)
)

// ErrSlotTaken is the commit-time rejection: the re-check found a conflict
// that did not exist when the grid was rendered. The pending record is
// discarded and the caller must re-render availability.
var ErrSlotTaken = store.ErrConflict
