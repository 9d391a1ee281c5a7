package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/availability"
	"turfbook/internal/domain"
	"turfbook/internal/events"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/pricing"
	"turfbook/internal/session"

	"github.com/rs/zerolog"
)

// Request carries the form inputs for a commit attempt. Start may come
// directly from the caller or, when SessionID is set, from the session's
// recorded selection, which only counts if it was made under the same
// date/turf/duration the request carries now.
type Request struct {
	SessionID string
	Name      string
	Date      string
	Turf      models.TurfSize
	Duration  int
	Players   int
	Start     *int
	Coupon    string
}

// Service runs the slot grid, pricing and the two-phase commit protocol over
// the booking store.
type Service struct {
	store      domain.BookingStore
	calc       *pricing.Calculator
	selections *session.SelectionService
	eventBus   domain.EventPublisher
	venue      models.Venue
	logger     zerolog.Logger
}

func NewService(store domain.BookingStore, calc *pricing.Calculator, selections *session.SelectionService, eventBus domain.EventPublisher, venue models.Venue, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		calc:       calc,
		selections: selections,
		eventBus:   eventBus,
		venue:      venue,
		logger:     logger,
	}
}

// AvailableStarts renders the slot grid for the given inputs against the
// current store. Pure query; the caller's grid is stale the moment a commit
// lands, which is why Commit re-checks.
func (s *Service) AvailableStarts(date string, turf models.TurfSize, duration int) []availability.Slot {
	existing := s.store.ByDateAndTurf(date, turf)
	return availability.ComputeAvailableStarts(s.venue, date, turf, duration, existing)
}

// Quote prices a candidate booking without touching any state.
func (s *Service) Quote(turf models.TurfSize, start, duration int, coupon string) pricing.Quote {
	return s.calc.Calculate(turf, start, duration, coupon)
}

// ApplyCoupon validates a code against the venue's known coupons and stores
// it on the session. Unknown codes are rejected here; the pricing function
// itself silently ignores them.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (string, error) {
	canonical, ok := s.calc.KnownCoupon(code)
	if !ok {
		return "", ErrUnknownCoupon
	}
	if err := s.selections.ApplyCoupon(ctx, sessionID, canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

// Commit drives the protocol Reviewing -> Committing -> Committed|Rejected.
//
// An ErrValidation-wrapped error means the attempt never left Reviewing: the
// caller fixes the form and retries. ErrSlotTaken means the attempt reached
// Committing and was Rejected by the re-check against the current store; the
// caller must re-render availability. A nil error is Committed and returns
// the appended record.
func (s *Service) Commit(ctx context.Context, req Request) (*models.BookingRecord, error) {
	start, coupon, err := s.resolveSelection(ctx, req)
	if err != nil {
		return nil, err
	}

	// Reviewing -> Committing gate.
	if err := s.validate(req, start); err != nil {
		metrics.IncRejected("validation")
		return nil, err
	}

	quote := s.calc.Calculate(req.Turf, *start, req.Duration, coupon)

	record, err := models.NewBookingRecord(
		s.venue,
		s.store.NextID(),
		req.Name,
		req.Date,
		*start,
		req.Duration,
		req.Turf,
		req.Players,
		quote.Total,
		quote.CouponApplied,
	)
	if err != nil {
		metrics.IncRejected("validation")
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Committing: conflict re-check and append run atomically in the store.
	if err := s.store.CommitIfFree(ctx, record); err != nil {
		metrics.IncRejected("conflict")
		s.resetSelection(ctx, req.SessionID)
		s.publishEvent(events.EventCommitRejected, *record, "slot no longer available")
		s.logger.Info().Str("date", record.Date).Int("start", record.Start).
			Str("turf", string(record.Turf)).Msg("commit rejected by re-check")
		return nil, err
	}

	// Committed.
	metrics.IncCommitted(string(record.Turf))
	s.resetSelection(ctx, req.SessionID)
	s.publishEvent(events.EventBookingCommitted, *record, "")
	s.logger.Info().Int64("booking_id", record.ID).Str("date", record.Date).
		Int("start", record.Start).Int("total", record.Total).Msg("booking committed")
	return record, nil
}

// Cancel removes exactly one booking by id, freeing its interval.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	rec, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("cancel booking %d: not found", id)
	}
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("cancel booking %d: %w", id, err)
	}

	metrics.IncCancelled()
	s.publishEvent(events.EventBookingCancelled, *rec, "")
	s.logger.Info().Int64("booking_id", id).Msg("booking cancelled")
	return nil
}

// resolveSelection decides which start hour and coupon this attempt uses.
// A session's recorded highlight is only trusted when it was made under the
// same inputs the request carries now.
func (s *Service) resolveSelection(ctx context.Context, req Request) (*int, string, error) {
	start := req.Start
	coupon := req.Coupon

	if req.SessionID == "" || s.selections == nil {
		return start, coupon, nil
	}

	state, err := s.selections.Get(ctx, req.SessionID)
	if err != nil {
		return nil, "", err
	}
	if state == nil {
		return start, coupon, nil
	}

	if start == nil {
		if sel, ok := state.SelectedStart(); ok && state.InputsMatch(req.Date, req.Turf, req.Duration) {
			start = &sel
		}
	}
	if coupon == "" && state.Coupon != nil {
		coupon = *state.Coupon
	}
	return start, coupon, nil
}

func (s *Service) validate(req Request, start *int) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrNameRequired
	}
	if req.Date == "" {
		return ErrDateRequired
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !req.Turf.Valid() {
		return ErrTurfRequired
	}
	if req.Duration < 1 || req.Duration > s.venue.MaxDurationHours() {
		return ErrBadDuration
	}
	if start == nil {
		return ErrNoStartSelected
	}
	return nil
}

func (s *Service) resetSelection(ctx context.Context, sessionID string) {
	if sessionID == "" || s.selections == nil {
		return
	}
	if err := s.selections.ResetStart(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to reset selection")
	}
}

func (s *Service) publishEvent(eventType string, rec models.BookingRecord, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: rec.ID,
		Name:      rec.Name,
		Date:      rec.Date,
		Start:     rec.Start,
		Duration:  rec.Duration,
		Turf:      string(rec.Turf),
		Total:     rec.Total,
		Reason:    reason,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", rec.ID).Msg("publish event error")
	}
}

// IsValidation reports whether an error is a pre-commit validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
