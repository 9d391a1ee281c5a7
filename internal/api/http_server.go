package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"turfbook/internal/booking"
	"turfbook/internal/config"
	"turfbook/internal/export"
	"turfbook/internal/metrics"
	"turfbook/internal/models"
	"turfbook/internal/pricing"
	"turfbook/internal/session"
	"turfbook/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer is the form/table collaborator surface: it adapts HTTP requests
// into core calls and core results into JSON. The core itself stays callable
// without it.
type HTTPServer struct {
	cfg        config.APIConfig
	bookings   *booking.Service
	selections *session.SelectionService
	store      *store.Store
	exporter   *export.Exporter
	logger     zerolog.Logger
	server     *http.Server
	auth       *HTTPAuth
}

func NewHTTPServer(cfg config.APIConfig, bookings *booking.Service, selections *session.SelectionService, st *store.Store, exporter *export.Exporter, logger zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:        cfg,
		bookings:   bookings,
		selections: selections,
		store:      st,
		exporter:   exporter,
		logger:     logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/quote", srv.handleQuote)
	mux.HandleFunc("/api/v1/sessions", srv.handleSessions)
	mux.HandleFunc("/api/v1/sessions/", srv.handleSessionActions)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GET /api/v1/slots?date=YYYY-MM-DD&turf=5|7&duration=N
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	turf := models.TurfSize(strings.TrimSpace(r.URL.Query().Get("turf")))
	duration, err := intQuery(r, "duration", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if date != "" {
		if _, err := models.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	slots := s.bookings.AvailableStarts(date, turf, duration)

	type slotView struct {
		Hour     int    `json:"hour"`
		Label    string `json:"label"`
		Bookable bool   `json:"bookable"`
	}
	views := make([]slotView, 0, len(slots))
	for _, sl := range slots {
		views = append(views, slotView{Hour: sl.Hour, Label: pricing.FormatHour(sl.Hour), Bookable: sl.Bookable})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": views})
}

// GET /api/v1/quote?turf=5|7&start=H&duration=N&coupon=CODE
func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("quote")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	turf := models.TurfSize(strings.TrimSpace(r.URL.Query().Get("turf")))
	if !turf.Valid() {
		writeError(w, http.StatusBadRequest, "turf must be 5 or 7")
		return
	}
	start, err := intQuery(r, "start", -1)
	if err != nil || start < 0 {
		writeError(w, http.StatusBadRequest, "start is required")
		return
	}
	duration, err := intQuery(r, "duration", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote := s.bookings.Quote(turf, start, duration, r.URL.Query().Get("coupon"))
	writeJSON(w, http.StatusOK, quote)
}

// POST /api/v1/sessions
func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sessions")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, err := s.selections.NewSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// POST /api/v1/sessions/{id}/select   {date, turf, duration, start}
// POST /api/v1/sessions/{id}/coupon   {code}
func (s *HTTPServer) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_actions")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID, action := parts[0], parts[1]

	switch action {
	case "select":
		var body struct {
			Date     string          `json:"date"`
			Turf     models.TurfSize `json:"turf"`
			Duration int             `json:"duration"`
			Start    int             `json:"start"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.selections.Select(r.Context(), sessionID, body.Date, body.Turf, body.Duration, body.Start); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store selection")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"selected": body.Start})

	case "coupon":
		var body struct {
			Code string `json:"code"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		applied, err := s.bookings.ApplyCoupon(r.Context(), sessionID, body.Code)
		if err != nil {
			if booking.IsValidation(err) {
				writeError(w, http.StatusBadRequest, "invalid code")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to apply coupon")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"coupon": applied})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// GET  /api/v1/bookings?q=&turf=
// POST /api/v1/bookings
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	switch r.Method {
	case http.MethodGet:
		q := store.Query{
			Text: r.URL.Query().Get("q"),
			Turf: models.TurfSize(r.URL.Query().Get("turf")),
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": s.store.Search(q)})

	case http.MethodPost:
		var body struct {
			SessionID string          `json:"session_id"`
			Name      string          `json:"name"`
			Date      string          `json:"date"`
			Turf      models.TurfSize `json:"turf"`
			Duration  int             `json:"duration"`
			Players   int             `json:"players"`
			Start     *int            `json:"start"`
			Coupon    string          `json:"coupon"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		record, err := s.bookings.Commit(r.Context(), booking.Request{
			SessionID: body.SessionID,
			Name:      body.Name,
			Date:      body.Date,
			Turf:      body.Turf,
			Duration:  body.Duration,
			Players:   body.Players,
			Start:     body.Start,
			Coupon:    body.Coupon,
		})
		if err != nil {
			switch {
			case booking.IsValidation(err):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, booking.ErrSlotTaken):
				writeError(w, http.StatusConflict, "slot no longer available")
			default:
				writeError(w, http.StatusInternalServerError, "commit failed")
			}
			return
		}
		writeJSON(w, http.StatusCreated, record)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET|DELETE /api/v1/bookings/{id}
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking_by_id")

	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, ok := s.store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodDelete:
		if err := s.bookings.Cancel(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /api/v1/export?format=json|xlsx
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		data, err := s.exporter.JSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="turf-bookings.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)

	case "xlsx":
		f, err := s.exporter.Excel()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		defer f.Close()
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="turf-bookings.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_ = f.Write(w)

	default:
		writeError(w, http.StatusBadRequest, "format must be json or xlsx")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
