// Package api exposes availability and booking operations over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prenota/internal/availability"
	"prenota/internal/booking"
	"prenota/internal/config"
	"prenota/internal/database"
	"prenota/internal/lock"
	"prenota/internal/metrics"
	"prenota/internal/model"
	"prenota/internal/slots"

	"github.com/rs/zerolog"
)

// BookingService is the booking workflow used by the handlers.
type BookingService interface {
	Slots(ctx context.Context, date string) (slots.Resolution, error)
	Check(ctx context.Context, req availability.Request) (availability.Decision, error)
	Create(ctx context.Context, req booking.CreateRequest) (*model.Booking, availability.Decision, error)
	SetStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, date string) ([]model.Booking, error)
}

// SettingsStore serves and replaces restaurant settings.
type SettingsStore interface {
	Settings(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, s *model.Settings) error
}

// ReportSource lists bookings for spreadsheet exports.
type ReportSource interface {
	ListBookingsBetween(ctx context.Context, from, to string) ([]model.Booking, error)
}

// Options tunes the HTTP server.
type Options struct {
	Port               int
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// HTTPServer serves the public API.
type HTTPServer struct {
	bookings BookingService
	settings SettingsStore
	reports  ReportSource
	logger   *zerolog.Logger
	limiter  *clientLimiter
	server   *http.Server
}

func NewHTTPServer(opts Options, bookings BookingService, settings SettingsStore, reports ReportSource, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "api").Logger()

	s := &HTTPServer{
		bookings: bookings,
		settings: settings,
		reports:  reports,
		logger:   &l,
	}
	if opts.RateLimitPerSecond > 0 {
		s.limiter = newClientLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst)
	}

	s.server = &http.Server{
		Addr:              addr(opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed, rate limited API handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/slots", s.instrument("slots", s.handleSlots))
	mux.HandleFunc("POST /api/availability", s.instrument("availability", s.handleAvailability))
	mux.HandleFunc("GET /api/bookings", s.instrument("list_bookings", s.handleListBookings))
	mux.HandleFunc("POST /api/bookings", s.instrument("create_booking", s.handleCreateBooking))
	mux.HandleFunc("GET /api/bookings/{id}", s.instrument("get_booking", s.handleGetBooking))
	mux.HandleFunc("PATCH /api/bookings/{id}", s.instrument("update_booking", s.handleUpdateBooking))
	mux.HandleFunc("GET /api/settings", s.instrument("get_settings", s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.instrument("put_settings", s.handlePutSettings))
	mux.HandleFunc("GET /api/reports/bookings.xlsx", s.instrument("bookings_report", s.handleBookingsReport))

	if s.limiter == nil {
		return mux
	}
	return s.limiter.middleware(mux)
}

// Start serves until the server is shut down.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps domain errors to HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var parseErr *model.ParseError
	status, code := http.StatusInternalServerError, "internal"

	switch {
	case errors.As(err, &parseErr):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, availability.ErrInvalidPartySize),
		errors.Is(err, booking.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, config.ErrInvalidSettings):
		status, code = http.StatusBadRequest, "invalid_settings"
	case errors.Is(err, booking.ErrOutsideServiceHours):
		status, code = http.StatusUnprocessableEntity, "outside_service_hours"
	case errors.Is(err, database.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, database.ErrConcurrentModification):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, lock.ErrNotAcquired):
		status, code = http.StatusServiceUnavailable, "busy"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Request failed")
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func addr(port int) string {
	if port <= 0 {
		port = 8080
	}
	return fmt.Sprintf(":%d", port)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *HTTPServer) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		h(rec, r)
		metrics.IncHTTP(name, rec.status)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(started)).
			Msg("HTTP request")
	}
}
