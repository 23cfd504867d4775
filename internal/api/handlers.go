package api

import (
	"bytes"
	"fmt"
	"net/http"

	"prenota/internal/availability"
	"prenota/internal/booking"
	"prenota/internal/model"
	"prenota/internal/report"
	"prenota/internal/slots"
)

// MaxReportDays caps the date range of a spreadsheet export.
const MaxReportDays = 366

// SlotsResponse is the response for GET /api/slots.
type SlotsResponse struct {
	Date    string        `json:"date"`
	Weekday string        `json:"weekday"`
	Closed  bool          `json:"closed"`
	Groups  []slots.Group `json:"groups"`
	Slots   []string      `json:"slots"`
}

// CreateBookingResponse is the response for a stored booking.
type CreateBookingResponse struct {
	Booking  *model.Booking        `json:"booking"`
	Decision availability.Decision `json:"decision"`
}

// NoAvailabilityResponse is returned with 409 when a request cannot be seated.
type NoAvailabilityResponse struct {
	Error     string                       `json:"error"`
	Code      string                       `json:"code"`
	Rejection *availability.NoAvailability `json:"rejection"`
	Decision  availability.Decision        `json:"decision"`
}

// UpdateBookingRequest is the body of PATCH /api/bookings/{id}.
type UpdateBookingRequest struct {
	Status string `json:"status"`
}

// handleSlots returns the bookable slots for a date.
// GET /api/slots?date=YYYY-MM-DD
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "date is required")
		return
	}

	res, err := s.bookings.Slots(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SlotsResponse{
		Date:    res.Date,
		Weekday: res.Weekday.String(),
		Closed:  res.Closed(),
		Groups:  res.Groups,
		Slots:   res.Slots,
	})
}

// handleAvailability answers an availability question without booking.
// POST /api/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req availability.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}

	d, err := s.bookings.Check(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateBooking stores a Pending booking.
// POST /api/bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}

	b, d, err := s.bookings.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if b == nil {
		writeJSON(w, http.StatusConflict, NoAvailabilityResponse{
			Error:     rejectionMessage(d.Rejection),
			Code:      "no_availability",
			Rejection: d.Rejection,
			Decision:  d,
		})
		return
	}

	writeJSON(w, http.StatusCreated, CreateBookingResponse{Booking: b, Decision: d})
}

func rejectionMessage(n *availability.NoAvailability) string {
	if n == nil {
		return "no availability"
	}
	switch n.Reason {
	case availability.ReasonNoTableFits:
		return "no table or combination fits the requested time"
	case availability.ReasonSlotFull:
		return "the requested time slot is full"
	}
	return "no availability"
}

// handleListBookings lists bookings, optionally for one date.
// GET /api/bookings?date=YYYY-MM-DD
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// GET /api/bookings/{id}
func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleUpdateBooking confirms or declines a booking.
// PATCH /api/bookings/{id}
func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}
	status, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	b, err := s.bookings.SetStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GET /api/settings
func (s *HTTPServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Settings(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PUT /api/settings
func (s *HTTPServer) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var next model.Settings
	if err := decodeJSON(r, &next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid JSON body")
		return
	}
	if next.Mode == "" {
		next.Mode = model.ModeAdvanced
	}

	if err := s.settings.Update(r.Context(), &next); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &next)
}

// handleBookingsReport exports bookings in a date range as xlsx.
// GET /api/reports/bookings.xlsx?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleBookingsReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := model.ParseDate("from", q.Get("from"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	to, err := model.ParseDate("to", q.Get("to"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "invalid_input", "from must be before or equal to to")
		return
	}
	if int(to.Sub(from).Hours()/24) > MaxReportDays {
		writeError(w, http.StatusBadRequest, "invalid_input", fmt.Sprintf("date range exceeds maximum of %d days", MaxReportDays))
		return
	}

	bookings, err := s.reports.ListBookingsBetween(r.Context(), from.Format(model.DateLayout), to.Format(model.DateLayout))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	settings, err := s.settings.Settings(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteBookings(&buf, bookings, settings); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%s_%s.xlsx"`,
		from.Format("20060102"), to.Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
