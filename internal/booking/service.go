package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prenota/internal/availability"
	"prenota/internal/events"
	"prenota/internal/lock"
	"prenota/internal/metrics"
	"prenota/internal/model"
	"prenota/internal/slots"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository persists bookings.
type Repository interface {
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookingsByDate(ctx context.Context, date string) ([]model.Booking, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, from, to model.BookingStatus, tableIDs []string) error
}

// SettingsProvider returns the current settings snapshot.
type SettingsProvider interface {
	Settings(ctx context.Context) (*model.Settings, error)
}

// EventPublisher receives booking lifecycle events.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// CreateRequest is the guest-facing reservation form.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Contact  string `json:"contact" validate:"max=200"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

// Service coordinates availability decisions with storage. Every
// check-then-write sequence runs under the per-date lock.
type Service struct {
	repo     Repository
	settings SettingsProvider
	engine   *availability.Service
	locker   lock.Locker
	events   EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(
	repo Repository,
	settings SettingsProvider,
	engine *availability.Service,
	locker lock.Locker,
	publisher EventPublisher,
	logger *zerolog.Logger,
) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if engine == nil {
		engine = availability.NewService(logger)
	}
	l := logger.With().Str("component", "booking").Logger()
	return &Service{
		repo:     repo,
		settings: settings,
		engine:   engine,
		locker:   locker,
		events:   publisher,
		logger:   &l,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Slots returns the bookable slots on date.
func (s *Service) Slots(ctx context.Context, date string) (slots.Resolution, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return slots.Resolution{}, err
	}
	return s.engine.ResolveSlots(date, settings)
}

// Check answers an availability question without reserving anything.
func (s *Service) Check(ctx context.Context, req availability.Request) (availability.Decision, error) {
	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return availability.Decision{}, err
	}
	q, err := availability.ParseRequest(req, settings)
	if err != nil {
		return availability.Decision{}, err
	}
	req.Date, req.Time = q.Date, q.Start.String()
	if err := s.checkServiceHours(req.Date, req.Time, settings); err != nil {
		return availability.Decision{}, err
	}
	bookings, err := s.repo.ListBookingsByDate(ctx, q.Date)
	if err != nil {
		return availability.Decision{}, fmt.Errorf("list bookings: %w", err)
	}
	d, err := s.engine.Check(req, bookings, settings)
	if err != nil {
		return d, err
	}
	metrics.IncDecision(string(d.Mode), d.Available)
	return d, nil
}

// checkServiceHours fails with ErrOutsideServiceHours unless at is one of
// the slots offered on date.
func (s *Service) checkServiceHours(date, at string, settings *model.Settings) error {
	res, err := s.engine.ResolveSlots(date, settings)
	if err != nil {
		return err
	}
	if !res.Contains(at) {
		return fmt.Errorf("%w: %s %s", ErrOutsideServiceHours, date, at)
	}
	return nil
}

// Create stores a Pending booking when the request can be seated. When it
// cannot, the returned booking is nil and the decision carries the
// rejection.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Booking, availability.Decision, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Contact = strings.TrimSpace(req.Contact)
	if err := validateRequest(req); err != nil {
		return nil, availability.Decision{}, err
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, availability.Decision{}, err
	}

	areq := availability.Request{Date: req.Date, Time: req.Time, Adults: req.Adults, Children: req.Children}
	q, err := availability.ParseRequest(areq, settings)
	if err != nil {
		return nil, availability.Decision{}, err
	}
	areq.Date, areq.Time = q.Date, q.Start.String()

	if err := s.checkServiceHours(areq.Date, areq.Time, settings); err != nil {
		return nil, availability.Decision{}, err
	}

	release, err := s.acquire(ctx, q.Date)
	if err != nil {
		return nil, availability.Decision{}, err
	}
	defer release()

	bookings, err := s.repo.ListBookingsByDate(ctx, q.Date)
	if err != nil {
		return nil, availability.Decision{}, fmt.Errorf("list bookings: %w", err)
	}

	decision, err := s.engine.Check(areq, bookings, settings)
	if err != nil {
		return nil, decision, err
	}
	metrics.IncDecision(string(decision.Mode), decision.Available)
	if !decision.Available {
		s.logger.Info().
			Str("date", areq.Date).
			Str("time", areq.Time).
			Int("party_size", q.PartySize).
			Str("reason", decision.Rejection.Reason).
			Msg("Booking refused")
		return nil, decision, nil
	}

	now := s.now().UTC()
	b := &model.Booking{
		ID:               s.newID(),
		Name:             req.Name,
		Contact:          req.Contact,
		Date:             areq.Date,
		Time:             areq.Time,
		Adults:           req.Adults,
		Children:         req.Children,
		Status:           model.StatusPending,
		AssignedTableIDs: decision.TableIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return nil, decision, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncTransition(string(model.StatusPending))
	s.publish(events.BookingCreated, b)
	s.logger.Info().
		Str("booking_id", b.ID).
		Str("date", b.Date).
		Str("time", b.Time).
		Int("party_size", b.PartySize()).
		Strs("tables", b.AssignedTableIDs).
		Msg("Booking created")

	return b, decision, nil
}

// Confirm makes a Pending booking count against capacity. The tentative
// tables are re-checked against bookings confirmed in the meantime; if
// they were taken, other free tables are assigned, and ErrConflict is
// returned when none are left.
func (s *Service) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(b, model.StatusConfirmed); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, b.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListBookingsByDate(ctx, b.Date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	tables, err := s.verify(b, bookings, settings)
	if err != nil {
		metrics.IncConflict()
		s.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("Confirmation refused")
		return nil, err
	}

	if err := s.repo.UpdateBookingStatus(ctx, b.ID, model.StatusPending, model.StatusConfirmed, tables); err != nil {
		return nil, err
	}
	if tables != nil {
		b.AssignedTableIDs = tables
	}
	b.Status = model.StatusConfirmed
	b.UpdatedAt = s.now().UTC()

	metrics.IncTransition(string(model.StatusConfirmed))
	s.publish(events.BookingConfirmed, b)
	s.logger.Info().Str("booking_id", b.ID).Strs("tables", b.AssignedTableIDs).Msg("Booking confirmed")
	return b, nil
}

// verify checks b against the other bookings of its date. It returns the
// table assignment to store, nil meaning unchanged.
func (s *Service) verify(b *model.Booking, bookings []model.Booking, settings *model.Settings) ([]string, error) {
	opts := availability.OverlapOptions{PendingHolds: settings.PendingHolds, ExcludeBookingID: b.ID}
	start, err := model.ParseClock("time", b.Time)
	if err != nil {
		return nil, err
	}

	switch settings.Mode {
	case model.ModeSimple:
		if !availability.CheckCapacity(b.PartySize(), b.Date, b.Time, bookings, settings.MaxGuestsPerSlot, opts) {
			return nil, fmt.Errorf("%w: slot %s %s is full", ErrConflict, b.Date, b.Time)
		}
		return nil, nil

	case model.ModeAdvanced:
		if b.HasTables() {
			interval := availability.NewInterval(start, b.PartySize(), settings.DurationRules)
			occupied := availability.OccupiedTables(b.Date, interval, bookings, settings.DurationRules, opts)
			if tablesFree(b.AssignedTableIDs, occupied, settings) {
				return nil, nil
			}
		}
		alloc, ok := availability.Allocate(b.PartySize(), b.Date, start, bookings, settings, opts)
		if !ok {
			return nil, fmt.Errorf("%w: no table left for %s %s", ErrConflict, b.Date, b.Time)
		}
		return alloc.TableIDs, nil
	}

	return nil, fmt.Errorf("%w: %q", availability.ErrUnknownMode, settings.Mode)
}

// tablesFree reports whether every id still names a configured table and
// none of them is occupied.
func tablesFree(ids []string, occupied map[string]struct{}, settings *model.Settings) bool {
	for _, id := range ids {
		if _, ok := settings.TableByID(id); !ok {
			return false
		}
		if _, taken := occupied[id]; taken {
			return false
		}
	}
	return true
}

// Decline closes a Pending booking without seating it.
func (s *Service) Decline(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(b, model.StatusDeclined); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBookingStatus(ctx, b.ID, model.StatusPending, model.StatusDeclined, nil); err != nil {
		return nil, err
	}
	b.Status = model.StatusDeclined
	b.UpdatedAt = s.now().UTC()

	metrics.IncTransition(string(model.StatusDeclined))
	s.publish(events.BookingDeclined, b)
	s.logger.Info().Str("booking_id", b.ID).Msg("Booking declined")
	return b, nil
}

// SetStatus moves a booking to status.
func (s *Service) SetStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	switch status {
	case model.StatusConfirmed:
		return s.Confirm(ctx, id)
	case model.StatusDeclined:
		return s.Decline(ctx, id)
	}
	return nil, fmt.Errorf("%w: cannot set status %s", ErrInvalidTransition, status)
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// List returns the bookings on date, or every booking when date is empty.
func (s *Service) List(ctx context.Context, date string) ([]model.Booking, error) {
	if date == "" {
		return s.repo.ListBookings(ctx)
	}
	d, err := model.ParseDate("date", date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByDate(ctx, d.Format(model.DateLayout))
}

func (s *Service) acquire(ctx context.Context, date string) (lock.Release, error) {
	started := time.Now()
	release, err := s.locker.Acquire(ctx, lock.DateKey(date))
	metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (s *Service) publish(eventType string, b *model.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, b); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
