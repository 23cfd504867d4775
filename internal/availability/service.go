// Package availability decides whether a reservation request can be
// honoured and which tables serve it. It performs no I/O: callers pass a
// snapshot of bookings and settings into every call.
package availability

import (
	"prenota/internal/model"
	"prenota/internal/slots"

	"github.com/rs/zerolog"
)

// Rejection reasons.
const (
	ReasonNoTableFits = "no_table_fits"
	ReasonSlotFull    = "slot_full"
)

// NoAvailability is the expected outcome of a request that cannot be
// seated. It is a value, not an error.
type NoAvailability struct {
	Mode   model.OperatingMode `json:"mode"`
	Reason string              `json:"reason"`
}

// Request is raw availability input as received from callers.
type Request struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
	// ExcludeBookingID leaves one stored booking out of the occupancy count.
	ExcludeBookingID string `json:"-"`
}

// PartySize returns adults plus children.
func (r Request) PartySize() int {
	return r.Adults + r.Children
}

// Decision is the result of an availability check.
type Decision struct {
	Mode              model.OperatingMode `json:"mode"`
	Available         bool                `json:"available"`
	Date              string              `json:"date"`
	Time              string              `json:"time"`
	PartySize         int                 `json:"party_size"`
	DurationMinutes   int                 `json:"duration_minutes"`
	TableIDs          []string            `json:"table_ids,omitempty"`
	CombinationRuleID string              `json:"combination_rule_id,omitempty"`
	SeatsTaken        int                 `json:"seats_taken"`
	SeatsLimit        int                 `json:"seats_limit,omitempty"`
	Rejection         *NoAvailability     `json:"rejection,omitempty"`
}

// Service dispatches availability checks to the strategy of the active
// operating mode.
type Service struct {
	logger *zerolog.Logger
}

// NewService creates a Service. A nil logger disables decision logging.
func NewService(logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "availability").Logger()
	return &Service{logger: &l}
}

// Check validates req and decides it against bookings and settings. The
// returned error is non-nil only for malformed input or settings; a
// request that cannot be seated yields a Decision carrying a Rejection.
func (s *Service) Check(req Request, bookings []model.Booking, settings *model.Settings) (Decision, error) {
	if settings == nil {
		return Decision{}, ErrNoSettings
	}
	q, err := ParseRequest(req, settings)
	if err != nil {
		return Decision{}, err
	}
	strategy, err := StrategyFor(settings.Mode)
	if err != nil {
		return Decision{}, err
	}

	d := strategy.Decide(q, bookings, settings)

	ev := s.logger.Debug().
		Str("mode", string(d.Mode)).
		Str("date", d.Date).
		Str("time", d.Time).
		Int("party_size", d.PartySize).
		Bool("available", d.Available)
	if d.Rejection != nil {
		ev = ev.Str("reason", d.Rejection.Reason)
	} else if len(d.TableIDs) > 0 {
		ev = ev.Strs("tables", d.TableIDs)
	}
	ev.Msg("availability decided")

	return d, nil
}

// ParseRequest turns req into a Query, failing fast on malformed input.
func ParseRequest(req Request, settings *model.Settings) (Query, error) {
	date, err := model.ParseDate("date", req.Date)
	if err != nil {
		return Query{}, err
	}
	start, err := model.ParseClock("time", req.Time)
	if err != nil {
		return Query{}, err
	}
	if req.Adults < 0 || req.Children < 0 || req.PartySize() <= 0 {
		return Query{}, ErrInvalidPartySize
	}
	return Query{
		PartySize: req.PartySize(),
		Date:      date.Format(model.DateLayout),
		Start:     start,
		Options: OverlapOptions{
			PendingHolds:     settings.PendingHolds,
			ExcludeBookingID: req.ExcludeBookingID,
		},
	}, nil
}

// ResolveSlots returns the slot layout for date under settings.
func (s *Service) ResolveSlots(date string, settings *model.Settings) (slots.Resolution, error) {
	if settings == nil {
		return slots.Resolution{}, ErrNoSettings
	}
	return slots.Resolve(date, settings.ServiceWindows, settings.WeeklySchedule)
}
