package availability

import (
	"fmt"

	"prenota/internal/model"
)

// Query is a parsed availability request.
type Query struct {
	PartySize int
	Date      string
	Start     model.Clock
	Options   OverlapOptions
}

// Strategy decides availability for one operating mode.
type Strategy interface {
	Mode() model.OperatingMode
	Decide(q Query, bookings []model.Booking, settings *model.Settings) Decision
}

// StrategyFor returns the strategy implementing mode.
func StrategyFor(mode model.OperatingMode) (Strategy, error) {
	switch mode {
	case model.ModeAdvanced:
		return advancedStrategy{}, nil
	case model.ModeSimple:
		return simpleStrategy{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

type advancedStrategy struct{}

func (advancedStrategy) Mode() model.OperatingMode { return model.ModeAdvanced }

func (advancedStrategy) Decide(q Query, bookings []model.Booking, settings *model.Settings) Decision {
	alloc, ok := Allocate(q.PartySize, q.Date, q.Start, bookings, settings, q.Options)
	d := Decision{
		Mode:            model.ModeAdvanced,
		Date:            q.Date,
		Time:            q.Start.String(),
		PartySize:       q.PartySize,
		DurationMinutes: int(alloc.Interval.End - alloc.Interval.Start),
	}
	if !ok {
		d.Rejection = &NoAvailability{Mode: model.ModeAdvanced, Reason: ReasonNoTableFits}
		return d
	}
	d.Available = true
	d.TableIDs = alloc.TableIDs
	if alloc.Rule != nil {
		d.CombinationRuleID = alloc.Rule.ID
	}
	return d
}

type simpleStrategy struct{}

func (simpleStrategy) Mode() model.OperatingMode { return model.ModeSimple }

func (simpleStrategy) Decide(q Query, bookings []model.Booking, settings *model.Settings) Decision {
	slot := q.Start.String()
	taken := SeatsTaken(q.Date, slot, bookings, q.Options)
	d := Decision{
		Mode:            model.ModeSimple,
		Date:            q.Date,
		Time:            slot,
		PartySize:       q.PartySize,
		DurationMinutes: Duration(q.PartySize, settings.DurationRules),
		SeatsTaken:      taken,
		SeatsLimit:      settings.MaxGuestsPerSlot,
	}
	if taken+q.PartySize > settings.MaxGuestsPerSlot {
		d.Rejection = &NoAvailability{Mode: model.ModeSimple, Reason: ReasonSlotFull}
		return d
	}
	d.Available = true
	return d
}
