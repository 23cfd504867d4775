package availability

import "prenota/internal/model"

// Interval is a half-open [Start, End) span on one day.
type Interval struct {
	Start model.Clock
	End   model.Clock
}

// NewInterval builds the interval occupied by a party starting at start.
func NewInterval(start model.Clock, partySize int, rules []model.DurationRule) Interval {
	return Interval{Start: start, End: start.Add(Duration(partySize, rules))}
}

// Overlaps reports whether the two intervals share any minute. Touching
// intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

// OverlapOptions tunes which stored bookings count as occupying tables.
type OverlapOptions struct {
	// PendingHolds counts pending bookings as well as confirmed ones.
	PendingHolds bool
	// ExcludeBookingID skips one booking, typically the one being re-checked.
	ExcludeBookingID string
}

// OccupiedTables returns the ids of tables held on date by bookings whose
// own interval overlaps candidate. Only bookings that hold capacity and
// carry a table assignment are considered. Bookings with an unparsable
// time are skipped.
func OccupiedTables(date string, candidate Interval, bookings []model.Booking, rules []model.DurationRule, opts OverlapOptions) map[string]struct{} {
	occupied := make(map[string]struct{})
	for i := range bookings {
		b := &bookings[i]
		if b.Date != date || !b.HasTables() || !b.HoldsCapacity(opts.PendingHolds) {
			continue
		}
		if opts.ExcludeBookingID != "" && b.ID == opts.ExcludeBookingID {
			continue
		}
		start, err := model.ParseClock("time", b.Time)
		if err != nil {
			continue
		}
		if !candidate.Overlaps(NewInterval(start, b.PartySize(), rules)) {
			continue
		}
		for _, id := range b.AssignedTableIDs {
			occupied[id] = struct{}{}
		}
	}
	return occupied
}
