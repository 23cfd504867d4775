package availability

import (
	"sort"

	"prenota/internal/model"
)

// Allocation is the outcome of a successful table assignment.
type Allocation struct {
	TableIDs []string
	// Rule is the combination rule used, nil for a single table.
	Rule     *model.CombinationRule
	Interval Interval
}

// Allocate picks tables for a party starting at start on date. A single
// table is always preferred: the smallest one that fits, ties going to the
// table listed first. Only when no single table fits are combination rules tried, fewest
// tables first, taking the first matching tables in configured order.
func Allocate(partySize int, date string, start model.Clock, bookings []model.Booking, settings *model.Settings, opts OverlapOptions) (Allocation, bool) {
	candidate := NewInterval(start, partySize, settings.DurationRules)
	occupied := OccupiedTables(date, candidate, bookings, settings.DurationRules, opts)

	available := make([]model.Table, 0, len(settings.Tables))
	for _, t := range settings.Tables {
		if _, taken := occupied[t.ID]; !taken {
			available = append(available, t)
		}
	}

	if t, ok := bestSingle(partySize, available); ok {
		return Allocation{TableIDs: []string{t.ID}, Interval: candidate}, true
	}

	if ids, rule, ok := combine(partySize, available, settings.CombinationRules); ok {
		return Allocation{TableIDs: ids, Rule: rule, Interval: candidate}, true
	}

	return Allocation{Interval: candidate}, false
}

func bestSingle(partySize int, available []model.Table) (model.Table, bool) {
	var (
		best  model.Table
		found bool
	)
	for _, t := range available {
		if t.Capacity < partySize {
			continue
		}
		if !found || t.Capacity < best.Capacity {
			best = t
			found = true
		}
	}
	return best, found
}

func combine(partySize int, available []model.Table, rules []model.CombinationRule) ([]string, *model.CombinationRule, bool) {
	combinable := make([]model.Table, 0, len(available))
	for _, t := range available {
		if t.Combinable {
			combinable = append(combinable, t)
		}
	}
	if len(combinable) == 0 {
		return nil, nil, false
	}

	ordered := append([]model.CombinationRule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count < ordered[j].Count
	})

	for i := range ordered {
		rule := ordered[i]
		if rule.NewCapacity < partySize || rule.Count < 1 {
			continue
		}
		ids := make([]string, 0, rule.Count)
		for _, t := range combinable {
			if t.Capacity == rule.TableCapacity {
				ids = append(ids, t.ID)
				if len(ids) == rule.Count {
					return ids, &rule, true
				}
			}
		}
	}
	return nil, nil, false
}
