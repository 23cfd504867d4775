package availability

import "prenota/internal/model"

// DefaultDurationMinutes is used when no duration rule covers a party size.
const DefaultDurationMinutes = 90

// Duration returns the occupancy length for partySize. Rules are scanned in
// the order given and the first one whose range contains partySize wins,
// even when a later rule has a tighter range.
func Duration(partySize int, rules []model.DurationRule) int {
	for _, r := range rules {
		if partySize >= r.MinGuests && partySize <= r.MaxGuests {
			return r.DurationMinutes
		}
	}
	return DefaultDurationMinutes
}
