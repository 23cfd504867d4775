package availability

import "prenota/internal/model"

// SeatsTaken sums the party sizes of bookings holding capacity at exactly
// date and time. Bookings at other times of the same evening are ignored.
func SeatsTaken(date, time string, bookings []model.Booking, opts OverlapOptions) int {
	total := 0
	for i := range bookings {
		b := &bookings[i]
		if b.Date != date || b.Time != time || !b.HoldsCapacity(opts.PendingHolds) {
			continue
		}
		if opts.ExcludeBookingID != "" && b.ID == opts.ExcludeBookingID {
			continue
		}
		total += b.PartySize()
	}
	return total
}

// CheckCapacity accepts a party when the seats already taken in the slot
// plus partySize do not exceed maxGuests.
func CheckCapacity(partySize int, date, time string, bookings []model.Booking, maxGuests int, opts OverlapOptions) bool {
	return SeatsTaken(date, time, bookings, opts)+partySize <= maxGuests
}
