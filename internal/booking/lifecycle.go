// Package booking runs the reservation workflow: a booking is created
// Pending with a tentative table assignment and later confirmed or
// declined by staff.
package booking

import (
	"fmt"

	"prenota/internal/model"
)

// lifecycle lists the statuses reachable from each status. Confirmed and
// Declined are terminal.
var lifecycle = map[model.BookingStatus][]model.BookingStatus{
	model.StatusPending: {model.StatusConfirmed, model.StatusDeclined},
}

// CanTransition checks if a booking may move from one status to another.
func CanTransition(from, to model.BookingStatus) bool {
	for _, s := range lifecycle[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(b *model.Booking, to model.BookingStatus) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: booking %s is %s, cannot become %s", ErrInvalidTransition, b.ID, b.Status, to)
	}
	return nil
}
