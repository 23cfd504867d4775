package model

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusDeclined  BookingStatus = "Declined"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// ParseBookingStatus accepts a status name in any letter case.
func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range []BookingStatus{StatusPending, StatusConfirmed, StatusDeclined} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// Booking represents a table reservation record.
type Booking struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Contact          string        `json:"contact"`
	Date             string        `json:"date"` // YYYY-MM-DD
	Time             string        `json:"time"` // HH:MM
	Adults           int           `json:"adults"`
	Children         int           `json:"children"`
	Status           BookingStatus `json:"status"`
	AssignedTableIDs []string      `json:"assigned_table_ids,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// PartySize returns adults plus children.
func (b *Booking) PartySize() int {
	return b.Adults + b.Children
}

// HasTables reports whether the booking carries a table assignment.
func (b *Booking) HasTables() bool {
	return len(b.AssignedTableIDs) > 0
}

// IsTerminal returns true once the booking has been confirmed or declined.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusConfirmed || b.Status == StatusDeclined
}

// HoldsCapacity reports whether the booking consumes tables or seats for
// later requests. Confirmed bookings always do; pending ones only when
// pendingHolds is enabled.
func (b *Booking) HoldsCapacity(pendingHolds bool) bool {
	switch b.Status {
	case StatusConfirmed:
		return true
	case StatusPending:
		return pendingHolds
	}
	return false
}
