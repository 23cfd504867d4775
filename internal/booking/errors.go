package booking

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid booking request")
	ErrOutsideServiceHours = errors.New("requested time is not a bookable slot")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConflict            = errors.New("booking conflicts with confirmed reservations")
)
