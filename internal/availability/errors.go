package availability

import "errors"

var (
	ErrInvalidPartySize = errors.New("party size must be positive")
	ErrUnknownMode      = errors.New("unknown operating mode")
	ErrNoSettings       = errors.New("settings are required")
)
