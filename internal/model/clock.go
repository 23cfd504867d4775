package model

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// ParseError reports malformed date or time input. It wraps ErrInvalidDate
// or ErrInvalidTime so callers can tell bad input apart from a refused
// reservation.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Clock is a time of day in minutes since midnight. Values past 24:00 are
// allowed as interval ends.
type Clock int

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(field, s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, &ParseError{Field: field, Value: s, Err: ErrInvalidTime}
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, &ParseError{Field: field, Value: s, Err: ErrInvalidTime}
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Add returns c shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date as a UTC civil date.
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Value: s, Err: ErrInvalidDate}
	}
	return d, nil
}
