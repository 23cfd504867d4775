package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_PartySize(t *testing.T) {
	b := Booking{Adults: 3, Children: 2}
	assert.Equal(t, 5, b.PartySize())
}

func TestBooking_HoldsCapacity(t *testing.T) {
	tests := []struct {
		status       BookingStatus
		pendingHolds bool
		want         bool
	}{
		{StatusConfirmed, false, true},
		{StatusConfirmed, true, true},
		{StatusPending, false, false},
		{StatusPending, true, true},
		{StatusDeclined, false, false},
		{StatusDeclined, true, false},
	}

	for _, tt := range tests {
		b := Booking{Status: tt.status}
		assert.Equal(t, tt.want, b.HoldsCapacity(tt.pendingHolds), "%s pendingHolds=%v", tt.status, tt.pendingHolds)
	}
}

func TestBooking_IsTerminal(t *testing.T) {
	assert.False(t, (&Booking{Status: StatusPending}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusConfirmed}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusDeclined}).IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	st, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	st, err = ParseBookingStatus(" DECLINED ")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, st)

	_, err = ParseBookingStatus("cancelled")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("time", "19:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(19*60+30), c)
	assert.Equal(t, "19:30", c.String())
	assert.Equal(t, "21:30", c.Add(120).String())

	for _, bad := range []string{"", "9:30", "24:00", "12:60", "ab:cd", "12-30", "12:300"} {
		_, err := ParseClock("time", bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrInvalidTime), bad)

		var pe *ParseError
		require.True(t, errors.As(err, &pe), bad)
		assert.Equal(t, "time", pe.Field)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, "UTC", d.Location().String())

	_, err = ParseDate("date", "19/10/2026")
	assert.True(t, errors.Is(err, ErrInvalidDate))
	assert.False(t, errors.Is(err, ErrInvalidTime))
}

func TestSettings_Lookup(t *testing.T) {
	s := Settings{
		Tables:         []Table{{ID: "t1", Capacity: 4}},
		ServiceWindows: []ServiceWindow{{ID: "dinner"}},
	}

	tbl, ok := s.TableByID("t1")
	assert.True(t, ok)
	assert.Equal(t, 4, tbl.Capacity)

	_, ok = s.TableByID("missing")
	assert.False(t, ok)

	_, ok = s.WindowByID("dinner")
	assert.True(t, ok)

	var empty WeeklySchedule
	assert.Nil(t, empty.Windows(0))
}
