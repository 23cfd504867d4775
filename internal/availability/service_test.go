package availability

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"prenota/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CheckAdvanced(t *testing.T) {
	svc := NewService(nil)
	settings := twoFourTops()
	bookings := []model.Booking{confirmed("b1", day, "19:00", 4, "T1")}

	d, err := svc.Check(Request{Date: day, Time: "20:30", Adults: 2, Children: 1}, bookings, settings)
	require.NoError(t, err)
	assert.True(t, d.Available)
	assert.Equal(t, model.ModeAdvanced, d.Mode)
	assert.Equal(t, []string{"T2"}, d.TableIDs)
	assert.Equal(t, 120, d.DurationMinutes)
	assert.Nil(t, d.Rejection)

	d, err = svc.Check(Request{Date: day, Time: "20:30", Adults: 6}, bookings, settings)
	require.NoError(t, err)
	assert.False(t, d.Available)
	require.NotNil(t, d.Rejection)
	assert.Equal(t, NoAvailability{Mode: model.ModeAdvanced, Reason: ReasonNoTableFits}, *d.Rejection)
}

func TestService_CheckSimple(t *testing.T) {
	svc := NewService(nil)
	settings := twoFourTops()
	settings.Mode = model.ModeSimple
	bookings := []model.Booking{
		{ID: "a", Date: day, Time: "20:00", Adults: 28, Status: model.StatusConfirmed},
	}

	d, err := svc.Check(Request{Date: day, Time: "20:00", Adults: 3}, bookings, settings)
	require.NoError(t, err)
	assert.False(t, d.Available)
	assert.Equal(t, ReasonSlotFull, d.Rejection.Reason)
	assert.Equal(t, model.ModeSimple, d.Rejection.Mode)
	assert.Equal(t, 28, d.SeatsTaken)

	d, err = svc.Check(Request{Date: day, Time: "20:00", Adults: 2}, bookings, settings)
	require.NoError(t, err)
	assert.True(t, d.Available)
	assert.Empty(t, d.TableIDs)
}

func TestService_CheckPendingHolds(t *testing.T) {
	svc := NewService(nil)
	settings := twoFourTops()
	bookings := []model.Booking{
		{ID: "p1", Date: day, Time: "19:00", Adults: 4, Status: model.StatusPending, AssignedTableIDs: []string{"T1"}},
	}
	req := Request{Date: day, Time: "19:00", Adults: 2}

	d, err := svc.Check(req, bookings, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, d.TableIDs)

	settings.PendingHolds = true
	d, err = svc.Check(req, bookings, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, d.TableIDs)

	req.ExcludeBookingID = "p1"
	d, err = svc.Check(req, bookings, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, d.TableIDs)
}

func TestService_CheckInputErrors(t *testing.T) {
	svc := NewService(nil)
	settings := twoFourTops()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"bad date", Request{Date: "18-10-2026", Time: "19:00", Adults: 2}, model.ErrInvalidDate},
		{"impossible date", Request{Date: "2026-02-30", Time: "19:00", Adults: 2}, model.ErrInvalidDate},
		{"bad time", Request{Date: day, Time: "7pm", Adults: 2}, model.ErrInvalidTime},
		{"empty party", Request{Date: day, Time: "19:00"}, ErrInvalidPartySize},
		{"negative children", Request{Date: day, Time: "19:00", Adults: 3, Children: -1}, ErrInvalidPartySize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Check(tt.req, nil, settings)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, err := svc.Check(Request{Date: day, Time: "19:00", Adults: 2}, nil, nil)
	assert.ErrorIs(t, err, ErrNoSettings)

	settings.Mode = "banquet"
	_, err = svc.Check(Request{Date: day, Time: "19:00", Adults: 2}, nil, settings)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestService_LogsDecision(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	svc := NewService(&logger)

	_, err := svc.Check(Request{Date: day, Time: "19:00", Adults: 6}, nil, twoFourTops())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"component":"availability"`)
	assert.Contains(t, buf.String(), `"tables":["T1","T2"]`)
}

func TestService_ResolveSlots(t *testing.T) {
	svc := NewService(nil)
	settings := twoFourTops()
	settings.ServiceWindows = []model.ServiceWindow{
		{ID: "sw-dinner", Name: "Cena", StartTime: "19:00", EndTime: "22:00", SlotIntervalMinutes: 30},
	}
	settings.WeeklySchedule = model.WeeklySchedule{time.Sunday: {"sw-dinner"}}

	res, err := svc.ResolveSlots(day, settings)
	require.NoError(t, err)
	assert.Len(t, res.Slots, 7)

	res, err = svc.ResolveSlots("2026-10-19", settings)
	require.NoError(t, err)
	assert.True(t, res.Closed())
}

func TestStrategyFor(t *testing.T) {
	for _, mode := range []model.OperatingMode{model.ModeSimple, model.ModeAdvanced} {
		s, err := StrategyFor(mode)
		require.NoError(t, err)
		assert.Equal(t, mode, s.Mode())
	}
}
