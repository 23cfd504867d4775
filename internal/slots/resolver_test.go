package slots

import (
	"errors"
	"testing"
	"time"

	"prenota/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindows() []model.ServiceWindow {
	return []model.ServiceWindow{
		{ID: "sw-dinner", Name: "Cena", StartTime: "19:00", EndTime: "22:00", SlotIntervalMinutes: 30},
		{ID: "sw-lunch", Name: "Pranzo", StartTime: "12:00", EndTime: "14:30", SlotIntervalMinutes: 30},
	}
}

func testSchedule() model.WeeklySchedule {
	return model.WeeklySchedule{
		time.Sunday:   {"sw-dinner", "sw-lunch"},
		time.Monday:   {},
		time.Tuesday:  {"sw-dinner"},
		time.Saturday: {"sw-lunch", "sw-unknown"},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		wantGroups []string
		wantCount  int
		wantClosed bool
		wantFirst  string
		wantLast   string
	}{
		{
			name:       "sunday sorted by start time",
			date:       "2026-10-18",
			wantGroups: []string{"sw-lunch", "sw-dinner"},
			wantCount:  6 + 7,
			wantFirst:  "12:00",
			wantLast:   "22:00",
		},
		{
			name:       "monday empty entry is closed",
			date:       "2026-10-19",
			wantClosed: true,
		},
		{
			name:       "tuesday dinner only",
			date:       "2026-10-20",
			wantGroups: []string{"sw-dinner"},
			wantCount:  7,
			wantFirst:  "19:00",
			wantLast:   "22:00",
		},
		{
			name:       "wednesday missing entry is closed",
			date:       "2026-10-21",
			wantClosed: true,
		},
		{
			name:       "unknown window ids are skipped",
			date:       "2026-10-24",
			wantGroups: []string{"sw-lunch"},
			wantCount:  6,
			wantFirst:  "12:00",
			wantLast:   "14:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.date, testWindows(), testSchedule())
			require.NoError(t, err)

			if tt.wantClosed {
				assert.True(t, res.Closed())
				assert.Empty(t, res.Slots)
				return
			}

			ids := make([]string, 0, len(res.Groups))
			for _, g := range res.Groups {
				ids = append(ids, g.WindowID)
			}
			assert.Equal(t, tt.wantGroups, ids)
			assert.Len(t, res.Slots, tt.wantCount)
			assert.Equal(t, tt.wantFirst, res.Slots[0])
			assert.Equal(t, tt.wantLast, res.Slots[len(res.Slots)-1])
		})
	}
}

func TestResolve_ClosedWeekdayEveryWeek(t *testing.T) {
	for _, date := range []string{"2026-10-19", "2026-10-26", "2026-11-02"} {
		res, err := Resolve(date, testWindows(), testSchedule())
		require.NoError(t, err)
		assert.Equal(t, time.Monday, res.Weekday)
		assert.True(t, res.Closed(), date)
	}
}

func TestResolve_EndInclusiveAndUnevenStep(t *testing.T) {
	windows := []model.ServiceWindow{
		{ID: "w", Name: "W", StartTime: "18:00", EndTime: "19:00", SlotIntervalMinutes: 25},
	}
	schedule := model.WeeklySchedule{time.Sunday: {"w"}}

	res, err := Resolve("2026-10-18", windows, schedule)
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "18:25", "18:50"}, res.Slots)

	windows[0].SlotIntervalMinutes = 30
	res, err = Resolve("2026-10-18", windows, schedule)
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "18:30", "19:00"}, res.Slots)
}

func TestResolve_OverlappingWindowsRepeatSlots(t *testing.T) {
	windows := []model.ServiceWindow{
		{ID: "a", Name: "A", StartTime: "19:00", EndTime: "20:00", SlotIntervalMinutes: 60},
		{ID: "b", Name: "B", StartTime: "20:00", EndTime: "21:00", SlotIntervalMinutes: 60},
	}
	schedule := model.WeeklySchedule{time.Sunday: {"b", "a"}}

	res, err := Resolve("2026-10-18", windows, schedule)
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"19:00", "20:00"}, res.Groups[0].Slots)
	assert.Equal(t, []string{"20:00", "21:00"}, res.Groups[1].Slots)
	assert.Equal(t, []string{"19:00", "20:00", "20:00", "21:00"}, res.Slots)
	assert.True(t, res.Contains("20:00"))
	assert.False(t, res.Contains("20:30"))
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve("2026/10/18", testWindows(), testSchedule())
	assert.True(t, errors.Is(err, model.ErrInvalidDate))

	bad := []model.ServiceWindow{{ID: "w", StartTime: "19:00", EndTime: "22:00", SlotIntervalMinutes: 0}}
	_, err = Resolve("2026-10-18", bad, model.WeeklySchedule{time.Sunday: {"w"}})
	assert.True(t, errors.Is(err, ErrInvalidWindow))
}
