// Package slots turns the weekly opening hours into bookable time slots.
package slots

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"prenota/internal/model"
)

// ErrInvalidWindow is returned for a service window that cannot produce
// slots. Validated settings never trigger it.
var ErrInvalidWindow = errors.New("invalid service window")

// Group holds the slots produced by one service window.
type Group struct {
	WindowID string   `json:"window_id"`
	Name     string   `json:"name"`
	Slots    []string `json:"slots"`
}

// Resolution is the slot layout for one calendar date.
type Resolution struct {
	Date    string       `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Groups  []Group      `json:"groups"`
	Slots   []string     `json:"slots"` // flattened, in group order
}

// Closed reports whether no service window is active on the date.
func (r Resolution) Closed() bool {
	return len(r.Groups) == 0
}

// Contains reports whether t ("HH:MM") is one of the date's slots.
func (r Resolution) Contains(t string) bool {
	for _, s := range r.Slots {
		if s == t {
			return true
		}
	}
	return false
}

type window struct {
	model.ServiceWindow
	start, end model.Clock
}

// Resolve returns the slots for date. The weekday is taken from the UTC
// civil date so the result does not depend on the caller's time zone.
// Window ids missing from windows are ignored.
func Resolve(date string, windows []model.ServiceWindow, schedule model.WeeklySchedule) (Resolution, error) {
	d, err := model.ParseDate("date", date)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{
		Date:    d.Format(model.DateLayout),
		Weekday: d.Weekday(),
		Groups:  []Group{},
		Slots:   []string{},
	}

	ids := schedule.Windows(res.Weekday)
	if len(ids) == 0 {
		return res, nil
	}

	active := make([]window, 0, len(ids))
	for _, id := range ids {
		sw, ok := findWindow(windows, id)
		if !ok {
			continue
		}
		w, err := parseWindow(sw)
		if err != nil {
			return Resolution{}, err
		}
		active = append(active, w)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].start < active[j].start
	})

	for _, w := range active {
		group := Group{WindowID: w.ID, Name: w.Name, Slots: []string{}}
		for t := w.start; t <= w.end; t = t.Add(w.SlotIntervalMinutes) {
			group.Slots = append(group.Slots, t.String())
		}
		res.Groups = append(res.Groups, group)
		res.Slots = append(res.Slots, group.Slots...)
	}

	return res, nil
}

func findWindow(windows []model.ServiceWindow, id string) (model.ServiceWindow, bool) {
	for _, w := range windows {
		if w.ID == id {
			return w, true
		}
	}
	return model.ServiceWindow{}, false
}

func parseWindow(sw model.ServiceWindow) (window, error) {
	if sw.SlotIntervalMinutes < 1 {
		return window{}, fmt.Errorf("%w %s: slot interval must be at least 1 minute", ErrInvalidWindow, sw.ID)
	}
	start, err := model.ParseClock("start_time", sw.StartTime)
	if err != nil {
		return window{}, fmt.Errorf("%w %s: %v", ErrInvalidWindow, sw.ID, err)
	}
	end, err := model.ParseClock("end_time", sw.EndTime)
	if err != nil {
		return window{}, fmt.Errorf("%w %s: %v", ErrInvalidWindow, sw.ID, err)
	}
	return window{ServiceWindow: sw, start: start, end: end}, nil
}
