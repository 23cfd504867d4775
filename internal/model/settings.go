package model

import "time"

// OperatingMode selects how availability is decided.
type OperatingMode string

const (
	// ModeSimple checks an aggregate seat ceiling per exact slot.
	ModeSimple OperatingMode = "simple"
	// ModeAdvanced assigns physical tables with overlap detection.
	ModeAdvanced OperatingMode = "advanced"
)

func (m OperatingMode) Valid() bool {
	return m == ModeSimple || m == ModeAdvanced
}

// Table is a physical table in the dining room.
type Table struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Capacity   int    `yaml:"capacity" json:"capacity"`
	Combinable bool   `yaml:"combinable" json:"combinable"`
}

// CombinationRule joins Count tables of TableCapacity seats into one
// logical table seating NewCapacity.
type CombinationRule struct {
	ID            string `yaml:"id" json:"id"`
	Count         int    `yaml:"count" json:"count"`
	TableCapacity int    `yaml:"table_capacity" json:"table_capacity"`
	NewCapacity   int    `yaml:"new_capacity" json:"new_capacity"`
}

// DurationRule maps an inclusive party-size range to an occupancy length.
type DurationRule struct {
	ID              string `yaml:"id" json:"id"`
	MinGuests       int    `yaml:"min_guests" json:"min_guests"`
	MaxGuests       int    `yaml:"max_guests" json:"max_guests"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
}

// ServiceWindow is a named opening period such as lunch or dinner.
type ServiceWindow struct {
	ID                  string `yaml:"id" json:"id"`
	Name                string `yaml:"name" json:"name"`
	StartTime           string `yaml:"start_time" json:"start_time"` // "12:00"
	EndTime             string `yaml:"end_time" json:"end_time"`     // "14:30"
	SlotIntervalMinutes int    `yaml:"slot_interval_minutes" json:"slot_interval_minutes"`
}

// WeeklySchedule maps a weekday (0=Sunday) to the ordered ids of the
// service windows open that day. A missing or empty entry means closed.
type WeeklySchedule map[time.Weekday][]string

// Windows returns the window ids active on day.
func (w WeeklySchedule) Windows(day time.Weekday) []string {
	if w == nil {
		return nil
	}
	return w[day]
}

// Settings is the restaurant configuration consumed by the availability
// engine. It is treated as an immutable snapshot for the duration of a call.
type Settings struct {
	Mode             OperatingMode     `yaml:"mode" json:"mode"`
	ServiceWindows   []ServiceWindow   `yaml:"service_windows" json:"service_windows"`
	WeeklySchedule   WeeklySchedule    `yaml:"weekly_schedule" json:"weekly_schedule"`
	Tables           []Table           `yaml:"tables" json:"tables"`
	CombinationRules []CombinationRule `yaml:"combination_rules" json:"combination_rules"`
	DurationRules    []DurationRule    `yaml:"duration_rules" json:"duration_rules"`
	MaxGuestsPerSlot int               `yaml:"max_guests_per_slot" json:"max_guests_per_slot"`
	// PendingHolds makes pending bookings consume capacity as well. When it
	// is off only confirmed bookings count and competing holds are resolved
	// at confirmation time.
	PendingHolds bool `yaml:"pending_holds" json:"pending_holds"`
}

// TableByID returns the table with the given id.
func (s *Settings) TableByID(id string) (Table, bool) {
	for _, t := range s.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}

// WindowByID returns the service window with the given id.
func (s *Settings) WindowByID(id string) (ServiceWindow, bool) {
	for _, w := range s.ServiceWindows {
		if w.ID == id {
			return w, true
		}
	}
	return ServiceWindow{}, false
}
