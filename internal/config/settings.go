package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"prenota/internal/model"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultSettings returns the configuration a new restaurant starts with:
// lunch and dinner services, ten combinable four-tops, closed on Mondays.
func DefaultSettings() *model.Settings {
	tables := make([]model.Table, 0, 10)
	for i := 1; i <= 10; i++ {
		tables = append(tables, model.Table{
			ID:         fmt.Sprintf("t4-%d", i),
			Name:       fmt.Sprintf("Tavolo %d", i),
			Capacity:   4,
			Combinable: true,
		})
	}

	both := []string{"sw-lunch", "sw-dinner"}
	return &model.Settings{
		Mode: model.ModeAdvanced,
		ServiceWindows: []model.ServiceWindow{
			{ID: "sw-lunch", Name: "Pranzo", StartTime: "12:00", EndTime: "14:30", SlotIntervalMinutes: 30},
			{ID: "sw-dinner", Name: "Cena", StartTime: "19:00", EndTime: "22:00", SlotIntervalMinutes: 30},
		},
		WeeklySchedule: model.WeeklySchedule{
			time.Sunday:    append([]string(nil), both...),
			time.Monday:    {},
			time.Tuesday:   {"sw-dinner"},
			time.Wednesday: append([]string(nil), both...),
			time.Thursday:  append([]string(nil), both...),
			time.Friday:    append([]string(nil), both...),
			time.Saturday:  append([]string(nil), both...),
		},
		Tables: tables,
		CombinationRules: []model.CombinationRule{
			{ID: "rule-1", Count: 2, TableCapacity: 4, NewCapacity: 6},
			{ID: "rule-2", Count: 3, TableCapacity: 4, NewCapacity: 8},
		},
		DurationRules: []model.DurationRule{
			{ID: "dur-1", MinGuests: 1, MaxGuests: 2, DurationMinutes: 90},
			{ID: "dur-2", MinGuests: 3, MaxGuests: 4, DurationMinutes: 120},
			{ID: "dur-3", MinGuests: 5, MaxGuests: 100, DurationMinutes: 150},
		},
		MaxGuestsPerSlot: 30,
	}
}

// LoadSettings reads and validates restaurant settings from a YAML file.
func LoadSettings(path string) (*model.Settings, error) {
	if path == "" {
		path = "configs/settings.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings and validates them.
func ParseSettings(data []byte) (*model.Settings, error) {
	var s model.Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.Mode == "" {
		s.Mode = model.ModeAdvanced
	}
	if err := ValidateSettings(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateSettings rejects configuration the availability engine cannot
// evaluate, so bad values surface on load or save rather than mid-request.
func ValidateSettings(s *model.Settings) error {
	if err := validateSettings(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

func validateSettings(s *model.Settings) error {
	if s == nil {
		return errors.New("settings are empty")
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("mode: unknown value %q", s.Mode)
	}

	windows := make(map[string]bool, len(s.ServiceWindows))
	for i, w := range s.ServiceWindows {
		if w.ID == "" {
			return fmt.Errorf("service_windows[%d]: id is required", i)
		}
		if windows[w.ID] {
			return fmt.Errorf("service_windows[%d]: duplicate id %q", i, w.ID)
		}
		windows[w.ID] = true

		if w.SlotIntervalMinutes <= 0 {
			return fmt.Errorf("service_windows[%d]: slot_interval_minutes must be positive", i)
		}
		start, err := model.ParseClock("start_time", w.StartTime)
		if err != nil {
			return fmt.Errorf("service_windows[%d]: %w", i, err)
		}
		end, err := model.ParseClock("end_time", w.EndTime)
		if err != nil {
			return fmt.Errorf("service_windows[%d]: %w", i, err)
		}
		if start > end {
			return fmt.Errorf("service_windows[%d]: start_time must not be after end_time", i)
		}
	}

	for day, ids := range s.WeeklySchedule {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("weekly_schedule: invalid weekday %d", day)
		}
		for _, id := range ids {
			if !windows[id] {
				return fmt.Errorf("weekly_schedule[%d]: unknown service window %q", day, id)
			}
		}
	}

	tables := make(map[string]bool, len(s.Tables))
	for i, t := range s.Tables {
		if t.ID == "" {
			return fmt.Errorf("tables[%d]: id is required", i)
		}
		if tables[t.ID] {
			return fmt.Errorf("tables[%d]: duplicate id %q", i, t.ID)
		}
		tables[t.ID] = true
		if t.Capacity <= 0 {
			return fmt.Errorf("tables[%d]: capacity must be positive, got %d", i, t.Capacity)
		}
	}

	for i, r := range s.CombinationRules {
		if r.Count < 2 {
			return fmt.Errorf("combination_rules[%d]: count must be at least 2, got %d", i, r.Count)
		}
		if r.TableCapacity <= 0 || r.NewCapacity <= 0 {
			return fmt.Errorf("combination_rules[%d]: capacities must be positive", i)
		}
	}

	for i, r := range s.DurationRules {
		if r.MinGuests < 0 {
			return fmt.Errorf("duration_rules[%d]: min_guests cannot be negative", i)
		}
		if r.MaxGuests < r.MinGuests {
			return fmt.Errorf("duration_rules[%d]: max_guests %d is below min_guests %d", i, r.MaxGuests, r.MinGuests)
		}
		if r.DurationMinutes <= 0 {
			return fmt.Errorf("duration_rules[%d]: duration_minutes must be positive", i)
		}
	}

	if s.MaxGuestsPerSlot < 0 {
		return fmt.Errorf("max_guests_per_slot cannot be negative")
	}
	if s.Mode == model.ModeSimple && s.MaxGuestsPerSlot == 0 {
		return fmt.Errorf("max_guests_per_slot must be positive in simple mode")
	}

	return nil
}
