package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"prenota/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, ValidateSettings(s))

	assert.Equal(t, model.ModeAdvanced, s.Mode)
	assert.Len(t, s.Tables, 10)
	assert.Equal(t, "t4-1", s.Tables[0].ID)
	assert.Equal(t, "Tavolo 10", s.Tables[9].Name)
	assert.Empty(t, s.WeeklySchedule.Windows(time.Monday))
	assert.Equal(t, []string{"sw-dinner"}, s.WeeklySchedule.Windows(time.Tuesday))
	assert.Equal(t, 30, s.MaxGuestsPerSlot)
	assert.False(t, s.PendingHolds)
}

func TestLoadSettings_ShippedFileMatchesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join("..", "..", "configs", "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.Settings)
	}{
		{"unknown mode", func(s *model.Settings) { s.Mode = "banquet" }},
		{"zero slot interval", func(s *model.Settings) { s.ServiceWindows[0].SlotIntervalMinutes = 0 }},
		{"bad start time", func(s *model.Settings) { s.ServiceWindows[0].StartTime = "12.00" }},
		{"start after end", func(s *model.Settings) { s.ServiceWindows[0].StartTime = "15:00" }},
		{"duplicate window", func(s *model.Settings) { s.ServiceWindows[1].ID = s.ServiceWindows[0].ID }},
		{"unknown window in schedule", func(s *model.Settings) { s.WeeklySchedule[time.Monday] = []string{"sw-brunch"} }},
		{"weekday out of range", func(s *model.Settings) { s.WeeklySchedule[7] = nil }},
		{"zero capacity table", func(s *model.Settings) { s.Tables[0].Capacity = 0 }},
		{"duplicate table", func(s *model.Settings) { s.Tables[1].ID = s.Tables[0].ID }},
		{"single table combination", func(s *model.Settings) { s.CombinationRules[0].Count = 1 }},
		{"inverted duration range", func(s *model.Settings) { s.DurationRules[0].MaxGuests = 0 }},
		{"zero duration", func(s *model.Settings) { s.DurationRules[0].DurationMinutes = 0 }},
		{"simple mode without ceiling", func(s *model.Settings) {
			s.Mode = model.ModeSimple
			s.MaxGuestsPerSlot = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettings))
		})
	}
}

func TestParseSettings_DefaultsMode(t *testing.T) {
	s, err := ParseSettings([]byte("max_guests_per_slot: 12\n"))
	require.NoError(t, err)
	assert.Equal(t, model.ModeAdvanced, s.Mode)
	assert.Empty(t, s.Tables)

	_, err = ParseSettings([]byte("tables:\n  - { id: a, capacity: -1 }\n"))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestWatchSettings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", "mode: simple\nmax_guests_per_slot: 10\n")

	var (
		mu      sync.Mutex
		current *model.Settings
	)
	get := func() *model.Settings {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := WatchSettings(ctx, path, 10*time.Millisecond, nil, func(s *model.Settings) {
		mu.Lock()
		current = s
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Equal(t, 10, get().MaxGuestsPerSlot)

	// Invalid edit is ignored.
	require.NoError(t, os.WriteFile(path, []byte("mode: simple\nmax_guests_per_slot: 0\n"), 0o644))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 10, get().MaxGuestsPerSlot)

	require.NoError(t, os.WriteFile(path, []byte("mode: simple\nmax_guests_per_slot: 25\n"), 0o644))
	future = future.Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.Eventually(t, func() bool {
		return get().MaxGuestsPerSlot == 25
	}, time.Second, 10*time.Millisecond)
}

func TestSettingsWatcher_RejectedEditNotRetried(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", "mode: simple\nmax_guests_per_slot: 10\n")

	var applied []int
	nop := zerolog.Nop()
	w := &settingsWatcher{path: path, logger: &nop, onUpdate: func(s *model.Settings) {
		applied = append(applied, s.MaxGuestsPerSlot)
	}}
	require.NoError(t, w.init())
	assert.False(t, w.poll(), "unchanged file")

	require.NoError(t, os.WriteFile(path, []byte("mode: simple\nmax_guests_per_slot: 0\n"), 0o644))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.False(t, w.poll(), "invalid edit")
	assert.False(t, w.poll(), "same invalid edit")

	require.NoError(t, os.WriteFile(path, []byte("mode: simple\nmax_guests_per_slot: 25\n"), 0o644))
	future = future.Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.True(t, w.poll())

	assert.Equal(t, []int{10, 25}, applied)
}

func TestWatchSettings_InitialLoadFails(t *testing.T) {
	err := WatchSettings(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), time.Second, nil, nil)
	assert.Error(t, err)
}
