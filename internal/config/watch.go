package config

import (
	"context"
	"os"
	"time"

	"prenota/internal/model"

	"github.com/rs/zerolog"
)

// WatchSettings loads the settings file, passes it to onUpdate, then polls
// the file every interval and passes each valid edit on. An invalid edit is
// logged and the previous snapshot stays in effect. The file is read once
// per modification time: a rejected edit is not retried until the file
// changes again.
func WatchSettings(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*model.Settings)) error {
	if path == "" {
		path = "configs/settings.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	w := &settingsWatcher{path: path, logger: logger, onUpdate: onUpdate}
	if err := w.init(); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll()
			}
		}
	}()
	return nil
}

type settingsWatcher struct {
	path     string
	lastMod  time.Time
	logger   *zerolog.Logger
	onUpdate func(*model.Settings)
}

func (w *settingsWatcher) init() error {
	info, err := os.Stat(w.path)
	if err != nil {
		return err
	}
	s, err := LoadSettings(w.path)
	if err != nil {
		return err
	}
	w.lastMod = info.ModTime()
	w.apply(s)
	return nil
}

// poll reloads the file when its modification time moved forward. It
// reports whether a new snapshot was applied.
func (w *settingsWatcher) poll() bool {
	info, err := os.Stat(w.path)
	if err != nil || !info.ModTime().After(w.lastMod) {
		return false
	}
	w.lastMod = info.ModTime()

	s, err := LoadSettings(w.path)
	if err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("Settings reload rejected")
		return false
	}
	w.logger.Info().Str("path", w.path).Msg("Settings reloaded")
	w.apply(s)
	return true
}

func (w *settingsWatcher) apply(s *model.Settings) {
	if w.onUpdate != nil {
		w.onUpdate(s)
	}
}
