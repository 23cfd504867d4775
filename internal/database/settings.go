package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prenota/internal/config"
	"prenota/internal/model"
)

// GetSettings returns the stored settings. When none exist yet, defaults
// are stored and returned. A stored document that fails validation is
// rejected with config.ErrInvalidSettings.
func (db *DB) GetSettings(ctx context.Context, defaults *model.Settings) (*model.Settings, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT data FROM restaurant_settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		if defaults == nil {
			defaults = config.DefaultSettings()
		}
		if err := db.SaveSettings(ctx, defaults); err != nil {
			return nil, err
		}
		db.logger.Info().Msg("Default settings stored")
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var s model.Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := config.ValidateSettings(&s); err != nil {
		return nil, fmt.Errorf("stored settings: %w", err)
	}
	return &s, nil
}

// SaveSettings validates s and replaces the stored settings.
func (db *DB) SaveSettings(ctx context.Context, s *model.Settings) error {
	if err := config.ValidateSettings(s); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO restaurant_settings (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
