package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pomodoro/app/internal/model"
)

const (
	keyAppSettings = "app_settings"
	keyTimerState  = "timer_state"
)

// SettingsRepository stores JSON blobs in the settings key/value table:
// the app settings and the last timer state snapshot.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) LoadSettings(ctx context.Context) (model.TimerSettings, error) {
	var settings model.TimerSettings
	found, err := r.loadJSON(ctx, keyAppSettings, &settings)
	if err != nil {
		return model.TimerSettings{}, err
	}
	if !found {
		return model.TimerSettings{}, ErrNotFound
	}
	return settings, nil
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, settings model.TimerSettings) error {
	return r.saveJSON(ctx, keyAppSettings, settings)
}

func (r *SettingsRepository) LoadTimerState(ctx context.Context) (model.TimerState, error) {
	var state model.TimerState
	found, err := r.loadJSON(ctx, keyTimerState, &state)
	if err != nil {
		return model.TimerState{}, err
	}
	if !found {
		return model.TimerState{}, ErrNotFound
	}
	return state, nil
}

func (r *SettingsRepository) SaveTimerState(ctx context.Context, state model.TimerState) error {
	return r.saveJSON(ctx, keyTimerState, state)
}

func (r *SettingsRepository) saveJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %s: %w", key, err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key,
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepository) loadJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load setting %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return true, nil
}
