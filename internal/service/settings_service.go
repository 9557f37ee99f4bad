package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

// SettingsService owns the in-memory copy of the app settings and keeps it
// in sync with the settings table. It implements engine.SettingsProvider.
type SettingsService struct {
	mu   sync.RWMutex
	repo *repository.SettingsRepository

	current model.TimerSettings
}

// SettingsPatch carries a partial settings update; nil fields are left
// unchanged.
type SettingsPatch struct {
	FocusMin             *int64  `json:"focusMin"`
	ShortBreakMin        *int64  `json:"shortBreakMin"`
	LongBreakMin         *int64  `json:"longBreakMin"`
	LongBreakEvery       *int64  `json:"longBreakEvery"`
	Theme                *string `json:"theme"`
	SoundEnabled         *bool   `json:"soundEnabled"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	RemoteControlEnabled *bool   `json:"remoteControlEnabled"`
	RemoteControlPort    *int64  `json:"remoteControlPort"`
	RemoteControlToken   *string `json:"remoteControlToken"`
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Init loads persisted settings or seeds defaults, normalizing either way
// so stored out-of-range values never reach the engine.
func (s *SettingsService) Init(ctx context.Context) error {
	settings, err := s.repo.LoadSettings(ctx)
	if err == repository.ErrNotFound {
		settings = model.DefaultTimerSettings()
	} else if err != nil {
		return err
	}

	settings = NormalizeSettings(settings)
	ensureRemoteToken(&settings)

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return nil
}

// TimerSettings satisfies engine.SettingsProvider.
func (s *SettingsService) TimerSettings() model.TimerSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Get() model.TimerSettings {
	return s.TimerSettings()
}

func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (model.TimerSettings, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.current
	if patch.FocusMin != nil {
		settings.FocusMin = *patch.FocusMin
	}
	if patch.ShortBreakMin != nil {
		settings.ShortBreakMin = *patch.ShortBreakMin
	}
	if patch.LongBreakMin != nil {
		settings.LongBreakMin = *patch.LongBreakMin
	}
	if patch.LongBreakEvery != nil {
		settings.LongBreakEvery = *patch.LongBreakEvery
	}
	if patch.Theme != nil {
		settings.Theme = strings.ToLower(strings.TrimSpace(*patch.Theme))
	}
	if patch.SoundEnabled != nil {
		settings.SoundEnabled = *patch.SoundEnabled
	}
	if patch.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.RemoteControlEnabled != nil {
		settings.RemoteControlEnabled = *patch.RemoteControlEnabled
	}
	if patch.RemoteControlPort != nil {
		settings.RemoteControlPort = *patch.RemoteControlPort
	}
	if patch.RemoteControlToken != nil {
		settings.RemoteControlToken = *patch.RemoteControlToken
	}

	settings = NormalizeSettings(settings)
	ensureRemoteToken(&settings)

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return model.TimerSettings{}, apperrors.Internal("failed to save settings")
	}

	s.current = settings
	return settings, nil
}

// ResetDefaults re-seeds default settings, keeping nothing but a fresh
// remote token.
func (s *SettingsService) ResetDefaults(ctx context.Context) (model.TimerSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := NormalizeSettings(model.DefaultTimerSettings())
	ensureRemoteToken(&settings)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return model.TimerSettings{}, err
	}

	s.current = settings
	return settings, nil
}

// NormalizeSettings clamps every field to its sane range.
func NormalizeSettings(settings model.TimerSettings) model.TimerSettings {
	settings.FocusMin = clampInt64(settings.FocusMin, 1, 180)
	settings.ShortBreakMin = clampInt64(settings.ShortBreakMin, 1, 60)
	settings.LongBreakMin = clampInt64(settings.LongBreakMin, 1, 90)
	settings.LongBreakEvery = clampInt64(settings.LongBreakEvery, 2, 10)
	if settings.Theme != "dark" {
		settings.Theme = "light"
	}
	settings.RemoteControlPort = clampInt64(settings.RemoteControlPort, 1024, 65535)
	return settings
}

func ensureRemoteToken(settings *model.TimerSettings) {
	if strings.TrimSpace(settings.RemoteControlToken) == "" {
		settings.RemoteControlToken = newRemoteToken()
	}
}

// newRemoteToken returns a 32-character shared secret for the LAN remote
// control endpoint.
func newRemoteToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func clampInt64(value, low, high int64) int64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
