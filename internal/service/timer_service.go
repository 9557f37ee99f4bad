package service

import (
	"context"
	"errors"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/engine"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

// TimerService fronts the engine for the HTTP layer, translating engine
// errors into API errors, and covers session history and reset-all.
type TimerService struct {
	engine      *engine.Engine
	sessions    *repository.SessionRepository
	maintenance *repository.MaintenanceRepository
	settings    *SettingsService
}

type ResetAllResult struct {
	Settings model.TimerSettings `json:"settings"`
	Timer    model.TimerState    `json:"timer"`
}

func NewTimerService(
	eng *engine.Engine,
	sessions *repository.SessionRepository,
	maintenance *repository.MaintenanceRepository,
	settings *SettingsService,
) *TimerService {
	return &TimerService{
		engine:      eng,
		sessions:    sessions,
		maintenance: maintenance,
		settings:    settings,
	}
}

func (s *TimerService) GetState() model.TimerState {
	return s.engine.GetState()
}

func (s *TimerService) Start(ctx *model.SessionContext) (model.TimerState, *apperrors.APIError) {
	state, err := s.engine.Start(ctx)
	if err != nil {
		return state, mapEngineError(err)
	}
	return state, nil
}

func (s *TimerService) Pause() (model.TimerState, *apperrors.APIError) {
	state, err := s.engine.Pause()
	if err != nil {
		return state, mapEngineError(err)
	}
	return state, nil
}

func (s *TimerService) Resume(ctx *model.SessionContext) (model.TimerState, *apperrors.APIError) {
	state, err := s.engine.Resume(ctx)
	if err != nil {
		return state, mapEngineError(err)
	}
	return state, nil
}

func (s *TimerService) Skip() (model.TimerState, *apperrors.APIError) {
	state, err := s.engine.Skip()
	if err != nil {
		return state, mapEngineError(err)
	}
	return state, nil
}

func (s *TimerService) SetContext(ctx model.SessionContext) (model.TimerState, *apperrors.APIError) {
	state, err := s.engine.SetContext(ctx)
	if err != nil {
		return state, mapEngineError(err)
	}
	return state, nil
}

// Toggle dispatches to pause, resume or start depending on the current
// state, mirroring the single tray/remote button.
func (s *TimerService) Toggle() (model.TimerState, *apperrors.APIError) {
	state := s.engine.GetState()
	switch {
	case state.IsRunning:
		return s.Pause()
	case state.StartedAt != 0:
		return s.Resume(nil)
	default:
		return s.Start(nil)
	}
}

// SyncAfterSettings re-arms an idle phase after a configuration change.
func (s *TimerService) SyncAfterSettings() model.TimerState {
	return s.engine.SyncIdleDurations()
}

func (s *TimerService) History(ctx context.Context, filter model.SessionFilter) ([]model.SessionRecord, *apperrors.APIError) {
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}
	return records, nil
}

// ResetAll wipes every stored row, re-seeds default settings and resets the
// engine wholesale.
func (s *TimerService) ResetAll(ctx context.Context) (*ResetAllResult, *apperrors.APIError) {
	if err := s.maintenance.ResetAll(ctx); err != nil {
		return nil, apperrors.Internal("failed to reset data")
	}

	settings, err := s.settings.ResetDefaults(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to reset settings")
	}

	timer := s.engine.Reset()
	return &ResetAllResult{Settings: settings, Timer: timer}, nil
}

func mapEngineError(err error) *apperrors.APIError {
	var invalid *engine.InvalidTransitionError
	if errors.As(err, &invalid) {
		return apperrors.Conflict("invalid_transition", invalid.Error(), nil)
	}
	if errors.Is(err, engine.ErrContextLocked) {
		return apperrors.Conflict("context_locked", "cannot change project or tags while the timer is running", nil)
	}
	return apperrors.Internal("")
}
