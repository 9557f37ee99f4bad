package service

import (
	"context"
	"log"

	"pomodoro/app/internal/engine"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

// Store is the persistence subscriber: it writes every completed session
// row and keeps the latest timer state snapshot in the settings table. The
// engine's events are its only write trigger.
type Store struct {
	sessions *repository.SessionRepository
	settings *repository.SettingsRepository
}

func NewStore(sessions *repository.SessionRepository, settings *repository.SettingsRepository) *Store {
	return &Store{sessions: sessions, settings: settings}
}

// Attach subscribes the store to the engine. Persistence failures are
// logged, never propagated back into the state machine.
func (s *Store) Attach(eng *engine.Engine) {
	eng.OnSessionCompleted(func(record model.SessionRecord) {
		if err := s.sessions.Insert(context.Background(), &record); err != nil {
			log.Printf("persist session: %v", err)
		}
	})
	eng.OnStateChanged(func(state model.TimerState) {
		if err := s.settings.SaveTimerState(context.Background(), state); err != nil {
			log.Printf("persist timer state: %v", err)
		}
	})
}
