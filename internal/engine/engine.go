// Package engine implements the pomodoro timer state machine. A single
// Engine instance owns the timer state; all operations are serialized and
// complete synchronously, returning an immutable snapshot.
package engine

import (
	"sync"
	"time"

	"pomodoro/app/internal/model"
)

// SettingsProvider hands the engine the current timer configuration. It is
// consulted once at each phase start; changing settings mid-phase never
// alters the in-flight phase.
type SettingsProvider interface {
	TimerSettings() model.TimerSettings
}

// Subscriber callbacks are invoked synchronously, in registration order,
// after each successful state mutation. They run under the engine lock and
// must not call back into the engine.
type (
	StateFunc   func(model.TimerState)
	PhaseFunc   func(model.PhaseChange)
	SessionFunc func(model.SessionRecord)
)

type Engine struct {
	mu       sync.Mutex
	now      func() time.Time
	settings SettingsProvider
	state    model.TimerState

	stateSubs   []StateFunc
	phaseSubs   []PhaseFunc
	sessionSubs []SessionFunc
}

func New(settings SettingsProvider) *Engine {
	return NewWithClock(settings, time.Now)
}

// NewWithClock injects the wall clock, used by tests to drive phase expiry.
func NewWithClock(settings SettingsProvider, now func() time.Time) *Engine {
	e := &Engine{now: now, settings: settings}
	e.state = initialState(settings.TimerSettings())
	return e
}

func initialState(cfg model.TimerSettings) model.TimerState {
	total := cfg.PhaseDurationSeconds(model.PhaseFocus)
	return model.TimerState{
		Phase:             model.PhaseFocus,
		RemainingSeconds:  total,
		PhaseTotalSeconds: total,
	}
}

// Restore loads a previously persisted state, clamping anything that no
// longer makes sense against the current configuration.
func (e *Engine) Restore(state model.TimerState) model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.settings.TimerSettings()
	if !state.Phase.Valid() {
		state.Phase = model.PhaseFocus
	}
	state.PhaseTotalSeconds = cfg.PhaseDurationSeconds(state.Phase)
	if state.RemainingSeconds <= 0 || state.RemainingSeconds > state.PhaseTotalSeconds {
		state.RemainingSeconds = state.PhaseTotalSeconds
		state.IsRunning = false
		state.StartedAt = 0
		state.TargetEndsAt = 0
	}
	if state.CycleIndex < 0 {
		state.CycleIndex = 0
	}
	if state.Interruptions < 0 {
		state.Interruptions = 0
	}
	e.state = state
	return e.snapshot()
}

func (e *Engine) OnStateChanged(fn StateFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateSubs = append(e.stateSubs, fn)
}

func (e *Engine) OnPhaseCompleted(fn PhaseFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phaseSubs = append(e.phaseSubs, fn)
}

func (e *Engine) OnSessionCompleted(fn SessionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionSubs = append(e.sessionSubs, fn)
}

// Start begins the current armed phase. Valid only when the phase has not
// been begun yet (fresh state, after reset, or after a skip).
func (e *Engine) Start(ctx *model.SessionContext) (model.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().Unix()
	e.reconcile(now)

	if e.state.IsRunning || e.state.StartedAt != 0 {
		return e.snapshot(), invalidTransition("start", e.stateName())
	}

	cfg := e.settings.TimerSettings()
	total := cfg.PhaseDurationSeconds(e.state.Phase)
	e.state.PhaseTotalSeconds = total
	e.state.RemainingSeconds = total
	e.state.StartedAt = now
	e.state.TargetEndsAt = now + total
	e.state.IsRunning = true
	if e.state.Phase == model.PhaseFocus {
		e.state.Interruptions = 0
	}
	e.applyContext(ctx)

	snap := e.snapshot()
	e.emitState(snap)
	return snap, nil
}

// Pause freezes the running phase. A pause during a focus phase counts as
// an interruption.
func (e *Engine) Pause() (model.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().Unix()
	e.reconcile(now)

	if !e.state.IsRunning {
		return e.snapshot(), invalidTransition("pause", e.stateName())
	}

	remaining := e.state.TargetEndsAt - now
	if remaining < 0 {
		remaining = 0
	}
	e.state.RemainingSeconds = remaining
	e.state.TargetEndsAt = 0
	e.state.IsRunning = false
	if e.state.Phase == model.PhaseFocus {
		e.state.Interruptions++
	}

	snap := e.snapshot()
	e.emitState(snap)
	return snap, nil
}

// Resume continues a paused phase from its frozen remaining time.
func (e *Engine) Resume(ctx *model.SessionContext) (model.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().Unix()
	e.reconcile(now)

	if e.state.IsRunning || e.state.StartedAt == 0 {
		return e.snapshot(), invalidTransition("resume", e.stateName())
	}

	e.applyContext(ctx)
	e.state.TargetEndsAt = now + e.state.RemainingSeconds
	e.state.IsRunning = true

	snap := e.snapshot()
	e.emitState(snap)
	return snap, nil
}

// Skip finalizes the in-flight phase early and arms the next one without
// starting it.
func (e *Engine) Skip() (model.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().Unix()
	e.reconcile(now)

	if e.state.StartedAt == 0 {
		return e.snapshot(), invalidTransition("skip", e.stateName())
	}

	if e.state.IsRunning {
		remaining := e.state.TargetEndsAt - now
		if remaining < 0 {
			remaining = 0
		}
		e.state.RemainingSeconds = remaining
	}

	elapsed := e.state.PhaseTotalSeconds - e.state.RemainingSeconds
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > e.state.PhaseTotalSeconds {
		elapsed = e.state.PhaseTotalSeconds
	}

	record := e.buildRecord(elapsed, false, now)
	e.advance()
	e.emitSession(record)

	snap := e.snapshot()
	e.emitState(snap)
	return snap, nil
}

// SetContext updates the project/tag association. Rejected while running:
// the association must not change mid-session.
func (e *Engine) SetContext(ctx model.SessionContext) (model.TimerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reconcile(e.now().Unix())

	if e.state.IsRunning {
		return e.snapshot(), ErrContextLocked
	}

	e.applyContext(&ctx)
	snap := e.snapshot()
	e.emitState(snap)
	return snap, nil
}

// GetState returns the current snapshot with RemainingSeconds recomputed
// from the wall clock. Detecting an expired phase here triggers the same
// completion handling as a tick.
func (e *Engine) GetState() model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reconcile(e.now().Unix()) > 0 {
		snap := e.snapshot()
		e.emitState(snap)
		return snap
	}
	return e.snapshot()
}

// Tick drives wall-clock reconciliation and re-emits state while running,
// so subscribers observe the countdown and persisted state stays fresh.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.state.RemainingSeconds
	transitions := e.reconcile(e.now().Unix())
	if transitions > 0 || (e.state.IsRunning && e.state.RemainingSeconds != before) {
		e.emitState(e.snapshot())
	}
}

// Reset discards all timer state and re-arms a fresh focus phase.
func (e *Engine) Reset() model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = initialState(e.settings.TimerSettings())
	snap := e.snapshot()
	e.emitState(snap)
	return snap
}

// SyncIdleDurations re-arms the current phase with freshly read settings.
// Only applies when the phase was never begun; an in-flight (running or
// paused) phase keeps its original duration.
func (e *Engine) SyncIdleDurations() model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reconcile(e.now().Unix())

	if e.state.IsRunning || e.state.StartedAt != 0 {
		return e.snapshot()
	}

	cfg := e.settings.TimerSettings()
	total := cfg.PhaseDurationSeconds(e.state.Phase)
	e.state.PhaseTotalSeconds = total
	e.state.RemainingSeconds = total

	snap := e.snapshot()
	e.emitState(snap)
	return snap
}

// reconcile processes natural completions against the wall clock. The UI
// may have been asleep for hours, so it advances one phase per expired
// target until the timer lands mid-flight, synthesizing a full-duration
// session record per expired phase and auto-starting each successor at the
// instant its predecessor ended. Returns the number of transitions.
func (e *Engine) reconcile(now int64) int {
	transitions := 0
	for e.state.IsRunning && e.state.TargetEndsAt != 0 && now >= e.state.TargetEndsAt {
		endedAt := e.state.TargetEndsAt
		record := e.buildRecord(e.state.PhaseTotalSeconds, true, endedAt)
		change := e.advance()

		e.state.StartedAt = endedAt
		e.state.TargetEndsAt = endedAt + e.state.PhaseTotalSeconds
		e.state.IsRunning = true

		e.emitSession(record)
		e.emitPhase(change)
		transitions++
	}

	if e.state.IsRunning && e.state.TargetEndsAt != 0 {
		remaining := e.state.TargetEndsAt - now
		if remaining < 0 {
			remaining = 0
		}
		e.state.RemainingSeconds = remaining
	}
	return transitions
}

// advance applies the phase-transition rule and arms the next phase as not
// running. Interruptions reset only when the new phase is focus.
func (e *Engine) advance() model.PhaseChange {
	cfg := e.settings.TimerSettings()
	completed := e.state.Phase

	var next model.Phase
	if completed == model.PhaseFocus {
		e.state.CycleIndex++
		if cfg.LongBreakEvery > 0 && e.state.CycleIndex%cfg.LongBreakEvery == 0 {
			next = model.PhaseLongBreak
		} else {
			next = model.PhaseShortBreak
		}
	} else {
		next = model.PhaseFocus
	}

	total := cfg.PhaseDurationSeconds(next)
	e.state.Phase = next
	e.state.PhaseTotalSeconds = total
	e.state.RemainingSeconds = total
	e.state.IsRunning = false
	e.state.StartedAt = 0
	e.state.TargetEndsAt = 0
	if next == model.PhaseFocus {
		e.state.Interruptions = 0
	}

	return model.PhaseChange{CompletedPhase: completed, NextPhase: next}
}

func (e *Engine) buildRecord(durationSec int64, completed bool, endedAt int64) model.SessionRecord {
	startedAt := e.state.StartedAt
	if startedAt == 0 {
		elapsed := durationSec
		if elapsed < 1 {
			elapsed = 1
		}
		startedAt = endedAt - elapsed
	}

	record := model.SessionRecord{
		StartedAt:     startedAt,
		EndedAt:       endedAt,
		Phase:         e.state.Phase,
		DurationSec:   durationSec,
		Completed:     completed,
		Interruptions: e.state.Interruptions,
	}

	// Project and tags describe focus work only.
	if e.state.Phase == model.PhaseFocus {
		record.ProjectID = e.state.CurrentProjectID
		record.TagIDs = append([]int64(nil), e.state.CurrentTagIDs...)
	}
	return record
}

func (e *Engine) applyContext(ctx *model.SessionContext) {
	if ctx == nil {
		return
	}
	e.state.CurrentProjectID = ctx.ProjectID
	e.state.CurrentTagIDs = append([]int64(nil), ctx.TagIDs...)
}

func (e *Engine) snapshot() model.TimerState {
	snap := e.state
	snap.CurrentTagIDs = append([]int64(nil), e.state.CurrentTagIDs...)
	return snap
}

func (e *Engine) stateName() string {
	switch {
	case e.state.IsRunning:
		return "running"
	case e.state.StartedAt != 0:
		return "paused"
	default:
		return "idle"
	}
}

func (e *Engine) emitState(snap model.TimerState) {
	for _, fn := range e.stateSubs {
		fn(snap)
	}
}

func (e *Engine) emitPhase(change model.PhaseChange) {
	for _, fn := range e.phaseSubs {
		fn(change)
	}
}

func (e *Engine) emitSession(record model.SessionRecord) {
	for _, fn := range e.sessionSubs {
		fn(record)
	}
}
