package model

// Phase is one timed segment of the pomodoro cycle.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

func (p Phase) Valid() bool {
	return p == PhaseFocus || p == PhaseShortBreak || p == PhaseLongBreak
}

// TimerSettings is the persisted app configuration. Minute values are
// clamped by service.NormalizeSettings before they ever reach the engine.
type TimerSettings struct {
	FocusMin             int64  `json:"focusMin"`
	ShortBreakMin        int64  `json:"shortBreakMin"`
	LongBreakMin         int64  `json:"longBreakMin"`
	LongBreakEvery       int64  `json:"longBreakEvery"`
	Theme                string `json:"theme"`
	SoundEnabled         bool   `json:"soundEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	RemoteControlEnabled bool   `json:"remoteControlEnabled"`
	RemoteControlPort    int64  `json:"remoteControlPort"`
	RemoteControlToken   string `json:"remoteControlToken"`
}

func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		FocusMin:             25,
		ShortBreakMin:        5,
		LongBreakMin:         15,
		LongBreakEvery:       4,
		Theme:                "light",
		SoundEnabled:         true,
		NotificationsEnabled: true,
		RemoteControlEnabled: false,
		RemoteControlPort:    48484,
	}
}

// PhaseDurationSeconds returns the configured duration for a phase.
func (s TimerSettings) PhaseDurationSeconds(phase Phase) int64 {
	switch phase {
	case PhaseShortBreak:
		return s.ShortBreakMin * 60
	case PhaseLongBreak:
		return s.LongBreakMin * 60
	default:
		return s.FocusMin * 60
	}
}

// TimerState is the engine-owned state. StartedAt and TargetEndsAt are
// wall-clock epoch seconds; zero means absent.
type TimerState struct {
	Phase             Phase   `json:"phase"`
	IsRunning         bool    `json:"isRunning"`
	RemainingSeconds  int64   `json:"remainingSeconds"`
	PhaseTotalSeconds int64   `json:"phaseTotalSeconds"`
	StartedAt         int64   `json:"startedAt,omitempty"`
	TargetEndsAt      int64   `json:"targetEndsAt,omitempty"`
	CycleIndex        int64   `json:"cycleIndex"`
	Interruptions     int64   `json:"interruptions"`
	CurrentProjectID  *int64  `json:"currentProjectId,omitempty"`
	CurrentTagIDs     []int64 `json:"currentTagIds"`
}

// SessionContext associates a project and tags with the in-flight phase.
type SessionContext struct {
	ProjectID *int64  `json:"projectId"`
	TagIDs    []int64 `json:"tagIds"`
}

// SessionRecord is an immutable log entry for one completed or skipped
// phase instance. ID is zero until the store persists it.
type SessionRecord struct {
	ID            int64   `json:"id"`
	StartedAt     int64   `json:"startedAt"`
	EndedAt       int64   `json:"endedAt"`
	Phase         Phase   `json:"phase"`
	DurationSec   int64   `json:"durationSec"`
	Completed     bool    `json:"completed"`
	Interruptions int64   `json:"interruptions"`
	ProjectID     *int64  `json:"projectId"`
	TagIDs        []int64 `json:"tagIds"`
}

// PhaseChange is emitted when a phase runs to natural completion.
type PhaseChange struct {
	CompletedPhase Phase `json:"completedPhase"`
	NextPhase      Phase `json:"nextPhase"`
}

type Project struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Color    *string `json:"color"`
	Archived bool    `json:"archived"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SessionFilter narrows session queries by ended_at range, project or tag.
type SessionFilter struct {
	From      *int64
	To        *int64
	ProjectID *int64
	TagID     *int64
}

type AnalyticsSummary struct {
	TotalFocusSec      int64 `json:"totalFocusSec"`
	CompletedPomodoros int64 `json:"completedPomodoros"`
	StreakDays         int64 `json:"streakDays"`
	Interruptions      int64 `json:"interruptions"`
	AvgDailyFocusSec   int64 `json:"avgDailyFocusSec"`
}

type TimeseriesPoint struct {
	Date               string `json:"date"`
	FocusSeconds       int64  `json:"focusSeconds"`
	CompletedPomodoros int64  `json:"completedPomodoros"`
	Interruptions      int64  `json:"interruptions"`
}
