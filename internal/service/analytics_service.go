package service

import (
	"context"
	"sort"
	"time"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

type AnalyticsService struct {
	sessions *repository.SessionRepository
}

func NewAnalyticsService(sessions *repository.SessionRepository) *AnalyticsService {
	return &AnalyticsService{sessions: sessions}
}

func (s *AnalyticsService) Summary(ctx context.Context, filter model.SessionFilter) (*model.AnalyticsSummary, *apperrors.APIError) {
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to load sessions")
	}
	summary := Summarize(records, time.Now())
	return &summary, nil
}

func (s *AnalyticsService) Timeseries(ctx context.Context, filter model.SessionFilter) ([]model.TimeseriesPoint, *apperrors.APIError) {
	records, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to load sessions")
	}
	return BuildTimeseries(records), nil
}

// Summarize aggregates focus sessions into the dashboard summary. Only
// focus phases count; breaks are rest, not work.
func Summarize(records []model.SessionRecord, now time.Time) model.AnalyticsSummary {
	var summary model.AnalyticsSummary
	focusDays := make(map[string]struct{})

	for _, record := range records {
		if record.Phase != model.PhaseFocus {
			continue
		}
		summary.TotalFocusSec += record.DurationSec
		summary.Interruptions += record.Interruptions
		if record.Completed {
			summary.CompletedPomodoros++
		}
		if record.DurationSec > 0 {
			focusDays[dayKey(record.EndedAt)] = struct{}{}
		}
	}

	if len(focusDays) > 0 {
		summary.AvgDailyFocusSec = summary.TotalFocusSec / int64(len(focusDays))
	}
	summary.StreakDays = streakDays(focusDays, now)
	return summary
}

// BuildTimeseries groups focus sessions per local day, ascending by date.
func BuildTimeseries(records []model.SessionRecord) []model.TimeseriesPoint {
	byDay := make(map[string]*model.TimeseriesPoint)

	for _, record := range records {
		if record.Phase != model.PhaseFocus {
			continue
		}
		key := dayKey(record.EndedAt)
		point, ok := byDay[key]
		if !ok {
			point = &model.TimeseriesPoint{Date: key}
			byDay[key] = point
		}
		point.FocusSeconds += record.DurationSec
		point.Interruptions += record.Interruptions
		if record.Completed {
			point.CompletedPomodoros++
		}
	}

	points := make([]model.TimeseriesPoint, 0, len(byDay))
	for _, point := range byDay {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// streakDays counts consecutive local days with focus work, ending today.
func streakDays(focusDays map[string]struct{}, now time.Time) int64 {
	var streak int64
	day := now
	for {
		key := day.Format("2006-01-02")
		if _, ok := focusDays[key]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func dayKey(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02")
}
