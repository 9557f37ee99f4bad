package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

// ExportResult is a generated file handed to the caller for download.
type ExportResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type ExportService struct {
	sessions *repository.SessionRepository
	projects *repository.ProjectRepository
	settings *SettingsService
}

func NewExportService(
	sessions *repository.SessionRepository,
	projects *repository.ProjectRepository,
	settings *SettingsService,
) *ExportService {
	return &ExportService{sessions: sessions, projects: projects, settings: settings}
}

// CSV exports the session log for a time range. Tag ids are joined with
// ';' inside a single column.
func (s *ExportService) CSV(ctx context.Context, from, to *int64) (*ExportResult, *apperrors.APIError) {
	records, err := s.sessions.List(ctx, model.SessionFilter{From: from, To: to})
	if err != nil {
		return nil, apperrors.Internal("failed to load sessions")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"id", "startedAt", "endedAt", "phase", "durationSec", "completed", "interruptions", "projectId", "tagIds"}
	if err := writer.Write(header); err != nil {
		return nil, apperrors.Internal("failed to write csv")
	}

	for _, record := range records {
		projectID := ""
		if record.ProjectID != nil {
			projectID = strconv.FormatInt(*record.ProjectID, 10)
		}
		tagIDs := make([]string, 0, len(record.TagIDs))
		for _, tagID := range record.TagIDs {
			tagIDs = append(tagIDs, strconv.FormatInt(tagID, 10))
		}

		row := []string{
			strconv.FormatInt(record.ID, 10),
			strconv.FormatInt(record.StartedAt, 10),
			strconv.FormatInt(record.EndedAt, 10),
			string(record.Phase),
			strconv.FormatInt(record.DurationSec, 10),
			strconv.FormatBool(record.Completed),
			strconv.FormatInt(record.Interruptions, 10),
			projectID,
			strings.Join(tagIDs, ";"),
		}
		if err := writer.Write(row); err != nil {
			return nil, apperrors.Internal("failed to write csv")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperrors.Internal("failed to write csv")
	}

	return &ExportResult{
		Filename: fmt.Sprintf("pomodoro-sessions-%d.csv", time.Now().Unix()),
		Content:  buf.String(),
	}, nil
}

// JSON exports a full pretty-printed backup: settings, projects, tags and
// sessions.
func (s *ExportService) JSON(ctx context.Context, from, to *int64) (*ExportResult, *apperrors.APIError) {
	records, err := s.sessions.List(ctx, model.SessionFilter{From: from, To: to})
	if err != nil {
		return nil, apperrors.Internal("failed to load sessions")
	}
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load projects")
	}
	tags, err := s.projects.ListTags(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to load tags")
	}

	payload := map[string]interface{}{
		"exportedAt": time.Now().Unix(),
		"settings":   s.settings.Get(),
		"projects":   projects,
		"tags":       tags,
		"sessions":   records,
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, apperrors.Internal("failed to encode backup")
	}

	return &ExportResult{
		Filename: fmt.Sprintf("pomodoro-backup-%d.json", time.Now().Unix()),
		Content:  string(raw),
	}, nil
}
