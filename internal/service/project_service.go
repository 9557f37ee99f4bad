package service

import (
	"context"
	"strings"

	apperrors "pomodoro/app/internal/errors"
	"pomodoro/app/internal/model"
	"pomodoro/app/internal/repository"
)

type ProjectService struct {
	repo *repository.ProjectRepository
}

type ProjectInput struct {
	ID       *int64  `json:"id"`
	Name     string  `json:"name"`
	Color    *string `json:"color"`
	Archived *bool   `json:"archived"`
}

type TagInput struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

func NewProjectService(repo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, *apperrors.APIError) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list projects")
	}
	return projects, nil
}

func (s *ProjectService) UpsertProject(ctx context.Context, input ProjectInput) (*model.Project, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "project name is required")
	}

	archived := false
	if input.Archived != nil {
		archived = *input.Archived
	}

	project, err := s.repo.UpsertProject(ctx, input.ID, name, input.Color, archived)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("project_not_found", "project not found")
	}
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.Conflict("name_exists", "project name already exists", nil)
		}
		return nil, apperrors.Internal("failed to save project")
	}
	return project, nil
}

func (s *ProjectService) ListTags(ctx context.Context) ([]model.Tag, *apperrors.APIError) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list tags")
	}
	return tags, nil
}

func (s *ProjectService) UpsertTag(ctx context.Context, input TagInput) (*model.Tag, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "tag name is required")
	}

	tag, err := s.repo.UpsertTag(ctx, input.ID, name)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("tag_not_found", "tag not found")
	}
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperrors.Conflict("name_exists", "tag name already exists", nil)
		}
		return nil, apperrors.Internal("failed to save tag")
	}
	return tag, nil
}
