package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pomodoro/app/internal/model"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, color, archived FROM projects ORDER BY archived ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var project model.Project
		var color sql.NullString
		var archived int64
		if err := rows.Scan(&project.ID, &project.Name, &color, &archived); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if color.Valid {
			value := color.String
			project.Color = &value
		}
		project.Archived = archived == 1
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	var color sql.NullString
	var archived int64
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, color, archived FROM projects WHERE id = ?`,
		id,
	).Scan(&project.ID, &project.Name, &color, &archived)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if color.Valid {
		value := color.String
		project.Color = &value
	}
	project.Archived = archived == 1
	return &project, nil
}

// UpsertProject inserts a new project or updates an existing one by id.
func (r *ProjectRepository) UpsertProject(ctx context.Context, id *int64, name string, color *string, archived bool) (*model.Project, error) {
	if id != nil {
		_, err := r.db.ExecContext(
			ctx,
			`UPDATE projects SET name = ?, color = ?, archived = ? WHERE id = ?`,
			name,
			color,
			boolToInt(archived),
			*id,
		)
		if err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
		return r.GetProject(ctx, *id)
	}

	result, err := r.db.ExecContext(
		ctx,
		`INSERT INTO projects (name, color, archived, created_at) VALUES (?, ?, ?, ?)`,
		name,
		color,
		boolToInt(archived),
		time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	insertedID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("project insert id: %w", err)
	}
	return r.GetProject(ctx, insertedID)
}

func (r *ProjectRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

func (r *ProjectRepository) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE id = ?`, id).Scan(&tag.ID, &tag.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

func (r *ProjectRepository) UpsertTag(ctx context.Context, id *int64, name string) (*model.Tag, error) {
	if id != nil {
		_, err := r.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, *id)
		if err != nil {
			return nil, fmt.Errorf("update tag: %w", err)
		}
		return r.GetTag(ctx, *id)
	}

	result, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tags (name, created_at) VALUES (?, ?)`,
		name,
		time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	insertedID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("tag insert id: %w", err)
	}
	return r.GetTag(ctx, insertedID)
}
