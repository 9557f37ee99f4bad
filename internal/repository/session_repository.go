package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pomodoro/app/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert persists a session record and its tag links, assigning the row id
// back onto the record.
func (r *SessionRepository) Insert(ctx context.Context, record *model.SessionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (started_at, ended_at, phase, duration_sec, completed, interruptions, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.StartedAt,
		record.EndedAt,
		string(record.Phase),
		record.DurationSec,
		boolToInt(record.Completed),
		record.Interruptions,
		record.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("session insert id: %w", err)
	}

	for _, tagID := range record.TagIDs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO session_tags (session_id, tag_id) VALUES (?, ?)`,
			id,
			tagID,
		); err != nil {
			return fmt.Errorf("insert session tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	record.ID = id
	return nil
}

// List returns session records matching the filter, newest first.
func (r *SessionRepository) List(ctx context.Context, filter model.SessionFilter) ([]model.SessionRecord, error) {
	var conditions []string
	var args []interface{}

	query := `SELECT id, started_at, ended_at, phase, duration_sec, completed, interruptions, project_id
	          FROM sessions`

	if filter.From != nil {
		conditions = append(conditions, "ended_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "ended_at <= ?")
		args = append(args, *filter.To)
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.TagID != nil {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM session_tags st WHERE st.session_id = sessions.id AND st.tag_id = ?)")
		args = append(args, *filter.TagID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ended_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]model.SessionRecord, 0)
	for rows.Next() {
		var record model.SessionRecord
		var completed int64
		var projectID sql.NullInt64
		if err := rows.Scan(
			&record.ID,
			&record.StartedAt,
			&record.EndedAt,
			&record.Phase,
			&record.DurationSec,
			&completed,
			&record.Interruptions,
			&projectID,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		record.Completed = completed == 1
		if projectID.Valid {
			value := projectID.Int64
			record.ProjectID = &value
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range records {
		tagIDs, err := r.tagIDs(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].TagIDs = tagIDs
	}

	return records, nil
}

func (r *SessionRepository) tagIDs(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT tag_id FROM session_tags WHERE session_id = ? ORDER BY tag_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session tags: %w", err)
	}
	defer rows.Close()

	tagIDs := make([]int64, 0)
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan session tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session tags: %w", err)
	}
	return tagIDs, nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
