package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MaintenanceRepository handles whole-database operations.
type MaintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// ResetAll deletes every session, project, tag and setting in a single
// transaction and rewinds the autoincrement counters.
func (r *MaintenanceRepository) ResetAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM session_tags`,
		`DELETE FROM sessions`,
		`DELETE FROM projects`,
		`DELETE FROM tags`,
		`DELETE FROM settings`,
		`DELETE FROM sqlite_sequence WHERE name IN ('projects', 'tags', 'sessions')`,
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("reset all data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
