package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baiirun/lanes/internal/model"
)

// AddLog appends a history entry for a todo.
func (db *DB) AddLog(ctx context.Context, todoID, message string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO history (todo_id, message, created_at) VALUES (?, ?, ?)`,
		todoID, message, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add log: %w", err)
	}
	return nil
}

// GetLogs returns a todo's history in chronological order.
func (db *DB) GetLogs(ctx context.Context, todoID string) ([]model.Log, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, todo_id, message, created_at FROM history
		WHERE todo_id = ? ORDER BY created_at ASC, id ASC`, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.Log
	for rows.Next() {
		var l model.Log
		if err := rows.Scan(&l.ID, &l.TodoID, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// PruneLogs deletes history for todos that no longer exist.
func (db *DB) PruneLogs(ctx context.Context, keep []string) (int64, error) {
	query := `DELETE FROM history`
	args := make([]any, 0, len(keep))
	if len(keep) > 0 {
		query += ` WHERE todo_id NOT IN (?` + strings.Repeat(",?", len(keep)-1) + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune logs: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
