package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"readhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, entry models.ProgressEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO progress_history (user_id, record_id, axis, value, percent, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.RecordID, string(entry.Axis), entry.Value, entry.Percent, entry.At)
	if err != nil {
		return fmt.Errorf("insert progress entry: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, userID, recordID string, limit, offset int) ([]models.ProgressEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM progress_history
		WHERE user_id = ? AND record_id = ?
	`, userID, recordID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count progress history: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, record_id, axis, value, percent, at
		FROM progress_history
		WHERE user_id = ? AND record_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, recordID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list progress history: %w", err)
	}
	defer rows.Close()

	out := make([]models.ProgressEntry, 0, limit)
	for rows.Next() {
		var entry models.ProgressEntry
		var axis string

		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.RecordID, &axis, &entry.Value, &entry.Percent, &entry.At); err != nil {
			return nil, 0, fmt.Errorf("scan progress entry: %w", err)
		}
		entry.Axis = models.Axis(axis)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}
