package notes

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

func (r *Repo) Create(ctx context.Context, userID, recordID string, rating *int, text string) (*models.Note, error) {
	var ratingArg any
	if rating != nil {
		ratingArg = *rating
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO notes (user_id, record_id, rating, text)
		VALUES (?, ?, ?, ?)
	`, userID, recordID, ratingArg, text)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, record_id, rating, text, at
		FROM notes
		WHERE id = ?
	`, id)

	note, err := scanNote(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &note, nil
}

func (r *Repo) ListByRecord(ctx context.Context, userID, recordID string, limit, offset int) ([]models.Note, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, record_id, rating, text, at
		FROM notes
		WHERE user_id = ? AND record_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, recordID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0, limit)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM notes
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (models.Note, error) {
	var note models.Note
	var rating sql.NullInt64
	var text sql.NullString
	var at time.Time

	if err := s.Scan(&note.ID, &note.UserID, &note.RecordID, &rating, &text, &at); err != nil {
		return note, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		note.Rating = &v
	}
	note.Text = text.String
	note.At = at
	return note, nil
}
