package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"readhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Status string
	Kind   string
	Tag    string
	Limit  int
	Offset int
}

const recordColumns = `
	id, user_id, kind, title, author, status, priority, tags, source_url,
	created_at, updated_at, started_at, finished_at, abandoned_at,
	progress_percent, progress_mode, page_count, current_page,
	available_units, total_units, legacy_unit_count, complete, current_unit,
	current_seconds, total_seconds`

func (r *Repo) GetByID(ctx context.Context, userID, id string) (*models.RecordRow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE user_id = ? AND id = ?
	`, userID, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

func (r *Repo) Insert(ctx context.Context, row models.RecordRow) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, recordArgs(row)...)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, row models.RecordRow) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE records SET
			kind = ?, title = ?, author = ?, status = ?, priority = ?,
			tags = ?, source_url = ?, created_at = ?, updated_at = ?,
			started_at = ?, finished_at = ?, abandoned_at = ?,
			progress_percent = ?, progress_mode = ?, page_count = ?,
			current_page = ?, available_units = ?, total_units = ?,
			legacy_unit_count = ?, complete = ?, current_unit = ?,
			current_seconds = ?, total_seconds = ?
		WHERE user_id = ? AND id = ?
	`, append(recordArgs(row)[2:], row.UserID, row.ID)...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update record: not found")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM records
		WHERE user_id = ? AND id = ?
	`, userID, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) List(ctx context.Context, userID string, q ListQuery) ([]models.RecordRow, int, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	where := []string{"user_id = ?"}
	args := []any{userID}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, q.Kind)
	}
	if q.Tag != "" {
		// tags is a JSON array; substring match on the quoted value is
		// how the store has always filtered it
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+q.Tag+`"%`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE `+cond+`
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]models.RecordRow, 0, q.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}

// ListSerialsWithSource returns every serial that has a source URL, across
// all users. The refresher walks this set.
func (r *Repo) ListSerialsWithSource(ctx context.Context) ([]models.RecordRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE kind = 'serial' AND source_url IS NOT NULL AND source_url != ''
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list serials with source: %w", err)
	}
	defer rows.Close()

	var out []models.RecordRow
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan serial row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (models.RecordRow, error) {
	var (
		rec       models.RecordRow
		author    sql.NullString
		tags      sql.NullString
		sourceURL sql.NullString
		started   sql.NullTime
		finished  sql.NullTime
		abandoned sql.NullTime
		mode      sql.NullString

		pageCount, currentPage       sql.NullInt64
		availableUnits, totalUnits   sql.NullInt64
		legacyUnitCount, currentUnit sql.NullInt64
		complete                     sql.NullBool
		currentSeconds, totalSeconds sql.NullInt64
	)

	if err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Kind, &rec.Title, &author, &rec.Status, &rec.Priority,
		&tags, &sourceURL,
		&rec.CreatedAt, &rec.UpdatedAt, &started, &finished, &abandoned,
		&rec.ProgressPercent, &mode, &pageCount, &currentPage,
		&availableUnits, &totalUnits, &legacyUnitCount, &complete, &currentUnit,
		&currentSeconds, &totalSeconds,
	); err != nil {
		return rec, err
	}

	rec.Author = author.String
	rec.TagsJSON = tags.String
	rec.SourceURL = nullStr(sourceURL)
	rec.StartedAt = nullTime(started)
	rec.FinishedAt = nullTime(finished)
	rec.AbandonedAt = nullTime(abandoned)
	rec.ProgressMode = nullStr(mode)
	rec.PageCount = nullInt(pageCount)
	rec.CurrentPage = nullInt(currentPage)
	rec.AvailableUnits = nullInt(availableUnits)
	rec.TotalUnits = nullInt(totalUnits)
	rec.LegacyUnitCount = nullInt(legacyUnitCount)
	rec.Complete = nullBool(complete)
	rec.CurrentUnit = nullInt(currentUnit)
	rec.CurrentSeconds = nullInt(currentSeconds)
	rec.TotalSeconds = nullInt(totalSeconds)
	return rec, nil
}

func recordArgs(row models.RecordRow) []any {
	return []any{
		row.ID, row.UserID, row.Kind, row.Title, emptyToNil(row.Author), row.Status, row.Priority,
		row.TagsJSON, ptrArg(row.SourceURL),
		row.CreatedAt, row.UpdatedAt, timeArg(row.StartedAt), timeArg(row.FinishedAt), timeArg(row.AbandonedAt),
		row.ProgressPercent, ptrArg(row.ProgressMode), intArg(row.PageCount), intArg(row.CurrentPage),
		intArg(row.AvailableUnits), intArg(row.TotalUnits), intArg(row.LegacyUnitCount), boolArg(row.Complete), intArg(row.CurrentUnit),
		intArg(row.CurrentSeconds), intArg(row.TotalSeconds),
	}
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func ptrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeArg(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func intArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolArg(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
