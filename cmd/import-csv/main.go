package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"readhub/internal/reconcile"
	"readhub/pkg/database"
	"readhub/pkg/models"
)

// Imports shelf records from a legacy tracker CSV export. Rows go through
// the same normalization as API writes, so legacy chapter columns resolve
// the same way no matter how they reach the store.
func main() {
	var (
		in     = flag.String("in", "data/records.csv", "input CSV path")
		userID = flag.String("user-id", "", "user to import the records for")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("user-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := importRecords(ctx, db, *in, *userID)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported %d records from %s", n, *in)
}

func importRecords(ctx context.Context, db *sql.DB, path, userID string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO records (
			id, user_id, kind, title, author, status, priority, tags, source_url,
			created_at, updated_at, started_at, finished_at, abandoned_at,
			progress_percent, progress_mode, page_count, current_page,
			available_units, total_units, legacy_unit_count, complete, current_unit,
			current_seconds, total_seconds
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			status = excluded.status,
			priority = excluded.priority,
			tags = excluded.tags,
			updated_at = excluded.updated_at,
			progress_percent = excluded.progress_percent,
			available_units = excluded.available_units,
			total_units = excluded.total_units,
			legacy_unit_count = excluded.legacy_unit_count,
			complete = excluded.complete,
			current_unit = excluded.current_unit
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) == 0 {
			continue
		}

		rec, err := rowToRecord(header, row, userID)
		if err != nil {
			return count, err
		}
		if rec == nil {
			continue
		}

		if err := insertRecord(ctx, stmt, *rec); err != nil {
			return count, fmt.Errorf("insert %s: %w", rec.ID, err)
		}
		count++
	}

	return count, nil
}

func rowToRecord(header map[string]int, row []string, userID string) (*models.RecordRow, error) {
	title := valueAt(header, row, "title")
	if title == "" {
		return nil, nil
	}

	kind := valueAt(header, row, "kind")
	if !models.ValidKind(models.Kind(kind)) {
		kind = string(models.KindBook)
	}
	status := valueAt(header, row, "status")
	if !models.ValidStatus(models.Status(status)) {
		status = string(models.StatusQueued)
	}

	id := valueAt(header, row, "id")
	if id == "" {
		id = uuid.NewString()
	}

	priority := 3
	if p, err := strconv.Atoi(valueAt(header, row, "priority")); err == nil && p >= 1 && p <= 5 {
		priority = p
	}
	percent := 0
	if p, err := strconv.Atoi(valueAt(header, row, "progress_percent")); err == nil {
		percent = p
	}

	tags := []string{}
	if raw := valueAt(header, row, "tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	tagsJSON, _ := json.Marshal(tags)

	created, err := parseTimePtr(valueAt(header, row, "created_at"))
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", id, err)
	}
	started, err := parseTimePtr(valueAt(header, row, "started_at"))
	if err != nil {
		return nil, fmt.Errorf("parse started_at for %s: %w", id, err)
	}
	finished, err := parseTimePtr(valueAt(header, row, "finished_at"))
	if err != nil {
		return nil, fmt.Errorf("parse finished_at for %s: %w", id, err)
	}
	abandoned, err := parseTimePtr(valueAt(header, row, "abandoned_at"))
	if err != nil {
		return nil, fmt.Errorf("parse abandoned_at for %s: %w", id, err)
	}

	now := time.Now().UTC()
	if created != nil {
		now = *created
	}
	ts := reconcile.OnCreate(models.Status(status), models.LifecycleDates{
		StartedAt:   started,
		FinishedAt:  finished,
		AbandonedAt: abandoned,
	}, now)

	rec := models.RecordRow{
		ID:              id,
		UserID:          userID,
		Kind:            kind,
		Title:           title,
		Author:          valueAt(header, row, "author"),
		Status:          status,
		Priority:        priority,
		TagsJSON:        string(tagsJSON),
		CreatedAt:       ts.CreatedAt,
		UpdatedAt:       now,
		StartedAt:       ts.StartedAt,
		FinishedAt:      ts.FinishedAt,
		AbandonedAt:     ts.AbandonedAt,
		ProgressPercent: percent,
		PageCount:       intPtrAt(header, row, "page_count"),
		CurrentPage:     intPtrAt(header, row, "current_page"),
		AvailableUnits:  intPtrAt(header, row, "available_units"),
		TotalUnits:      intPtrAt(header, row, "total_units"),
		LegacyUnitCount: intPtrAt(header, row, "legacy_unit_count"),
		CurrentUnit:     intPtrAt(header, row, "current_unit"),
	}
	if url := valueAt(header, row, "source_url"); url != "" {
		rec.SourceURL = &url
	}
	if raw := valueAt(header, row, "complete"); raw != "" {
		b := raw == "1" || strings.EqualFold(raw, "true")
		rec.Complete = &b
	}

	// resolve legacy chapter ambiguity now, the same way reads do
	canonical := reconcile.ToStorage(reconcile.FromStorage(rec))
	return &canonical, nil
}

func insertRecord(ctx context.Context, stmt *sql.Stmt, rec models.RecordRow) error {
	_, err := stmt.ExecContext(ctx,
		rec.ID, rec.UserID, rec.Kind, rec.Title, nullString(rec.Author), rec.Status, rec.Priority,
		rec.TagsJSON, strArg(rec.SourceURL),
		rec.CreatedAt, rec.UpdatedAt, timeArg(rec.StartedAt), timeArg(rec.FinishedAt), timeArg(rec.AbandonedAt),
		rec.ProgressPercent, strArg(rec.ProgressMode), intArg(rec.PageCount), intArg(rec.CurrentPage),
		intArg(rec.AvailableUnits), intArg(rec.TotalUnits), intArg(rec.LegacyUnitCount), boolArg(rec.Complete), intArg(rec.CurrentUnit),
		intArg(rec.CurrentSeconds), intArg(rec.TotalSeconds),
	)
	return err
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func intPtrAt(header map[string]int, row []string, key string) *int {
	raw := valueAt(header, row, key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func parseTimePtr(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

func strArg(p *string) any {
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
