package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"readhub/internal/reconcile"
	"readhub/pkg/database"
	"readhub/pkg/models"
)

// Dumps a user's shelf straight from the store to CSV. Rows pass through
// the read-side normalization so the export shows resolved chapter counts,
// not the raw legacy columns.
func main() {
	var (
		out    = flag.String("out", "data/records.csv", "output CSV path")
		userID = flag.String("user-id", "", "user whose records to export")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("user-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	n, err := exportRecords(ctx, db, *out, *userID)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("exported %d records to %s", n, *out)
}

var exportHeader = []string{
	"id", "kind", "title", "author", "status", "priority", "tags", "source_url",
	"created_at", "updated_at", "started_at", "finished_at", "abandoned_at",
	"progress_percent", "page_count", "current_page",
	"available_units", "total_units", "legacy_unit_count", "complete", "current_unit",
}

func exportRecords(ctx context.Context, db *sql.DB, path, userID string) (int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, kind, title, author, status, priority, tags, source_url,
		       created_at, updated_at, started_at, finished_at, abandoned_at,
		       progress_percent, page_count, current_page,
		       available_units, total_units, legacy_unit_count, complete, current_unit
		FROM records
		WHERE user_id = ?
		ORDER BY title
	`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		row, err := scanExportRow(rows, userID)
		if err != nil {
			return count, err
		}
		if err := w.Write(exportLine(row)); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	w.Flush()
	return count, w.Error()
}

func scanExportRow(rows *sql.Rows, userID string) (models.RecordRow, error) {
	var (
		rec       models.RecordRow
		author    sql.NullString
		sourceURL sql.NullString
		started   sql.NullTime
		finished  sql.NullTime
		abandoned sql.NullTime
		pages     sql.NullInt64
		curPage   sql.NullInt64
		available sql.NullInt64
		total     sql.NullInt64
		legacy    sql.NullInt64
		complete  sql.NullBool
		curUnit   sql.NullInt64
	)

	err := rows.Scan(
		&rec.ID, &rec.Kind, &rec.Title, &author, &rec.Status, &rec.Priority,
		&rec.TagsJSON, &sourceURL,
		&rec.CreatedAt, &rec.UpdatedAt, &started, &finished, &abandoned,
		&rec.ProgressPercent, &pages, &curPage,
		&available, &total, &legacy, &complete, &curUnit,
	)
	if err != nil {
		return rec, fmt.Errorf("scan record: %w", err)
	}

	rec.UserID = userID
	if author.Valid {
		rec.Author = author.String
	}
	if sourceURL.Valid {
		rec.SourceURL = &sourceURL.String
	}
	if started.Valid {
		rec.StartedAt = &started.Time
	}
	if finished.Valid {
		rec.FinishedAt = &finished.Time
	}
	if abandoned.Valid {
		rec.AbandonedAt = &abandoned.Time
	}
	rec.PageCount = int64Ptr(pages)
	rec.CurrentPage = int64Ptr(curPage)
	rec.AvailableUnits = int64Ptr(available)
	rec.TotalUnits = int64Ptr(total)
	rec.LegacyUnitCount = int64Ptr(legacy)
	if complete.Valid {
		rec.Complete = &complete.Bool
	}
	rec.CurrentUnit = int64Ptr(curUnit)
	return rec, nil
}

func exportLine(row models.RecordRow) []string {
	rec := reconcile.FromStorage(row)

	tags := ""
	var list []string
	if json.Unmarshal([]byte(row.TagsJSON), &list) == nil {
		tags = strings.Join(list, ",")
	}

	return []string{
		row.ID, row.Kind, row.Title, row.Author, row.Status, strconv.Itoa(row.Priority),
		tags, strOrEmpty(row.SourceURL),
		row.CreatedAt.Format(time.RFC3339), row.UpdatedAt.Format(time.RFC3339),
		timeOrEmpty(row.StartedAt), timeOrEmpty(row.FinishedAt), timeOrEmpty(row.AbandonedAt),
		strconv.Itoa(row.ProgressPercent), intOrEmpty(row.PageCount), intOrEmpty(row.CurrentPage),
		intOrEmpty(rec.AvailableUnits), intOrEmpty(rec.TotalUnits), intOrEmpty(row.LegacyUnitCount),
		boolOrEmpty(rec.Complete), intOrEmpty(row.CurrentUnit),
	}
}

func int64Ptr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func timeOrEmpty(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format(time.RFC3339)
}

func intOrEmpty(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func boolOrEmpty(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}
