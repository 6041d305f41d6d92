package main

import (
	"context"
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
	"readhub/internal/records"
	"readhub/pkg/database"
	"readhub/pkg/models"
)

// ShelfEntry is the public, share-friendly shape of one record. Chapter
// counts are flattened to a display string so the shelf file needs no
// knowledge of the legacy columns.
type ShelfEntry struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Kind     string   `json:"kind"`
	Status   string   `json:"status"`
	Tags     []string `json:"tags"`
	Progress int      `json:"progress_percent"`
	Chapters string   `json:"chapters,omitempty"`
	Source   string   `json:"source_url,omitempty"`
}

func main() {
	var (
		outPath = flag.String("out", "data/shelf.json", "output JSON path")
		userID  = flag.String("user-id", "", "user whose shelf to export")
		limit   = flag.Int("limit", 500, "how many records to export")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("user-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := records.NewRepo(db)
	rows, _, err := repo.List(ctx, *userID, records.ListQuery{Limit: *limit})
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	out := make([]ShelfEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, shelfEntry(reconcile.FromStorage(row)))
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("exported %d records to %s", len(out), *outPath)
}

func shelfEntry(rec models.ReadableRecord) ShelfEntry {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	entry := ShelfEntry{
		Slug:     toSlug(rec.ID, rec.Title),
		Title:    rec.Title,
		Author:   rec.Author,
		Kind:     string(rec.Kind),
		Status:   string(rec.Status),
		Tags:     tags,
		Progress: rec.ProgressPercent,
		Chapters: chapterString(rec),
	}
	if rec.SourceURL != nil {
		entry.Source = *rec.SourceURL
	}
	return entry
}

// chapterString renders the resolved chapter view as "12/20", "12/?", or
// "" for books and serials with no chapter data at all.
func chapterString(rec models.ReadableRecord) string {
	if rec.Kind != models.KindSerial {
		return ""
	}
	if rec.AvailableUnits == nil && rec.TotalUnits == nil {
		return ""
	}
	avail := "?"
	if rec.AvailableUnits != nil {
		avail = strconv.Itoa(*rec.AvailableUnits)
	}
	total := "?"
	if rec.TotalUnits != nil {
		total = strconv.Itoa(*rec.TotalUnits)
	}
	return fmt.Sprintf("%s/%s", avail, total)
}

func toSlug(id, title string) string {
	// record ids are UUIDs, so the slug always comes from the title; the
	// id suffix keeps duplicate titles apart
	s := slugify(title)
	if len(id) >= 8 {
		s = s + "-" + id[:8]
	}
	return s
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else {
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "untitled"
	}
	return out
}
