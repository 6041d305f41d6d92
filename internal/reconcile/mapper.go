package reconcile

import (
	"encoding/json"

	"readhub/pkg/models"
)

// FromStorage assembles the canonical record from a stored row. Chapter
// fields go through the read-side normalizer; timestamps and percent pass
// straight through (percent clamped to [0,100]); absent optionals keep
// their neutral value: nil for unknown counts and dates, empty slice for
// tags.
func FromStorage(row models.RecordRow) models.ReadableRecord {
	rec := models.ReadableRecord{
		ID:              row.ID,
		UserID:          row.UserID,
		Kind:            models.Kind(row.Kind),
		Title:           row.Title,
		Author:          row.Author,
		Status:          models.Status(row.Status),
		Priority:        row.Priority,
		Tags:            decodeTags(row.TagsJSON),
		SourceURL:       row.SourceURL,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		StartedAt:       row.StartedAt,
		FinishedAt:      row.FinishedAt,
		AbandonedAt:     row.AbandonedAt,
		ProgressPercent: clampInt(row.ProgressPercent, 0, 100),
		CurrentSeconds:  row.CurrentSeconds,
		TotalSeconds:    row.TotalSeconds,
	}

	if row.ProgressMode != nil {
		rec.ProgressMode = models.ProgressMode(*row.ProgressMode)
	}

	switch rec.Kind {
	case models.KindBook:
		rec.PageCount = row.PageCount
		rec.CurrentPage = row.CurrentPage
	case models.KindSerial:
		meta := NormalizeChaptersOnRead(row.LegacyUnitCount, row.AvailableUnits, row.TotalUnits, row.Complete)
		rec.AvailableUnits = meta.Available
		rec.TotalUnits = meta.Total
		rec.LegacyUnitCount = row.LegacyUnitCount
		rec.Complete = row.Complete
		rec.CurrentUnit = row.CurrentUnit
	}

	return rec
}

// ToStorage decomposes a canonical record into a storable row. The chapter
// triple is rebuilt by the write-side normalizer, which also backfills the
// legacy column; the raw bytes of a round-tripped row may therefore differ
// from the original, but re-reading them yields an equal record.
func ToStorage(rec models.ReadableRecord) models.RecordRow {
	row := models.RecordRow{
		ID:              rec.ID,
		UserID:          rec.UserID,
		Kind:            string(rec.Kind),
		Title:           rec.Title,
		Author:          rec.Author,
		Status:          string(rec.Status),
		Priority:        rec.Priority,
		TagsJSON:        encodeTags(rec.Tags),
		SourceURL:       rec.SourceURL,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		StartedAt:       rec.StartedAt,
		FinishedAt:      rec.FinishedAt,
		AbandonedAt:     rec.AbandonedAt,
		ProgressPercent: clampInt(rec.ProgressPercent, 0, 100),
		CurrentSeconds:  rec.CurrentSeconds,
		TotalSeconds:    rec.TotalSeconds,
	}

	if rec.ProgressMode != "" {
		mode := string(rec.ProgressMode)
		row.ProgressMode = &mode
	}

	switch rec.Kind {
	case models.KindBook:
		row.PageCount = rec.PageCount
		row.CurrentPage = rec.CurrentPage
	case models.KindSerial:
		meta := models.ChapterMetadata{
			Available: rec.AvailableUnits,
			Total:     rec.TotalUnits,
			Complete:  rec.Complete != nil && *rec.Complete,
		}
		legacy, available, total := NormalizeChaptersOnWrite(meta, rec.LegacyUnitCount)
		row.LegacyUnitCount = legacy
		row.AvailableUnits = available
		row.TotalUnits = total
		row.Complete = rec.Complete
		row.CurrentUnit = rec.CurrentUnit
	}

	return row
}

func decodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}
