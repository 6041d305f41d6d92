package models

import "time"

// RecordRow mirrors the records table column-for-column. It is the only
// shape the storage layer reads or writes; the reconcile package maps it
// to and from ReadableRecord.
//
// The schema accreted fields over time: legacy_unit_count predates the
// available/total split, which predates the complete flag, which predates
// per-unit page and time tracking. All generations coexist in stored data,
// so every optional column stays nullable and nothing is backfilled at
// migration time.
type RecordRow struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`

	// JSON-encoded string array, matching how the store persists lists.
	TagsJSON  string  `json:"tags_json"`
	SourceURL *string `json:"source_url,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	AbandonedAt *time.Time `json:"abandoned_at,omitempty"`

	ProgressPercent int     `json:"progress_percent"`
	ProgressMode    *string `json:"progress_mode,omitempty"`

	PageCount   *int `json:"page_count,omitempty"`
	CurrentPage *int `json:"current_page,omitempty"`

	AvailableUnits  *int  `json:"available_units,omitempty"`
	TotalUnits      *int  `json:"total_units,omitempty"`
	LegacyUnitCount *int  `json:"legacy_unit_count,omitempty"`
	Complete        *bool `json:"complete,omitempty"`
	CurrentUnit     *int  `json:"current_unit,omitempty"`

	CurrentSeconds *int `json:"current_seconds,omitempty"`
	TotalSeconds   *int `json:"total_seconds,omitempty"`
}
