package models

import "time"

// Kind discriminates the two shapes a shelf entry can take.
type Kind string

const (
	KindBook   Kind = "book"
	KindSerial Kind = "serial"
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusActive    Status = "active"
	StatusDone      Status = "done"
	StatusAbandoned Status = "abandoned"
)

// ProgressMode records which axis the user last edited. Empty means unset.
type ProgressMode string

const (
	ModeUnits   ProgressMode = "units"
	ModeTime    ProgressMode = "time"
	ModePercent ProgressMode = "percent"
)

// ReadableRecord is the canonical in-memory form of one shelf entry.
//
// ProgressPercent is always defined and always in [0,100]; the unit and
// time views are derived from it (or drive it) through the reconcile
// package. Optional fields are pointers: nil means "unknown", which is
// distinct from zero everywhere chapter counts are involved.
type ReadableRecord struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Status   Status `json:"status"`
	Priority int    `json:"priority"`

	Tags      []string `json:"tags"`
	SourceURL *string  `json:"source_url,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	AbandonedAt *time.Time `json:"abandoned_at,omitempty"`

	ProgressPercent int          `json:"progress_percent"`
	ProgressMode    ProgressMode `json:"progress_mode,omitempty"`

	// book fields
	PageCount   *int `json:"page_count,omitempty"`
	CurrentPage *int `json:"current_page,omitempty"`

	// serial fields. LegacyUnitCount is the oldest single-number chapter
	// field; it is never shown to users but is kept round-trippable so
	// older readers of the store stay functional.
	AvailableUnits  *int  `json:"available_units,omitempty"`
	TotalUnits      *int  `json:"total_units,omitempty"`
	LegacyUnitCount *int  `json:"legacy_unit_count,omitempty"`
	Complete        *bool `json:"complete,omitempty"`
	CurrentUnit     *int  `json:"current_unit,omitempty"`

	// time axis (audio editions); both must be known for the axis to apply
	CurrentSeconds *int `json:"current_seconds,omitempty"`
	TotalSeconds   *int `json:"total_seconds,omitempty"`
}

// ChapterMetadata is the resolved (available, total, complete) view of a
// serial's chapter fields. It is always re-derived, never stored directly.
// A nil Total is the canonical "archive shows ?" representation.
type ChapterMetadata struct {
	Available *int `json:"available"`
	Total     *int `json:"total"`
	Complete  bool `json:"complete"`
}

// LifecycleDates carries caller-supplied lifecycle timestamps, e.g. from a
// backdated manual edit or an import. Nil fields are "not supplied".
type LifecycleDates struct {
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	AbandonedAt *time.Time `json:"abandoned_at,omitempty"`
}

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusQueued, StatusActive, StatusDone, StatusAbandoned:
		return true
	}
	return false
}

// ValidKind reports whether k is a known record kind.
func ValidKind(k Kind) bool {
	return k == KindBook || k == KindSerial
}
