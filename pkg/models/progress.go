package models

import "time"

// Axis names one of the three interchangeable progress views.
type Axis string

const (
	AxisPercent Axis = "percent"
	AxisUnit    Axis = "unit"
	AxisTime    Axis = "time"
)

// ProgressUpdate is one user edit on a single axis. Exactly one concrete
// type exists per axis; the sealed method keeps the set closed so the
// projector can switch exhaustively.
type ProgressUpdate interface {
	Axis() Axis
}

// PercentUpdate sets the canonical percent directly.
type PercentUpdate struct {
	Percent int `json:"percent"`
}

// UnitUpdate sets the current page (book) or current unit (serial).
type UnitUpdate struct {
	Value int `json:"value"`
}

// TimeUpdate sets elapsed and total listening seconds together.
type TimeUpdate struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

func (PercentUpdate) Axis() Axis { return AxisPercent }
func (UnitUpdate) Axis() Axis    { return AxisUnit }
func (TimeUpdate) Axis() Axis    { return AxisTime }

// Tracker is one axis of a progress snapshot. Current and Denominator are
// nil when unknown; Enabled says whether the axis is usable for this record.
type Tracker struct {
	Axis        Axis `json:"axis"`
	Enabled     bool `json:"enabled"`
	Current     *int `json:"current,omitempty"`
	Denominator *int `json:"denominator,omitempty"`
}

// ProgressSnapshot is the derived multi-axis view of a record. Percent is
// always present; the trackers list always includes the percent axis.
type ProgressSnapshot struct {
	Percent  int       `json:"percent"`
	Trackers []Tracker `json:"trackers"`
}

// ProgressEntry is one row of the append-only progress history log.
type ProgressEntry struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	RecordID string    `json:"record_id"`
	Axis     Axis      `json:"axis"`
	Value    int       `json:"value"`
	Percent  int       `json:"percent"`
	At       time.Time `json:"at"`
}

// Note is a free-form reading note on a record, with an optional 1-5 rating.
type Note struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	RecordID string    `json:"record_id"`
	Rating   *int      `json:"rating,omitempty"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}
