package sync

import "time"

// Event types pushed to connected clients.
const (
	EventRecordUpdate = "record.update"
	EventRecordStatus = "record.status"
	EventRecordDelete = "record.delete"
	EventNewUnits     = "record.new_units"
)

type RecordEvent struct {
	Type            string    `json:"type"`
	UserID          string    `json:"user_id"`
	RecordID        string    `json:"record_id"`
	Title           string    `json:"title,omitempty"`
	Status          string    `json:"status,omitempty"`
	ProgressPercent int       `json:"progress_percent,omitempty"`
	AvailableUnits  *int      `json:"available_units,omitempty"`
	At              time.Time `json:"at"`
}
