package reconcile

import (
	"time"

	"readhub/pkg/models"
)

// Timestamps is the lifecycle result of creating a record.
type Timestamps struct {
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	AbandonedAt *time.Time
}

// OnCreate seeds the lifecycle timestamps of a brand-new record. Explicit
// dates win; otherwise the single slot implied by the initial status is
// stamped with now (queued implies nothing). CreatedAt is the earliest
// known instant, so a backdated import can never end up "started before
// it existed".
func OnCreate(status models.Status, explicit models.LifecycleDates, now time.Time) Timestamps {
	ts := Timestamps{
		StartedAt:   explicit.StartedAt,
		FinishedAt:  explicit.FinishedAt,
		AbandonedAt: explicit.AbandonedAt,
	}

	switch status {
	case models.StatusActive:
		if ts.StartedAt == nil {
			ts.StartedAt = &now
		}
	case models.StatusDone:
		if ts.FinishedAt == nil {
			ts.FinishedAt = &now
		}
	case models.StatusAbandoned:
		if ts.AbandonedAt == nil {
			ts.AbandonedAt = &now
		}
	}

	ts.CreatedAt = earliest(now, ts.StartedAt, ts.FinishedAt, ts.AbandonedAt)
	return ts
}

// OnStatusChange moves a record to a new status. The timestamp slot implied
// by the new status is written once and never overwritten, so flipping a
// record back and forth preserves the original history. Done forces the
// canonical percent to 100. Moving back to queued clears nothing.
func OnStatusChange(rec models.ReadableRecord, newStatus models.Status, now time.Time) models.ReadableRecord {
	rec.Status = newStatus
	rec.UpdatedAt = now

	switch newStatus {
	case models.StatusActive:
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	case models.StatusDone:
		if rec.FinishedAt == nil {
			rec.FinishedAt = &now
		}
		rec.ProgressPercent = 100
	case models.StatusAbandoned:
		if rec.AbandonedAt == nil {
			rec.AbandonedAt = &now
		}
	}
	return rec
}

// OnExplicitEdit applies caller-supplied lifecycle dates (a manual timeline
// edit). Supplied slots overwrite; nil slots are left alone. CreatedAt is
// then pulled back to the earliest known instant; it may move earlier but
// never later. Dates are assumed pre-validated by the caller-facing layer.
func OnExplicitEdit(rec models.ReadableRecord, dates models.LifecycleDates) models.ReadableRecord {
	if dates.StartedAt != nil {
		rec.StartedAt = dates.StartedAt
	}
	if dates.FinishedAt != nil {
		rec.FinishedAt = dates.FinishedAt
	}
	if dates.AbandonedAt != nil {
		rec.AbandonedAt = dates.AbandonedAt
	}

	rec.CreatedAt = earliest(rec.CreatedAt, rec.StartedAt, rec.FinishedAt, rec.AbandonedAt)
	return rec
}

func earliest(base time.Time, candidates ...*time.Time) time.Time {
	min := base
	for _, c := range candidates {
		if c != nil && c.Before(min) {
			min = *c
		}
	}
	return min
}
