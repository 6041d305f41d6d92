package fetch

import (
	"context"
	"log"
	"time"

	"readhub/internal/reconcile"
	"readhub/internal/records"
	"readhub/internal/sync"
	"readhub/pkg/models"
)

// UnitNotifier delivers a new-units notification to one user.
type UnitNotifier interface {
	NotifyNewUnits(userID, recordID, title string, available, previous int)
}

// Refresher re-fetches every serial that carries a source URL and folds
// the fresh archive metadata back into the store. Owners get notified
// when the available count grew.
type Refresher struct {
	Records *records.Repo
	Archive *ArchiveClient
	Hub     *sync.Hub
	Notify  UnitNotifier
	Logger  *log.Logger
}

func NewRefresher(repo *records.Repo, archive *ArchiveClient) *Refresher {
	return &Refresher{
		Records: repo,
		Archive: archive,
		Logger:  log.Default(),
	}
}

// RefreshAll walks the refreshable serials once. A failing fetch skips
// that record and keeps going; the error count comes back to the caller.
func (r *Refresher) RefreshAll(ctx context.Context) (updated, failed int, err error) {
	rows, err := r.Records.ListSerialsWithSource(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return updated, failed, ctx.Err()
		default:
		}

		changed, err := r.refreshOne(ctx, row)
		if err != nil {
			r.Logger.Printf("[refresher] %s (%s): %v", row.Title, row.ID, err)
			failed++
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, failed, nil
}

func (r *Refresher) refreshOne(ctx context.Context, row models.RecordRow) (bool, error) {
	rec := reconcile.FromStorage(row)
	if rec.SourceURL == nil {
		return false, nil
	}

	info, err := r.Archive.FetchWork(ctx, *rec.SourceURL)
	if err != nil {
		return false, err
	}

	prev := 0
	if rec.AvailableUnits != nil {
		prev = *rec.AvailableUnits
	}

	next := ApplyWorkInfo(rec, info)
	if !chaptersChanged(rec, next) {
		return false, nil
	}
	next.UpdatedAt = time.Now().UTC()

	if err := r.Records.Update(ctx, reconcile.ToStorage(next)); err != nil {
		return false, err
	}

	if next.AvailableUnits != nil && *next.AvailableUnits > prev {
		available := *next.AvailableUnits
		if r.Notify != nil {
			r.Notify.NotifyNewUnits(next.UserID, next.ID, next.Title, available, prev)
		}
		if r.Hub != nil {
			r.Hub.Broadcast(sync.RecordEvent{
				Type:           sync.EventNewUnits,
				UserID:         next.UserID,
				RecordID:       next.ID,
				Title:          next.Title,
				AvailableUnits: &available,
				At:             next.UpdatedAt,
			})
		}
	}
	return true, nil
}

func chaptersChanged(a, b models.ReadableRecord) bool {
	return !intPtrEq(a.AvailableUnits, b.AvailableUnits) ||
		!intPtrEq(a.TotalUnits, b.TotalUnits) ||
		!boolPtrEq(a.Complete, b.Complete)
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
