package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/pkg/database"
	"readhub/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := database.OpenForTest()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	seed(t, db)
	return NewRepo(db)
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ('u1', 'reader', 'reader@example.com', 'x'),
		       ('u2', 'other', 'other@example.com', 'x')
	`)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, row := range []struct{ id, user string }{{"r1", "u1"}, {"r2", "u2"}} {
		_, err := db.Exec(`
			INSERT INTO records (id, user_id, kind, title, status, created_at, updated_at)
			VALUES (?, ?, 'serial', 'Serial '||?, 'active', ?, ?)
		`, row.id, row.user, row.id, now, now)
		require.NoError(t, err)
	}
}

func entry(userID, recordID string, value, percent int, at time.Time) models.ProgressEntry {
	return models.ProgressEntry{
		UserID:   userID,
		RecordID: recordID,
		Axis:     models.AxisUnit,
		Value:    value,
		Percent:  percent,
		At:       at,
	}
}

func TestAddAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, entry("u1", "r1", 10, 25, base)))
	require.NoError(t, repo.Add(ctx, entry("u1", "r1", 20, 50, base.Add(time.Hour))))
	require.NoError(t, repo.Add(ctx, entry("u1", "r1", 30, 75, base.Add(2*time.Hour))))

	entries, total, err := repo.List(ctx, "u1", "r1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)

	// newest first
	assert.Equal(t, 30, entries[0].Value)
	assert.Equal(t, 75, entries[0].Percent)
	assert.Equal(t, 10, entries[2].Value)
	assert.Equal(t, models.AxisUnit, entries[0].Axis)
}

func TestAdd_StampsMissingTime(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := entry("u1", "r1", 5, 10, time.Time{})
	require.NoError(t, repo.Add(ctx, e))

	entries, _, err := repo.List(ctx, "u1", "r1", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].At.IsZero())
}

func TestList_ScopedToUserAndRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, entry("u1", "r1", 10, 25, at)))
	require.NoError(t, repo.Add(ctx, entry("u2", "r2", 99, 99, at)))

	entries, total, err := repo.List(ctx, "u1", "r1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)

	entries, total, err = repo.List(ctx, "u1", "r2", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, entries)
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Add(ctx, entry("u1", "r1", i, i*20, base.Add(time.Duration(i)*time.Minute))))
	}

	entries, total, err := repo.List(ctx, "u1", "r1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Value)
	assert.Equal(t, 1, entries[1].Value)
}
