package notes

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/pkg/database"
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
	_, err = db.Exec(`
		INSERT INTO records (id, user_id, kind, title, status, created_at, updated_at)
		VALUES ('r1', 'u1', 'book', 'A Book', 'done', ?, ?)
	`, now, now)
	require.NoError(t, err)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rating := 4
	note, err := repo.Create(ctx, "u1", "r1", &rating, "solid middle act")
	require.NoError(t, err)
	require.NotNil(t, note)

	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, "r1", note.RecordID)
	require.NotNil(t, note.Rating)
	assert.Equal(t, 4, *note.Rating)
	assert.Equal(t, "solid middle act", note.Text)
	assert.False(t, note.At.IsZero())
}

func TestCreate_NoRating(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", "r1", nil, "just a thought")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Nil(t, note.Rating)
}

func TestGetByID_Missing(t *testing.T) {
	repo := newTestRepo(t)

	note, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestListByRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "u1", "r1", nil, "first")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", "r1", nil, "second")
	require.NoError(t, err)

	notes, err := repo.ListByRecord(ctx, "u1", "r1", 10, 0)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	// newest first on equal timestamps, so higher id wins
	assert.Equal(t, "second", notes[0].Text)

	notes, err = repo.ListByRecord(ctx, "u2", "r1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	note, err := repo.Create(ctx, "u1", "r1", nil, "mine")
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, note.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, note.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	gone, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
