package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/internal/records"
	"readhub/pkg/database"
	"readhub/pkg/models"
)

type fakeNotifier struct {
	calls []string
}

func (f *fakeNotifier) NotifyNewUnits(userID, recordID, title string, available, previous int) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s:%d->%d", userID, recordID, previous, available))
}

func archivePage(current, total string) string {
	return fmt.Sprintf(`<html><body>
<dl class="work meta group"><dd class="chapters">%s/%s</dd></dl>
<h2 class="title heading">The Long Serial</h2>
<a rel="author" href="/users/someone">someone</a>
</body></html>`, current, total)
}

func newRefreshFixture(t *testing.T, page string) (*Refresher, *records.Repo, *fakeNotifier) {
	t.Helper()

	db, err := database.OpenForTest()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u1', 'u1', 'u1@example.com', 'x')`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	repo := records.NewRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	available := 10
	sourceURL := srv.URL + "/works/9"
	require.NoError(t, repo.Insert(context.Background(), models.RecordRow{
		ID:              "r1",
		UserID:          "u1",
		Kind:            "serial",
		Title:           "The Long Serial",
		Status:          "active",
		Priority:        3,
		TagsJSON:        `[]`,
		SourceURL:       &sourceURL,
		CreatedAt:       now,
		UpdatedAt:       now,
		AvailableUnits:  &available,
		ProgressPercent: 50,
	}))

	notifier := &fakeNotifier{}
	ref := NewRefresher(repo, NewArchiveClient())
	ref.Notify = notifier
	ref.Logger = log.New(testWriter{t}, "", 0)
	return ref, repo, notifier
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestRefreshAll_NewUnitsNotifyOwner(t *testing.T) {
	ref, repo, notifier := newRefreshFixture(t, archivePage("12", "?"))

	updated, failed, err := ref.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 0, failed)

	row, err := repo.GetByID(context.Background(), "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 12, *row.AvailableUnits)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "u1:r1:10->12", notifier.calls[0])
}

func TestRefreshAll_NoChangeIsQuiet(t *testing.T) {
	ref, _, notifier := newRefreshFixture(t, archivePage("10", "?"))

	updated, failed, err := ref.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, failed)
	assert.Empty(t, notifier.calls)
}

func TestRefreshAll_CompletionWithoutGrowthUpdatesSilently(t *testing.T) {
	ref, repo, notifier := newRefreshFixture(t, archivePage("10", "10"))

	updated, _, err := ref.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Empty(t, notifier.calls)

	row, err := repo.GetByID(context.Background(), "u1", "r1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 10, *row.TotalUnits)
	require.NotNil(t, row.Complete)
	assert.True(t, *row.Complete)
}
