package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/pkg/models"
)

const searchBody = `{
	"numFound": 3,
	"docs": [
		{"key": "/works/OL1W", "title": "The Long Way Home", "author_name": ["Jane Doe"], "first_publish_year": 2019, "number_of_pages_median": 412},
		{"key": "/works/OL2W", "title": "The Long Way to a Small Angry Planet", "author_name": ["Becky Chambers"], "first_publish_year": 2014},
		{"key": "/works/OL3W", "title": "Cooking Basics", "author_name": ["Someone Else"]}
	]
}`

func newSearchFixture(t *testing.T, status int, body string) *BookSearchClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewBookSearchClient()
	c.BaseURL = srv.URL
	return c
}

func TestSearch_RanksByMatch(t *testing.T) {
	c := newSearchFixture(t, http.StatusOK, searchBody)

	hits, err := c.Search(context.Background(), "the long way home", "Jane Doe", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2) // the cookbook scores zero and drops out

	assert.Equal(t, "/works/OL1W", hits[0].Key)
	assert.Equal(t, 1.0, hits[0].Score)
	require.NotNil(t, hits[0].PageCount)
	assert.Equal(t, 412, *hits[0].PageCount)

	assert.Equal(t, "/works/OL2W", hits[1].Key)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Nil(t, hits[1].PageCount)
}

func TestSearch_TruncatesToLimit(t *testing.T) {
	c := newSearchFixture(t, http.StatusOK, searchBody)

	hits, err := c.Search(context.Background(), "the long way", "", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_UpstreamError(t *testing.T) {
	c := newSearchFixture(t, http.StatusServiceUnavailable, "down")

	_, err := c.Search(context.Background(), "anything", "", 5)
	assert.Error(t, err)
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      float64
	}{
		{"exact", "dune", "Dune", 1},
		{"case and punctuation ignored", "the long way home", "The Long Way Home!", 1},
		{"partial overlap", "long way home", "The Long Way to a Small Angry Planet", 2.0 / 3.0},
		{"no overlap", "dune", "Pride and Prejudice", 0},
		{"empty query", "", "Dune", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, MatchScore(tc.query, tc.candidate), 0.0001)
		})
	}
}

func TestApplyBookMatch(t *testing.T) {
	pages := 300
	cand := BookCandidate{
		Title:     "Fetched Title",
		Authors:   []string{"Fetched Author"},
		PageCount: &pages,
	}

	rec := models.ReadableRecord{Kind: models.KindBook, Title: "My Title"}
	got := ApplyBookMatch(rec, cand)

	assert.Equal(t, "My Title", got.Title)
	assert.Equal(t, "Fetched Author", got.Author)
	require.NotNil(t, got.PageCount)
	assert.Equal(t, 300, *got.PageCount)

	// existing page count wins
	existing := 250
	rec.PageCount = &existing
	got = ApplyBookMatch(rec, cand)
	assert.Equal(t, 250, *got.PageCount)
}
