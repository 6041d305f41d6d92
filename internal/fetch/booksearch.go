package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"readhub/pkg/models"
)

const openLibraryBase = "https://openlibrary.org"

// BookCandidate is one scored search hit.
type BookCandidate struct {
	Key       string   `json:"key"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors,omitempty"`
	Year      int      `json:"year,omitempty"`
	PageCount *int     `json:"page_count,omitempty"`
	Score     float64  `json:"score"`
}

// BookSearchClient searches an Open Library style endpoint and ranks the
// hits by how well title and author match the query.
type BookSearchClient struct {
	BaseURL string
	Client  *http.Client
}

func NewBookSearchClient() *BookSearchClient {
	return &BookSearchClient{
		BaseURL: openLibraryBase,
		Client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		PagesMedian      int      `json:"number_of_pages_median"`
	} `json:"docs"`
}

// Search queries the endpoint and returns candidates sorted best-first.
// Hits scoring zero against both title and author are dropped.
func (s *BookSearchClient) Search(ctx context.Context, title, author string, limit int) ([]BookCandidate, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	u, err := url.Parse(s.BaseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("booksearch: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("limit", fmt.Sprintf("%d", limit*2))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("booksearch: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("booksearch: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("booksearch: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("booksearch: decode: %w", err)
	}

	out := make([]BookCandidate, 0, len(sr.Docs))
	for _, doc := range sr.Docs {
		if doc.Title == "" {
			continue
		}

		score := MatchScore(title, doc.Title)
		if author != "" && len(doc.AuthorName) > 0 {
			best := 0.0
			for _, name := range doc.AuthorName {
				if sc := MatchScore(author, name); sc > best {
					best = sc
				}
			}
			score = (score + best) / 2
		}
		if score == 0 {
			continue
		}

		cand := BookCandidate{
			Key:     doc.Key,
			Title:   doc.Title,
			Authors: doc.AuthorName,
			Year:    doc.FirstPublishYear,
			Score:   score,
		}
		if doc.PagesMedian > 0 {
			pages := doc.PagesMedian
			cand.PageCount = &pages
		}
		out = append(out, cand)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MatchScore is the normalized token overlap of two strings: the share of
// query tokens that appear in the candidate, in [0,1].
func MatchScore(query, candidate string) float64 {
	qt := tokenize(query)
	if len(qt) == 0 {
		return 0
	}
	ct := make(map[string]bool)
	for _, t := range tokenize(candidate) {
		ct[t] = true
	}

	hits := 0
	for _, t := range qt {
		if ct[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(qt))
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// ApplyBookMatch fills the gaps of a book record from a chosen candidate.
// Existing values win; only unknown fields are taken from the match.
func ApplyBookMatch(rec models.ReadableRecord, cand BookCandidate) models.ReadableRecord {
	if rec.Title == "" {
		rec.Title = cand.Title
	}
	if rec.Author == "" && len(cand.Authors) > 0 {
		rec.Author = cand.Authors[0]
	}
	if rec.PageCount == nil && cand.PageCount != nil {
		rec.PageCount = cand.PageCount
	}
	return rec
}
