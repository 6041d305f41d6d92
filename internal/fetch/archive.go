package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"readhub/internal/reconcile"
	"readhub/pkg/models"
)

// WorkInfo is the metadata extracted from one archive work page.
type WorkInfo struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Rating        string   `json:"rating"`
	Fandoms       []string `json:"fandoms,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
	Characters    []string `json:"characters,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	WordCount     int      `json:"word_count"`

	// parsed from the "12/?" style chapter string
	AvailableUnits *int `json:"available_units,omitempty"`
	TotalUnits     *int `json:"total_units,omitempty"`
	Complete       bool `json:"complete"`
}

// ArchiveClient scrapes work pages from a fan-fiction archive. The pages
// are stable enough that targeted regexps beat a full DOM parse.
type ArchiveClient struct {
	Client *http.Client
}

func NewArchiveClient() *ArchiveClient {
	return &ArchiveClient{
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

var (
	reTitle    = regexp.MustCompile(`(?s)<h2 class="title[^"]*">\s*(.*?)\s*</h2>`)
	reAuthor   = regexp.MustCompile(`<a rel="author"[^>]*>(.*?)</a>`)
	reRating   = regexp.MustCompile(`(?s)<dd class="rating tags">.*?<a class="tag"[^>]*>(.*?)</a>`)
	reWords    = regexp.MustCompile(`<dd class="words">\s*([0-9,]+)\s*</dd>`)
	reChapters = regexp.MustCompile(`<dd class="chapters">\s*([0-9,]+)\s*/\s*([0-9,]+|\?)\s*</dd>`)
	reSummary  = regexp.MustCompile(`(?s)<div class="summary module"[^>]*>.*?<blockquote class="userstuff">(.*?)</blockquote>`)
	reTagLink  = regexp.MustCompile(`<a class="tag"[^>]*>(.*?)</a>`)
	reHTMLTag  = regexp.MustCompile(`<[^>]+>`)

	tagBlocks = map[string]*regexp.Regexp{
		"fandom":       regexp.MustCompile(`(?s)<dd class="fandom tags">(.*?)</dd>`),
		"relationship": regexp.MustCompile(`(?s)<dd class="relationship tags">(.*?)</dd>`),
		"character":    regexp.MustCompile(`(?s)<dd class="character tags">(.*?)</dd>`),
		"freeform":     regexp.MustCompile(`(?s)<dd class="freeform tags">(.*?)</dd>`),
		"warning":      regexp.MustCompile(`(?s)<dd class="warning tags">(.*?)</dd>`),
	}
)

// FetchWork downloads and parses the work page at workURL.
func (a *ArchiveClient) FetchWork(ctx context.Context, workURL string) (*WorkInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, workURL, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: build request: %w", err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive: status %d for %s", resp.StatusCode, workURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("archive: read body: %w", err)
	}

	return ParseWorkPage(string(body)), nil
}

// ParseWorkPage extracts work metadata from raw page HTML. Fields that
// cannot be found are left zero; the page being partial is not an error.
func ParseWorkPage(page string) *WorkInfo {
	info := &WorkInfo{}

	if m := reTitle.FindStringSubmatch(page); m != nil {
		info.Title = cleanText(m[1])
	}
	if m := reAuthor.FindStringSubmatch(page); m != nil {
		info.Author = cleanText(m[1])
	}
	if m := reRating.FindStringSubmatch(page); m != nil {
		info.Rating = cleanText(m[1])
	}
	if m := reWords.FindStringSubmatch(page); m != nil {
		info.WordCount = parseCount(m[1])
	}
	if m := reSummary.FindStringSubmatch(page); m != nil {
		info.Summary = cleanText(m[1])
	}

	info.Fandoms = extractTags(page, "fandom")
	info.Relationships = extractTags(page, "relationship")
	info.Characters = extractTags(page, "character")
	info.Tags = extractTags(page, "freeform")
	info.Warnings = extractTags(page, "warning")

	if m := reChapters.FindStringSubmatch(page); m != nil {
		available, total := ParseChapterString(m[1] + "/" + m[2])
		info.AvailableUnits = available
		info.TotalUnits = total
		info.Complete = available != nil && total != nil && *available == *total
	}

	return info
}

// ParseChapterString parses the archive's "<current>/<total>" chapter
// counter, where total may be "?" for open-ended works. Unknown parts
// come back nil.
func ParseChapterString(s string) (available, total *int) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return nil, nil
	}

	if n := parseCount(parts[0]); n > 0 || strings.TrimSpace(parts[0]) == "0" {
		available = &n
	}
	right := strings.TrimSpace(parts[1])
	if right != "?" && right != "" {
		if n := parseCount(right); n > 0 {
			total = &n
		}
	}
	return available, total
}

func extractTags(page, block string) []string {
	re, ok := tagBlocks[block]
	if !ok {
		return nil
	}
	m := re.FindStringSubmatch(page)
	if m == nil {
		return nil
	}

	var out []string
	for _, link := range reTagLink.FindAllStringSubmatch(m[1], -1) {
		if tag := cleanText(link[1]); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func cleanText(s string) string {
	s = reHTMLTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ApplyWorkInfo folds freshly fetched archive metadata into a record. The
// chapter counter goes through the same normalization as stored rows, so
// an archive "?" total and a stored unknown total behave identically.
func ApplyWorkInfo(rec models.ReadableRecord, info *WorkInfo) models.ReadableRecord {
	if rec.Title == "" && info.Title != "" {
		rec.Title = info.Title
	}
	if rec.Author == "" && info.Author != "" {
		rec.Author = info.Author
	}

	complete := info.Complete
	meta := reconcile.NormalizeChaptersOnRead(nil, info.AvailableUnits, info.TotalUnits, &complete)
	rec.AvailableUnits = meta.Available
	rec.TotalUnits = meta.Total
	rec.Complete = &meta.Complete

	for _, tag := range info.Fandoms {
		rec.Tags = appendIfMissing(rec.Tags, tag)
	}
	for _, tag := range info.Tags {
		rec.Tags = appendIfMissing(rec.Tags, tag)
	}

	return rec
}

func appendIfMissing(slice []string, v string) []string {
	for _, x := range slice {
		if x == v {
			return slice
		}
	}
	return append(slice, v)
}
