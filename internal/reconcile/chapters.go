// Package reconcile derives the canonical view of a shelf record from
// ambiguous, schema-evolved stored fields, and decomposes it back into a
// storable row. Every function here is pure: no clock reads, no I/O, no
// storage access. The caller injects time and identifiers.
package reconcile

import "readhub/pkg/models"

// chapterFields is the raw stored chapter data of a serial: the oldest
// single-number field, the newer available/total pair, and the completion
// flag. Any of the counts may be unknown.
type chapterFields struct {
	Legacy    *int
	Available *int
	Total     *int
	Complete  bool
}

// chapterRule is one step of the read-side resolution pipeline: a predicate
// plus a transform. Rules run top to bottom, first match wins, so each rule
// can be tested on its own and new compatibility cases slot in without
// disturbing the existing ones.
type chapterRule struct {
	name    string
	applies func(f chapterFields) bool
	resolve func(f chapterFields) models.ChapterMetadata
}

var readRules = []chapterRule{
	{
		// Both modern fields present: trust them as written.
		name: "available+total",
		applies: func(f chapterFields) bool {
			return f.Available != nil && f.Total != nil
		},
		resolve: func(f chapterFields) models.ChapterMetadata {
			return models.ChapterMetadata{Available: f.Available, Total: f.Total, Complete: f.Complete}
		},
	},
	{
		// Only the legacy single count exists. A completed work is always
		// X/X; otherwise the legacy number is how far publication has got
		// and the planned total is unknown.
		name: "legacy-only",
		applies: func(f chapterFields) bool {
			return f.Available == nil && f.Total == nil && f.Legacy != nil
		},
		resolve: func(f chapterFields) models.ChapterMetadata {
			if f.Complete {
				return models.ChapterMetadata{Available: f.Legacy, Total: f.Legacy, Complete: true}
			}
			return models.ChapterMetadata{Available: f.Legacy, Complete: false}
		},
	},
	{
		// Total known but available missing. If the work is complete the
		// two must match. If the legacy count equals the total, an older
		// writer duplicated a current-only count into the total column;
		// treat it as available-only. This equality check is a
		// compatibility heuristic for observed data drift, not a rule of
		// the archive format, and must not be generalized.
		name: "total-only",
		applies: func(f chapterFields) bool {
			return f.Available == nil && f.Total != nil
		},
		resolve: func(f chapterFields) models.ChapterMetadata {
			if f.Complete {
				return models.ChapterMetadata{Available: f.Total, Total: f.Total, Complete: true}
			}
			if f.Legacy != nil && *f.Legacy == *f.Total {
				return models.ChapterMetadata{Available: f.Legacy, Complete: false}
			}
			return models.ChapterMetadata{Total: f.Total, Complete: false}
		},
	},
	{
		// Available known, total missing, flagged complete: force X/X.
		name: "available-complete",
		applies: func(f chapterFields) bool {
			return f.Available != nil && f.Total == nil && f.Complete
		},
		resolve: func(f chapterFields) models.ChapterMetadata {
			return models.ChapterMetadata{Available: f.Available, Total: f.Available, Complete: true}
		},
	},
}

// NormalizeChaptersOnRead resolves the stored chapter fields of a serial
// into the canonical (available, total, complete) triple. Rows that match
// no rule are accepted as-is, with available and total possibly both
// unknown; that is the explicit "?/?" state, not an error.
func NormalizeChaptersOnRead(legacy, available, total *int, complete *bool) models.ChapterMetadata {
	f := chapterFields{
		Legacy:    legacy,
		Available: available,
		Total:     total,
		Complete:  complete != nil && *complete,
	}
	for _, rule := range readRules {
		if rule.applies(f) {
			return rule.resolve(f)
		}
	}
	return models.ChapterMetadata{Available: f.Available, Total: f.Total, Complete: f.Complete}
}

// NormalizeChaptersOnWrite is the inverse: it decomposes canonical chapter
// metadata into the stored triple. The legacy column always holds the best
// known total-like number (total, then the previous legacy value, then
// available) so readers of the old schema keep working. A nil total is
// written as NULL, never as zero.
func NormalizeChaptersOnWrite(meta models.ChapterMetadata, legacyHint *int) (legacy, available, total *int) {
	available = meta.Available
	total = meta.Total

	if meta.Complete && available != nil && total == nil {
		total = available
	}

	switch {
	case total != nil:
		legacy = total
	case legacyHint != nil:
		legacy = legacyHint
	default:
		legacy = available
	}

	// Writing legacy equal to total while available is unknown would
	// recreate the exact drift signature the total-only read rule detects,
	// and the row would re-read as available-only. Fall back to the
	// previous legacy value, or null, so the row stays a fixed point.
	if !meta.Complete && available == nil && total != nil {
		if legacyHint != nil && *legacyHint != *total {
			legacy = legacyHint
		} else {
			legacy = nil
		}
	}
	return legacy, available, total
}
