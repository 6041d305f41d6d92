package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readhub/pkg/models"
)

// shared test helpers for the package

func iptr(n int) *int { return &n }

func bptr(b bool) *bool { return &b }

func tptr(t time.Time) *time.Time { return &t }

func TestNormalizeChaptersOnRead(t *testing.T) {
	tests := []struct {
		name      string
		legacy    *int
		available *int
		total     *int
		complete  *bool
		want      models.ChapterMetadata
	}{
		{
			name:      "available and total trusted as-is",
			available: iptr(12),
			total:     iptr(30),
			want:      models.ChapterMetadata{Available: iptr(12), Total: iptr(30)},
		},
		{
			name:      "available and total with complete flag",
			available: iptr(30),
			total:     iptr(30),
			complete:  bptr(true),
			want:      models.ChapterMetadata{Available: iptr(30), Total: iptr(30), Complete: true},
		},
		{
			name:     "legacy only complete becomes X over X",
			legacy:   iptr(10),
			complete: bptr(true),
			want:     models.ChapterMetadata{Available: iptr(10), Total: iptr(10), Complete: true},
		},
		{
			name:   "legacy only ongoing has unknown total",
			legacy: iptr(7),
			want:   models.ChapterMetadata{Available: iptr(7)},
		},
		{
			name:     "total only complete forces available",
			total:    iptr(24),
			complete: bptr(true),
			want:     models.ChapterMetadata{Available: iptr(24), Total: iptr(24), Complete: true},
		},
		{
			name:   "legacy equal to total is the duplicated-current case",
			legacy: iptr(46),
			total:  iptr(46),
			want:   models.ChapterMetadata{Available: iptr(46)},
		},
		{
			name:  "total only ongoing shows question mark over total",
			total: iptr(50),
			want:  models.ChapterMetadata{Total: iptr(50)},
		},
		{
			name:      "available only complete forces total",
			available: iptr(5),
			complete:  bptr(true),
			want:      models.ChapterMetadata{Available: iptr(5), Total: iptr(5), Complete: true},
		},
		{
			name:      "available only ongoing passes through",
			available: iptr(5),
			want:      models.ChapterMetadata{Available: iptr(5)},
		},
		{
			name: "nothing known is the explicit unknown state",
			want: models.ChapterMetadata{},
		},
		{
			name:      "zero available is a valid placeholder chapter",
			available: iptr(0),
			total:     iptr(1),
			want:      models.ChapterMetadata{Available: iptr(0), Total: iptr(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeChaptersOnRead(tt.legacy, tt.available, tt.total, tt.complete)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeChaptersOnRead_ObservedLegacyRows(t *testing.T) {
	// legacy=10, complete => 10/10
	got := NormalizeChaptersOnRead(iptr(10), nil, nil, bptr(true))
	require.NotNil(t, got.Available)
	require.NotNil(t, got.Total)
	assert.Equal(t, 10, *got.Available)
	assert.Equal(t, 10, *got.Total)
	assert.True(t, got.Complete)

	// legacy=46, total=46, not complete => 46/unknown
	got = NormalizeChaptersOnRead(iptr(46), nil, iptr(46), bptr(false))
	require.NotNil(t, got.Available)
	assert.Equal(t, 46, *got.Available)
	assert.Nil(t, got.Total, "total must stay unknown, never coerced to a number")
	assert.False(t, got.Complete)
}

func TestNormalizeChaptersOnWrite(t *testing.T) {
	t.Run("complete with only available forces total", func(t *testing.T) {
		legacy, available, total := NormalizeChaptersOnWrite(models.ChapterMetadata{
			Available: iptr(8),
			Complete:  true,
		}, nil)
		require.NotNil(t, total)
		assert.Equal(t, 8, *total)
		assert.Equal(t, 8, *available)
		assert.Equal(t, 8, *legacy)
	})

	t.Run("legacy prefers total", func(t *testing.T) {
		legacy, _, _ := NormalizeChaptersOnWrite(models.ChapterMetadata{
			Available: iptr(3),
			Total:     iptr(20),
		}, iptr(15))
		require.NotNil(t, legacy)
		assert.Equal(t, 20, *legacy)
	})

	t.Run("legacy falls back to hint then available", func(t *testing.T) {
		legacy, _, total := NormalizeChaptersOnWrite(models.ChapterMetadata{
			Available: iptr(3),
		}, iptr(15))
		assert.Nil(t, total)
		require.NotNil(t, legacy)
		assert.Equal(t, 15, *legacy)

		legacy, _, _ = NormalizeChaptersOnWrite(models.ChapterMetadata{
			Available: iptr(3),
		}, nil)
		require.NotNil(t, legacy)
		assert.Equal(t, 3, *legacy)
	})

	t.Run("unknown available never fabricates the drift signature", func(t *testing.T) {
		// legacy==total with no available is exactly what the total-only
		// read rule interprets as duplicated data, so the writer must not
		// produce it
		legacy, available, total := NormalizeChaptersOnWrite(models.ChapterMetadata{
			Total: iptr(50),
		}, nil)
		assert.Nil(t, available)
		require.NotNil(t, total)
		assert.Nil(t, legacy)

		legacy, _, _ = NormalizeChaptersOnWrite(models.ChapterMetadata{
			Total: iptr(50),
		}, iptr(31))
		require.NotNil(t, legacy)
		assert.Equal(t, 31, *legacy)
	})

	t.Run("all unknown writes all null", func(t *testing.T) {
		legacy, available, total := NormalizeChaptersOnWrite(models.ChapterMetadata{}, nil)
		assert.Nil(t, legacy)
		assert.Nil(t, available)
		assert.Nil(t, total)
	})
}
