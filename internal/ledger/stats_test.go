package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryStats_Empty(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	stats, err := r.SummaryStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFiles)
	assert.Empty(t, stats.UserStats)
	assert.Empty(t, stats.FormatStats)
	assert.Empty(t, stats.DailyStats)
}

func TestSummaryStats_CountsAndBuckets(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// two files go through the full pipeline, one stays selected
	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := r.InsertSelection(ctx, newStagedFile(name, name))
		require.NoError(t, err)
	}
	_, err := r.MarkUploading(ctx)
	require.NoError(t, err)
	_, err = r.MarkUploaded(ctx)
	require.NoError(t, err)
	_, err = r.MarkProcessing(ctx)
	require.NoError(t, err)
	_, err = r.MarkProcessingCompleted(ctx)
	require.NoError(t, err)

	pending := newStagedFile("c.txt", "h3")
	pending.OwnerUser = "bob"
	_, err = r.InsertSelection(ctx, pending)
	require.NoError(t, err)

	stats, err := r.SummaryStats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalFiles)
	assert.EqualValues(t, 2, stats.StatusCounts["processed"])
	assert.EqualValues(t, 1, stats.StatusCounts["selected"])
	assert.Zero(t, stats.StatusCounts["duplicates"])

	require.Len(t, stats.UserStats, 2)
	for _, us := range stats.UserStats {
		switch us.User {
		case "alice":
			assert.EqualValues(t, 2, us.Total)
			assert.EqualValues(t, 2, us.Processed)
			assert.InDelta(t, 1.0, us.SuccessRate(), 1e-9)
		case "bob":
			assert.EqualValues(t, 1, us.Total)
			assert.Zero(t, us.Processed)
			assert.Zero(t, us.SuccessRate())
		default:
			t.Fatalf("unexpected user %q", us.User)
		}
	}

	exts := map[string]int64{}
	for _, fs := range stats.FormatStats {
		exts[fs.Extension] = fs.Count
	}
	assert.EqualValues(t, 2, exts[".pdf"])
	assert.EqualValues(t, 1, exts[".txt"])

	require.NotEmpty(t, stats.DailyStats)
	var daily int64
	for _, ds := range stats.DailyStats {
		daily += ds.Count
	}
	assert.EqualValues(t, 3, daily)
}

func TestSummaryStats_DuplicatesBucket(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	dup := newStagedFile("a.pdf", "h1")
	dup.IsDuplicate = true
	_, err := r.InsertSelection(ctx, dup)
	require.NoError(t, err)

	stats, err := r.SummaryStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.StatusCounts["duplicates"])
}

func TestUserStat_SuccessRate(t *testing.T) {
	assert.Zero(t, UserStat{}.SuccessRate())
	assert.InDelta(t, 0.5, UserStat{Total: 4, Processed: 2}.SuccessRate(), 1e-9)
}
