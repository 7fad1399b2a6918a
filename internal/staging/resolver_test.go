package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/logging"
	_ "modernc.org/sqlite"
)

func setupResolver(t *testing.T) (*Resolver, *Store, ledger.Repository) {
	t.Helper()
	db, err := ledger.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := newTestStore(t)
	repo := ledger.NewSQLiteRepository(db)
	return NewResolver(store, repo, logging.Discard()), store, repo
}

func TestResolve_StagesSupportedFiles(t *testing.T) {
	r, store, repo := setupResolver(t)
	ctx := context.Background()

	src := t.TempDir()
	a := writeFile(t, src, "a.pdf", "content-a")
	b := writeFile(t, src, "b.exe", "content-b")

	res, err := r.Resolve(ctx, []string{a, b}, "alice", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{store.TargetPath("a.pdf")}, res.Accepted)
	assert.Equal(t, []string{b}, res.Skipped)
	assert.False(t, res.Cancelled)

	rows, err := repo.QueryFiltered(ctx, ledger.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.pdf", rows[0].Filename)
	assert.Equal(t, "alice", rows[0].OwnerUser)
	assert.Equal(t, a, rows[0].OriginalPath)
	assert.Equal(t, store.TargetPath("a.pdf"), rows[0].LocalPath)
	assert.False(t, rows[0].IsDuplicate)
}

func TestResolve_UnreadableCandidateSkipsBatchContinues(t *testing.T) {
	r, _, repo := setupResolver(t)
	ctx := context.Background()

	src := t.TempDir()
	missing := filepath.Join(src, "gone.pdf")
	ok := writeFile(t, src, "ok.pdf", "fine")

	res, err := r.Resolve(ctx, []string{missing, ok}, "alice", nil)
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, []string{missing}, res.Skipped)

	rows, err := repo.QueryFiltered(ctx, ledger.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ok.pdf", rows[0].Filename)
}

func TestResolve_CollisionSkip(t *testing.T) {
	r, store, repo := setupResolver(t)
	ctx := context.Background()

	first := writeFile(t, t.TempDir(), "a.pdf", "v1")
	_, err := r.Resolve(ctx, []string{first}, "alice", nil)
	require.NoError(t, err)

	second := writeFile(t, t.TempDir(), "a.pdf", "v2")
	res, err := r.Resolve(ctx, []string{second}, "alice",
		DeciderFunc(func(string) Decision { return DecisionSkip }))
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Equal(t, []string{second}, res.Skipped)

	// the staged copy keeps the first content
	got, err := store.ListSupported()
	require.NoError(t, err)
	require.Len(t, got, 1)

	// the prior row is stamped but not counted as an overwrite
	info, err := repo.LatestByName(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Zero(t, info.OverwriteCount)
	assert.NotNil(t, info.LastDuplicateTime)
}

func TestResolve_CollisionOverwrite(t *testing.T) {
	r, store, repo := setupResolver(t)
	ctx := context.Background()

	first := writeFile(t, t.TempDir(), "a.pdf", "v1")
	_, err := r.Resolve(ctx, []string{first}, "alice", nil)
	require.NoError(t, err)

	second := writeFile(t, t.TempDir(), "a.pdf", "v2")
	res, err := r.Resolve(ctx, []string{second}, "alice",
		DeciderFunc(func(string) Decision { return DecisionOverwrite }))
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	rows, err := repo.QueryFiltered(ctx, ledger.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 2, "overwrite still appends a new row")

	// newest row is the duplicate; the earlier row carries the bump
	assert.True(t, rows[0].IsDuplicate)
	assert.EqualValues(t, 1, rows[1].OverwriteCount)
	assert.NotNil(t, rows[1].LastDuplicateTime)
	assert.Zero(t, rows[0].OverwriteCount)

	staged, err := os.ReadFile(store.TargetPath("a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(staged))
}

func TestResolve_CollisionCancelStopsBatch(t *testing.T) {
	r, _, repo := setupResolver(t)
	ctx := context.Background()

	first := writeFile(t, t.TempDir(), "a.pdf", "v1")
	_, err := r.Resolve(ctx, []string{first}, "alice", nil)
	require.NoError(t, err)

	src := t.TempDir()
	dup := writeFile(t, src, "a.pdf", "v2")
	later := writeFile(t, src, "later.pdf", "v3")

	res, err := r.Resolve(ctx, []string{dup, later}, "alice",
		DeciderFunc(func(string) Decision { return DecisionCancel }))
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Accepted)

	rows, err := repo.QueryFiltered(ctx, ledger.Filters{})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "files after the cancel are never touched")
}

func TestResolve_HashDuplicateFlagsButNeverBlocks(t *testing.T) {
	r, _, repo := setupResolver(t)
	ctx := context.Background()

	first := writeFile(t, t.TempDir(), "a.pdf", "same bytes")
	_, err := r.Resolve(ctx, []string{first}, "alice", nil)
	require.NoError(t, err)

	// different name, identical content: no collision prompt, flagged row
	twin := writeFile(t, t.TempDir(), "b.pdf", "same bytes")
	res, err := r.Resolve(ctx, []string{twin}, "alice",
		DeciderFunc(func(string) Decision {
			t.Fatal("no name collision, decider must not be asked")
			return DecisionSkip
		}))
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)

	rows, err := repo.QueryFiltered(ctx, ledger.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b.pdf", rows[0].Filename)
	assert.True(t, rows[0].IsDuplicate)
	assert.False(t, rows[1].IsDuplicate)
}

func TestResolve_NilDeciderDefaultsToSkip(t *testing.T) {
	r, _, _ := setupResolver(t)
	ctx := context.Background()

	first := writeFile(t, t.TempDir(), "a.pdf", "v1")
	_, err := r.Resolve(ctx, []string{first}, "alice", nil)
	require.NoError(t, err)

	second := writeFile(t, t.TempDir(), "a.pdf", "v2")
	res, err := r.Resolve(ctx, []string{second}, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Len(t, res.Skipped, 1)
}
