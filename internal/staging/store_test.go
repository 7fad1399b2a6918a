package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md"}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "preupload"), testExtensions)
	require.NoError(t, err)
	return s
}

func TestNewStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "preupload")
	s, err := NewStore(dir, testExtensions)
	require.NoError(t, err)

	fi, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestStore_Supported(t *testing.T) {
	s, err := NewStore(t.TempDir(), []string{"pdf", ".TXT"})
	require.NoError(t, err)

	assert.True(t, s.Supported("a.pdf"), "extensions normalize with a leading dot")
	assert.True(t, s.Supported("A.TXT"))
	assert.True(t, s.Supported("a.txt"))
	assert.False(t, s.Supported("a.exe"))
	assert.False(t, s.Supported("noext"))
}

func TestStore_CopyAndContains(t *testing.T) {
	s := newTestStore(t)
	src := writeFile(t, t.TempDir(), "a.pdf", "first")

	assert.False(t, s.Contains("a.pdf"))

	staged, err := s.Copy(src, false)
	require.NoError(t, err)
	assert.Equal(t, s.TargetPath("a.pdf"), staged)
	assert.True(t, s.Contains("a.pdf"))

	// occupied slot refuses without overwrite
	_, err = s.Copy(src, false)
	require.ErrorIs(t, err, os.ErrExist)

	// and replaces with it
	src2 := writeFile(t, t.TempDir(), "a.pdf", "second")
	staged, err = s.Copy(src2, true)
	require.NoError(t, err)
	got, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestStore_ListSupported(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), "b.txt", "b")
	writeFile(t, s.Dir(), "a.pdf", "a")
	writeFile(t, s.Dir(), "notes.exe", "x")
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub"), 0o770))
	writeFile(t, filepath.Join(s.Dir(), "sub"), "deep.pdf", "d")

	files, err := s.ListSupported()
	require.NoError(t, err)
	require.Len(t, files, 2, "unsupported files and subdirectories are ignored")
	assert.Equal(t, s.TargetPath("a.pdf"), files[0])
	assert.Equal(t, s.TargetPath("b.txt"), files[1])
}

func TestStore_ClearFiles(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir(), "a.pdf", "a")
	writeFile(t, s.Dir(), "b.txt", "b")

	n, err := s.ClearFiles()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	files, err := s.ListSupported()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStore_ScanDir(t *testing.T) {
	s := newTestStore(t)

	root := t.TempDir()
	writeFile(t, root, "top.pdf", "t")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o770))
	writeFile(t, sub, "deep.txt", "d")
	writeFile(t, sub, "skip.bin", "s")

	files, err := s.ScanDir(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files, filepath.Join(root, "top.pdf"))
	assert.Contains(t, files, filepath.Join(sub, "deep.txt"))
}
