package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("preupload")
	require.NoError(t, err)

	want := filepath.Join(tmp, "preupload")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_AbsolutePathUsedAsIs(t *testing.T) {
	tmp := t.TempDir()

	want := filepath.Join(tmp, "staging")
	got, err := EnsureDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureDir("preupload")
	require.NoError(t, err)

	second, err := EnsureDir("preupload")
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("preupload", []byte("x"), 0o660))

	_, err := EnsureDir("preupload")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestCopyFile_CopiesBytes(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "a.txt")
	dst := filepath.Join(tmp, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o660))

	require.NoError(t, CopyFile(src, dst, false))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestCopyFile_RefusesExistingTargetWithoutOverwrite(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "a.txt")
	dst := filepath.Join(tmp, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o660))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o660))

	err := CopyFile(src, dst, false)
	require.ErrorIs(t, err, os.ErrExist)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, []byte("old"), got, "target must be untouched")
}

func TestCopyFile_OverwriteReplacesTarget(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "a.txt")
	dst := filepath.Join(tmp, "b.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o660))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o660))

	require.NoError(t, CopyFile(src, dst, true))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)
}

func TestCopyFile_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	err := CopyFile(filepath.Join(tmp, "nope.txt"), filepath.Join(tmp, "out.txt"), false)
	require.Error(t, err)
}
