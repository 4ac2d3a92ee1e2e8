package filex

import (
	"errors"
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

func TestEnsureSubdDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubdDir("exports")
	require.NoError(t, err)

	want := filepath.Join(tmp, "exports")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubdDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubdDir("exports")
	require.NoError(t, err)

	second, err := EnsureSubdDir("exports")
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureSubdDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("exports", []byte("x"), 0o660))

	_, err := EnsureSubdDir("exports")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestWriteExport(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	path, err := WriteExport("exports", "a1.svg", []byte("<svg/>"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "exports", "a1.svg"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<svg/>", string(got))

	// overwrite keeps a single file and no temp leftovers
	_, err = WriteExport("exports", "a1.svg", []byte("<svg>2</svg>"))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(tmp, "exports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestReadLimited(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "trace.svg")
	require.NoError(t, os.WriteFile(p, []byte("0123456789"), 0o600))

	got, err := ReadLimited(p, 10)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(got))

	_, err = ReadLimited(p, 9)
	require.True(t, errors.Is(err, ErrTooLarge))

	_, err = ReadLimited(filepath.Join(dir, "missing"), 10)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
