package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsurePrivateFile_CreatesFileAndParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home", ".savethatagain", "client.db")

	require.NoError(t, EnsurePrivateFile(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, fi.IsDir())
	require.Zero(t, fi.Size())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
		di, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o700), di.Mode().Perm()&0o700)
	}
}

func TestEnsurePrivateFile_TightensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	require.NoError(t, EnsurePrivateFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "keep", string(data))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestEnsurePrivateFile_ParentIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsurePrivateFile(filepath.Join(blocker, "client.db"))
	require.Error(t, err)
}
