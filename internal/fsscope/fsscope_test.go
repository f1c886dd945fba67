package fsscope

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	return New([]string{root, "relative/ignored"}), root
}

func TestNewDropsRelativeRoots(t *testing.T) {
	f, root := newTestFS(t)
	assert.Equal(t, []string{filepath.Clean(root)}, f.Roots())
}

func TestWriteThenRead(t *testing.T) {
	f, root := newTestFS(t)
	path := filepath.Join(root, "reports", "scan.txt")

	require.NoError(t, f.WriteTextFile(path, "critical: 2"))
	assert.True(t, f.Exists(path))

	got, err := f.ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "critical: 2", got)
}

func TestOutsideScopeRejected(t *testing.T) {
	f, root := newTestFS(t)
	outside := filepath.Join(filepath.Dir(root), "elsewhere.txt")

	tests := []struct {
		name string
		path string
	}{
		{"sibling", outside},
		{"traversal", filepath.Join(root, "..", "elsewhere.txt")},
		{"relative", "notes.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ReadTextFile(tt.path)
			assert.ErrorIs(t, err, ErrOutsideScope)
			assert.ErrorIs(t, f.WriteTextFile(tt.path, "x"), ErrOutsideScope)
			assert.False(t, f.Exists(tt.path))
		})
	}
}

func TestSymlinkEscapeRejected(t *testing.T) {
	f, root := newTestFS(t)
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "secret"), []byte("s"), 0644))

	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := f.ReadTextFile(filepath.Join(link, "secret"))
	assert.ErrorIs(t, err, ErrOutsideScope)
}

func TestReadDirSorted(t *testing.T) {
	f, root := newTestFS(t)
	require.NoError(t, f.WriteTextFile(filepath.Join(root, "b.txt"), "bb"))
	require.NoError(t, f.WriteTextFile(filepath.Join(root, "a.txt"), "a"))
	require.NoError(t, f.Mkdir(filepath.Join(root, "c")))

	entries, err := f.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a.txt", entries[0].Name)
	assert.True(t, entries[0].IsFile)
	assert.Equal(t, int64(1), entries[0].Size)
	assert.Equal(t, "b.txt", entries[1].Name)
	assert.Equal(t, "c", entries[2].Name)
	assert.True(t, entries[2].IsDir)
}

func TestRemove(t *testing.T) {
	f, root := newTestFS(t)
	path := filepath.Join(root, "old.log")
	require.NoError(t, f.WriteTextFile(path, "x"))

	require.NoError(t, f.Remove(path))
	assert.False(t, f.Exists(path))

	assert.ErrorIs(t, f.Remove(root), ErrOutsideScope)
}
