// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, fs.Write(ctx, "outputs/split_summary.json", []byte("{}")))

	got, err := fs.Read(ctx, "outputs/split_summary.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestLocalFS_AbsolutePathsBypassBase(t *testing.T) {
	base := t.TempDir()
	other := t.TempDir()
	fs, err := NewLocalFS(base)
	require.NoError(t, err)

	ctx := context.Background()
	target := filepath.ToSlash(filepath.Join(other, "run1", "mt5_report.xml"))
	require.NoError(t, fs.Write(ctx, target, []byte("<r/>")))

	_, err = os.Stat(filepath.Join(other, "run1", "mt5_report.xml"))
	require.NoError(t, err)

	ok, err := fs.Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, ok)

	paths, err := fs.List(ctx, filepath.ToSlash(other))
	require.NoError(t, err)
	assert.Equal(t, []string{target}, paths)
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "nonexistent.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.Write(ctx, "dir/exists.txt", []byte("data")))
	exists, _ = fs.Exists(ctx, "dir/exists.txt")
	assert.True(t, exists)

	exists, _ = fs.Exists(ctx, "dir")
	assert.False(t, exists, "directories are not files")
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, "runs/b/run_metadata.json", []byte("b")))
	require.NoError(t, fs.Write(ctx, "runs/a/run_metadata.json", []byte("a")))
	require.NoError(t, fs.Write(ctx, "other/c.txt", []byte("c")))

	paths, err := fs.List(ctx, "runs")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a/run_metadata.json", "runs/b/run_metadata.json"}, paths)

	paths, err = fs.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestNew(t *testing.T) {
	s, err := New(Config{Type: TypeLocalFS, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFS{}, s)

	_, err = New(Config{Type: "ftp"})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = New(Config{Type: TypeS3})
	assert.Error(t, err, "bucket is required")
}
