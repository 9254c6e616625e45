package compress

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixtureTree creates a small directory tree with nested files and an
// empty directory.
func buildFixtureTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "db"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db", "dump.sql"), []byte("CREATE TABLE t (id INT);"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("key: value\n"), 0644))
	return dir
}

func assertTreeRestored(t *testing.T, dir string) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "db", "dump.sql"))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE t (id INT);", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))

	info, err := os.Stat(filepath.Join(dir, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"targz", "zip"} {
		t.Run(name, func(t *testing.T) {
			comp, err := New(name)
			require.NoError(t, err)

			src := buildFixtureTree(t)
			archiveDir := t.TempDir()

			archivePath, err := comp.Compress(context.Background(), src, archiveDir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(archiveDir, comp.Filename(filepath.Base(src))), archivePath)

			out := t.TempDir()
			require.NoError(t, comp.Decompress(context.Background(), archivePath, out))
			assertTreeRestored(t, out)
		})
	}
}

func TestRoundTrip_EmptySource(t *testing.T) {
	comp, err := New("targz")
	require.NoError(t, err)

	src := t.TempDir()
	archiveDir := t.TempDir()

	archivePath, err := comp.Compress(context.Background(), src, archiveDir)
	require.NoError(t, err)

	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	out := t.TempDir()
	require.NoError(t, comp.Decompress(context.Background(), archivePath, out))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompress_NoPartialArchiveOnCancel(t *testing.T) {
	comp, err := New("targz")
	require.NoError(t, err)

	src := buildFixtureTree(t)
	archiveDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = comp.Compress(ctx, src, archiveDir)
	require.Error(t, err)

	// The final archive path must not exist after a failed compression.
	_, err = os.Stat(filepath.Join(archiveDir, comp.Filename(filepath.Base(src))))
	assert.True(t, os.IsNotExist(err))
}

func TestFilename(t *testing.T) {
	targz, err := New("targz")
	require.NoError(t, err)
	zip, err := New("zip")
	require.NoError(t, err)

	assert.Equal(t, "20240317-093045-1a2b3c4d.tar.gz", targz.Filename("20240317-093045-1a2b3c4d"))
	assert.Equal(t, "20240317-093045-1a2b3c4d.zip", zip.Filename("20240317-093045-1a2b3c4d"))

	// Filename is pure: same input, same output, across instances.
	other, err := New("targz")
	require.NoError(t, err)
	assert.Equal(t, targz.Filename("x"), other.Filename("x"))
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("lz4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown compressor")
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "targz")
	assert.Contains(t, names, "zip")
}
