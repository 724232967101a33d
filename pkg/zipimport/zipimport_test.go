package zipimport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtractWritesFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	destDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(destDir, 0o755))

	writeTestArchive(t, archivePath, map[string]string{
		"a.txt":        "hello",
		"sub/b.txt":    "world",
		"sub/deep/c.txt": "!",
	})

	require.NoError(t, Extract(archivePath, destDir))

	a, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(a))

	b, err := os.ReadFile(filepath.Join(destDir, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))

	c, err := os.ReadFile(filepath.Join(destDir, "sub", "deep", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "!", string(c))
}

func TestExtractRejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	destDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(destDir, 0o755))

	writeTestArchive(t, archivePath, map[string]string{
		"../escape.txt": "gotcha",
	})

	err := Extract(archivePath, destDir)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
