package visitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

func TestShareDatasetManagerGetTreeListsLocalEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "dataset-v1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dataset-v1", "a.csv"), []byte("data"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "dataset-v1", "sub"), 0o755))

	m := NewShareDatasetManager(nil, nil, root, "gr-proj", "minio.internal:9000", "proj", models.ZoneGreenroom, "operator")

	nodes, err := m.GetTree(context.Background(), models.Node{Name: "dataset-v1"})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	byName := map[string]models.Node{}
	for _, n := range nodes {
		byName[n.Name] = n
	}

	file, ok := byName["a.csv"]
	require.True(t, ok)
	assert.Equal(t, models.ResourceTypeFile, file.Type)
	assert.Equal(t, int64(4), file.Size)
	assert.Equal(t, "dataset-v1", file.ParentPath)

	folder, ok := byName["sub"]
	require.True(t, ok)
	assert.Equal(t, models.ResourceTypeFolder, folder.Type)
}

func TestShareDatasetManagerExcludeNodesNeverFilters(t *testing.T) {
	m := NewShareDatasetManager(nil, nil, t.TempDir(), "gr-proj", "minio.internal:9000", "proj", models.ZoneGreenroom, "operator")

	excluded := m.ExcludeNodes(nodesWithIDs("a", "b"))

	assert.Empty(t, excluded)
}

func TestShareDatasetManagerLocalPathJoinsRootParentAndName(t *testing.T) {
	m := NewShareDatasetManager(nil, nil, "/tmp/extract", "gr-proj", "minio.internal:9000", "proj", models.ZoneGreenroom, "operator")

	got := m.localPath(models.Node{ParentPath: "dataset-v1/sub", Name: "b.txt"})

	assert.Equal(t, filepath.Join("/tmp/extract", "dataset-v1/sub", "b.txt"), got)
}
