package traverser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// fakeVisitor is an in-memory tree: children keyed by parent id, walked the same way the
// real metadata/local-filesystem backed visitors are.
type fakeVisitor struct {
	children map[string]models.NodeList
	excluded map[string]struct{}

	visitedFiles   []string
	visitedFolders []string
}

func (v *fakeVisitor) GetTree(ctx context.Context, folder models.Node) (models.NodeList, error) {
	return v.children[folder.ID], nil
}

func (v *fakeVisitor) ExcludeNodes(nodes models.NodeList) map[string]struct{} {
	return v.excluded
}

func (v *fakeVisitor) ProcessFile(ctx context.Context, sourceFile, destinationParent models.Node) error {
	v.visitedFiles = append(v.visitedFiles, sourceFile.ID)
	return nil
}

func (v *fakeVisitor) ProcessFolder(ctx context.Context, sourceFolder, destinationParent models.Node) (models.Node, error) {
	v.visitedFolders = append(v.visitedFolders, sourceFolder.ID)
	return models.Node{ID: "dest-" + sourceFolder.ID}, nil
}

func TestTraversePreOrder(t *testing.T) {
	v := &fakeVisitor{
		children: map[string]models.NodeList{
			"root": {
				{ID: "folder-a", Type: models.ResourceTypeFolder},
				{ID: "file-a", Type: models.ResourceTypeFile},
			},
			"folder-a": {
				{ID: "file-b", Type: models.ResourceTypeFile},
			},
		},
		excluded: map[string]struct{}{},
	}

	err := New(v).Traverse(context.Background(), models.Node{ID: "root"}, models.Node{ID: "dest-root"})
	require.NoError(t, err)

	assert.Equal(t, []string{"folder-a"}, v.visitedFolders)
	assert.Equal(t, []string{"file-b", "file-a"}, v.visitedFiles)
}

func TestTraverseSkipsExcludedNodes(t *testing.T) {
	v := &fakeVisitor{
		children: map[string]models.NodeList{
			"root": {
				{ID: "file-a", Type: models.ResourceTypeFile},
				{ID: "file-b", Type: models.ResourceTypeFile},
			},
		},
		excluded: map[string]struct{}{"file-b": {}},
	}

	err := New(v).Traverse(context.Background(), models.Node{ID: "root"}, models.Node{})
	require.NoError(t, err)

	assert.Equal(t, []string{"file-a"}, v.visitedFiles)
}
