package visitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

func nodesWithIDs(ids ...string) models.NodeList {
	list := make(models.NodeList, 0, len(ids))
	for _, id := range ids {
		list = append(list, models.Node{ID: id})
	}
	return list
}

func TestCopyPreparationManagerExcludeNodesApprovalFilter(t *testing.T) {
	m := NewCopyPreparationManager(nil, nil, []string{"a", "c"}, "proj", "Greenroom", "Core", "gr-proj", "core-proj", nil)

	excluded := m.ExcludeNodes(nodesWithIDs("a", "b", "c"))

	assert.Contains(t, excluded, "b")
	assert.NotContains(t, excluded, "a")
	assert.NotContains(t, excluded, "c")
}

func TestCopyPreparationManagerExcludeNodesIncludeIDsFullSubset(t *testing.T) {
	include := map[string]struct{}{"a": {}}
	m := NewCopyPreparationManager(nil, nil, nil, "proj", "Greenroom", "Core", "gr-proj", "core-proj", include)

	excluded := m.ExcludeNodes(nodesWithIDs("a", "b", "c"))

	assert.Contains(t, excluded, "b")
	assert.Contains(t, excluded, "c")
	assert.NotContains(t, excluded, "a")
}

// TestCopyPreparationManagerExcludeNodesDegradesToEmpty reproduces the source's behavior:
// when includeIDs is not a complete subset of the current level's children, the filter is
// dropped entirely rather than partially applied (see DESIGN.md, "preserved behaviors").
func TestCopyPreparationManagerExcludeNodesDegradesToEmpty(t *testing.T) {
	include := map[string]struct{}{"a": {}, "missing-from-this-level": {}}
	m := NewCopyPreparationManager(nil, nil, nil, "proj", "Greenroom", "Core", "gr-proj", "core-proj", include)

	excluded := m.ExcludeNodes(nodesWithIDs("a", "b", "c"))

	assert.Empty(t, excluded)
}

func TestCopyPreparationManagerExcludeNodesNilIncludeExcludesNothing(t *testing.T) {
	m := NewCopyPreparationManager(nil, nil, nil, "proj", "Greenroom", "Core", "gr-proj", "core-proj", nil)

	excluded := m.ExcludeNodes(nodesWithIDs("a", "b"))

	assert.Empty(t, excluded)
}

func TestCopyPreparationManagerIsNodeApproved(t *testing.T) {
	m := NewCopyPreparationManager(nil, nil, []string{"a"}, "proj", "Greenroom", "Core", "gr-proj", "core-proj", nil)
	assert.True(t, m.isNodeApproved(models.Node{ID: "a"}))
	assert.False(t, m.isNodeApproved(models.Node{ID: "b"}))

	unrestricted := NewCopyPreparationManager(nil, nil, nil, "proj", "Greenroom", "Core", "gr-proj", "core-proj", nil)
	assert.True(t, unrestricted.isNodeApproved(models.Node{ID: "anything"}))
}

func TestCopyPreparationManagerProcessFileSkipsUnapproved(t *testing.T) {
	m := NewCopyPreparationManager(nil, nil, []string{"a"}, "proj", "Greenroom", "Core", "gr-proj", "core-proj", nil)

	err := m.ProcessFile(context.Background(), models.Node{ID: "not-approved", Name: "x.csv"}, models.Node{ID: "dest"})
	assert.NoError(t, err)
	assert.Empty(t, m.RegisterFileNodes)
	assert.Empty(t, m.ReadLockPaths)

	err = m.ProcessFile(context.Background(), models.Node{ID: "a", Name: "x.csv"}, models.Node{ID: "dest"})
	assert.NoError(t, err)
	assert.Len(t, m.RegisterFileNodes, 1)
	assert.Len(t, m.ReadLockPaths, 1)
}
