package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

func TestToIDSetTrimsAndDropsEmpty(t *testing.T) {
	set := toIDSet([]string{" a ", "b", "", "  "})

	assert.Len(t, set, 2)
	assert.Contains(t, set, "a")
	assert.Contains(t, set, "b")
}

func TestSummarizeTargetsSingleNode(t *testing.T) {
	nodes := map[string]models.Node{
		"1": {ID: "1", Name: "report.csv", Type: models.ResourceTypeFile},
	}

	names, targetType := summarizeTargets(nodes)

	assert.Equal(t, []string{"report.csv"}, names)
	assert.Equal(t, string(models.ResourceTypeFile), targetType)
}

func TestSummarizeTargetsMultipleNodesIsBatch(t *testing.T) {
	nodes := map[string]models.Node{
		"1": {ID: "1", Name: "a.csv", Type: models.ResourceTypeFile},
		"2": {ID: "2", Name: "b", Type: models.ResourceTypeFolder},
	}

	names, targetType := summarizeTargets(nodes)

	assert.Len(t, names, 2)
	assert.Equal(t, "batch", targetType)
}
