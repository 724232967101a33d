package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

func TestGetPriorityOwnerAndReceiverDifferFromOperator(t *testing.T) {
	destination := models.Node{ParentPath: "", Name: "receiveruser"}
	c := New(Config{
		SourceFolder:      models.Node{ParentPath: "", Name: "owneruser"},
		DestinationFolder: &destination,
		Operator:          "operatoruser",
	})

	involvers := c.GetPriority()

	assert.Equal(t, "operatoruser", involvers[InvolvementInitiator])
	assert.Equal(t, "owneruser", involvers[InvolvementOwner])
	assert.Equal(t, "receiveruser", involvers[InvolvementReceiver])
}

func TestGetPriorityOmitsRolesThatCollapseIntoOperator(t *testing.T) {
	destination := models.Node{Name: "operatoruser"}
	c := New(Config{
		SourceFolder:      models.Node{Name: "operatoruser"},
		DestinationFolder: &destination,
		Operator:          "operatoruser",
	})

	involvers := c.GetPriority()

	assert.Len(t, involvers, 1)
	assert.Equal(t, "operatoruser", involvers[InvolvementInitiator])
}

func TestGetPriorityOmitsReceiverWhenSameAsOwner(t *testing.T) {
	destination := models.Node{Name: "owneruser"}
	c := New(Config{
		SourceFolder:      models.Node{Name: "owneruser"},
		DestinationFolder: &destination,
		Operator:          "operatoruser",
	})

	involvers := c.GetPriority()

	assert.Equal(t, "owneruser", involvers[InvolvementOwner])
	_, hasReceiver := involvers[InvolvementReceiver]
	assert.False(t, hasReceiver)
}

func TestGetPriorityWithoutDestinationFolder(t *testing.T) {
	c := New(Config{
		SourceFolder: models.Node{Name: "owneruser"},
		Operator:     "operatoruser",
	})

	involvers := c.GetPriority()

	assert.Equal(t, "operatoruser", involvers[InvolvementInitiator])
	assert.Equal(t, "owneruser", involvers[InvolvementOwner])
	_, hasReceiver := involvers[InvolvementReceiver]
	assert.False(t, hasReceiver)
}
