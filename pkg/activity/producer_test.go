package activity

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesSchemaAndBuildsWriter(t *testing.T) {
	p, err := New([]string{"kafka-1:9092", "kafka-2:9092"})

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, Topic, p.writer.Topic)
	require.NoError(t, p.Close())
}

func TestItemActivityRoundTripsThroughSchema(t *testing.T) {
	schema, err := avro.Parse(itemActivitySchema)
	require.NoError(t, err)

	in := itemActivity{
		ActivityType:   ActivityCopy,
		ActivityTime:   1700000000000,
		ItemID:         "file-1",
		ItemType:       "file",
		ItemName:       "report.csv",
		ItemParentPath: "raw",
		ContainerCode:  "proj",
		ContainerType:  "project",
		Zone:           0,
		User:           "operator",
		ImportedFrom:   "",
		Changes: []change{
			{ItemProperty: "path", OldValue: "raw/report.csv", NewValue: "processed/report.csv"},
		},
	}

	data, err := avro.Marshal(schema, in)
	require.NoError(t, err)

	var out itemActivity
	require.NoError(t, avro.Unmarshal(schema, data, &out))

	assert.Equal(t, in, out)
}
