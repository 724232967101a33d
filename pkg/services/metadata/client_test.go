package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

func TestSplitMinioURIParsesBucketAndObject(t *testing.T) {
	bucket, object, err := SplitMinioURI("minio://minio.internal:9000/bucket-name/some/object/key.csv")

	require.NoError(t, err)
	assert.Equal(t, "bucket-name", bucket)
	assert.Equal(t, "some/object/key.csv", object)
}

func TestSplitMinioURIMissingScheme(t *testing.T) {
	_, _, err := splitMinioURI("minio:/bucket-name/key.csv")
	assert.Error(t, err)
}

func TestSplitMinioURIMissingObjectSlash(t *testing.T) {
	_, _, err := splitMinioURI("minio://minio.internal:9000/bucket-name")
	assert.Error(t, err)
}

func TestSplitMinioURIEmptyBucketOrObject(t *testing.T) {
	_, _, err := splitMinioURI("minio://minio.internal:9000//key.csv")
	assert.Error(t, err)

	_, _, err = splitMinioURI("minio://minio.internal:9000/bucket-name/")
	assert.Error(t, err)
}

func TestFormatFolderPathRootLevelNode(t *testing.T) {
	n := models.Node{Name: "dataset-v1"}
	assert.Equal(t, "dataset-v1", FormatFolderPath(n, "/"))
}

func TestFormatFolderPathNestedNode(t *testing.T) {
	n := models.Node{ParentPath: "raw/subdir", Name: "dataset-v1"}
	assert.Equal(t, "raw/subdir/dataset-v1", FormatFolderPath(n, "/"))
}
