package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDisplayPath(t *testing.T) {
	n := Node{Name: "report.csv", ParentPath: "projects/demo/raw"}
	assert.Equal(t, "projects/demo/raw/report.csv", n.DisplayPath())

	root := Node{Name: "raw"}
	assert.Equal(t, "raw", root.DisplayPath())
}

func TestNodeIsFolderIsFileIsArchived(t *testing.T) {
	folder := Node{Type: ResourceTypeFolder, Status: StatusActive}
	file := Node{Type: ResourceTypeFile, Status: StatusArchived}

	assert.True(t, folder.IsFolder())
	assert.False(t, folder.IsFile())
	assert.False(t, folder.IsArchived())

	assert.True(t, file.IsFile())
	assert.False(t, file.IsFolder())
	assert.True(t, file.IsArchived())
}

func TestNodeNamespace(t *testing.T) {
	assert.Equal(t, "Core", Node{Zone: ZoneCore}.Namespace())
	assert.Equal(t, "Greenroom", Node{Zone: ZoneGreenroom}.Namespace())
}

func TestNodeListIDsAndFilterFiles(t *testing.T) {
	list := NodeList{
		{ID: "1", Type: ResourceTypeFile},
		{ID: "2", Type: ResourceTypeFolder},
		{ID: "3", Type: ResourceTypeFile},
	}

	ids := list.IDs()
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "1")
	assert.Contains(t, ids, "2")
	assert.Contains(t, ids, "3")

	files := list.FilterFiles()
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, f.IsFile())
	}
}

func TestNodeUnmarshalJSONCapturesUnknownFieldsIntoExtra(t *testing.T) {
	payload := []byte(`{
		"id": "1", "name": "report.csv", "type": "file", "zone": 0,
		"starred": true, "last_download_time": "2026-07-01T00:00:00Z"
	}`)

	var n Node
	require.NoError(t, json.Unmarshal(payload, &n))

	assert.Equal(t, "1", n.ID)
	assert.Equal(t, "report.csv", n.Name)
	assert.Equal(t, ResourceTypeFile, n.Type)
	assert.Equal(t, true, n.Extra["starred"])
	assert.Equal(t, "2026-07-01T00:00:00Z", n.Extra["last_download_time"])
}

func TestNodeUnmarshalJSONNoExtraWhenAllFieldsKnown(t *testing.T) {
	payload := []byte(`{"id": "1", "name": "report.csv", "type": "file"}`)

	var n Node
	require.NoError(t, json.Unmarshal(payload, &n))

	assert.Nil(t, n.Extra)
}

func TestNodeMarshalJSONDropsExtra(t *testing.T) {
	n := Node{ID: "1", Name: "report.csv", Extra: map[string]interface{}{"starred": true}}

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "starred")
}

func TestAppendSuffixToFilepath(t *testing.T) {
	assert.Equal(t, "report_1700000000.csv", AppendSuffixToFilepath("report.csv", "1700000000"))
	assert.Equal(t, "archive_1700000000", AppendSuffixToFilepath("archive", "1700000000"))
	assert.Equal(t, "dir/report_1700000000.csv", AppendSuffixToFilepath("dir/report.csv", "1700000000"))
}
