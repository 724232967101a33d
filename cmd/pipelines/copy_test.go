package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestInfoEmptyStringYieldsNoApproval(t *testing.T) {
	requestID, approvedEntities, err := parseRequestInfo("")

	require.NoError(t, err)
	assert.Empty(t, requestID)
	assert.Nil(t, approvedEntities)
}

func TestParseRequestInfoParsesSingleKeyObject(t *testing.T) {
	requestID, approvedEntities, err := parseRequestInfo(`{"req-1": ["entity-a", "entity-b"]}`)

	require.NoError(t, err)
	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, []string{"entity-a", "entity-b"}, approvedEntities)
}

func TestParseRequestInfoRejectsMalformedJSON(t *testing.T) {
	_, _, err := parseRequestInfo("not json")
	assert.Error(t, err)
}
