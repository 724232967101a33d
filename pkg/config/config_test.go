package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pipelines-core", s.AppName)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 9000, s.S3Port)
	assert.False(t, s.S3InternalHTTPS)
	assert.Equal(t, "Greenroom", s.GreenZoneLabel)
	assert.Equal(t, "Core", s.CoreZoneLabel)
	assert.False(t, s.RemoveObjectOnArchive)
}

func TestS3Endpoint(t *testing.T) {
	s := Settings{S3Host: "minio.internal", S3Port: 9000}
	assert.Equal(t, "minio.internal:9000", s.S3Endpoint())
}

func TestBrokersSplitsCommaSeparatedList(t *testing.T) {
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, Settings{KafkaBrokers: "broker-1:9092,broker-2:9092"}.Brokers())
	assert.Nil(t, Settings{}.Brokers())
}
