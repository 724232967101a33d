package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PilotDataPlatform/pipelines-core/pkg/activity"
	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/config"
	"github.com/PilotDataPlatform/pipelines-core/pkg/dedupcache"
	"github.com/PilotDataPlatform/pipelines-core/pkg/driver"
	"github.com/PilotDataPlatform/pipelines-core/pkg/logger"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataset"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/project"
)

const serviceTimeout = 30 * time.Second

// buildDeps loads settings and dials every backing service and client a job needs,
// mirroring the source's per-subcommand construction of its service clients in-line. The
// returned logger is the process-wide base; callers attach it to a context before invoking
// a driver operation, which derives its own per-job child logger from it.
func buildDeps(cmd *cobra.Command, accessToken string) (*driver.Deps, zerolog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	base := logger.New(settings.LogLevel, settings.LogFormat)

	metadataClient := metadata.New(metadata.Config{
		Endpoint:    settings.MetadataService,
		AccessToken: accessToken,
		S3Endpoint:  settings.S3Endpoint(),
		TempDir:     settings.TempDir,
		Timeout:     serviceTimeout,
	})
	projectClient := project.New(project.Config{
		Endpoint:    settings.ProjectService,
		AccessToken: accessToken,
		Timeout:     serviceTimeout,
	})
	dataopsClient := dataops.New(dataops.Config{
		Endpoint:    settings.DataopsService,
		AccessToken: accessToken,
		Timeout:     serviceTimeout,
	})
	datasetClient := dataset.New(dataset.Config{
		Endpoint:    settings.DatasetService,
		AccessToken: accessToken,
		Timeout:     serviceTimeout,
	})

	blob, err := blobstore.New(settings.S3Endpoint(), settings.S3AccessKey, settings.S3SecretKey, settings.S3InternalHTTPS)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	var activityProducer *activity.Producer
	if brokers := settings.Brokers(); len(brokers) > 0 {
		activityProducer, err = activity.New(brokers)
		if err != nil {
			return nil, zerolog.Logger{}, err
		}
	}

	var dedupClient *dedupcache.Client
	if settings.RedisHost != "" {
		dedupClient = dedupcache.New(dedupcache.Config{
			Host:     settings.RedisHost,
			Port:     settings.RedisPort,
			Password: settings.RedisPassword,
		})
	}

	return &driver.Deps{
		Settings: settings,
		Metadata: metadataClient,
		Project:  projectClient,
		Dataops:  dataopsClient,
		Dataset:  datasetClient,
		Blob:     blob,
		Activity: activityProducer,
		Dedup:    dedupClient,
	}, base, nil
}
