package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/logger"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataset"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
	"github.com/PilotDataPlatform/pipelines-core/pkg/traverser"
	"github.com/PilotDataPlatform/pipelines-core/pkg/visitor"
	"github.com/PilotDataPlatform/pipelines-core/pkg/zipimport"
)

// ShareInput is everything a SHARE (dataset-version import) job needs, resolved from CLI
// flags by cmd/pipelines.
type ShareInput struct {
	VersionID              string
	DestinationProjectCode string
	JobID                  string
	SessionID              string
	Operator               string
	AccessToken            string
}

// Share imports a dataset version's archived contents into a destination project's
// greenroom, under a freshly created folder named after the dataset code, version and a
// share-unique timestamp. Unlike COPY/DELETE, SHARE is a single pass: download, extract,
// register and upload nodes directly, with no lock/register/commit split, since nothing
// else can observe the destination folder until this job creates it.
func Share(ctx context.Context, deps *Deps, in ShareInput) error {
	ctx = appctx.WithLogger(ctx, loggerFor(ctx, in.SessionID, in.JobID, in.DestinationProjectCode, in.Operator))
	log := appctx.GetLogger(ctx)

	version, err := deps.Dataset.GetDatasetVersion(ctx, in.VersionID)
	if err != nil {
		return errors.Wrap(err, "error resolving dataset version")
	}

	destinationFolder, err := deps.Metadata.GetNameFolder(ctx, in.Operator, in.DestinationProjectCode, models.ZoneGreenroom)
	if err != nil {
		return errors.Wrap(err, "error resolving operator's name folder")
	}

	shareUniqueID := time.Now().UTC().Format("2006-01-02") + "-" + metadata.NewTimestampSuffix()
	destinationFolderName := fmt.Sprintf("%s-v%s-%s", version.DatasetCode, version.Version, shareUniqueID)

	logger.Audit(*log, "attempting to import dataset version into project", map[string]interface{}{
		"project_code": in.DestinationProjectCode, "operator": in.Operator, "version_id": in.VersionID,
		"destination_folder": destinationFolderName,
	})

	targetNames := []string{destinationFolderName}
	if err := runShare(ctx, deps, in, version, destinationFolder, destinationFolderName); err != nil {
		logger.Audit(*log, "received an unexpected error while importing dataset version", map[string]interface{}{
			"project_code": in.DestinationProjectCode, "operator": in.Operator, "version_id": in.VersionID, "error": err.Error(),
		})
		if jobErr := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, "file", in.DestinationProjectCode, "data_import", dataops.JobFailed); jobErr != nil {
			log.Error().Err(jobErr).Msg("failed to update job status")
		}
		return err
	}

	if err := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, "file", in.DestinationProjectCode, "data_import", dataops.JobSucceeded); err != nil {
		return errors.Wrap(err, "error updating job status")
	}

	logger.Audit(*log, "successfully imported dataset version into project", map[string]interface{}{
		"project_code": in.DestinationProjectCode, "operator": in.Operator, "version_id": in.VersionID,
		"destination_folder": destinationFolderName,
	})
	return nil
}

func runShare(ctx context.Context, deps *Deps, in ShareInput, version dataset.Version, destinationFolder models.Node, destinationFolderName string) error {
	rootNode := models.Node{Name: destinationFolderName, Size: 0, Owner: in.Operator}
	destinationFolderNode, err := deps.Metadata.RegisterFolder(ctx, in.DestinationProjectCode, rootNode, destinationFolder, models.ZoneGreenroom)
	if err != nil {
		return errors.Wrap(err, "error registering destination folder")
	}

	extractDir := filepath.Join(deps.Settings.TempDir, destinationFolderName)
	archivePath := extractDir + ".zip"
	defer func() {
		_ = os.Remove(archivePath)
		_ = os.RemoveAll(extractDir)
	}()

	bucket, object, err := metadata.SplitMinioURI(version.LocationURI)
	if err != nil {
		return errors.Wrap(err, "error parsing dataset version location")
	}
	if err := deps.Blob.Download(ctx, bucket, object, archivePath); err != nil {
		return errors.Wrap(err, "error downloading dataset version archive")
	}
	appctx.GetLogger(ctx).Info().Str("path", archivePath).Msg("dataset version successfully downloaded")

	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return errors.Wrap(err, "error creating extraction directory")
	}
	if err := zipimport.Extract(archivePath, extractDir); err != nil {
		return errors.Wrap(err, "error extracting dataset version archive")
	}
	appctx.GetLogger(ctx).Info().Str("path", extractDir).Msg("dataset version successfully extracted")

	destBucket := "gr-" + in.DestinationProjectCode
	manager := visitor.NewShareDatasetManager(
		deps.Metadata, deps.Blob, "", destBucket, deps.Settings.S3Endpoint(), in.DestinationProjectCode, models.ZoneGreenroom, in.Operator,
	)

	localRootNode := models.Node{Name: destinationFolderName, ParentPath: deps.Settings.TempDir}
	if err := traverser.New(manager).Traverse(ctx, localRootNode, destinationFolderNode); err != nil {
		return errors.Wrap(err, "error traversing extracted dataset version")
	}
	return nil
}
