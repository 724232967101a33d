package driver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/logger"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/notification"
	"github.com/PilotDataPlatform/pipelines-core/pkg/traverser"
	"github.com/PilotDataPlatform/pipelines-core/pkg/visitor"
)

// DeleteInput is everything a DELETE job needs, resolved from CLI flags by cmd/pipelines.
type DeleteInput struct {
	SourceID    string
	IncludeIDs  []string
	JobID       string
	SessionID   string
	ProjectCode string
	Operator    string
	AccessToken string
}

// Delete runs the DELETE operation's full two-phase protocol: prepare, lock, archive,
// release (always), report, notify. Unlike COPY there is no register/commit split — archival
// mutates nodes in place rather than creating new ones.
func Delete(ctx context.Context, deps *Deps, in DeleteInput) error {
	ctx = appctx.WithLogger(ctx, loggerFor(ctx, in.SessionID, in.JobID, in.ProjectCode, in.Operator))
	log := appctx.GetLogger(ctx)

	includeIDSet := toIDSet(in.IncludeIDs)

	sourceFolder, err := deps.Metadata.GetItemByID(ctx, in.SourceID)
	if err != nil {
		return errors.Wrap(err, "error fetching source node")
	}

	includeNodes, err := deps.Metadata.GetItemsByIDs(ctx, in.IncludeIDs)
	if err != nil {
		return errors.Wrap(err, "error fetching included nodes")
	}
	targetNames, targetType := summarizeTargets(includeNodes)

	notifyClient := deps.NewNotificationClient(notification.Config{
		AccessToken:      in.AccessToken,
		IncludeNodes:     includeNodes,
		SourceFolder:     sourceFolder,
		ProjectCode:      in.ProjectCode,
		PipelineAction:   notification.ActionDelete,
		PipelineStatus:   notification.StatusSuccess,
		Operator:         in.Operator,
		NotificationType: notification.NotificationPipeline,
	})

	logger.Audit(*log, "attempting to delete items (recursively including child items)", map[string]interface{}{
		"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
		"source_id": sourceFolder.ID,
	})

	if err := runDelete(ctx, deps, in, sourceFolder, includeIDSet); err != nil {
		logger.Audit(*log, "received an unexpected error while attempting to delete items", map[string]interface{}{
			"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
			"source_id": sourceFolder.ID, "error": err.Error(),
		})

		notifyClient.SetStatus(notification.StatusFailure)
		if notifyErr := notifyClient.SendNotifications(ctx); notifyErr != nil {
			log.Error().Err(notifyErr).Msg("failed to send failure notification")
		}
		if jobErr := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, targetType, in.ProjectCode, "data_delete", dataops.JobFailed); jobErr != nil {
			log.Error().Err(jobErr).Msg("failed to update job status")
		}
		return err
	}

	if err := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, targetType, in.ProjectCode, "data_delete", dataops.JobSucceeded); err != nil {
		return errors.Wrap(err, "error updating job status")
	}
	if err := notifyClient.SendNotifications(ctx); err != nil {
		return errors.Wrap(err, "error sending notifications")
	}

	logger.Audit(*log, "successfully managed to delete items (recursively including child items)", map[string]interface{}{
		"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
		"source_id": sourceFolder.ID,
	})
	return nil
}

func runDelete(ctx context.Context, deps *Deps, in DeleteInput, sourceFolder models.Node, includeIDSet map[string]struct{}) error {
	if sourceFolder.IsArchived() {
		return errtypes.InvalidInput("source is already in trash bin")
	}

	sourceBucket := "gr-" + in.ProjectCode
	if sourceFolder.Zone == models.ZoneCore {
		sourceBucket = "core-" + in.ProjectCode
	}

	prep := visitor.NewDeletePreparationManager(deps.Metadata, in.ProjectCode, sourceBucket, includeIDSet)

	if err := traverser.New(prep).Traverse(ctx, sourceFolder, models.Node{}); err != nil {
		return errors.Wrap(err, "error preparing delete plan")
	}

	project, err := deps.Project.GetByCode(ctx, in.ProjectCode)
	if err != nil {
		return errors.Wrap(err, "error resolving project by code")
	}

	defer func() {
		if cleanupErr := deps.Dataops.UnlockResources(ctx, prep.WriteLockPaths, dataops.LockWrite); cleanupErr != nil {
			appctx.GetLogger(ctx).Error().Err(cleanupErr).Msg("failed to release write locks")
		}
	}()

	if err := deps.Dataops.LockResources(ctx, prep.WriteLockPaths, dataops.LockWrite); err != nil {
		return errors.Wrap(err, "error locking target write paths")
	}

	commit := visitor.NewDeleteManager(
		deps.Metadata, deps.Dataops, deps.Activity, deps.Dedup, deps.Blob,
		deps.Settings.RemoveObjectOnArchive, project, in.Operator,
		deps.Settings.CoreZoneLabel, deps.Settings.GreenZoneLabel, includeIDSet,
	)

	if err := commit.ArchiveNodes(ctx); err != nil {
		return errors.Wrap(err, "error archiving nodes")
	}
	return nil
}
