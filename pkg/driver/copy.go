package driver

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/logger"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/notification"
	"github.com/PilotDataPlatform/pipelines-core/pkg/traverser"
	"github.com/PilotDataPlatform/pipelines-core/pkg/visitor"
)

// CopyInput is everything a COPY job needs, resolved from CLI flags by cmd/pipelines.
type CopyInput struct {
	SourceID         string
	DestinationID    string
	IncludeIDs       []string
	JobID            string
	SessionID        string
	ProjectCode      string
	Operator         string
	RequestID        string // non-empty when this copy satisfies an approval request
	ApprovedEntities []string
	AccessToken      string
}

// Copy runs the COPY operation's full two-phase protocol: prepare, lock, register, commit,
// release (always), report, notify.
func Copy(ctx context.Context, deps *Deps, in CopyInput) error {
	ctx = appctx.WithLogger(ctx, loggerFor(ctx, in.SessionID, in.JobID, in.ProjectCode, in.Operator))
	log := appctx.GetLogger(ctx)

	includeIDSet := toIDSet(in.IncludeIDs)

	nodes, err := deps.Metadata.GetItemsByIDs(ctx, []string{in.SourceID, in.DestinationID})
	if err != nil {
		return errors.Wrap(err, "error fetching source/destination nodes")
	}
	sourceFolder := nodes[in.SourceID]
	destinationFolder := nodes[in.DestinationID]

	includeNodes, err := deps.Metadata.GetItemsByIDs(ctx, in.IncludeIDs)
	if err != nil {
		return errors.Wrap(err, "error fetching included nodes")
	}
	targetNames, targetType := summarizeTargets(includeNodes)

	notifyClient := deps.NewNotificationClient(notification.Config{
		AccessToken:       in.AccessToken,
		IncludeNodes:      includeNodes,
		SourceFolder:      sourceFolder,
		DestinationFolder: &destinationFolder,
		ProjectCode:       in.ProjectCode,
		PipelineAction:    notification.ActionCopy,
		PipelineStatus:    notification.StatusSuccess,
		Operator:          in.Operator,
		NotificationType:  notification.NotificationPipeline,
	})

	logger.Audit(*log, "attempting to copy items (recursively including child items)", map[string]interface{}{
		"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
		"source_id": sourceFolder.ID, "destination_id": destinationFolder.ID,
	})

	if err := runCopy(ctx, deps, in, sourceFolder, destinationFolder, includeIDSet, targetNames, targetType); err != nil {
		logger.Audit(*log, "received an unexpected error while attempting to copy items", map[string]interface{}{
			"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
			"source_id": sourceFolder.ID, "destination_id": destinationFolder.ID, "error": err.Error(),
		})

		notifyClient.SetStatus(notification.StatusFailure)
		if notifyErr := notifyClient.SendNotifications(ctx); notifyErr != nil {
			log.Error().Err(notifyErr).Msg("failed to send failure notification")
		}
		if jobErr := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, targetType, in.ProjectCode, "data_transfer", dataops.JobFailed); jobErr != nil {
			log.Error().Err(jobErr).Msg("failed to update job status")
		}
		return err
	}

	if err := deps.Dataops.UpdateJob(ctx, in.SessionID, in.JobID, targetNames, targetType, in.ProjectCode, "data_transfer", dataops.JobSucceeded); err != nil {
		return errors.Wrap(err, "error updating job status")
	}
	if err := notifyClient.SendNotifications(ctx); err != nil {
		return errors.Wrap(err, "error sending notifications")
	}

	logger.Audit(*log, "successfully managed to copy items (recursively including child items)", map[string]interface{}{
		"project_code": in.ProjectCode, "operator": in.Operator, "node_ids": in.IncludeIDs,
		"source_id": sourceFolder.ID, "destination_id": destinationFolder.ID,
	})
	return nil
}

func runCopy(ctx context.Context, deps *Deps, in CopyInput, sourceFolder, destinationFolder models.Node, includeIDSet map[string]struct{}, targetNames []string, targetType string) error {
	if destinationFolder.IsArchived() {
		return errtypes.InvalidInput("destination is already in trash bin")
	}

	approvalClient := deps.NewApprovalClient(in.RequestID, in.AccessToken)

	sourceBucket := "gr-" + in.ProjectCode
	destBucket := "core-" + in.ProjectCode
	timestamp := metadata.NewTimestampSuffix()

	prep := visitor.NewCopyPreparationManager(
		deps.Metadata, approvalClient, in.ApprovedEntities,
		in.ProjectCode, deps.Settings.GreenZoneLabel, deps.Settings.CoreZoneLabel,
		sourceBucket, destBucket, includeIDSet,
	)

	if err := traverser.New(prep).Traverse(ctx, sourceFolder, destinationFolder); err != nil {
		return errors.Wrap(err, "error preparing copy plan")
	}

	project, err := deps.Project.GetByCode(ctx, in.ProjectCode)
	if err != nil {
		return errors.Wrap(err, "error resolving project by code")
	}

	registeredFileNodes := map[string]models.Node{}
	defer func() {
		if cleanupErr := deps.Dataops.UnlockResources(ctx, prep.ReadLockPaths, dataops.LockRead); cleanupErr != nil {
			appctx.GetLogger(ctx).Error().Err(cleanupErr).Msg("failed to release read locks")
		}
		if cleanupErr := deps.Metadata.RemoveRegisteredNodes(ctx, registeredFileNodes); cleanupErr != nil {
			appctx.GetLogger(ctx).Error().Err(cleanupErr).Msg("failed to sweep registered nodes after copy")
		}
	}()

	if err := deps.Dataops.LockResources(ctx, prep.ReadLockPaths, dataops.LockRead); err != nil {
		return errors.Wrap(err, "error locking source read paths")
	}

	registeredFileNodes, err = deps.Metadata.RegisterNodes(ctx, in.ProjectCode, prep.RegisterFileNodes, timestamp)
	if err != nil {
		return errors.Wrap(err, "error registering destination file placeholders")
	}

	systemTags := []string{deps.Settings.CopiedWithApprovalTag}
	commit := visitor.NewCopyManager(deps.Metadata, deps.Dataops, approvalClient, in.ApprovedEntities, deps.Activity, systemTags, project.Code, in.Operator)

	if err := commit.ProcessFiles(ctx, registeredFileNodes, prep.SourceFileNode, deps.Blob); err != nil {
		return errors.Wrap(err, "error copying file bytes")
	}
	if err := commit.ProcessFolders(ctx, prep.SourceFolderNodes); err != nil {
		return errors.Wrap(err, "error tagging source folders")
	}
	return nil
}

func loggerFor(ctx context.Context, sessionID, jobID, projectCode, operator string) *zerolog.Logger {
	base := appctx.GetLogger(ctx)
	l := logger.ForJob(*base, sessionID, jobID, projectCode, operator)
	return &l
}

func toIDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func summarizeTargets(nodes map[string]models.Node) (names []string, targetType string) {
	names = make([]string, 0, len(nodes))
	var firstType models.ResourceType
	first := true
	for _, n := range nodes {
		names = append(names, n.DisplayPath())
		if first {
			firstType = n.Type
			first = false
		}
	}
	if len(names) > 1 {
		return names, "batch"
	}
	return names, string(firstType)
}
