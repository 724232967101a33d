// Package visitor implements the traverser.Visitor set the driver plugs into the generic
// walk: two preparation visitors that build a plan without mutating anything but
// destination folders, and two commit-phase managers that execute it once resources are
// locked. Grounded on the source's managers.py NodeManager/BaseCopyManager hierarchy.
package visitor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/activity"
	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/approval"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
)

// CopyPreparationManager walks the source subtree, eagerly creating destination FOLDER
// nodes and accumulating FILE registration requests and read-lock paths; it performs no
// file copy and registers no FILE placeholders itself (the driver does that once every
// resource is locked).
type CopyPreparationManager struct {
	metadataClient *metadata.Client

	approvalClient   *approval.Client
	approvedEntities []string // nil means "no approval filter"
	includeIDs       map[string]struct{}

	ProjectCode       string
	SourceZoneLabel   string
	DestZoneLabel     string
	SourceBucket      string
	DestBucket        string

	RegisterFileNodes []models.NodeToRegister
	SourceFileNode    map[string]models.Node
	SourceFolderNodes map[string]models.Node
	ReadLockPaths     []string
}

// NewCopyPreparationManager builds a CopyPreparationManager. approvalClient and
// approvedEntities are both nil when the copy was not initiated from an approval request.
func NewCopyPreparationManager(
	metadataClient *metadata.Client,
	approvalClient *approval.Client,
	approvedEntities []string,
	projectCode, sourceZoneLabel, destZoneLabel, sourceBucket, destBucket string,
	includeIDs map[string]struct{},
) *CopyPreparationManager {
	return &CopyPreparationManager{
		metadataClient:    metadataClient,
		approvalClient:    approvalClient,
		approvedEntities:  approvedEntities,
		includeIDs:        includeIDs,
		ProjectCode:       projectCode,
		SourceZoneLabel:   sourceZoneLabel,
		DestZoneLabel:     destZoneLabel,
		SourceBucket:      sourceBucket,
		DestBucket:        destBucket,
		SourceFileNode:    map[string]models.Node{},
		SourceFolderNodes: map[string]models.Node{},
	}
}

func (m *CopyPreparationManager) isNodeApproved(node models.Node) bool {
	if m.approvedEntities == nil {
		return true
	}
	for _, id := range m.approvedEntities {
		if id == node.ID {
			return true
		}
	}
	return false
}

// GetTree lists a folder's direct children from the metadata service.
func (m *CopyPreparationManager) GetTree(ctx context.Context, folder models.Node) (models.NodeList, error) {
	return m.metadataClient.GetNodesTree(ctx, folder.ID)
}

// ExcludeNodes mirrors BaseCopyManager.exclude_nodes: an approval filter always applies
// (excluding every id not in approvedEntities); otherwise an include-id filter only applies
// while every included id is still present among nodes, degrading to "exclude nothing" the
// moment that stops being true (see DESIGN.md, "preserved behaviors").
func (m *CopyPreparationManager) ExcludeNodes(nodes models.NodeList) map[string]struct{} {
	ids := nodes.IDs()

	if m.approvedEntities != nil {
		approved := make(map[string]struct{}, len(m.approvedEntities))
		for _, id := range m.approvedEntities {
			approved[id] = struct{}{}
		}
		excluded := map[string]struct{}{}
		for id := range ids {
			if _, ok := approved[id]; !ok {
				excluded[id] = struct{}{}
			}
		}
		return excluded
	}

	if m.includeIDs == nil {
		return map[string]struct{}{}
	}
	for id := range m.includeIDs {
		if _, ok := ids[id]; !ok {
			return map[string]struct{}{}
		}
	}
	excluded := map[string]struct{}{}
	for id := range ids {
		if _, ok := m.includeIDs[id]; !ok {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// ProcessFile queues sourceFile for registration under destinationFolder once it clears the
// approval filter, and records the read-lock path the file's bytes live at.
func (m *CopyPreparationManager) ProcessFile(ctx context.Context, sourceFile, destinationFolder models.Node) error {
	if !m.isNodeApproved(sourceFile) {
		return nil
	}

	m.ReadLockPaths = append(m.ReadLockPaths, m.SourceBucket+"/"+sourceFile.DisplayPath())
	m.RegisterFileNodes = append(m.RegisterFileNodes, models.NodeToRegister{
		SourceNode:            sourceFile,
		DestinationParentNode: destinationFolder,
	})
	m.SourceFileNode[sourceFile.ID] = sourceFile
	return nil
}

// ProcessFolder eagerly creates the matching ACTIVE destination folder (folders, unlike
// files, are never left REGISTERED: a retried copy simply reuses the existing folder).
func (m *CopyPreparationManager) ProcessFolder(ctx context.Context, sourceFolder, destinationParent models.Node) (models.Node, error) {
	node, err := m.metadataClient.RegisterFolder(ctx, m.ProjectCode, sourceFolder, destinationParent, destinationParent.Zone)
	if err != nil {
		return models.Node{}, errors.Wrapf(err, "error registering folder %q", sourceFolder.DisplayPath())
	}
	m.SourceFolderNodes[sourceFolder.ID] = sourceFolder
	m.ReadLockPaths = append(m.ReadLockPaths, m.SourceBucket+"/"+sourceFolder.DisplayPath())
	return node, nil
}

// CopyManager executes the commit phase once resources are locked and FILE placeholders are
// registered: it copies object-store bytes, promotes placeholders to ACTIVE, and tags
// the copied source folders. It does not implement traverser.Visitor; the driver calls it
// directly over the plan CopyPreparationManager built.
type CopyManager struct {
	metadataClient *metadata.Client
	dataopsClient  *dataops.Client
	approvalClient *approval.Client
	approvedEntities []string
	activityProducer *activity.Producer

	SystemTags  []string
	ProjectCode string
	Operator    string
}

// NewCopyManager builds a CopyManager.
func NewCopyManager(
	metadataClient *metadata.Client,
	dataopsClient *dataops.Client,
	approvalClient *approval.Client,
	approvedEntities []string,
	activityProducer *activity.Producer,
	systemTags []string,
	projectCode, operator string,
) *CopyManager {
	return &CopyManager{
		metadataClient:   metadataClient,
		dataopsClient:    dataopsClient,
		approvalClient:   approvalClient,
		approvedEntities: approvedEntities,
		activityProducer: activityProducer,
		SystemTags:       systemTags,
		ProjectCode:      projectCode,
		Operator:         operator,
	}
}

func (m *CopyManager) copyZipPreviewInfo(ctx context.Context, oldID, newID string) error {
	preview, err := m.dataopsClient.GetZipPreview(ctx, oldID)
	if err != nil {
		return err
	}
	if preview == nil {
		return nil
	}
	archivePreview, _ := preview["archive_preview"].(map[string]interface{})
	return m.dataopsClient.CreateZipPreview(ctx, newID, archivePreview)
}

func (m *CopyManager) updateApprovalEntityCopyStatus(ctx context.Context, node models.Node) error {
	if m.approvalClient == nil || len(m.approvedEntities) == 0 {
		return nil
	}
	_, err := m.approvalClient.UpdateCopyStatus(ctx, node.ID)
	return err
}

func (m *CopyManager) createFileMetadata(ctx context.Context, sourceNode, targetNode models.Node, versionID string) error {
	if err := m.copyZipPreviewInfo(ctx, sourceNode.ID, targetNode.ID); err != nil {
		return errors.Wrap(err, "error copying zip preview info")
	}

	if _, err := m.metadataClient.UpdateNode(ctx, sourceNode.ID, map[string]interface{}{
		"system_tags": m.SystemTags,
		"version":     versionID,
	}); err != nil {
		return errors.Wrap(err, "error tagging source node after copy")
	}

	if m.activityProducer != nil {
		if err := m.activityProducer.LogCopy(ctx, sourceNode, targetNode, m.Operator); err != nil {
			appctx.GetLogger(ctx).Warn().Err(err).Msg("failed to log copy activity")
		}
	}
	return nil
}

func (m *CopyManager) processFile(ctx context.Context, sourceFile, destinationFile models.Node, blob blobstore.Client) (models.Node, error) {
	appctx.GetLogger(ctx).Info().Str("source", sourceFile.DisplayPath()).Str("destination", destinationFile.DisplayPath()).
		Msg("processing source file against destination file")

	node, versionID, err := m.metadataClient.UpdateCopiedFileNode(ctx, m.ProjectCode, destinationFile, m.SystemTags, sourceFile, blob)
	if err != nil {
		return models.Node{}, errors.Wrapf(err, "error copying bytes for %q", sourceFile.DisplayPath())
	}

	if err := m.createFileMetadata(ctx, sourceFile, node, versionID); err != nil {
		return models.Node{}, err
	}
	if err := m.updateApprovalEntityCopyStatus(ctx, sourceFile); err != nil {
		return models.Node{}, errors.Wrap(err, "error updating approval entity copy status")
	}
	return node, nil
}

// ProcessFiles copies bytes for every registered FILE placeholder and promotes it to
// ACTIVE, replacing each entry of registeredFileNodes with its updated node.
func (m *CopyManager) ProcessFiles(ctx context.Context, registeredFileNodes map[string]models.Node, sourceFileNode map[string]models.Node, blob blobstore.Client) error {
	for id, destinationFile := range registeredFileNodes {
		updated, err := m.processFile(ctx, sourceFileNode[id], destinationFile, blob)
		if err != nil {
			return err
		}
		registeredFileNodes[id] = updated
	}
	return nil
}

// ProcessFolders tags every source folder recorded during preparation with the copy's
// system tags; the destination folders themselves are not updated. It performs no rollback of destination folder creation on failure, matching
// the source's process_folders (see DESIGN.md, "preserved behaviors").
func (m *CopyManager) ProcessFolders(ctx context.Context, sourceFolders map[string]models.Node) error {
	for _, item := range sourceFolders {
		if _, err := m.metadataClient.UpdateNode(ctx, item.ID, map[string]interface{}{
			"system_tags": m.SystemTags,
		}); err != nil {
			return errors.Wrapf(err, "error tagging folder %q", item.ID)
		}
	}
	return nil
}
