package visitor

import (
	"context"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/activity"
	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/dedupcache"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
)

// DeletePreparationManager walks the source subtree and records every node's bytes as a
// write-lock path. It creates or mutates nothing; DeleteManager performs the actual
// archival once locks are held.
type DeletePreparationManager struct {
	metadataClient *metadata.Client

	ProjectCode  string
	SourceBucket string
	includeIDs   map[string]struct{}

	WriteLockPaths []string
}

// NewDeletePreparationManager builds a DeletePreparationManager.
func NewDeletePreparationManager(metadataClient *metadata.Client, projectCode, sourceBucket string, includeIDs map[string]struct{}) *DeletePreparationManager {
	return &DeletePreparationManager{
		metadataClient: metadataClient,
		ProjectCode:    projectCode,
		SourceBucket:   sourceBucket,
		includeIDs:     includeIDs,
	}
}

// GetTree lists a folder's direct children from the metadata service.
func (m *DeletePreparationManager) GetTree(ctx context.Context, folder models.Node) (models.NodeList, error) {
	return m.metadataClient.GetNodesTree(ctx, folder.ID)
}

// ExcludeNodes applies the same degrade-to-empty include-id filter as CopyPreparationManager
// (see DESIGN.md, "preserved behaviors").
func (m *DeletePreparationManager) ExcludeNodes(nodes models.NodeList) map[string]struct{} {
	if m.includeIDs == nil {
		return map[string]struct{}{}
	}
	ids := nodes.IDs()
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

// ProcessFile records the file's bytes location as a write-lock path.
func (m *DeletePreparationManager) ProcessFile(ctx context.Context, sourceFile, destinationFolder models.Node) error {
	m.WriteLockPaths = append(m.WriteLockPaths, m.SourceBucket+"/"+sourceFile.DisplayPath())
	return nil
}

// ProcessFolder records the folder's path as a write-lock path and passes the destination
// through unchanged: DELETE creates no destination nodes.
func (m *DeletePreparationManager) ProcessFolder(ctx context.Context, sourceFolder, destinationParent models.Node) (models.Node, error) {
	m.WriteLockPaths = append(m.WriteLockPaths, m.SourceBucket+"/"+sourceFolder.DisplayPath())
	return destinationParent, nil
}

// DeleteManager performs the actual archival once write locks are held: every included id
// is moved to the trash bin recursively, with an activity log entry per archived file and an
// eviction of the upload-service's dedup cache entry. An error from either step fails the
// archival.
type DeleteManager struct {
	metadataClient   *metadata.Client
	dataopsClient    *dataops.Client
	activityProducer *activity.Producer
	dedupClient      *dedupcache.Client
	blob             blobstore.Client
	removeOnArchive  bool

	Project       models.Project
	Operator      string
	CoreZoneLabel string
	GreenZoneLabel string
	IncludeIDs    map[string]struct{}

	RemovalTimestamp int64
}

// NewDeleteManager builds a DeleteManager.
func NewDeleteManager(
	metadataClient *metadata.Client,
	dataopsClient *dataops.Client,
	activityProducer *activity.Producer,
	dedupClient *dedupcache.Client,
	blob blobstore.Client,
	removeOnArchive bool,
	project models.Project,
	operator, coreZoneLabel, greenZoneLabel string,
	includeIDs map[string]struct{},
) *DeleteManager {
	return &DeleteManager{
		metadataClient:   metadataClient,
		dataopsClient:    dataopsClient,
		activityProducer: activityProducer,
		dedupClient:      dedupClient,
		blob:             blob,
		removeOnArchive:  removeOnArchive,
		Project:          project,
		Operator:         operator,
		CoreZoneLabel:    coreZoneLabel,
		GreenZoneLabel:   greenZoneLabel,
		IncludeIDs:       includeIDs,
		RemovalTimestamp: time.Now().Unix(),
	}
}

// ArchiveNodes moves every included node's subtree to the trash bin.
func (m *DeleteManager) ArchiveNodes(ctx context.Context) error {
	logger := appctx.GetLogger(ctx)
	for id := range m.IncludeIDs {
		logger.Info().Str("node_id", id).Msg("moving node into trashbin recursively")

		node, err := m.metadataClient.GetItemByID(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "error fetching node %q before archival", id)
		}

		var remove func(ctx context.Context, node models.Node) error
		if m.removeOnArchive {
			remove = m.removeObjectBytes
		}

		onFile := func(archived models.Node) error {
			return m.onArchivedFile(ctx, archived)
		}

		if _, err := m.metadataClient.ArchivedNode(ctx, node.ID, onFile, remove); err != nil {
			return errors.Wrapf(err, "error archiving node %q", id)
		}
	}
	return nil
}

// onArchivedFile runs per FILE node in an archived subtree (including a file nested under an
// archived folder, not just the top-level include-id itself): it logs the activity event and
// evicts the dedup-cache entry, both keyed on the archived file's own zone/container_code/
// parent_path/name.
func (m *DeleteManager) onArchivedFile(ctx context.Context, node models.Node) error {
	if err := m.logDeleteActivity(node); err != nil {
		return err
	}
	return m.evictDedupEntry(ctx, node)
}

func (m *DeleteManager) logDeleteActivity(node models.Node) error {
	if m.activityProducer == nil {
		return nil
	}
	return m.activityProducer.LogDelete(context.Background(), node, m.Operator)
}

func (m *DeleteManager) removeObjectBytes(ctx context.Context, node models.Node) error {
	bucket, object, err := metadata.SplitMinioURI(node.Storage.LocationURI)
	if err != nil {
		return err
	}
	return m.blob.Delete(ctx, bucket, object)
}

// dedupKeyFor builds the upload service's cache key for node, matching its own
// <zone-prefix>/<container_code>/<parent_path>/<name> construction exactly. node must be the
// archived FILE itself, not the top-level node an include-id happened to name — a folder
// include-id has no cache entry of its own, only the files underneath it do.
func dedupKeyFor(node models.Node) string {
	bucketPrefix := "greenroom"
	if node.Zone == models.ZoneCore {
		bucketPrefix = "core"
	}
	return path.Join(bucketPrefix, node.ContainerCode, node.ParentPath, node.Name)
}

// evictDedupEntry removes the upload service's dedup-cache entry for an archived file, so a
// re-upload of the same name is not silently treated as a duplicate.
func (m *DeleteManager) evictDedupEntry(ctx context.Context, node models.Node) error {
	if m.dedupClient == nil {
		return nil
	}

	key := dedupKeyFor(node)

	exists, err := m.dedupClient.CheckByKey(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return m.dedupClient.DeleteByKey(ctx, key)
}
