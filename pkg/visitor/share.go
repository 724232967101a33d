package visitor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
)

// ShareDatasetManager walks a locally extracted dataset-version archive and materializes it
// directly under a destination project folder: unlike COPY/DELETE, there is no lock/commit
// split, because the files being imported are not yet visible to any concurrent job.
//
// Nodes for the local side of the walk are synthetic: Name/ParentPath are set from the
// extracted archive's relative path, and ID is always empty (GetTree reads the local
// filesystem directly rather than the metadata service).
type ShareDatasetManager struct {
	metadataClient *metadata.Client
	blob           blobstore.Client

	LocalRoot   string
	DestBucket  string
	S3Endpoint  string
	ProjectCode string
	Zone        models.Zone
	Operator    string
}

// NewShareDatasetManager builds a ShareDatasetManager rooted at localRoot, the local
// directory an archive was extracted into.
func NewShareDatasetManager(metadataClient *metadata.Client, blob blobstore.Client, localRoot, destBucket, s3Endpoint, projectCode string, zone models.Zone, operator string) *ShareDatasetManager {
	return &ShareDatasetManager{
		metadataClient: metadataClient,
		blob:           blob,
		LocalRoot:      localRoot,
		DestBucket:     destBucket,
		S3Endpoint:     s3Endpoint,
		ProjectCode:    projectCode,
		Zone:           zone,
		Operator:       operator,
	}
}

func (m *ShareDatasetManager) localPath(n models.Node) string {
	return filepath.Join(m.LocalRoot, n.ParentPath, n.Name)
}

// GetTree lists the local directory entries under folder's local path.
func (m *ShareDatasetManager) GetTree(ctx context.Context, folder models.Node) (models.NodeList, error) {
	dir := m.localPath(folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading local directory %q", dir)
	}

	relParent := filepath.Join(folder.ParentPath, folder.Name)
	nodes := make(models.NodeList, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "error reading local entry %q", e.Name())
		}
		typ := models.ResourceTypeFile
		var size int64
		if e.IsDir() {
			typ = models.ResourceTypeFolder
		} else {
			size = info.Size()
		}
		nodes = append(nodes, models.Node{
			Name:       e.Name(),
			ParentPath: relParent,
			Type:       typ,
			Zone:       m.Zone,
			Size:       size,
		})
	}
	return nodes, nil
}

// ExcludeNodes never filters: a freshly extracted archive is imported in full.
func (m *ShareDatasetManager) ExcludeNodes(nodes models.NodeList) map[string]struct{} {
	return map[string]struct{}{}
}

// ProcessFile registers an ACTIVE file node under destinationParent and uploads the local
// file's bytes directly (no registered-placeholder step: nothing else can see this subtree
// until the import completes).
func (m *ShareDatasetManager) ProcessFile(ctx context.Context, sourceFile, destinationParent models.Node) error {
	appctx.GetLogger(ctx).Info().Str("local_path", m.localPath(sourceFile)).Msg("importing dataset file")

	node, err := m.metadataClient.RegisterNode(ctx, m.ProjectCode, sourceFile, destinationParent, models.ResourceTypeFile, models.StatusActive, "", m.Zone)
	if err != nil {
		return errors.Wrapf(err, "error registering imported file %q", sourceFile.Name)
	}

	f, err := os.Open(m.localPath(sourceFile))
	if err != nil {
		return errors.Wrapf(err, "error opening local file %q", sourceFile.Name)
	}
	defer f.Close()

	result, err := m.blob.Upload(ctx, m.DestBucket, node.DisplayPath(), f, sourceFile.Size)
	if err != nil {
		return errors.Wrapf(err, "error uploading imported file %q", sourceFile.Name)
	}

	location := "minio://" + m.S3Endpoint + "/" + m.DestBucket + "/" + node.DisplayPath()
	if _, err := m.metadataClient.UpdateNode(ctx, node.ID, map[string]interface{}{
		"location_uri": location,
		"version":      result.VersionID,
	}); err != nil {
		return errors.Wrapf(err, "error updating imported file location %q", sourceFile.Name)
	}
	return nil
}

// ProcessFolder registers an ACTIVE folder node under destinationParent.
func (m *ShareDatasetManager) ProcessFolder(ctx context.Context, sourceFolder, destinationParent models.Node) (models.Node, error) {
	node, err := m.metadataClient.RegisterFolder(ctx, m.ProjectCode, sourceFolder, destinationParent, m.Zone)
	if err != nil {
		return models.Node{}, errors.Wrapf(err, "error registering imported folder %q", sourceFolder.Name)
	}
	return node, nil
}
