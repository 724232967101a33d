// Package metadata is the typed client for the metadata service: the source of truth for
// Node records, lookups, registration and archival. Grounded on the teacher's
// pkg/ocm/client/client.go request/response idiom (functional-options HTTP client,
// explicit status-code switch, github.com/pkg/errors wrapping at every call site).
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// Client calls the metadata service's v1 API.
type Client struct {
	baseURL     string
	http        *http.Client
	accessToken string
	s3Endpoint  string
	tempDir     string
}

// Config configures a new Client.
type Config struct {
	Endpoint    string
	AccessToken string
	S3Endpoint  string
	TempDir     string
	Timeout     time.Duration
}

// New builds a metadata service client.
func New(c Config) *Client {
	return &Client{
		baseURL:     c.Endpoint + "/v1/",
		http:        httpclient.New(httpclient.Timeout(c.Timeout)),
		accessToken: c.AccessToken,
		s3Endpoint:  c.S3Endpoint,
		tempDir:     c.TempDir,
	}
}

func (c *Client) authHeader(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
}

type itemEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type itemsEnvelope struct {
	Result []models.Node `json:"result"`
}

// GetItemByID fetches a single node.
func (c *Client) GetItemByID(ctx context.Context, id string) (models.Node, error) {
	nodes, err := c.GetItemsByIDs(ctx, []string{id})
	if err != nil {
		return models.Node{}, err
	}
	node, ok := nodes[id]
	if !ok {
		return models.Node{}, errtypes.NotFound(id)
	}
	return node, nil
}

// GetItemsByIDs fetches a batch of nodes keyed by id.
func (c *Client) GetItemsByIDs(ctx context.Context, ids []string) (map[string]models.Node, error) {
	u, err := url.Parse(c.baseURL + "items/batch/")
	if err != nil {
		return nil, errors.Wrap(err, "error building request url")
	}
	q := u.Query()
	for _, id := range ids {
		q.Add("ids", id)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errtypes.InternalError(fmt.Sprintf("unable to get nodes by ids %v: status %d", ids, resp.StatusCode))
	}

	var env itemsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "error decoding response body")
	}
	if len(env.Result) != len(ids) {
		return nil, errtypes.InternalError(fmt.Sprintf("number of returned nodes does not match requested ids %v", ids))
	}

	out := make(map[string]models.Node, len(env.Result))
	for _, n := range env.Result {
		out[n.ID] = n
	}
	return out, nil
}

// GetNodesTree returns the direct children of startFolderID (one level, non-recursive),
// filtered server-side to ACTIVE status within the folder's own zone and container.
func (c *Client) GetNodesTree(ctx context.Context, startFolderID string) (models.NodeList, error) {
	parent, err := c.getItemRaw(ctx, startFolderID)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting parent folder %q", startFolderID)
	}

	u, err := url.Parse(c.baseURL + "items/search/")
	if err != nil {
		return nil, errors.Wrap(err, "error building request url")
	}
	q := u.Query()
	q.Set("status", string(models.StatusActive))
	q.Set("zone", strconv.Itoa(int(parent.Zone)))
	q.Set("container_code", parent.ContainerCode)
	q.Set("parent_path", parent.DisplayPath())
	q.Set("recursive", "false")
	q.Set("page_size", "1000")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errtypes.InternalError(fmt.Sprintf("unable to get nodes tree from %q: status %d", startFolderID, resp.StatusCode))
	}

	var env itemsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "error decoding response body")
	}
	return models.NodeList(env.Result), nil
}

func (c *Client) getItemRaw(ctx context.Context, id string) (models.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"item/"+id+"/", nil)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Node{}, errtypes.NotFound(id)
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding response body")
	}
	var node models.Node
	if err := json.Unmarshal(env.Result, &node); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding node")
	}
	return node, nil
}

// UpdateNode applies a partial update (PUT item/?id=...).
func (c *Client) UpdateNode(ctx context.Context, id string, update map[string]interface{}) (models.Node, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error encoding update body")
	}

	u := c.baseURL + "item/?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Node{}, errtypes.InternalError(fmt.Sprintf("unable to update node %q: status %d", id, resp.StatusCode))
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding response body")
	}
	var node models.Node
	if err := json.Unmarshal(env.Result, &node); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding node")
	}
	return node, nil
}

// RegisterNode creates a node under parentNode. On a 409 from a FILE, the caller's
// timestamp suffix is appended to the name and the request is retried once; a second
// collision is a fatal error. On a 409 from a FOLDER, the existing folder is fetched and
// reused (idempotent destination-folder creation).
func (c *Client) RegisterNode(
	ctx context.Context,
	projectCode string,
	sourceNode models.Node,
	parentNode models.Node,
	itemType models.ResourceType,
	status models.ItemStatus,
	timestamp string,
	zone models.Zone,
) (models.Node, error) {
	payload := map[string]interface{}{
		"parent":         parentNode.ID,
		"parent_path":    parentNode.DisplayPath(),
		"type":           itemType,
		"zone":           zone,
		"name":           sourceNode.Name,
		"size":           sourceNode.Size,
		"owner":          sourceNode.Owner,
		"container_code": projectCode,
		"container_type": "project",
		"tags":           sourceNode.Tags(),
		"status":         status,
	}
	if len(sourceNode.Extended.Attributes) > 0 {
		for templateID, attrs := range sourceNode.Extended.Attributes {
			payload["attribute_template_id"] = templateID
			payload["attributes"] = attrs
			break
		}
	}

	node, status409, err := c.postItem(ctx, payload)
	if err != nil {
		return models.Node{}, err
	}
	if !status409 {
		return node, nil
	}

	if itemType == models.ResourceTypeFile {
		if timestamp == "" {
			timestamp = strconv.FormatInt(time.Now().Unix(), 10)
		}
		payload["name"] = models.AppendSuffixToFilepath(sourceNode.Name, timestamp)
		node, status409, err = c.postItem(ctx, payload)
		if err != nil {
			return models.Node{}, err
		}
		if status409 {
			return models.Node{}, errtypes.AlreadyExists(sourceNode.Name + "_" + timestamp)
		}
		return node, nil
	}

	// FOLDER: fetch and reuse the existing node under the same parent.
	return c.GetNodeByFullPath(ctx, sourceNode.Name, parentNode.DisplayPath(), projectCode, zone)
}

func (c *Client) postItem(ctx context.Context, payload map[string]interface{}) (models.Node, bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.Node{}, false, errors.Wrap(err, "error encoding register payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"item/", bytes.NewReader(body))
	if err != nil {
		return models.Node{}, false, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Node{}, false, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return models.Node{}, true, nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.Node{}, false, errtypes.InternalError(fmt.Sprintf("unable to register node: status %d", resp.StatusCode))
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Node{}, false, errors.Wrap(err, "error decoding response body")
	}
	var node models.Node
	if err := json.Unmarshal(env.Result, &node); err != nil {
		return models.Node{}, false, errors.Wrap(err, "error decoding node")
	}
	return node, false, nil
}

// RegisterFile creates a REGISTERED placeholder FILE node.
func (c *Client) RegisterFile(ctx context.Context, projectCode string, sourceNode, parentNode models.Node, zone models.Zone, timestamp string) (models.Node, error) {
	return c.RegisterNode(ctx, projectCode, sourceNode, parentNode, models.ResourceTypeFile, models.StatusRegistered, timestamp, zone)
}

// RegisterFolder eagerly creates an ACTIVE FOLDER node.
func (c *Client) RegisterFolder(ctx context.Context, projectCode string, sourceNode, parentNode models.Node, zone models.Zone) (models.Node, error) {
	return c.RegisterNode(ctx, projectCode, sourceNode, parentNode, models.ResourceTypeFolder, models.StatusActive, "", zone)
}

// RegisterNodes registers every pending FILE node from the prepare phase, returning a
// source-id -> registered-node map retained for rollback. On error the map still holds
// every placeholder registered before the failure.
func (c *Client) RegisterNodes(ctx context.Context, projectCode string, toRegister []models.NodeToRegister, timestamp string) (map[string]models.Node, error) {
	out := make(map[string]models.Node, len(toRegister))
	for _, item := range toRegister {
		node, err := c.RegisterFile(ctx, projectCode, item.SourceNode, item.DestinationParentNode, models.ZoneCore, timestamp)
		if err != nil {
			return out, errors.Wrap(err, "error registering nodes")
		}
		out[item.SourceNode.ID] = node
	}
	return out, nil
}

// GetNameFolder fetches a user's root name-folder in the given zone.
func (c *Client) GetNameFolder(ctx context.Context, username, projectCode string, zone models.Zone) (models.Node, error) {
	u, err := url.Parse(c.baseURL + "item/")
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error building request url")
	}
	q := u.Query()
	q.Set("name", username)
	q.Set("container_code", projectCode)
	q.Set("container_type", "project")
	q.Set("zone", strconv.Itoa(int(zone)))
	q.Set("status", string(models.StatusActive))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Node{}, errtypes.NotFound(fmt.Sprintf("%s/%d/%s", projectCode, zone, username))
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding response body")
	}
	var node models.Node
	if err := json.Unmarshal(env.Result, &node); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding node")
	}
	return node, nil
}

// GetNodeByFullPath fetches an existing ACTIVE folder node by (name, parent_path) in zone.
func (c *Client) GetNodeByFullPath(ctx context.Context, name, parentPath, containerCode string, zone models.Zone) (models.Node, error) {
	u, err := url.Parse(c.baseURL + "item/")
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error building request url")
	}
	q := u.Query()
	q.Set("name", name)
	q.Set("parent_path", parentPath)
	q.Set("container_code", containerCode)
	q.Set("container_type", "project")
	q.Set("zone", strconv.Itoa(int(zone)))
	q.Set("status", string(models.StatusActive))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Node{}, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Node{}, errtypes.NotFound(fmt.Sprintf("%s/%s", parentPath, name))
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding response body")
	}
	var node models.Node
	if err := json.Unmarshal(env.Result, &node); err != nil {
		return models.Node{}, errors.Wrap(err, "error decoding node")
	}
	return node, nil
}

// MoveNodeToTrash archives a node recursively server-side (PATCH item/?status=ARCHIVED)
// and returns the archived subtree.
func (c *Client) MoveNodeToTrash(ctx context.Context, id string) (models.NodeList, error) {
	u := c.baseURL + "item/?id=" + url.QueryEscape(id) + "&status=" + string(models.StatusArchived)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errtypes.InternalError(fmt.Sprintf("unable to archive node %q: status %d", id, resp.StatusCode))
	}

	var env itemsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "error decoding response body")
	}
	return models.NodeList(env.Result), nil
}

// RemoveRegisteredNode deletes a single placeholder node (DELETE item/?id=...).
func (c *Client) RemoveRegisteredNode(ctx context.Context, id string) error {
	u := c.baseURL + "item/?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errtypes.InternalError(fmt.Sprintf("unable to remove registered node %q: status %d", id, resp.StatusCode))
	}
	return nil
}

// RemoveRegisteredNodes sweeps every node still in REGISTERED status from the given map.
// Called on every failure path after step 3 of the two-phase protocol; nodes already
// promoted to ACTIVE are left untouched (no auto-rollback of a partial commit).
func (c *Client) RemoveRegisteredNodes(ctx context.Context, registered map[string]models.Node) error {
	for _, node := range registered {
		if node.Status != models.StatusRegistered {
			continue
		}
		if err := c.RemoveRegisteredNode(ctx, node.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateCopiedFileNode performs the object-store copy for one file (§4.4's size-based
// strategy) and promotes the placeholder node to ACTIVE with the new location and
// version. Returns the updated node and the version id returned by the store (possibly
// empty if versioning is disabled on the destination bucket).
func (c *Client) UpdateCopiedFileNode(
	ctx context.Context,
	projectCode string,
	placeholder models.Node,
	systemTags []string,
	sourceNode models.Node,
	blob blobstore.Client,
) (models.Node, string, error) {
	displayPath := placeholder.DisplayPath()
	location := fmt.Sprintf("minio://%s/core-%s/%s", c.s3Endpoint, projectCode, displayPath)

	srcBucket, srcObject, err := splitMinioURI(sourceNode.Storage.LocationURI)
	if err != nil {
		return models.Node{}, "", errors.Wrap(err, "error parsing source location")
	}
	dstBucket, dstObject, err := splitMinioURI(location)
	if err != nil {
		return models.Node{}, "", errors.Wrap(err, "error parsing destination location")
	}

	versionID, err := c.copyFileBytes(ctx, sourceNode.Size, srcBucket, srcObject, dstBucket, dstObject, sourceNode.Name, blob)
	if err != nil {
		return models.Node{}, "", err
	}

	update := map[string]interface{}{
		"status":       models.StatusActive,
		"location_uri": location,
		"system_tags":  systemTags,
		"version":      versionID,
	}
	node, err := c.UpdateNode(ctx, placeholder.ID, update)
	if err != nil {
		return models.Node{}, "", err
	}
	return node, versionID, nil
}

// copyFileBytes implements the §4.4 size strategy: a single server-side copy under the
// threshold, or download-then-multipart-upload at or above it.
func (c *Client) copyFileBytes(ctx context.Context, size int64, srcBucket, srcObject, dstBucket, dstObject, fileName string, blob blobstore.Client) (string, error) {
	if size < blobstore.LargeObjectThreshold {
		result, err := blob.CopySameStore(ctx, srcBucket, srcObject, dstBucket, dstObject)
		if err != nil {
			return "", errors.Wrapf(err, "error copying %s/%s to %s/%s", srcBucket, srcObject, dstBucket, dstObject)
		}
		return result.VersionID, nil
	}

	tempDir := fmt.Sprintf("%s%d", c.tempDir, time.Now().Unix())
	tempFilePath := tempDir + "/" + fileName
	defer removeAll(tempDir)

	if err := blob.Download(ctx, srcBucket, srcObject, tempFilePath); err != nil {
		return "", errors.Wrapf(err, "error downloading %s/%s for large-file copy", srcBucket, srcObject)
	}

	versionID, err := multipartUpload(ctx, blob, dstBucket, dstObject, tempFilePath)
	if err != nil {
		return "", err
	}
	return versionID, nil
}

// SplitMinioURI parses a "minio://host:port/bucket/key/with/slashes" location_uri into its
// bucket and object key, for callers outside this package that need to act on a node's raw
// storage location (e.g. the delete visitor's optional object removal).
func SplitMinioURI(uri string) (bucket, object string, err error) {
	return splitMinioURI(uri)
}

// splitMinioURI parses a "minio://host:port/bucket/key/with/slashes" location_uri.
func splitMinioURI(uri string) (bucket, object string, err error) {
	const schemeSep = "//"
	idx := strings.Index(uri, schemeSep)
	if idx < 0 {
		return "", "", errtypes.InvalidInput("malformed location_uri: " + uri)
	}
	rest := uri[idx+len(schemeSep):]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return "", "", errtypes.InvalidInput("malformed location_uri: " + uri)
	}
	path := rest[slash+1:]
	segs := strings.SplitN(path, "/", 2)
	if len(segs) != 2 || segs[0] == "" || segs[1] == "" {
		return "", "", errtypes.InvalidInput("malformed location_uri: " + uri)
	}
	return segs[0], segs[1], nil
}

func removeAll(dir string) {
	_ = os.RemoveAll(dir)
}

// multipartUpload executes the prepare_multipart/part_upload/combine_chunks sequence of
// §4.4 against a local file, in PartSize-sized chunks.
func multipartUpload(ctx context.Context, blob blobstore.Client, bucket, object, localPath string) (string, error) {
	uploadID, err := blob.PrepareMultipartUpload(ctx, bucket, object)
	if err != nil {
		return "", errors.Wrapf(err, "error preparing multipart upload for %s/%s", bucket, object)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrapf(err, "error opening %s for multipart upload", localPath)
	}
	defer f.Close()

	var parts []minio.CompletePart
	buf := make([]byte, blobstore.PartSize)
	partNumber := 1
	for {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			part, uploadErr := blob.PartUpload(ctx, bucket, object, uploadID, partNumber, buf[:n])
			if uploadErr != nil {
				return "", errors.Wrapf(uploadErr, "error uploading part %d of %s/%s", partNumber, bucket, object)
			}
			parts = append(parts, minio.CompletePart{PartNumber: partNumber, ETag: part.ETag})
			partNumber++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return "", errors.Wrapf(readErr, "error reading %s for multipart upload", localPath)
		}
	}

	result, err := blob.CombineChunks(ctx, bucket, object, uploadID, parts)
	if err != nil {
		return "", errors.Wrapf(err, "error combining multipart upload for %s/%s", bucket, object)
	}
	return result.VersionID, nil
}

// NewTimestampSuffix returns a collision-retry suffix, grounded on the source's use of an
// epoch timestamp for the renamed placeholder.
func NewTimestampSuffix() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// NewShareUniqueID returns a random uuid string for use as a unique suffix.
func NewShareUniqueID() string {
	return uuid.NewString()
}

// FormatFolderPath joins a node's parent_path and name with divider, or returns the bare
// name for a root-level node.
func FormatFolderPath(n models.Node, divider string) string {
	if n.ParentPath == "" {
		return n.Name
	}
	return n.ParentPath + divider + n.Name
}

// ArchivedNode moves sourceFile's subtree to ARCHIVED status and invokes onFile once per
// FILE node in the resulting subtree, for the caller to log a delete activity event.
//
// The object-store bytes are intentionally left in place: the source's archived_node
// carries its object removal commented out (see DESIGN.md, "preserved behaviors"), and
// this keeps that behavior unless Settings.RemoveObjectOnArchive is enabled by the caller
// passing a non-nil remove func.
func (c *Client) ArchivedNode(
	ctx context.Context,
	sourceFileID string,
	onFile func(models.Node) error,
	remove func(ctx context.Context, node models.Node) error,
) (models.NodeList, error) {
	trashed, err := c.MoveNodeToTrash(ctx, sourceFileID)
	if err != nil {
		return nil, errors.Wrap(err, "error archiving node")
	}

	for _, item := range trashed {
		if !item.IsFile() {
			continue
		}
		if remove != nil {
			if err := remove(ctx, item); err != nil {
				return nil, errors.Wrapf(err, "error removing object for archived node %q", item.ID)
			}
		}
		if onFile != nil {
			if err := onFile(item); err != nil {
				return nil, errors.Wrapf(err, "error logging archive activity for node %q", item.ID)
			}
		}
	}
	return trashed, nil
}
