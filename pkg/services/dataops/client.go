// Package dataops is the typed client for the dataops service: distributed resource
// locking, job status reporting and zip-preview records. Grounded on the teacher's
// pkg/ocm/client/client.go request/response idiom.
package dataops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
)

func jsonReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// ResourceLockOperation is the intent a lock/unlock call declares for a resource key.
type ResourceLockOperation string

const (
	LockRead  ResourceLockOperation = "read"
	LockWrite ResourceLockOperation = "write"
)

// JobStatus is the terminal outcome reported for a pipeline job.
type JobStatus string

const (
	JobSucceeded JobStatus = "SUCCEED"
	JobFailed    JobStatus = "FAILED"
)

// Client calls the dataops service's v1/v2 API.
type Client struct {
	baseURLV1   string
	baseURLV2   string
	http        *http.Client
	accessToken string
}

// Config configures a new Client.
type Config struct {
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
}

// New builds a dataops service client.
func New(c Config) *Client {
	return &Client{
		baseURLV1:   c.Endpoint + "/v1/",
		baseURLV2:   c.Endpoint + "/v2/",
		http:        httpclient.New(httpclient.Timeout(c.Timeout)),
		accessToken: c.AccessToken,
	}
}

func (c *Client) authHeader(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
}

func (c *Client) postJSON(ctx context.Context, url string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, jsonReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authHeader(req)
	return c.http.Do(req)
}

// LockResources acquires locks for a batch of resource keys in a single call. On failure,
// the driver is responsible for calling UnlockResources on whatever subset may have been
// locked before the error; this client makes no partial-success guarantee.
func (c *Client) LockResources(ctx context.Context, resourceKeys []string, op ResourceLockOperation) error {
	logger := appctx.GetLogger(ctx)
	logger.Info().Strs("resource_keys", resourceKeys).Str("operation", string(op)).Msg("locking resource keys")

	resp, err := c.postJSON(ctx, c.baseURLV2+"resource/lock/bulk", map[string]interface{}{
		"resource_keys": resourceKeys,
		"operation":     op,
	})
	if err != nil {
		return errors.Wrap(err, "error doing lock request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errtypes.LockContention(fmt.Sprintf("unable to %s-lock resource keys %v: status %d", op, resourceKeys, resp.StatusCode))
	}
	return nil
}

// UnlockResources releases locks for a batch of resource keys. A 400 response is treated
// as success, matching the service's idempotent-unlock contract.
func (c *Client) UnlockResources(ctx context.Context, resourceKeys []string, op ResourceLockOperation) error {
	logger := appctx.GetLogger(ctx)
	logger.Info().Strs("resource_keys", resourceKeys).Str("operation", string(op)).Msg("unlocking resource keys")

	body, err := json.Marshal(map[string]interface{}{
		"resource_keys": resourceKeys,
		"operation":     op,
	})
	if err != nil {
		return errors.Wrap(err, "error encoding request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURLV2+"resource/lock/bulk", jsonReader(body))
	if err != nil {
		return errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "error doing unlock request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return errtypes.InternalError(fmt.Sprintf("unable to %s-unlock resource keys %v: status %d", op, resourceKeys, resp.StatusCode))
	}
	return nil
}

// UpdateJob creates a task-stream record reporting the job's terminal status. targetType is
// "batch" when targetNames has more than one entry, or the single target's own type
// otherwise, matching the source's target_type derivation in commands/copy.py and delete.py.
func (c *Client) UpdateJob(ctx context.Context, sessionID, jobID string, targetNames []string, targetType, containerCode, actionType string, status JobStatus) error {
	resp, err := c.postJSON(ctx, c.baseURLV1+"task-stream/", map[string]interface{}{
		"session_id":     sessionID,
		"target_names":   targetNames,
		"target_type":    targetType,
		"container_code": containerCode,
		"container_type": "project",
		"action_type":    actionType,
		"job_id":         jobID,
		"status":         status,
	})
	if err != nil {
		return errors.Wrap(err, "error doing update job request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errtypes.InternalError(fmt.Sprintf("unable to update job %q: status %d", jobID, resp.StatusCode))
	}
	return nil
}

// GetZipPreview fetches the stored archive preview for a file, or (nil, nil) if none has
// been recorded yet.
func (c *Client) GetZipPreview(ctx context.Context, fileID string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURLV1+"archive?file_id="+fileID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	c.authHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errtypes.InternalError(fmt.Sprintf("unable to get zip preview for %q: status %d", fileID, resp.StatusCode))
	}

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "error decoding response body")
	}
	return out, nil
}

// CreateZipPreview stores the extracted archive's table-of-contents preview.
func (c *Client) CreateZipPreview(ctx context.Context, fileID string, archivePreview map[string]interface{}) error {
	resp, err := c.postJSON(ctx, c.baseURLV1+"archive", map[string]interface{}{
		"file_id":         fileID,
		"archive_preview": archivePreview,
	})
	if err != nil {
		return errors.Wrap(err, "error doing create zip preview request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errtypes.InternalError(fmt.Sprintf("unable to create zip preview for %q: status %d", fileID, resp.StatusCode))
	}
	return nil
}
