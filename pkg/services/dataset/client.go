// Package dataset is the typed client for the dataset service: resolving a dataset
// version id into the version record the SHARE operation imports from.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
)

// Client calls the dataset service's v1 API.
type Client struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

// Config configures a new Client.
type Config struct {
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
}

// New builds a dataset service client.
func New(c Config) *Client {
	return &Client{
		baseURL:     c.Endpoint + "/v1/",
		http:        httpclient.New(httpclient.Timeout(c.Timeout)),
		accessToken: c.AccessToken,
	}
}

// Version is the subset of a dataset version record this worker needs to locate the
// archive it imports from.
type Version struct {
	ID          string `json:"id"`
	DatasetCode string `json:"dataset_code"`
	Version     string `json:"version"`
	LocationURI string `json:"location"`
	Notes       string `json:"notes"`
	CreatedBy   string `json:"created_by"`
}

// GetDatasetVersion resolves a dataset version id into its record.
func (c *Client) GetDatasetVersion(ctx context.Context, versionID string) (Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"dataset/versions/"+versionID+"/", nil)
	if err != nil {
		return Version{}, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Version{}, errors.Wrapf(err, "error getting dataset version %q", versionID)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Version{}, errtypes.NotFound(versionID)
	}
	if resp.StatusCode != http.StatusOK {
		return Version{}, errtypes.InternalError(fmt.Sprintf("unable to get dataset version %q: status %d", versionID, resp.StatusCode))
	}

	var v Version
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Version{}, errors.Wrap(err, "error decoding response body")
	}
	return v, nil
}
