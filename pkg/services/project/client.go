// Package project is the typed client for the project service: the single lookup this
// worker makes to resolve a project code into its canonical record at the start of a job.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// Client calls the project service's v1 API.
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

// New builds a project service client.
func New(c Config) *Client {
	return &Client{
		baseURL:     c.Endpoint + "/v1/",
		http:        httpclient.New(httpclient.Timeout(c.Timeout)),
		accessToken: c.AccessToken,
	}
}

type projectEnvelope struct {
	Result models.Project `json:"result"`
}

// GetByCode resolves a project code into its canonical Project record.
func (c *Client) GetByCode(ctx context.Context, code string) (models.Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"projects/"+code, nil)
	if err != nil {
		return models.Project{}, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Project{}, errors.Wrapf(err, "error getting project by code %q", code)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Project{}, errtypes.NotFound(code)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Project{}, errtypes.InternalError(fmt.Sprintf("unable to get project by code %q: status %d", code, resp.StatusCode))
	}

	var env projectEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return models.Project{}, errors.Wrap(err, "error decoding response body")
	}
	return env.Result, nil
}
