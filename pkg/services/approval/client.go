// Package approval is the typed client for the approval service: marking an approval
// request's entities as copied once the copy that satisfied them lands.
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
)

// Client calls one approval request's v1 API.
type Client struct {
	baseURL     string
	requestID   string
	http        *http.Client
	accessToken string
}

// Config configures a new Client.
type Config struct {
	Endpoint    string
	RequestID   string
	AccessToken string
	Timeout     time.Duration
}

// New builds an approval service client scoped to a single approval request.
func New(c Config) *Client {
	return &Client{
		baseURL:     c.Endpoint + "/v1",
		requestID:   c.RequestID,
		http:        httpclient.New(httpclient.Timeout(c.Timeout)),
		accessToken: c.AccessToken,
	}
}

type copyStatusEnvelope struct {
	Result []map[string]interface{} `json:"result"`
}

// UpdateCopyStatus marks entityID as copied against the client's approval request.
func (c *Client) UpdateCopyStatus(ctx context.Context, entityID string) ([]map[string]interface{}, error) {
	payload := map[string]interface{}{
		"entities":    []string{entityID},
		"copy_status": "copied",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding request body")
	}

	url := fmt.Sprintf("%s/request/%s/copy-status", c.baseURL, c.requestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error updating copy status for %q", entityID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errtypes.InternalError(fmt.Sprintf("unable to update copy status for %q: status %d", entityID, resp.StatusCode))
	}

	var env copyStatusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "error decoding response body")
	}
	if len(env.Result) == 0 {
		return nil, errtypes.NotFound(entityID)
	}
	return env.Result, nil
}
