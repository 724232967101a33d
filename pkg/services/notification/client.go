package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/errtypes"
	"github.com/PilotDataPlatform/pipelines-core/pkg/httpclient"
	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// Client sends the pipeline-notification fan-out for a single copy/delete job.
type Client struct {
	endpoint string
	http     *http.Client

	IncludeNodes       map[string]models.Node
	SourceFolder       models.Node
	DestinationFolder  *models.Node
	ProjectCode        string
	PipelineAction     PipelineAction
	PipelineStatus     PipelineStatus
	Operator           string
	NotificationType   NotificationType
	accessToken        string
}

// Config configures a new Client.
type Config struct {
	Endpoint           string
	AccessToken        string
	IncludeNodes       map[string]models.Node
	SourceFolder       models.Node
	DestinationFolder  *models.Node
	ProjectCode        string
	PipelineAction     PipelineAction
	PipelineStatus     PipelineStatus
	Operator           string
	NotificationType   NotificationType
	Timeout            time.Duration
}

// New builds a notification client scoped to one job's fan-out.
func New(c Config) *Client {
	return &Client{
		endpoint:          c.Endpoint + "/v1/all/notifications/",
		http:              httpclient.New(httpclient.Timeout(c.Timeout)),
		IncludeNodes:      c.IncludeNodes,
		SourceFolder:      c.SourceFolder,
		DestinationFolder: c.DestinationFolder,
		ProjectCode:       c.ProjectCode,
		PipelineAction:    c.PipelineAction,
		PipelineStatus:    c.PipelineStatus,
		Operator:          c.Operator,
		NotificationType:  c.NotificationType,
		accessToken:       c.AccessToken,
	}
}

// SetStatus overrides the terminal status reported by a subsequent SendNotifications call.
func (c *Client) SetStatus(status PipelineStatus) {
	c.PipelineStatus = status
}

// SetLocation converts a node into its notification Location.
func (c *Client) SetLocation(n models.Node) Location {
	return Location{ID: n.ID, Path: n.DisplayPath(), Zone: int(n.Zone)}
}

// SetTargets converts the job's included nodes into notification Targets.
func (c *Client) SetTargets() []Target {
	targets := make([]Target, 0, len(c.IncludeNodes))
	for _, node := range c.IncludeNodes {
		targetType := TargetFolder
		if node.IsFile() {
			targetType = TargetFile
		}
		targets = append(targets, Target{ID: node.ID, Name: node.Name, Type: targetType})
	}
	return targets
}

// GetPriority derives the involvement map for this job: the operator is always the
// INITIATOR; the first path segment of the source folder is the OWNER when it differs from
// the operator; the first path segment of the destination folder is the RECEIVER when it
// differs from both the owner and the operator.
func (c *Client) GetPriority() map[InvolvementType]string {
	involvers := map[InvolvementType]string{InvolvementInitiator: c.Operator}

	owner := firstPathSegment(c.SourceFolder.DisplayPath())
	var receiver string
	if c.DestinationFolder != nil {
		receiver = firstPathSegment(c.DestinationFolder.DisplayPath())
	}

	if owner != c.Operator {
		involvers[InvolvementOwner] = owner
	}
	if receiver != "" && receiver != owner && receiver != c.Operator {
		involvers[InvolvementReceiver] = receiver
	}
	return involvers
}

func firstPathSegment(p string) string {
	if idx := strings.Index(p, "/"); idx >= 0 {
		return p[:idx]
	}
	return p
}

// SendNotifications builds one PipelineNotification per involved recipient and posts the
// batch in a single call.
func (c *Client) SendNotifications(ctx context.Context) error {
	source := c.SetLocation(c.SourceFolder)
	targets := c.SetTargets()
	involvers := c.GetPriority()

	var destination *Location
	if c.DestinationFolder != nil {
		loc := c.SetLocation(*c.DestinationFolder)
		destination = &loc
	}

	payload := make([]PipelineNotification, 0, len(involvers))
	for involvement, username := range involvers {
		payload = append(payload, PipelineNotification{
			Type:              NotificationPipeline,
			RecipientUsername: username,
			InvolvedAs:        involvement,
			Action:            c.PipelineAction,
			Status:            c.PipelineStatus,
			InitiatorUsername: c.Operator,
			ProjectCode:       c.ProjectCode,
			Source:            source,
			Destination:       destination,
			Targets:           targets,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "error encoding notification payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error sending notifications for %s", c.PipelineAction)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return errtypes.InternalError(fmt.Sprintf("unable to create notifications for %s: status %d", c.PipelineAction, resp.StatusCode))
	}
	return nil
}
