// Package driver orchestrates the three pipeline operations (COPY, DELETE, SHARE) end to
// end: resolve inputs, run the two-phase prepare/lock/register/commit/release protocol (or
// the single-pass import for SHARE), report the job's terminal status, and fan out
// notifications. Grounded on the source's commands/copy.py, delete.py and
// share_dataset_version.py, each of which plays exactly this role around its managers.
package driver

import (
	"time"

	"github.com/PilotDataPlatform/pipelines-core/pkg/activity"
	"github.com/PilotDataPlatform/pipelines-core/pkg/blobstore"
	"github.com/PilotDataPlatform/pipelines-core/pkg/config"
	"github.com/PilotDataPlatform/pipelines-core/pkg/dedupcache"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/approval"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataops"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/dataset"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/metadata"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/notification"
	"github.com/PilotDataPlatform/pipelines-core/pkg/services/project"
)

// Deps bundles every long-lived client a single worker process shares across whatever
// operation its subcommand runs. Exactly one of these is constructed per process in
// cmd/pipelines, then threaded into Copy, Delete or Share.
type Deps struct {
	Settings config.Settings

	Metadata *metadata.Client
	Project  *project.Client
	Dataops  *dataops.Client
	Dataset  *dataset.Client
	Blob     blobstore.Client
	Activity *activity.Producer
	Dedup    *dedupcache.Client
}

// NewApprovalClient builds a request-scoped approval client, or nil if requestID is empty
// (a copy not initiated from an approval request carries no approval client at all,
// matching the source's approval_service_client = None default).
func (d *Deps) NewApprovalClient(requestID, accessToken string) *approval.Client {
	if requestID == "" {
		return nil
	}
	return approval.New(approval.Config{
		Endpoint:    d.Settings.ApprovalService,
		RequestID:   requestID,
		AccessToken: accessToken,
		Timeout:     30 * time.Second,
	})
}

// NewNotificationClient builds a job-scoped notification client.
func (d *Deps) NewNotificationClient(c notification.Config) *notification.Client {
	c.Endpoint = d.Settings.NotificationService
	c.Timeout = 30 * time.Second
	return notification.New(c)
}
