package main

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/driver"
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy a source subtree into a destination folder",
	RunE:  runCopy,
}

func init() {
	f := copyCmd.Flags()
	f.String("source-id", "", "source folder id")
	f.String("destination-id", "", "destination folder id")
	f.StringSlice("include-ids", nil, "ids to include from the source subtree (repeatable)")
	f.String("job-id", "", "job id")
	f.String("session-id", "", "session id")
	f.String("project-code", "", "project code")
	f.String("operator", "", "username initiating the copy")
	f.String("request-info", "", `JSON object of the form {"request_id": ["approved_entity_id", ...]}, when this copy satisfies an approval request`)
	f.String("access-token", "", "bearer token for downstream service calls")
	for _, name := range []string{"source-id", "destination-id", "include-ids", "job-id", "session-id", "project-code", "operator", "access-token"} {
		_ = copyCmd.MarkFlagRequired(name)
	}
}

func runCopy(cmd *cobra.Command, _ []string) error {
	accessToken, _ := cmd.Flags().GetString("access-token")
	deps, base, err := buildDeps(cmd, accessToken)
	if err != nil {
		return err
	}

	in := driver.CopyInput{AccessToken: accessToken}
	in.SourceID, _ = cmd.Flags().GetString("source-id")
	in.DestinationID, _ = cmd.Flags().GetString("destination-id")
	in.IncludeIDs, _ = cmd.Flags().GetStringSlice("include-ids")
	in.JobID, _ = cmd.Flags().GetString("job-id")
	in.SessionID, _ = cmd.Flags().GetString("session-id")
	in.ProjectCode, _ = cmd.Flags().GetString("project-code")
	in.Operator, _ = cmd.Flags().GetString("operator")

	requestInfo, _ := cmd.Flags().GetString("request-info")
	in.RequestID, in.ApprovedEntities, err = parseRequestInfo(requestInfo)
	if err != nil {
		return err
	}

	ctx := appctx.WithLogger(context.Background(), &base)
	return driver.Copy(ctx, deps, in)
}

// parseRequestInfo decodes the --request-info flag's single-key JSON object
// ({request_id: [approved_entity_id, ...]}) the way the source's
// `json.loads(request_info)` / `list(request_dict.keys())[0]` does. An empty string (the
// flag's default, meaning this copy was not initiated from an approval request) yields a
// zero requestID and nil approvedEntities.
func parseRequestInfo(requestInfo string) (requestID string, approvedEntities []string, err error) {
	if requestInfo == "" {
		return "", nil, nil
	}

	var parsed map[string][]string
	if err := json.Unmarshal([]byte(requestInfo), &parsed); err != nil {
		return "", nil, errors.Wrap(err, "error parsing --request-info")
	}
	for id, entities := range parsed {
		return id, entities, nil
	}
	return "", nil, nil
}
