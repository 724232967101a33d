package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/driver"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Move a source subtree into the trash bin",
	RunE:  runDelete,
}

func init() {
	f := deleteCmd.Flags()
	f.String("source-id", "", "source folder id")
	f.StringSlice("include-ids", nil, "ids to include from the source subtree (repeatable)")
	f.String("job-id", "", "job id")
	f.String("session-id", "", "session id")
	f.String("project-code", "", "project code")
	f.String("operator", "", "username initiating the delete")
	f.String("access-token", "", "bearer token for downstream service calls")
	for _, name := range []string{"source-id", "include-ids", "job-id", "session-id", "project-code", "operator", "access-token"} {
		_ = deleteCmd.MarkFlagRequired(name)
	}
}

func runDelete(cmd *cobra.Command, _ []string) error {
	accessToken, _ := cmd.Flags().GetString("access-token")
	deps, base, err := buildDeps(cmd, accessToken)
	if err != nil {
		return err
	}

	in := driver.DeleteInput{AccessToken: accessToken}
	in.SourceID, _ = cmd.Flags().GetString("source-id")
	in.IncludeIDs, _ = cmd.Flags().GetStringSlice("include-ids")
	in.JobID, _ = cmd.Flags().GetString("job-id")
	in.SessionID, _ = cmd.Flags().GetString("session-id")
	in.ProjectCode, _ = cmd.Flags().GetString("project-code")
	in.Operator, _ = cmd.Flags().GetString("operator")

	ctx := appctx.WithLogger(context.Background(), &base)
	return driver.Delete(ctx, deps, in)
}
