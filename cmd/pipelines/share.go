package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/PilotDataPlatform/pipelines-core/pkg/appctx"
	"github.com/PilotDataPlatform/pipelines-core/pkg/driver"
)

var shareCmd = &cobra.Command{
	Use:   "share-dataset-version",
	Short: "Import a dataset version's archived contents into a project",
	RunE:  runShare,
}

func init() {
	f := shareCmd.Flags()
	f.String("version-id", "", "dataset version id")
	f.String("destination-project-code", "", "project code to import into")
	f.String("job-id", "", "job id")
	f.String("session-id", "", "session id")
	f.String("operator", "", "username initiating the import")
	f.String("access-token", "", "bearer token for downstream service calls")
	for _, name := range []string{"version-id", "destination-project-code", "job-id", "session-id", "operator", "access-token"} {
		_ = shareCmd.MarkFlagRequired(name)
	}
}

func runShare(cmd *cobra.Command, _ []string) error {
	accessToken, _ := cmd.Flags().GetString("access-token")
	deps, base, err := buildDeps(cmd, accessToken)
	if err != nil {
		return err
	}

	in := driver.ShareInput{AccessToken: accessToken}
	in.VersionID, _ = cmd.Flags().GetString("version-id")
	in.DestinationProjectCode, _ = cmd.Flags().GetString("destination-project-code")
	in.JobID, _ = cmd.Flags().GetString("job-id")
	in.SessionID, _ = cmd.Flags().GetString("session-id")
	in.Operator, _ = cmd.Flags().GetString("operator")

	ctx := appctx.WithLogger(context.Background(), &base)
	return driver.Share(ctx, deps, in)
}
