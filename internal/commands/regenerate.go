package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Ask the backend to rebuild the hearing schedule",
	Long: `Triggers the backend's scheduling engine and prints its answer unchanged.
Run "courtdesk schedules list" afterwards to see the result.`,
	Args: cobra.NoArgs,
	RunE: protected(application.PathSchedules, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		result, err := app.Resources.Regenerate(ctx)
		if err != nil {
			return failure("regenerate schedules", err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, result, "", "  "); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(result))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
		return nil
	}),
}
