package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List hearing schedules",
}

var schedulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hearings, latest first",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathSchedules, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		schedules, err := app.Resources.Schedules.List(ctx)
		if err != nil {
			return failure("list schedules", err)
		}
		cases, err := app.Resources.Cases.List(ctx)
		if err != nil {
			app.Logger.WarnContext(ctx, "case numbers unavailable", "error", err)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		writeScheduleEntries(cmd.OutOrStdout(), views.RecentSchedules(schedules, cases, limit))
		return nil
	}),
}

var schedulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Cancel a hearing",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathSchedules, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		if err := app.Resources.Schedules.Delete(ctx, application.ID(args[0])); err != nil {
			return failure("delete schedule "+args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted schedule %s.\n", args[0])
		return nil
	}),
}

func init() {
	schedulesListCmd.Flags().Int("limit", 0, "show at most this many hearings (0 shows all)")

	schedulesCmd.AddCommand(schedulesListCmd)
	schedulesCmd.AddCommand(schedulesDeleteCmd)
}
