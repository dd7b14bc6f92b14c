package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

var judgesCmd = &cobra.Command{
	Use:   "judges",
	Short: "List judges and their hearings",
}

var judgesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List judges",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathJudges, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		judges, err := app.Resources.Judges.List(ctx)
		if err != nil {
			return failure("list judges", err)
		}
		search, _ := cmd.Flags().GetString("search")
		rows := make([][]string, 0, len(judges))
		for _, j := range views.FilterJudges(judges, search) {
			rows = append(rows, []string{
				j.ID.String(),
				j.Name,
				j.Court,
				j.Specialization,
				fmt.Sprint(j.ExperienceYears),
				fmt.Sprint(j.MaxDailyCases),
			})
		}
		printTable(cmd.OutOrStdout(), "No judges found.", []string{"ID", "Name", "Court", "Specialization", "Years", "Daily cap"}, rows)
		return nil
	}),
}

var judgesScheduleCmd = &cobra.Command{
	Use:   "schedule <id>",
	Short: "Show the hearings of one judge",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathJudges, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		judge, err := app.Resources.Judges.Get(ctx, application.ID(args[0]))
		if err != nil {
			return failure("get judge "+args[0], err)
		}
		schedules, err := app.Resources.Schedules.List(ctx)
		if err != nil {
			return failure("list schedules", err)
		}
		cases, err := app.Resources.Cases.List(ctx)
		if err != nil {
			app.Logger.WarnContext(ctx, "case numbers unavailable", "error", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Hearings for %s (%s)\n", judge.Name, judge.Court)
		writeScheduleEntries(cmd.OutOrStdout(), views.JudgeSchedule(judge.ID, schedules, cases))
		return nil
	}),
}

var judgesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Add a judge",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathJudges, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		in := application.JudgeInput{Name: args[0]}
		in.Court, _ = flags.GetString("court")
		in.Specialization, _ = flags.GetString("specialization")
		in.ExperienceYears, _ = flags.GetInt("experience")
		in.MaxDailyCases, _ = flags.GetInt("max-daily")
		in.PhoneNumber, _ = flags.GetString("phone-number")

		j, err := app.Resources.Judges.Create(ctx, in)
		if err != nil {
			return failure("create judge", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created judge %s (%s).\n", j.ID, j.Name)
		return nil
	}),
}

var judgesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a judge",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathJudges, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		if err := app.Resources.Judges.Delete(ctx, application.ID(args[0])); err != nil {
			return failure("delete judge "+args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted judge %s.\n", args[0])
		return nil
	}),
}

func init() {
	judgesListCmd.Flags().String("search", "", "match against name and court")

	judgesCreateCmd.Flags().String("court", "", "court the judge sits in")
	judgesCreateCmd.Flags().String("specialization", "", "case type the judge prefers")
	judgesCreateCmd.Flags().Int("experience", 0, "years of experience")
	judgesCreateCmd.Flags().Int("max-daily", 0, "maximum hearings per day")
	judgesCreateCmd.Flags().String("phone-number", "", "phone number")
	_ = judgesCreateCmd.MarkFlagRequired("court")

	judgesCmd.AddCommand(judgesListCmd)
	judgesCmd.AddCommand(judgesScheduleCmd)
	judgesCmd.AddCommand(judgesCreateCmd)
	judgesCmd.AddCommand(judgesDeleteCmd)
}
