package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List and edit court cases",
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathCases, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		cases, err := app.Resources.Cases.List(ctx)
		if err != nil {
			return failure("list cases", err)
		}
		judges, err := app.Resources.Judges.List(ctx)
		if err != nil {
			app.Logger.WarnContext(ctx, "judge names unavailable", "error", err)
		}

		search, _ := cmd.Flags().GetString("search")
		caseType, _ := cmd.Flags().GetString("type")
		rows := make([][]string, 0, len(cases))
		for _, c := range views.FilterCases(cases, search, caseType) {
			rows = append(rows, []string{
				c.ID.String(),
				c.CaseNumber,
				c.CaseType,
				c.FiledIn.String(),
				formatFloat(c.Urgency),
				views.CaseJudgeName(c, judges),
				yesNo(c.IsResolved),
			})
		}
		printTable(cmd.OutOrStdout(), "No cases found.", []string{"ID", "Number", "Type", "Filed", "Urgency", "Judge", "Resolved"}, rows)
		return nil
	}),
}

var casesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one case",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathCases, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		c, err := app.Resources.Cases.Get(ctx, application.ID(args[0]))
		if err != nil {
			return failure("get case "+args[0], err)
		}
		writeCase(cmd, c)
		return nil
	}),
}

var casesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a new case",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathCases, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		in := application.CaseInput{
			CaseType: application.CaseTypeCivil,
			FiledIn:  application.NewDate(app.Now()),
		}
		if err := applyCaseFlags(cmd, &in); err != nil {
			return err
		}
		c, err := app.Resources.Cases.Create(ctx, in)
		if err != nil {
			return failure("create case", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created case %s (%s).\n", c.ID, c.CaseNumber)
		return nil
	}),
}

var casesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an existing case",
	Long:  "Only the flags that are given change; every other field keeps its current value.",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathCases, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		id := application.ID(args[0])
		current, err := app.Resources.Cases.Get(ctx, id)
		if err != nil {
			return failure("get case "+args[0], err)
		}
		urgency, duration := current.Urgency, current.EstimatedDuration
		in := application.CaseInput{
			CaseNumber:        current.CaseNumber,
			CaseType:          current.CaseType,
			Description:       current.Description,
			FiledIn:           current.FiledIn,
			Urgency:           &urgency,
			EstimatedDuration: &duration,
			AssignedJudge:     current.AssignedJudge,
			Lawyers:           current.Lawyers,
			IsResolved:        current.IsResolved,
		}
		if err := applyCaseFlags(cmd, &in); err != nil {
			return err
		}
		if cmd.Flags().Changed("resolved") {
			in.IsResolved, _ = cmd.Flags().GetBool("resolved")
		}
		c, err := app.Resources.Cases.Update(ctx, id, in)
		if err != nil {
			return failure("update case "+args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated case %s (%s).\n", c.ID, c.CaseNumber)
		return nil
	}),
}

var casesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a case and its hearings",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathCases, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		if err := app.Resources.Cases.Delete(ctx, application.ID(args[0])); err != nil {
			return failure("delete case "+args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted case %s.\n", args[0])
		return nil
	}),
}

// applyCaseFlags overlays the flags the user set onto in.
func applyCaseFlags(cmd *cobra.Command, in *application.CaseInput) error {
	flags := cmd.Flags()
	if flags.Changed("number") {
		in.CaseNumber, _ = flags.GetString("number")
	}
	if flags.Changed("type") {
		in.CaseType, _ = flags.GetString("type")
	}
	if flags.Changed("description") {
		in.Description, _ = flags.GetString("description")
	}
	if flags.Changed("filed") {
		raw, _ := flags.GetString("filed")
		filed, err := application.ParseDate(raw)
		if err != nil {
			return err
		}
		in.FiledIn = filed
	}
	if flags.Changed("urgency") {
		urgency, _ := flags.GetFloat64("urgency")
		in.Urgency = &urgency
	}
	if flags.Changed("duration") {
		duration, _ := flags.GetInt("duration")
		in.EstimatedDuration = &duration
	}
	if flags.Changed("judge") {
		judge, _ := flags.GetString("judge")
		in.AssignedJudge = application.ID(judge)
	}
	if flags.Changed("lawyers") {
		raw, _ := flags.GetString("lawyers")
		in.Lawyers = parseIDs(raw)
	}
	return nil
}

func writeCase(cmd *cobra.Command, c application.Case) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Case %s\n", c.CaseNumber)
	fmt.Fprintf(w, "  id:          %s\n", c.ID)
	fmt.Fprintf(w, "  type:        %s\n", c.CaseType)
	fmt.Fprintf(w, "  filed:       %s\n", c.FiledIn)
	fmt.Fprintf(w, "  urgency:     %s\n", formatFloat(c.Urgency))
	fmt.Fprintf(w, "  priority:    %s\n", formatFloat(c.Priority))
	fmt.Fprintf(w, "  duration:    %d min\n", c.EstimatedDuration)
	fmt.Fprintf(w, "  judge:       %s\n", c.AssignedJudge)
	fmt.Fprintf(w, "  lawyers:     %s\n", formatIDs(c.Lawyers))
	fmt.Fprintf(w, "  resolved:    %s\n", yesNo(c.IsResolved))
	if c.Description != "" {
		fmt.Fprintf(w, "  description: %s\n", c.Description)
	}
}

func addCaseFlags(cmd *cobra.Command) {
	cmd.Flags().String("number", "", "case number")
	cmd.Flags().String("type", application.CaseTypeCivil, "case type (civil, criminal, family, other)")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().String("filed", "", "filing date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().Float64("urgency", 0, "urgency between 0 and 1")
	cmd.Flags().Int("duration", 0, "estimated hearing length in minutes")
	cmd.Flags().String("judge", "", "assigned judge id")
	cmd.Flags().String("lawyers", "", "comma separated lawyer ids")
}

func init() {
	casesListCmd.Flags().String("search", "", "match against the case number")
	casesListCmd.Flags().String("type", "all", "restrict to a case type")

	addCaseFlags(casesCreateCmd)
	_ = casesCreateCmd.MarkFlagRequired("number")
	addCaseFlags(casesUpdateCmd)
	casesUpdateCmd.Flags().Bool("resolved", false, "mark the case resolved")

	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesGetCmd)
	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesUpdateCmd)
	casesCmd.AddCommand(casesDeleteCmd)
}
