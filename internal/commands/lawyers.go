package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

var lawyersCmd = &cobra.Command{
	Use:   "lawyers",
	Short: "List lawyers and the cases they work on",
}

var lawyersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lawyers",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathLawyers, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		lawyers, err := app.Resources.Lawyers.List(ctx)
		if err != nil {
			return failure("list lawyers", err)
		}
		cases, err := app.Resources.Cases.List(ctx)
		if err != nil {
			app.Logger.WarnContext(ctx, "case counts unavailable", "error", err)
		}
		counts := views.LawyerCaseCounts(lawyers, cases)

		search, _ := cmd.Flags().GetString("search")
		rows := make([][]string, 0, len(lawyers))
		for _, l := range views.FilterLawyers(lawyers, search) {
			rows = append(rows, []string{
				l.ID.String(),
				l.Name,
				l.Specialization,
				fmt.Sprint(l.ExperienceYears),
				string(l.HourlyRate),
				fmt.Sprintf("%d/%d", counts[l.ID], l.MaxCases),
			})
		}
		printTable(cmd.OutOrStdout(), "No lawyers found.", []string{"ID", "Name", "Specialization", "Years", "Rate", "Cases"}, rows)
		return nil
	}),
}

var lawyersCasesCmd = &cobra.Command{
	Use:   "cases <id>",
	Short: "Show the cases of one lawyer",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathLawyers, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		lawyer, err := app.Resources.Lawyers.Get(ctx, application.ID(args[0]))
		if err != nil {
			return failure("get lawyer "+args[0], err)
		}
		cases, err := app.Resources.Cases.List(ctx)
		if err != nil {
			return failure("list cases", err)
		}
		rows := make([][]string, 0)
		for _, c := range views.LawyerCases(lawyer.ID, cases) {
			rows = append(rows, []string{c.ID.String(), c.CaseNumber, c.CaseType, c.FiledIn.String(), yesNo(c.IsResolved)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cases for %s\n", lawyer.Name)
		printTable(cmd.OutOrStdout(), "No cases.", []string{"ID", "Number", "Type", "Filed", "Resolved"}, rows)
		return nil
	}),
}

var lawyersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Add a lawyer",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathLawyers, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		in := application.LawyerInput{Name: args[0]}
		in.Specialization, _ = flags.GetString("specialization")
		in.ExperienceYears, _ = flags.GetInt("experience")
		rate, _ := flags.GetString("rate")
		in.HourlyRate = application.Decimal(rate)
		in.MaxCases, _ = flags.GetInt("max-cases")
		in.PhoneNumber, _ = flags.GetString("phone-number")

		l, err := app.Resources.Lawyers.Create(ctx, in)
		if err != nil {
			return failure("create lawyer", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created lawyer %s (%s).\n", l.ID, l.Name)
		return nil
	}),
}

var lawyersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a lawyer",
	Args:  cobra.ExactArgs(1),
	RunE: protected(application.PathLawyers, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		if err := app.Resources.Lawyers.Delete(ctx, application.ID(args[0])); err != nil {
			return failure("delete lawyer "+args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted lawyer %s.\n", args[0])
		return nil
	}),
}

func init() {
	lawyersListCmd.Flags().String("search", "", "match against the name")

	lawyersCreateCmd.Flags().String("specialization", "", "case type the lawyer works on")
	lawyersCreateCmd.Flags().Int("experience", 0, "years of experience")
	lawyersCreateCmd.Flags().String("rate", "", "hourly rate, for example 150.00")
	lawyersCreateCmd.Flags().Int("max-cases", 0, "maximum concurrent cases")
	lawyersCreateCmd.Flags().String("phone-number", "", "phone number")

	lawyersCmd.AddCommand(lawyersListCmd)
	lawyersCmd.AddCommand(lawyersCasesCmd)
	lawyersCmd.AddCommand(lawyersCreateCmd)
	lawyersCmd.AddCommand(lawyersDeleteCmd)
}
