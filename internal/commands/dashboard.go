package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show case statistics, the filing trend and upcoming work",
	Args:  cobra.NoArgs,
	RunE: protected(application.PathDashboard, func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		snap := loadSnapshot(ctx, app)
		writeDashboard(cmd.OutOrStdout(), views.Compose(snap, app.Now(), app.Config.TrendDays))
		return nil
	}),
}

// loadSnapshot restores the cached collections and refreshes them once. A
// failed refresh leaves the cached copies in place.
func loadSnapshot(ctx context.Context, app *App) application.Snapshot {
	if err := app.Refresher.Restore(ctx); err != nil {
		app.Logger.WarnContext(ctx, "restore cached collections failed", "error", err)
	}
	if err := app.Refresher.RefreshNow(ctx); err != nil {
		app.Logger.WarnContext(ctx, "refresh failed", "error", err, "error_kind", application.ErrorKind(err))
	}
	return app.Refresher.Snapshot()
}

func writeDashboard(w io.Writer, d views.Dashboard) {
	fmt.Fprintln(w, "Overview")
	printTable(w, "", []string{"Total cases", "Judges", "Scheduled today", "Pending"}, [][]string{{
		fmt.Sprint(d.Stats.TotalCases),
		fmt.Sprint(d.Stats.TotalJudges),
		fmt.Sprint(d.Stats.ScheduledToday),
		fmt.Sprint(d.Stats.PendingCases),
	}})

	fmt.Fprintln(w, "\nCases filed")
	trend := make([][]string, 0, len(d.Trend))
	for _, b := range d.Trend {
		trend = append(trend, []string{b.Day, fmt.Sprint(b.Count), strings.Repeat("#", b.Count)})
	}
	printTable(w, "No trend data.", []string{"Day", "Filed", ""}, trend)

	fmt.Fprintln(w, "\nRecent hearings")
	writeScheduleEntries(w, d.RecentSchedules)

	fmt.Fprintln(w, "\nPending cases")
	pending := make([][]string, 0, len(d.PendingCases))
	for _, c := range d.PendingCases {
		pending = append(pending, []string{c.ID.String(), c.CaseNumber, c.CaseType, c.FiledIn.String(), formatFloat(c.Urgency)})
	}
	printTable(w, "No pending cases.", []string{"ID", "Number", "Type", "Filed", "Urgency"}, pending)

	if !d.Loaded {
		fmt.Fprintln(w, "\nSome collections have not loaded yet.")
	}
	if len(d.Errors) > 0 {
		names := make([]string, 0, len(d.Errors))
		for name := range d.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "\nErrors")
		for _, name := range names {
			fmt.Fprintln(w, "  "+errorLine(name, d.Errors[name]))
		}
	}
}

func writeScheduleEntries(w io.Writer, entries []views.ScheduleEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Schedule.ID.String(),
			e.CaseLabel,
			e.Schedule.Judge.String(),
			e.Schedule.StartTime.String(),
			e.Schedule.EndTime.String(),
			e.Schedule.Room,
		})
	}
	printTable(w, "No hearings scheduled.", []string{"ID", "Case", "Judge", "Start", "End", "Room"}, rows)
}
