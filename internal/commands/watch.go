package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live console",
	Long: `watch opens a full screen console that keeps the collections fresh by
polling the backend. Anonymous sessions are sent to a sign-in form first and
return to the requested view afterwards.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationFullScreen: "true"},
	RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		route := "/" + view
		if !application.IsGuarded(route) {
			return fmt.Errorf("unknown view %q", view)
		}
		return tui.Run(ctx, tui.Options{
			Auth:      app.Auth,
			Session:   app.Session,
			Guard:     app.Guard,
			Resources: app.Resources,
			Refresher: app.Refresher,
			Logger:    app.Logger,
			Now:       app.Now,
			TrendDays: app.Config.TrendDays,
			Route:     route,
		})
	}),
}

func init() {
	watchCmd.Flags().String("view", "dashboard", "first view to open (dashboard, cases, judges, lawyers, schedules)")
}
