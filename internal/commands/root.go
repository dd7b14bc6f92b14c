package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "courtdesk",
	Short: "Console for the court-scheduling service",
	Long: `courtdesk signs in to the court-scheduling backend and works with its cases,
judges, lawyers and hearing schedules from the terminal. Use "courtdesk watch"
for a live dashboard that refreshes on its own.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL (overrides COURTDESK_BASE_URL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(judgesCmd)
	rootCmd.AddCommand(lawyersCmd)
	rootCmd.AddCommand(schedulesCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveStubCmd)
	rootCmd.AddCommand(versionCmd)
}
