package commands

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/logging"
	"github.com/example/courtdesk/internal/stubapi"
)

var serveStubCmd = &cobra.Command{
	Use:   "serve-stub",
	Short: "Run an in-memory backend for demos and tests",
	Long: `serve-stub starts an HTTP server that answers the same endpoints as the
court-scheduling backend from memory. With --seed it starts with a demo user
and a handful of judges, lawyers, cases and hearings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.StubAddr
		}
		requireAuth, _ := cmd.Flags().GetBool("require-auth")
		seed, _ := cmd.Flags().GetBool("seed")

		srv := stubapi.New(stubapi.Options{
			Logger:      logger,
			Location:    time.Local,
			RequireAuth: requireAuth,
		})
		if seed {
			if err := stubapi.Seed(srv.Store(), time.Local); err != nil {
				return fmt.Errorf("seed stub: %w", err)
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logging.ContextWithLogger(ctx, logger)
		return srv.ListenAndServe(ctx, addr, func(bound net.Addr) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stub backend listening on http://%s/api\n", bound)
			if seed {
				fmt.Fprintf(out, "Demo login: %s / %s\n", stubapi.DemoUsername, stubapi.DemoPassword)
			}
		})
	},
}

func init() {
	serveStubCmd.Flags().String("addr", "", "listen address (defaults to COURTDESK_STUB_ADDR)")
	serveStubCmd.Flags().Bool("seed", true, "load demo data")
	serveStubCmd.Flags().Bool("require-auth", false, "refuse resource requests without a session")
}
