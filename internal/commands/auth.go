package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/courtdesk/internal/application"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in to the backend",
	Long: `Sign in with a username and password. Without --password the password is
read from the first line of standard input. After a successful login the
command that was refused for lack of a session is suggested.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd)
		if err != nil {
			return err
		}
		user, err := app.Auth.Login(ctx, args[0], password)
		if err != nil {
			return authFailure(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as %s.\n", user.DisplayName())
		fmt.Fprintf(out, "Continue with: %s\n", commandFor(app.Guard.ReturnPath(ctx)))
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := passwordFrom(cmd)
		if err != nil {
			return err
		}
		profile := make(map[string]string)
		for _, field := range []string{"first_name", "last_name", "city", "phone_number"} {
			if value, _ := cmd.Flags().GetString(strings.ReplaceAll(field, "_", "-")); value != "" {
				profile[field] = value
			}
		}

		user, err := app.Auth.Register(ctx, application.RegisterParams{
			Username: args[0],
			Email:    email,
			Password: password,
			Profile:  profile,
		})
		if err != nil {
			return authFailure(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s.\n", user.DisplayName())
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		if err := app.Refresher.Pause(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cached collections were not cleared: %v\n", err)
		}
		if err := app.Auth.Logout(ctx); err != nil {
			// Local credentials are gone either way.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: backend logout failed: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
		user := app.Session.Identity()
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Username, user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\n", app.Client.BaseURL())
		return nil
	}),
}

func passwordFrom(cmd *cobra.Command) (string, error) {
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		return password, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

// authFailure surfaces the backend's message rather than the wrapped chain.
func authFailure(err error) error {
	var authErr *application.AuthError
	if errors.As(err, &authErr) {
		return errors.New(authErr.Message)
	}
	return err
}

func init() {
	loginCmd.Flags().String("password", "", "password (read from stdin when omitted)")

	registerCmd.Flags().String("email", "", "e-mail address")
	registerCmd.Flags().String("password", "", "password (read from stdin when omitted)")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("city", "", "city")
	registerCmd.Flags().String("phone-number", "", "phone number")
}
