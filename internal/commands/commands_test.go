package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/persistence/sqlite"
	"github.com/example/courtdesk/internal/stubapi"
	"github.com/example/courtdesk/internal/testfixtures"
)

// Commands share package level cobra state, so these tests run sequentially.

func newBackend(t *testing.T) {
	t.Helper()

	backend := testfixtures.NewBackend(t)
	t.Setenv("COURTDESK_BASE_URL", backend.BaseURL())
	t.Setenv("COURTDESK_STATE_PATH", filepath.Join(t.TempDir(), "state", "courtdesk.db"))
	t.Setenv("COURTDESK_LOG_LEVEL", "error")
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("courtdesk %s returned error: %v", strings.Join(args, " "), err)
	}
	return out
}

func login(t *testing.T) {
	t.Helper()
	mustRun(t, "login", stubapi.DemoUsername, "--password", stubapi.DemoPassword)
}

func TestGuardedCommandsRequireLogin(t *testing.T) {
	newBackend(t)

	_, err := run(t, "", "judges", "list")
	if !errors.Is(err, application.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "courtdesk login") {
		t.Fatalf("expected login hint, got %q", err.Error())
	}

	out, err := run(t, stubapi.DemoPassword+"\n", "login", stubapi.DemoUsername)
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !strings.Contains(out, "Logged in as Court Clerk") {
		t.Fatalf("unexpected login output: %q", out)
	}
	if !strings.Contains(out, "courtdesk judges list") {
		t.Fatalf("expected the refused command as next step, got %q", out)
	}

	out = mustRun(t, "judges", "list")
	if !strings.Contains(out, "Hon. Amina Odhiambo") {
		t.Fatalf("session cookie was not reused: %q", out)
	}

	out = mustRun(t, "whoami")
	if !strings.Contains(out, "clerk (clerk@courtdesk.example)") {
		t.Fatalf("unexpected whoami output: %q", out)
	}

	mustRun(t, "logout")
	if _, err := run(t, "", "judges", "list"); !errors.Is(err, application.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", err)
	}
	if out := mustRun(t, "whoami"); !strings.Contains(out, "Not logged in.") {
		t.Fatalf("unexpected whoami output after logout: %q", out)
	}
}

func TestLoginRejected(t *testing.T) {
	newBackend(t)

	_, err := run(t, "", "login", stubapi.DemoUsername, "--password", "wrong")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("expected backend message, got %v", err)
	}

	_, err = run(t, "", "login", stubapi.DemoUsername)
	if err == nil || !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected missing password error, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	newBackend(t)

	out := mustRun(t, "register", "registrar", "--email", "registrar@courtdesk.example", "--password", "s3cret", "--first-name", "Jane", "--last-name", "Registrar")
	if !strings.Contains(out, "Registered and logged in as Jane Registrar") {
		t.Fatalf("unexpected register output: %q", out)
	}

	_, err := run(t, "", "register", "registrar", "--email", "x@courtdesk.example", "--password", "other")
	if err == nil || err.Error() != "Username already exists" {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
}

func TestCaseLifecycle(t *testing.T) {
	newBackend(t)
	login(t)

	out := mustRun(t, "cases", "list", "--type", "criminal")
	if !strings.Contains(out, "CR/114/2025") || strings.Contains(out, "HCCC/001/2025") {
		t.Fatalf("type filter not applied: %q", out)
	}
	if !strings.Contains(out, "Hon. Peter Kamau") {
		t.Fatalf("expected judge name in listing: %q", out)
	}

	out = mustRun(t, "cases", "create", "--number", "HCCC/900/2025", "--filed", "2025-01-06", "--urgency", "0.4", "--lawyers", "1,2")
	if !strings.Contains(out, "Created case 6 (HCCC/900/2025)") {
		t.Fatalf("unexpected create output: %q", out)
	}

	out = mustRun(t, "cases", "get", "6")
	for _, want := range []string{"filed:       2025-01-06", "urgency:     0.4", "lawyers:     1,2", "resolved:    no"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}

	mustRun(t, "cases", "update", "6", "--resolved", "--description", "Settled")
	out = mustRun(t, "cases", "get", "6")
	if !strings.Contains(out, "resolved:    yes") || !strings.Contains(out, "description: Settled") {
		t.Fatalf("update not applied: %q", out)
	}
	if !strings.Contains(out, "lawyers:     1,2") {
		t.Fatalf("update dropped unchanged fields: %q", out)
	}

	mustRun(t, "cases", "delete", "6")
	if _, err := run(t, "", "cases", "get", "6"); err == nil || !strings.Contains(err.Error(), "Not found.") {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	_, err := run(t, "", "cases", "create", "--number", "BAD/1", "--urgency", "3")
	if err == nil || !strings.Contains(err.Error(), "urgency") {
		t.Fatalf("expected urgency validation error, got %v", err)
	}
}

func TestJudgesAndLawyers(t *testing.T) {
	newBackend(t)
	login(t)

	out := mustRun(t, "judges", "schedule", "1")
	if !strings.Contains(out, "Hearings for Hon. Amina Odhiambo") || !strings.Contains(out, "HCCC/001/2025") {
		t.Fatalf("unexpected judge schedule: %q", out)
	}

	out = mustRun(t, "lawyers", "list", "--search", "faith")
	if !strings.Contains(out, "Faith Njeri") || strings.Contains(out, "Daniel Mwangi") {
		t.Fatalf("search not applied: %q", out)
	}
	if !strings.Contains(out, "1/8") {
		t.Fatalf("expected case count against capacity: %q", out)
	}

	out = mustRun(t, "lawyers", "cases", "1")
	if !strings.Contains(out, "HCCC/001/2025") || !strings.Contains(out, "HCCC/009/2025") {
		t.Fatalf("unexpected lawyer cases: %q", out)
	}

	out = mustRun(t, "judges", "create", "Hon. New Judge", "--court", "Court of Appeal", "--specialization", "civil")
	if !strings.Contains(out, "Created judge 4 (Hon. New Judge)") {
		t.Fatalf("unexpected create output: %q", out)
	}
	mustRun(t, "judges", "delete", "4")

	out = mustRun(t, "lawyers", "create", "New Advocate", "--rate", "180.00")
	if !strings.Contains(out, "Created lawyer 4 (New Advocate)") {
		t.Fatalf("unexpected create output: %q", out)
	}
}

func TestDashboardAndSchedules(t *testing.T) {
	newBackend(t)
	login(t)

	out := mustRun(t, "dashboard")
	for _, want := range []string{"Overview", "Cases filed", "Recent hearings", "Pending cases", "FAM/027/2025"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in dashboard: %q", want, out)
		}
	}

	if got := storedSnapshots(t); got != len(application.ResourceNames) {
		t.Fatalf("expected the dashboard to persist every collection, got %d", got)
	}

	out = mustRun(t, "regenerate")
	if !strings.Contains(out, `"status": "ok"`) {
		t.Fatalf("unexpected regenerate output: %q", out)
	}

	out = mustRun(t, "schedules", "list")
	if !strings.Contains(out, "FAM/027/2025") {
		t.Fatalf("expected regenerated hearing in schedule list: %q", out)
	}

	mustRun(t, "logout")
	if got := storedSnapshots(t); got != 0 {
		t.Fatalf("expected logout to clear cached collections, got %d", got)
	}
}

func storedSnapshots(t *testing.T) int {
	t.Helper()

	ctx := context.Background()
	storage, err := sqlite.Open(ctx, os.Getenv("COURTDESK_STATE_PATH"), nil)
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	defer storage.Close()
	snapshots, err := storage.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	return len(snapshots)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-01-06")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	out := mustRun(t, "version")
	if out != "courtdesk 1.2.3 (commit abc123, built 2025-01-06)\n" {
		t.Fatalf("unexpected version output: %q", out)
	}
}
