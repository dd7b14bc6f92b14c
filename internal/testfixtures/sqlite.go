package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/courtdesk/internal/persistence"
	"github.com/example/courtdesk/internal/persistence/sqlite"
	"github.com/example/courtdesk/internal/persistence/sqlite/migration"
)

// StateHarness provides repository access backed by a temporary, migrated
// state database.
type StateHarness struct {
	Storage   *sqlite.Storage
	Cookies   persistence.CookieRepository
	Snapshots persistence.SnapshotRepository
	Values    persistence.KeyValueRepository
}

// NewStateHarness opens a fresh state database that is closed when the test
// ends.
func NewStateHarness(tb testing.TB) *StateHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "state.db")
	storage, err := sqlite.OpenWithConfig(context.Background(), migration.TempFileTestSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open state database: %v", err)
	}
	tb.Cleanup(func() {
		_ = storage.Close()
	})

	return &StateHarness{
		Storage:   storage,
		Cookies:   storage,
		Snapshots: storage,
		Values:    storage,
	}
}
