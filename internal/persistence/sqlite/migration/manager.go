package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
)

// Manager applies the migrations found in a directory of an fs.FS.
type Manager struct {
	executor *Executor
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
}

// NewManager creates a Manager.
func NewManager(db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{executor: NewExecutor(db), fsys: fsys, dir: dir, logger: logger}
}

// Status reports applied and pending migrations. An applied migration whose
// file changed afterwards is reported as ErrChecksumMismatch.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := Scan(m.fsys, m.dir)
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}

	checksums := make(map[string]string, len(applied))
	status := Status{Applied: applied}
	for _, a := range applied {
		checksums[a.Version] = a.Checksum
		status.CurrentVersion = a.Version
	}
	for _, candidate := range available {
		sum, done := checksums[candidate.Version]
		if !done {
			status.Pending = append(status.Pending, candidate)
			continue
		}
		if sum != "" && sum != candidate.Checksum {
			return status, NewMigrationError(candidate.Version, candidate.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return status, nil
}

// Run applies every pending migration in order.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if len(status.Pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil
	}

	for _, pending := range status.Pending {
		if err := m.executor.Execute(ctx, pending); err != nil {
			return fmt.Errorf("apply migration %s: %w", pending.Version, err)
		}
		m.logger.InfoContext(ctx, "migration applied", "version", pending.Version, "description", pending.Description)
	}
	return nil
}
