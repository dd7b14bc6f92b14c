package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/courtdesk/internal/persistence"
	"github.com/example/courtdesk/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Storage is the SQLite-backed local state: cookies, collection snapshots and
// a small key/value table.
type Storage struct {
	pool *ConnectionPool
	now  func() time.Time
}

var (
	_ persistence.CookieRepository   = (*Storage)(nil)
	_ persistence.SnapshotRepository = (*Storage)(nil)
	_ persistence.KeyValueRepository = (*Storage)(nil)
)

// Open opens (creating if needed) the state database at path and applies
// pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(ctx, migration.DefaultSQLiteConfig(path), logger)
}

// OpenWithConfig is Open with explicit connection settings.
func OpenWithConfig(ctx context.Context, config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	s := &Storage{pool: pool, now: time.Now}
	if err := s.Migrate(ctx, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the embedded migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	if err := migration.NewManager(s.pool.DB(), migrationFiles, "migrations", logger).Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(timeLayout, raw)
}
