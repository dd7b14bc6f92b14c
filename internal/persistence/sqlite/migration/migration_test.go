package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sql/001_create_items.sql": {Data: []byte("-- items\nCREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL);\n")},
		"sql/002_add_tags.sql":     {Data: []byte("CREATE TABLE tags (name TEXT PRIMARY KEY);\nINSERT INTO tags (name) VALUES ('a');")},
		"sql/README.md":            {Data: []byte("ignored")},
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	migrations, err := Scan(testFS(), "sql")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(migrations) != 2 || migrations[0].Version != "001" || migrations[1].Version != "002" {
		t.Fatalf("unexpected migrations %#v", migrations)
	}
	if migrations[0].Description != "create items" || migrations[0].Checksum == "" {
		t.Fatalf("unexpected metadata %#v", migrations[0])
	}

	bad := fstest.MapFS{"sql/init.sql": {Data: []byte("SELECT 1;")}}
	if _, err := Scan(bad, "sql"); !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
	}

	dup := fstest.MapFS{
		"sql/1_a.sql": {Data: []byte("SELECT 1;")},
		"sql/1_b.sql": {Data: []byte("SELECT 2;")},
		"sql/2_c.sql": {Data: []byte("-- only a comment\n")},
		"sql/3_d.sql": {Data: []byte("SELECT 3;")},
	}
	if _, err := Scan(dup, "sql"); err == nil {
		t.Fatalf("expected duplicate or empty migration to be rejected")
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	got := splitStatements("-- header\nCREATE TABLE a (x INT);\n\n-- note\n;CREATE INDEX i ON a(x);")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE INDEX i ON a(x)" {
		t.Fatalf("unexpected statements %#v", got)
	}
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "state.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	manager := NewManager(db, testFS(), "sql", nil)
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second Run should be a no-op, got %v", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
		t.Fatalf("unexpected status %#v", status)
	}

	var tags int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&tags); err != nil {
		t.Fatalf("query tags: %v", err)
	}
	if tags != 1 {
		t.Fatalf("expected seeded tag row, got %d", tags)
	}

	edited := testFS()
	edited["sql/001_create_items.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE items (id INTEGER);")}
	if _, err := NewManager(db, edited, "sql", nil).Status(ctx); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestManager_RunRollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	db, err := Open(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "state.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	broken := fstest.MapFS{
		"sql/001_partial.sql": {Data: []byte("CREATE TABLE ok (id INTEGER);\nCREATE TABLE ok (id INTEGER);")},
	}
	ctx := context.Background()
	if err := NewManager(db, broken, "sql", nil).Run(ctx); err == nil {
		t.Fatalf("expected the duplicate table to fail the migration")
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok'`).Scan(&count); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected the failed migration to be rolled back")
	}

	if err := (SQLiteConfig{}).Validate(); err == nil {
		t.Fatalf("expected empty DSN to be rejected")
	}
}
