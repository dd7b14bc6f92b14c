// Package migration applies versioned schema changes to the local state
// database.
//
// Migrations are SQL files named {version}_{description}.sql read from an
// fs.FS, normally an embedded directory. Applied versions are tracked in the
// schema_migrations table; each migration runs in its own transaction together
// with its bookkeeping row, so a failed migration leaves no trace.
package migration
