package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/courtdesk/internal/persistence"
)

// SaveSnapshot replaces the snapshot of one collection.
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot persistence.Snapshot) error {
	resource := strings.TrimSpace(snapshot.Resource)
	if resource == "" || snapshot.Payload == nil {
		return persistence.ErrConstraintViolation
	}
	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (resource, payload, fetched_at) VALUES (?, ?, ?)
			ON CONFLICT (resource) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
			resource, snapshot.Payload, formatTime(fetchedAt))
		return mapError(err)
	})
}

// ListSnapshots returns every stored snapshot ordered by resource.
func (s *Storage) ListSnapshots(ctx context.Context) ([]persistence.Snapshot, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT resource, payload, fetched_at FROM snapshots ORDER BY resource`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var snapshots []persistence.Snapshot
	for rows.Next() {
		var (
			snap      persistence.Snapshot
			fetchedAt string
		)
		if err := rows.Scan(&snap.Resource, &snap.Payload, &fetchedAt); err != nil {
			return nil, mapError(err)
		}
		if snap.FetchedAt, err = parseTime(fetchedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse fetched_at: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, mapError(rows.Err())
}

// DeleteSnapshots removes every stored snapshot.
func (s *Storage) DeleteSnapshots(ctx context.Context) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM snapshots`)
		return mapError(err)
	})
}
