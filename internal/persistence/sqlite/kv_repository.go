package sqlite

import (
	"context"
	"strings"

	"github.com/example/courtdesk/internal/persistence"
)

// Put stores value under key.
func (s *Storage) Put(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(s.now()))
	return mapError(err)
}

// Get returns the value stored under key or persistence.ErrNotFound.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, strings.TrimSpace(key)).Scan(&value)
	if err != nil {
		return "", mapError(err)
	}
	return value, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.pool.DB().ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, strings.TrimSpace(key))
	return mapError(err)
}
