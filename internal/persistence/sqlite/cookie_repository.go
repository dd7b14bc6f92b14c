package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/courtdesk/internal/persistence"
)

// UpsertCookie stores or replaces a cookie identified by host, name and path.
func (s *Storage) UpsertCookie(ctx context.Context, cookie persistence.Cookie) error {
	host := strings.ToLower(strings.TrimSpace(cookie.Host))
	name := strings.TrimSpace(cookie.Name)
	if host == "" || name == "" {
		return persistence.ErrConstraintViolation
	}
	path := cookie.Path
	if path == "" {
		path = "/"
	}

	var expires sql.NullString
	if !cookie.Expires.IsZero() {
		expires = sql.NullString{String: formatTime(cookie.Expires), Valid: true}
	}
	updated := cookie.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	_, err := s.pool.DB().ExecContext(ctx, `
		INSERT INTO cookies (host, name, path, value, domain, expires_at, secure, http_only, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, name, path) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = excluded.updated_at`,
		host, name, path, cookie.Value, cookie.Domain, expires, boolToInt(cookie.Secure), boolToInt(cookie.HTTPOnly), formatTime(updated),
	)
	return mapError(err)
}

// ListCookies returns the unexpired cookies for host.
func (s *Storage) ListCookies(ctx context.Context, host string, reference time.Time) ([]persistence.Cookie, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT host, name, path, value, domain, expires_at, secure, http_only, updated_at
		FROM cookies
		WHERE host = ?
		ORDER BY name, path`, strings.ToLower(strings.TrimSpace(host)))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var cookies []persistence.Cookie
	for rows.Next() {
		var (
			c               persistence.Cookie
			expires         sql.NullString
			secure, httpO   int
			updatedAtString string
		)
		if err := rows.Scan(&c.Host, &c.Name, &c.Path, &c.Value, &c.Domain, &expires, &secure, &httpO, &updatedAtString); err != nil {
			return nil, mapError(err)
		}
		if expires.Valid {
			if c.Expires, err = parseTime(expires.String); err != nil {
				return nil, fmt.Errorf("sqlite: parse cookie expiry: %w", err)
			}
		}
		if c.UpdatedAt, err = parseTime(updatedAtString); err != nil {
			return nil, fmt.Errorf("sqlite: parse cookie updated_at: %w", err)
		}
		c.Secure = secure != 0
		c.HTTPOnly = httpO != 0
		if c.Expired(reference) {
			continue
		}
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return cookies, nil
}

// DeleteCookie removes one cookie. Deleting a missing cookie is not an error.
func (s *Storage) DeleteCookie(ctx context.Context, host, name, path string) error {
	if path == "" {
		path = "/"
	}
	_, err := s.pool.DB().ExecContext(ctx,
		`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`,
		strings.ToLower(strings.TrimSpace(host)), name, path)
	return mapError(err)
}

// DeleteExpiredCookies removes cookies whose expiry is at or before reference.
func (s *Storage) DeleteExpiredCookies(ctx context.Context, reference time.Time) error {
	_, err := s.pool.DB().ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, formatTime(reference))
	return mapError(err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
