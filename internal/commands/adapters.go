package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/persistence"
)

const returnPathKey = "guard.return_path"

// cookieStoreAdapter keeps the client's cookies in the cookies table.
type cookieStoreAdapter struct {
	repo persistence.CookieRepository
	now  func() time.Time
}

func (a cookieStoreAdapter) LoadCookies(ctx context.Context, host string) ([]*http.Cookie, error) {
	now := a.now()
	if err := a.repo.DeleteExpiredCookies(ctx, now); err != nil {
		return nil, err
	}
	stored, err := a.repo.ListCookies(ctx, host, now)
	if err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return cookies, nil
}

// SaveCookies mirrors Set-Cookie semantics: a negative Max-Age or a past
// expiry deletes, a positive Max-Age wins over Expires.
func (a cookieStoreAdapter) SaveCookies(ctx context.Context, host string, cookies []*http.Cookie) error {
	now := a.now()
	var errs []error
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			path := c.Path
			if path == "" {
				path = "/"
			}
			errs = append(errs, a.repo.DeleteCookie(ctx, host, c.Name, path))
			continue
		}
		errs = append(errs, a.repo.UpsertCookie(ctx, persistence.Cookie{
			Host:      host,
			Name:      c.Name,
			Value:     c.Value,
			Path:      c.Path,
			Domain:    c.Domain,
			Expires:   expires,
			Secure:    c.Secure,
			HTTPOnly:  c.HttpOnly,
			UpdatedAt: now,
		}))
	}
	return errors.Join(errs...)
}

// snapshotStoreAdapter keeps the refresher's last good collections.
type snapshotStoreAdapter struct {
	repo persistence.SnapshotRepository
}

func (a snapshotStoreAdapter) SaveSnapshot(ctx context.Context, resource string, payload []byte, fetchedAt time.Time) error {
	return a.repo.SaveSnapshot(ctx, persistence.Snapshot{Resource: resource, Payload: payload, FetchedAt: fetchedAt})
}

func (a snapshotStoreAdapter) ClearSnapshots(ctx context.Context) error {
	return a.repo.DeleteSnapshots(ctx)
}

func (a snapshotStoreAdapter) LoadSnapshots(ctx context.Context) (map[string]application.StoredSnapshot, error) {
	stored, err := a.repo.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]application.StoredSnapshot, len(stored))
	for _, s := range stored {
		out[s.Resource] = application.StoredSnapshot{Payload: s.Payload, FetchedAt: s.FetchedAt}
	}
	return out, nil
}

// returnPathAdapter remembers the guard's destination between invocations.
type returnPathAdapter struct {
	kv persistence.KeyValueRepository
}

func (a returnPathAdapter) SaveReturnPath(ctx context.Context, path string) error {
	return a.kv.Put(ctx, returnPathKey, path)
}

func (a returnPathAdapter) TakeReturnPath(ctx context.Context) (string, error) {
	path, err := a.kv.Get(ctx, returnPathKey)
	if errors.Is(err, persistence.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, a.kv.Delete(ctx, returnPathKey)
}
