package persistence

import (
	"context"
	"time"
)

// CookieRepository stores cookies per backend host.
type CookieRepository interface {
	UpsertCookie(ctx context.Context, cookie Cookie) error
	ListCookies(ctx context.Context, host string, reference time.Time) ([]Cookie, error)
	DeleteCookie(ctx context.Context, host, name, path string) error
	DeleteExpiredCookies(ctx context.Context, reference time.Time) error
}

// SnapshotRepository stores one snapshot per collection.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	DeleteSnapshots(ctx context.Context) error
}

// KeyValueRepository stores small pieces of console state.
type KeyValueRepository interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
