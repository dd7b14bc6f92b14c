package persistence

import "time"

// Cookie is a backend cookie persisted between console runs.
type Cookie struct {
	Host      string
	Name      string
	Value     string
	Path      string
	Domain    string
	Expires   time.Time
	Secure    bool
	HTTPOnly  bool
	UpdatedAt time.Time
}

// Expired reports whether the cookie has an expiry at or before reference.
// Cookies without an expiry never expire here.
func (c Cookie) Expired(reference time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(reference)
}

// Snapshot is the last successfully fetched copy of one backend collection.
type Snapshot struct {
	Resource  string
	Payload   []byte
	FetchedAt time.Time
}
