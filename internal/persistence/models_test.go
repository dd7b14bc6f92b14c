package persistence

import (
	"testing"
	"time"
)

func TestCookie_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{name: "session cookie", want: false},
		{name: "future", expires: now.Add(time.Minute), want: false},
		{name: "exactly now", expires: now, want: true},
		{name: "past", expires: now.Add(-time.Minute), want: true},
	}
	for _, tc := range cases {
		if got := (Cookie{Expires: tc.expires}).Expired(now); got != tc.want {
			t.Fatalf("%s: Expired() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
