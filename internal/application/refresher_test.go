package application

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/courtdesk/internal/apiclient"
)

type snapshotStoreStub struct {
	mu    sync.Mutex
	saved map[string]StoredSnapshot
}

func (s *snapshotStoreStub) SaveSnapshot(_ context.Context, resource string, payload []byte, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]StoredSnapshot)
	}
	s.saved[resource] = StoredSnapshot{Payload: append([]byte(nil), payload...), FetchedAt: fetchedAt}
	return nil
}

func (s *snapshotStoreStub) ClearSnapshots(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
	return nil
}

func (s *snapshotStoreStub) LoadSnapshots(context.Context) (map[string]StoredSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]StoredSnapshot, len(s.saved))
	for k, v := range s.saved {
		out[k] = v
	}
	return out, nil
}

func courtTransport() *transportStub {
	transport := newTransportStub()
	transport.respond(http.MethodGet, "/cases/", `[{"id": 1, "case_number": "CIV-1", "filed_in": "2025-01-10", "assigned_judge": null, "lawyers": [7]}, {"id": 2, "case_number": "CRI-2", "filed_in": "2025-01-09", "assigned_judge": 5, "lawyers": ["7"]}]`)
	transport.respond(http.MethodGet, "/judges/", `[{"id": 5, "name": "Rao", "court": "Court 2"}]`)
	transport.respond(http.MethodGet, "/lawyers/", `[{"id": 7, "name": "Iyer"}]`)
	transport.respond(http.MethodGet, "/schedules/", `[{"id": 1, "case": 2, "judge": 5, "start_time": "2025-01-10T10:00", "room": "Courtroom 1"}]`)
	return transport
}

func fixedNow() time.Time {
	return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
}

func TestRefresher_RefreshNow(t *testing.T) {
	t.Parallel()

	t.Run("loads all four collections", func(t *testing.T) {
		t.Parallel()

		r := NewRefresher(NewResources(courtTransport()), RefresherOptions{Now: fixedNow, CycleID: func() string { return "cycle-1" }})
		if err := r.RefreshNow(context.Background()); err != nil {
			t.Fatalf("RefreshNow failed: %v", err)
		}

		snap := r.Snapshot()
		if !snap.Loaded() {
			t.Fatalf("expected every collection to be loaded, got %#v", snap.Status)
		}
		if len(snap.Cases) != 2 || len(snap.Judges) != 1 || len(snap.Lawyers) != 1 || len(snap.Schedules) != 1 {
			t.Fatalf("unexpected snapshot sizes %#v", snap)
		}
		if snap.CycleID != "cycle-1" || !snap.RefreshedAt.Equal(fixedNow()) {
			t.Fatalf("unexpected cycle metadata %q %v", snap.CycleID, snap.RefreshedAt)
		}
	})

	t.Run("a failing collection keeps its last good data and does not block the others", func(t *testing.T) {
		t.Parallel()

		transport := courtTransport()
		r := NewRefresher(NewResources(transport), RefresherOptions{Now: fixedNow})
		if err := r.RefreshNow(context.Background()); err != nil {
			t.Fatalf("first refresh failed: %v", err)
		}

		transport.fail(http.MethodGet, "/judges/", &apiclient.TransportError{Method: "GET", URL: "/judges/", Err: errors.New("refused")})
		transport.respond(http.MethodGet, "/lawyers/", `[{"id": 7, "name": "Iyer"}, {"id": 8, "name": "Das"}]`)

		err := r.RefreshNow(context.Background())
		if err == nil {
			t.Fatalf("expected the judges failure to be reported")
		}
		snap := r.Snapshot()
		if len(snap.Judges) != 1 {
			t.Fatalf("expected stale judges to be kept, got %#v", snap.Judges)
		}
		if len(snap.Lawyers) != 2 {
			t.Fatalf("expected lawyers to update despite the judges failure")
		}
		if snap.Errors()[ResourceJudges] == nil || !snap.Status[ResourceJudges].Loaded {
			t.Fatalf("expected judges status to carry the error, got %#v", snap.Status[ResourceJudges])
		}
	})

	t.Run("keeps at most one cycle in flight", func(t *testing.T) {
		t.Parallel()

		transport := courtTransport()
		release := make(chan struct{})
		entered := make(chan struct{}, 1)
		transport.handle(http.MethodGet, "/cases/", func(ctx context.Context, _ []byte) (any, error) {
			entered <- struct{}{}
			<-release
			return `[]`, nil
		})

		r := NewRefresher(NewResources(transport), RefresherOptions{Now: fixedNow})
		done := make(chan error, 1)
		go func() { done <- r.RefreshNow(context.Background()) }()
		<-entered

		if err := r.RefreshNow(context.Background()); !errors.Is(err, ErrRefreshInFlight) {
			t.Fatalf("expected ErrRefreshInFlight, got %v", err)
		}
		if !r.InFlight() {
			t.Fatalf("expected InFlight to report the outstanding cycle")
		}
		close(release)
		if err := <-done; err != nil {
			t.Fatalf("first cycle failed: %v", err)
		}
		if got := transport.callCount(http.MethodGet, "/cases/"); got != 1 {
			t.Fatalf("expected a single cases fetch, got %d", got)
		}
		if transport.peak.Load() > 4 {
			t.Fatalf("expected at most four concurrent requests, got %d", transport.peak.Load())
		}
	})

	t.Run("discards results that arrive after Stop", func(t *testing.T) {
		t.Parallel()

		transport := courtTransport()
		release := make(chan struct{})
		entered := make(chan struct{}, 1)
		transport.handle(http.MethodGet, "/judges/", func(ctx context.Context, _ []byte) (any, error) {
			entered <- struct{}{}
			<-release
			return `[{"id": 5, "name": "Late"}]`, nil
		})

		r := NewRefresher(NewResources(transport), RefresherOptions{Now: fixedNow})
		updates, cancel := r.Subscribe()
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- r.RefreshNow(context.Background()) }()
		<-entered
		r.Stop()
		close(release)

		if err := <-done; !errors.Is(err, ErrRefresherStopped) {
			t.Fatalf("expected ErrRefresherStopped, got %v", err)
		}
		if len(r.Snapshot().Judges) != 0 {
			t.Fatalf("expected late results to be discarded")
		}
		if _, open := <-updates; open {
			t.Fatalf("expected subscription to be closed by Stop")
		}
		if err := r.RefreshNow(context.Background()); !errors.Is(err, ErrRefresherStopped) {
			t.Fatalf("expected refreshes after Stop to be refused, got %v", err)
		}
	})
}

func TestRefresher_StartPublishesImmediately(t *testing.T) {
	t.Parallel()

	r := NewRefresher(NewResources(courtTransport()), RefresherOptions{Interval: time.Hour, Now: fixedNow})
	updates, cancel := r.Subscribe()
	defer cancel()

	r.Start(context.Background())
	defer r.Stop()

	select {
	case snap := <-updates:
		if !snap.Loaded() {
			t.Fatalf("expected first published snapshot to be complete")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected an immediate refresh on Start")
	}
}

func TestRefresher_TriggerAfterWrite(t *testing.T) {
	t.Parallel()

	transport := courtTransport()
	transport.respond(http.MethodDelete, "/lawyers/7/", nil)
	resources := NewResources(transport)
	r := NewRefresher(resources, RefresherOptions{Now: fixedNow})
	resources.OnWrite(func(context.Context, string) { r.Trigger() })
	updates, cancel := r.Subscribe()
	defer cancel()

	if err := resources.Lawyers.Delete(context.Background(), "7"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a write to trigger a refresh")
	}
	r.Stop()
}

func TestRefresher_PersistsAndRestores(t *testing.T) {
	t.Parallel()

	store := &snapshotStoreStub{}
	first := NewRefresher(NewResources(courtTransport()), RefresherOptions{Store: store, Now: fixedNow})
	if err := first.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow failed: %v", err)
	}
	if len(store.saved) != 4 {
		t.Fatalf("expected four persisted collections, got %d", len(store.saved))
	}

	offline := newTransportStub()
	second := NewRefresher(NewResources(offline), RefresherOptions{Store: store, Now: fixedNow})
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	snap := second.Snapshot()
	if len(snap.Cases) != 2 || len(snap.Schedules) != 1 {
		t.Fatalf("expected restored collections, got %#v", snap)
	}
	if snap.Cases[0].FiledIn.String() != "2025-01-10" || !ContainsID(snap.Cases[1].Lawyers, "7") {
		t.Fatalf("expected restored cases to round trip, got %#v", snap.Cases)
	}
	if snap.Loaded() {
		t.Fatalf("expected restored collections not to count as loaded")
	}
	if !snap.Status[ResourceCases].FetchedAt.Equal(fixedNow()) {
		t.Fatalf("expected fetched_at to be restored")
	}
}

func TestRefresher_Pause(t *testing.T) {
	t.Parallel()

	t.Run("stops polling and clears cached collections until restarted", func(t *testing.T) {
		t.Parallel()

		transport := courtTransport()
		store := &snapshotStoreStub{}
		r := NewRefresher(NewResources(transport), RefresherOptions{Interval: time.Hour, Store: store, Now: fixedNow})
		updates, cancel := r.Subscribe()
		defer cancel()
		defer r.Stop()

		r.Start(context.Background())
		waitLoaded(t, updates)

		if err := r.Pause(context.Background()); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		if !r.Paused() {
			t.Fatalf("expected Paused to report true")
		}
		fetched := transport.callCount(http.MethodGet, "/cases/")

		if err := r.RefreshNow(context.Background()); !errors.Is(err, ErrRefresherPaused) {
			t.Fatalf("expected ErrRefresherPaused, got %v", err)
		}
		r.Trigger()
		time.Sleep(20 * time.Millisecond)
		if got := transport.callCount(http.MethodGet, "/cases/"); got != fetched {
			t.Fatalf("expected no fetch while paused, got %d calls after %d", got, fetched)
		}
		if snap := r.Snapshot(); len(snap.Cases) != 0 || len(snap.Status) != 0 {
			t.Fatalf("expected an empty cache after Pause, got %#v", snap)
		}
		if stored, _ := store.LoadSnapshots(context.Background()); len(stored) != 0 {
			t.Fatalf("expected persisted collections to be cleared, got %d", len(stored))
		}

		r.Start(context.Background())
		waitLoaded(t, updates)
		if r.Paused() {
			t.Fatalf("expected Start to resume polling")
		}
	})

	t.Run("discards a cycle that was in flight", func(t *testing.T) {
		t.Parallel()

		transport := courtTransport()
		release := make(chan struct{})
		entered := make(chan struct{}, 1)
		transport.handle(http.MethodGet, "/judges/", func(ctx context.Context, _ []byte) (any, error) {
			entered <- struct{}{}
			<-release
			return `[{"id": 5, "name": "Rao"}]`, nil
		})
		store := &snapshotStoreStub{}
		r := NewRefresher(NewResources(transport), RefresherOptions{Store: store, Now: fixedNow})

		done := make(chan error, 1)
		go func() { done <- r.RefreshNow(context.Background()) }()
		<-entered
		if err := r.Pause(context.Background()); err != nil {
			t.Fatalf("Pause failed: %v", err)
		}
		close(release)

		if err := <-done; !errors.Is(err, ErrRefresherPaused) {
			t.Fatalf("expected ErrRefresherPaused, got %v", err)
		}
		if snap := r.Snapshot(); len(snap.Cases) != 0 || len(snap.Judges) != 0 {
			t.Fatalf("expected the late cycle to be discarded, got %#v", snap)
		}
		if stored, _ := store.LoadSnapshots(context.Background()); len(stored) != 0 {
			t.Fatalf("expected the late cycle not to be persisted, got %d", len(stored))
		}
	})
}

func TestRefresher_TriggerDuringCycleRunsAnother(t *testing.T) {
	t.Parallel()

	transport := courtTransport()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int32
	transport.handle(http.MethodGet, "/cases/", func(ctx context.Context, _ []byte) (any, error) {
		if calls.Add(1) == 1 {
			entered <- struct{}{}
			<-release
		}
		return `[]`, nil
	})

	r := NewRefresher(NewResources(transport), RefresherOptions{Now: fixedNow})
	defer r.Stop()

	done := make(chan error, 1)
	go func() { done <- r.RefreshNow(context.Background()) }()
	<-entered
	r.Trigger()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the trigger to run a follow-up cycle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitLoaded(t *testing.T, updates <-chan Snapshot) {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-updates:
			if snap.Loaded() {
				return
			}
		case <-timeout:
			t.Fatalf("expected a complete snapshot to be published")
		}
	}
}
