package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultRefreshInterval is the polling period used when none is configured.
const DefaultRefreshInterval = 30 * time.Second

// ResourceStatus records the outcome of the latest fetch of one collection.
type ResourceStatus struct {
	Loaded    bool
	FetchedAt time.Time
	Err       error
}

// Snapshot is the refresher's cache: the last good copy of every collection
// plus per-resource status. Collections that never loaded are empty.
type Snapshot struct {
	Cases     []Case
	Judges    []Judge
	Lawyers   []Lawyer
	Schedules []Schedule

	Status      map[string]ResourceStatus
	CycleID     string
	RefreshedAt time.Time
}

// Loaded reports whether every collection has loaded at least once.
func (s Snapshot) Loaded() bool {
	for _, name := range ResourceNames {
		if !s.Status[name].Loaded {
			return false
		}
	}
	return true
}

// Errors returns the resources whose latest fetch failed.
func (s Snapshot) Errors() map[string]error {
	failed := make(map[string]error)
	for name, status := range s.Status {
		if status.Err != nil {
			failed[name] = status.Err
		}
	}
	return failed
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Cases = append([]Case(nil), s.Cases...)
	out.Judges = append([]Judge(nil), s.Judges...)
	out.Lawyers = append([]Lawyer(nil), s.Lawyers...)
	out.Schedules = append([]Schedule(nil), s.Schedules...)
	out.Status = make(map[string]ResourceStatus, len(s.Status))
	for name, status := range s.Status {
		out.Status[name] = status
	}
	return out
}

// StoredSnapshot is one persisted collection.
type StoredSnapshot struct {
	Payload   []byte
	FetchedAt time.Time
}

// SnapshotStore persists the last good copy of each collection.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, resource string, payload []byte, fetchedAt time.Time) error
	LoadSnapshots(ctx context.Context) (map[string]StoredSnapshot, error)
	ClearSnapshots(ctx context.Context) error
}

// RefresherOptions configures a Refresher.
type RefresherOptions struct {
	Interval time.Duration
	Store    SnapshotStore
	Now      func() time.Time
	CycleID  func() string
	Logger   *slog.Logger
}

// Refresher re-fetches all four collections on a fixed interval and on
// demand, keeping at most one cycle in flight. It only polls between Start
// and Pause (or Stop), which callers tie to an authenticated session.
type Refresher struct {
	resources *Resources
	interval  time.Duration
	store     SnapshotStore
	now       func() time.Time
	cycleID   func() string
	logger    *slog.Logger

	inFlight   atomic.Bool
	rerun      atomic.Bool
	paused     atomic.Bool
	stopped    atomic.Bool
	generation atomic.Uint64

	// applyMu orders applying a cycle against clearing the cache on Pause.
	applyMu sync.Mutex

	mu          sync.RWMutex
	snapshot    Snapshot
	subscribers map[int]chan Snapshot
	nextSub     int

	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRefresher constructs a Refresher over resources.
func NewRefresher(resources *Resources, opts RefresherOptions) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultRefreshInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CycleID == nil {
		opts.CycleID = uuid.NewString
	}
	return &Refresher{
		resources:   resources,
		interval:    opts.Interval,
		store:       opts.Store,
		now:         opts.Now,
		cycleID:     opts.CycleID,
		logger:      defaultLogger(opts.Logger),
		snapshot:    Snapshot{Status: make(map[string]ResourceStatus)},
		subscribers: make(map[int]chan Snapshot),
		runCtx:      context.Background(),
	}
}

func (r *Refresher) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, r.logger, "Refresher", operation, attrs...)
}

// Restore seeds the cache from the snapshot store so views can render before
// the first fetch completes. Restored collections are not marked loaded.
func (r *Refresher) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	stored, err := r.store.LoadSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, snap := range stored {
		if err := decodeInto(&r.snapshot, name, snap.Payload); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", name, err))
			continue
		}
		status := r.snapshot.Status[name]
		status.FetchedAt = snap.FetchedAt
		r.snapshot.Status[name] = status
	}
	r.publishLocked()
	return errors.Join(errs...)
}

// Start performs an immediate refresh and then refreshes every interval until
// ctx ends, Pause or Stop is called. Calling Start while polling has no
// effect; calling it after Pause resumes polling.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.stopped.Load() {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.running = true
	r.runCtx = runCtx
	r.cancel = cancel
	r.done = done
	r.paused.Store(false)

	go r.loop(runCtx, done)
}

// Pause ends polling for a signed out session. A cycle still in flight is
// discarded, and the cache and the snapshot store are emptied so a later
// session never renders collections fetched for this one. Start resumes.
func (r *Refresher) Pause(ctx context.Context) error {
	r.paused.Store(true)
	r.rerun.Store(false)

	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.running = false
	r.runCtx = context.Background()
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	r.generation.Add(1)

	r.mu.Lock()
	r.snapshot = Snapshot{Status: make(map[string]ResourceStatus)}
	r.publishLocked()
	r.mu.Unlock()

	if r.store == nil {
		return nil
	}
	if err := r.store.ClearSnapshots(ctx); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	r.loggerWith(ctx, "Pause").DebugContext(ctx, "refresher paused, cached collections cleared")
	return nil
}

// Paused reports whether polling is paused.
func (r *Refresher) Paused() bool {
	return r.paused.Load()
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	err := r.RefreshNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRefreshInFlight):
		r.loggerWith(ctx, "tick").DebugContext(ctx, "skipping tick, refresh in flight")
	case errors.Is(err, ErrRefresherStopped), errors.Is(err, ErrRefresherPaused):
	default:
		r.loggerWith(ctx, "tick").WarnContext(ctx, "refresh completed with errors", "error", err)
	}
}

// Trigger requests a refresh without waiting for it. If a cycle is already in
// flight another one runs as soon as it finishes, so writes made during a
// cycle are never missed.
func (r *Refresher) Trigger() {
	if r.stopped.Load() || r.paused.Load() {
		return
	}
	// Set before trying: a cycle clears rerun when it starts and checks it
	// after it releases inFlight, so either this call or that cycle runs it.
	r.rerun.Store(true)
	go r.runQueued()
}

func (r *Refresher) runQueued() {
	r.mu.RLock()
	ctx := r.runCtx
	r.mu.RUnlock()
	_ = r.RefreshNow(ctx)
}

// RefreshNow fetches the four collections concurrently and applies whatever
// succeeded. A failing collection keeps its last good data. The returned error
// joins the per-resource failures; the snapshot is updated regardless.
func (r *Refresher) RefreshNow(ctx context.Context) (err error) {
	if r.stopped.Load() {
		return ErrRefresherStopped
	}
	if r.paused.Load() {
		return ErrRefresherPaused
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	r.rerun.Store(false)
	generation := r.generation.Load()
	cycleID := r.cycleID()

	logger := r.loggerWith(ctx, "RefreshNow", "cycle_id", cycleID)
	defer func() {
		r.inFlight.Store(false)
		switch {
		case err == nil:
			logger.DebugContext(ctx, "refresh cycle finished")
		case errors.Is(err, ErrRefresherStopped), errors.Is(err, ErrRefresherPaused):
			logger.DebugContext(ctx, "refresh cycle discarded", "error_kind", ErrorKind(err))
		default:
			logger.WarnContext(ctx, "refresh cycle finished with errors", "error", err, "error_kind", ErrorKind(err))
		}
		if r.rerun.Load() && !r.stopped.Load() && !r.paused.Load() {
			go r.runQueued()
		}
	}()

	results := make([]fetchResult, len(ResourceNames))
	var wg sync.WaitGroup
	for i, name := range ResourceNames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = r.fetch(ctx, name)
		}(i, name)
	}
	wg.Wait()

	r.applyMu.Lock()
	defer r.applyMu.Unlock()
	if r.paused.Load() {
		return ErrRefresherPaused
	}
	if r.stopped.Load() || r.generation.Load() != generation {
		return ErrRefresherStopped
	}

	now := r.now()
	var errs []error
	r.mu.Lock()
	for _, res := range results {
		status := r.snapshot.Status[res.resource]
		if res.err != nil {
			status.Err = res.err
			errs = append(errs, fmt.Errorf("%s: %w", res.resource, res.err))
		} else {
			res.apply(&r.snapshot)
			status = ResourceStatus{Loaded: true, FetchedAt: now}
		}
		r.snapshot.Status[res.resource] = status
	}
	r.snapshot.CycleID = cycleID
	r.snapshot.RefreshedAt = now
	r.publishLocked()
	r.mu.Unlock()

	r.persist(ctx, results, now)
	return errors.Join(errs...)
}

type fetchResult struct {
	resource string
	apply    func(*Snapshot)
	payload  []byte
	err      error
}

func (r *Refresher) fetch(ctx context.Context, resource string) fetchResult {
	res := fetchResult{resource: resource}
	switch resource {
	case ResourceCases:
		items, err := r.resources.Cases.List(ctx)
		res.err = err
		res.apply = func(s *Snapshot) { s.Cases = items }
		res.payload = encodeSnapshot(items, err)
	case ResourceJudges:
		items, err := r.resources.Judges.List(ctx)
		res.err = err
		res.apply = func(s *Snapshot) { s.Judges = items }
		res.payload = encodeSnapshot(items, err)
	case ResourceLawyers:
		items, err := r.resources.Lawyers.List(ctx)
		res.err = err
		res.apply = func(s *Snapshot) { s.Lawyers = items }
		res.payload = encodeSnapshot(items, err)
	case ResourceSchedules:
		items, err := r.resources.Schedules.List(ctx)
		res.err = err
		res.apply = func(s *Snapshot) { s.Schedules = items }
		res.payload = encodeSnapshot(items, err)
	default:
		res.err = fmt.Errorf("unknown resource %q", resource)
	}
	return res
}

func encodeSnapshot(items any, err error) []byte {
	if err != nil {
		return nil
	}
	payload, marshalErr := json.Marshal(items)
	if marshalErr != nil {
		return nil
	}
	return payload
}

func decodeInto(s *Snapshot, resource string, payload []byte) error {
	switch resource {
	case ResourceCases:
		items, err := decodeList[Case](payload)
		if err == nil {
			s.Cases = items
		}
		return err
	case ResourceJudges:
		items, err := decodeList[Judge](payload)
		if err == nil {
			s.Judges = items
		}
		return err
	case ResourceLawyers:
		items, err := decodeList[Lawyer](payload)
		if err == nil {
			s.Lawyers = items
		}
		return err
	case ResourceSchedules:
		items, err := decodeList[Schedule](payload)
		if err == nil {
			s.Schedules = items
		}
		return err
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
}

func (r *Refresher) persist(ctx context.Context, results []fetchResult, fetchedAt time.Time) {
	if r.store == nil {
		return
	}
	for _, res := range results {
		if res.err != nil || res.payload == nil {
			continue
		}
		if err := r.store.SaveSnapshot(ctx, res.resource, res.payload, fetchedAt); err != nil {
			r.loggerWith(ctx, "persist", "resource", res.resource).WarnContext(ctx, "failed to persist snapshot", "error", err)
		}
	}
}

// Snapshot returns a copy of the current cache.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.clone()
}

// InFlight reports whether a refresh cycle is outstanding.
func (r *Refresher) InFlight() bool {
	return r.inFlight.Load()
}

// Subscribe delivers a copy of the cache after every applied cycle. Slow
// subscribers only see the latest snapshot. The channel is closed by Stop.
func (r *Refresher) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped.Load() {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			if sub, ok := r.subscribers[id]; ok {
				delete(r.subscribers, id)
				close(sub)
			}
			r.mu.Unlock()
		})
	}
}

func (r *Refresher) publishLocked() {
	snap := r.snapshot.clone()
	for _, ch := range r.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Stop ends polling and discards the results of any cycle still in flight.
func (r *Refresher) Stop() {
	if !r.stopped.CompareAndSwap(false, true) {
		return
	}
	r.generation.Add(1)

	r.mu.Lock()
	cancel, done := r.cancel, r.done
	for id, ch := range r.subscribers {
		delete(r.subscribers, id)
		close(ch)
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
