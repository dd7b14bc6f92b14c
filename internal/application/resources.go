package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Resource names, also used as collection path segments.
const (
	ResourceCases     = "cases"
	ResourceJudges    = "judges"
	ResourceLawyers   = "lawyers"
	ResourceSchedules = "schedules"

	// PathRegenerate triggers the external scheduling engine.
	PathRegenerate = "/regenerate/"
)

// ResourceNames lists the four collections in display order.
var ResourceNames = []string{ResourceCases, ResourceJudges, ResourceLawyers, ResourceSchedules}

// WriteListener is notified after every successful write. The resource is
// empty for writes that may touch every collection, such as regenerate.
type WriteListener func(ctx context.Context, resource string)

type writeListeners struct {
	mu  sync.RWMutex
	fns []WriteListener
}

func (w *writeListeners) add(fn WriteListener) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.fns = append(w.fns, fn)
	w.mu.Unlock()
}

func (w *writeListeners) notify(ctx context.Context, resource string) {
	w.mu.RLock()
	fns := append([]WriteListener(nil), w.fns...)
	w.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, resource)
	}
}

// Collection is a typed accessor over one backend collection. T is the
// entity and In its write payload.
type Collection[T any, In any] struct {
	name      string
	transport Transport
	listeners *writeListeners
	logger    *slog.Logger
}

func newCollection[T any, In any](name string, transport Transport, listeners *writeListeners, logger *slog.Logger) *Collection[T, In] {
	return &Collection[T, In]{name: name, transport: transport, listeners: listeners, logger: logger}
}

// Name returns the collection name.
func (c *Collection[T, In]) Name() string {
	return c.name
}

func (c *Collection[T, In]) collectionPath() string {
	return "/" + c.name + "/"
}

func (c *Collection[T, In]) itemPath(id ID) string {
	return "/" + c.name + "/" + id.String() + "/"
}

// List fetches the whole collection. Paginated answers are flattened to their
// results page.
func (c *Collection[T, In]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := c.transport.Do(ctx, http.MethodGet, c.collectionPath(), nil, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return items, nil
}

// Get fetches one item.
func (c *Collection[T, In]) Get(ctx context.Context, id ID) (T, error) {
	var item T
	if id.IsZero() {
		return item, fmt.Errorf("%s: %w", c.name, ErrNotFound)
	}
	err := c.transport.Do(ctx, http.MethodGet, c.itemPath(id), nil, &item)
	return item, err
}

// Create posts a new item and returns the backend's copy of it.
func (c *Collection[T, In]) Create(ctx context.Context, payload In) (T, error) {
	var item T
	if err := c.transport.Do(ctx, http.MethodPost, c.collectionPath(), payload, &item); err != nil {
		return item, err
	}
	c.written(ctx, "create")
	return item, nil
}

// Update replaces an item.
func (c *Collection[T, In]) Update(ctx context.Context, id ID, payload In) (T, error) {
	var item T
	if id.IsZero() {
		return item, fmt.Errorf("%s: %w", c.name, ErrNotFound)
	}
	if err := c.transport.Do(ctx, http.MethodPut, c.itemPath(id), payload, &item); err != nil {
		return item, err
	}
	c.written(ctx, "update")
	return item, nil
}

// Delete removes an item.
func (c *Collection[T, In]) Delete(ctx context.Context, id ID) error {
	if id.IsZero() {
		return fmt.Errorf("%s: %w", c.name, ErrNotFound)
	}
	if err := c.transport.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil); err != nil {
		return err
	}
	c.written(ctx, "delete")
	return nil
}

func (c *Collection[T, In]) written(ctx context.Context, operation string) {
	serviceLogger(ctx, c.logger, "Resources", operation, "resource", c.name).DebugContext(ctx, "write succeeded")
	if c.listeners != nil {
		c.listeners.notify(ctx, c.name)
	}
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, err
		}
		if page.Results == nil {
			page.Results = []T{}
		}
		return page.Results, nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Resources groups the four collection fetchers.
type Resources struct {
	Cases     *Collection[Case, CaseInput]
	Judges    *Collection[Judge, JudgeInput]
	Lawyers   *Collection[Lawyer, LawyerInput]
	Schedules *Collection[Schedule, ScheduleInput]

	transport Transport
	listeners *writeListeners
	logger    *slog.Logger
}

// NewResources constructs the fetchers over transport.
func NewResources(transport Transport) *Resources {
	return NewResourcesWithLogger(transport, nil)
}

// NewResourcesWithLogger constructs the fetchers with a specified logger.
func NewResourcesWithLogger(transport Transport, logger *slog.Logger) *Resources {
	logger = defaultLogger(logger)
	listeners := &writeListeners{}
	return &Resources{
		Cases:     newCollection[Case, CaseInput](ResourceCases, transport, listeners, logger),
		Judges:    newCollection[Judge, JudgeInput](ResourceJudges, transport, listeners, logger),
		Lawyers:   newCollection[Lawyer, LawyerInput](ResourceLawyers, transport, listeners, logger),
		Schedules: newCollection[Schedule, ScheduleInput](ResourceSchedules, transport, listeners, logger),
		transport: transport,
		listeners: listeners,
		logger:    logger,
	}
}

// OnWrite registers fn to run after every successful write.
func (r *Resources) OnWrite(fn WriteListener) {
	r.listeners.add(fn)
}

// Regenerate triggers the external scheduling engine. The answer is returned
// verbatim and not interpreted.
func (r *Resources) Regenerate(ctx context.Context) (result json.RawMessage, err error) {
	logger := serviceLogger(ctx, r.logger, "Resources", "Regenerate")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "regenerate failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "regenerate succeeded")
	}()

	if err = r.transport.Do(ctx, http.MethodGet, PathRegenerate, nil, &result); err != nil {
		return nil, err
	}
	r.listeners.notify(ctx, "")
	return result, nil
}
