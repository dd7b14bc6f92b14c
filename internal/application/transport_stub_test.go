package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

type transportCall struct {
	Method string
	Path   string
	Body   []byte
}

type transportHandler func(ctx context.Context, body []byte) (any, error)

// transportStub answers requests from a route table and records every call.
type transportStub struct {
	mu       sync.Mutex
	routes   map[string]transportHandler
	calls    []transportCall
	forgets  atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func newTransportStub() *transportStub {
	return &transportStub{routes: make(map[string]transportHandler)}
}

func (s *transportStub) handle(method, path string, fn transportHandler) {
	s.mu.Lock()
	s.routes[method+" "+path] = fn
	s.mu.Unlock()
}

func (s *transportStub) respond(method, path string, value any) {
	s.handle(method, path, func(context.Context, []byte) (any, error) { return value, nil })
}

func (s *transportStub) fail(method, path string, err error) {
	s.handle(method, path, func(context.Context, []byte) (any, error) { return nil, err })
}

func (s *transportStub) Do(ctx context.Context, method, path string, body, out any) error {
	current := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	var encoded []byte
	if body != nil {
		var err error
		if encoded, err = json.Marshal(body); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, transportCall{Method: method, Path: path, Body: encoded})
	fn, ok := s.routes[method+" "+path]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unexpected request %s %s", method, path)
	}

	value, err := fn(ctx, encoded)
	if err != nil {
		return err
	}
	if out == nil || value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	default:
		if raw, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, out)
}

func (s *transportStub) ForgetSession() {
	s.forgets.Add(1)
}

func (s *transportStub) callCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, call := range s.calls {
		if call.Method == method && call.Path == path {
			n++
		}
	}
	return n
}

func (s *transportStub) lastBody(method, path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Method == method && s.calls[i].Path == path {
			return s.calls[i].Body
		}
	}
	return nil
}
