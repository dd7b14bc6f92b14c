package application

import "sync"

// SessionState is a point-in-time view of the session.
type SessionState struct {
	Identity *User
	Loading  bool
}

// Authenticated reports whether the state carries an identity. It is always
// false while loading.
func (s SessionState) Authenticated() bool {
	return !s.Loading && s.Identity != nil
}

// SessionStore is the single source of truth for "is a user logged in".
//
// One store is created by the composition root and injected wherever identity
// is needed. Only AuthService writes to it; readers may be on any goroutine.
type SessionStore struct {
	mu          sync.RWMutex
	identity    *User
	loading     bool
	ready       chan struct{}
	readyOnce   sync.Once
	subscribers map[int]chan SessionState
	nextSub     int
}

// NewSessionStore returns a store in the loading state.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		loading:     true,
		ready:       make(chan struct{}),
		subscribers: make(map[int]chan SessionState),
	}
}

// State returns a copy of the current state.
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Identity returns the authenticated user, or nil.
func (s *SessionStore) Identity() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	u := *s.identity
	return &u
}

// Loading reports whether the first session check is still outstanding.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once the first session check resolves.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe delivers the latest state after every change. Slow subscribers
// only ever see the most recent state. The returned func unsubscribes.
func (s *SessionStore) Subscribe() (<-chan SessionState, func()) {
	ch := make(chan SessionState, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *SessionStore) setIdentity(u *User) {
	s.mu.Lock()
	if u == nil {
		s.identity = nil
	} else {
		copied := *u
		s.identity = &copied
	}
	state := s.stateLocked()
	s.publishLocked(state)
	s.mu.Unlock()
}

// resolve ends the loading phase with the given identity.
func (s *SessionStore) resolve(u *User) {
	s.mu.Lock()
	if u == nil {
		s.identity = nil
	} else {
		copied := *u
		s.identity = &copied
	}
	s.loading = false
	state := s.stateLocked()
	s.publishLocked(state)
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
}

func (s *SessionStore) stateLocked() SessionState {
	state := SessionState{Loading: s.loading}
	if s.identity != nil {
		u := *s.identity
		state.Identity = &u
	}
	return state
}

func (s *SessionStore) publishLocked(state SessionState) {
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
