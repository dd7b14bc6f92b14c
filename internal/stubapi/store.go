package stubapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound           = errors.New("stubapi: not found")
	ErrUsernameTaken      = errors.New("stubapi: username already exists")
	ErrInvalidCredentials = errors.New("stubapi: invalid credentials")
	ErrMissingFields      = errors.New("stubapi: username, email and password are required")
)

type identified[R any] interface {
	key() int64
	withID(id int64) R
}

func (r CaseRecord) key() int64     { return r.ID }
func (r JudgeRecord) key() int64    { return r.ID }
func (r LawyerRecord) key() int64   { return r.ID }
func (r ScheduleRecord) key() int64 { return r.ID }

// table holds one collection. Callers hold Store.mu.
type table[R identified[R]] struct {
	rows map[int64]R
	next int64
}

func newTable[R identified[R]]() *table[R] {
	return &table[R]{rows: make(map[int64]R)}
}

func (t *table[R]) list() []R {
	out := make([]R, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

func (t *table[R]) get(id int64) (R, bool) {
	r, ok := t.rows[id]
	return r, ok
}

func (t *table[R]) insert(r R) R {
	t.next++
	r = r.withID(t.next)
	t.rows[t.next] = r
	return r
}

func (t *table[R]) replace(id int64, r R) (R, bool) {
	if _, ok := t.rows[id]; !ok {
		var zero R
		return zero, false
	}
	r = r.withID(id)
	t.rows[id] = r
	return r, true
}

func (t *table[R]) remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// Store is the stub backend's in-memory database.
type Store struct {
	mu sync.RWMutex

	passwordParams Argon2idParams
	now            func() time.Time

	users      map[string]UserRecord
	nextUserID int64
	sessions   map[string]string

	cases     *table[CaseRecord]
	judges    *table[JudgeRecord]
	lawyers   *table[LawyerRecord]
	schedules *table[ScheduleRecord]
}

// NewStore returns an empty store. A nil now defaults to time.Now.
func NewStore(params Argon2idParams, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		passwordParams: params,
		now:            now,
		users:          make(map[string]UserRecord),
		sessions:       make(map[string]string),
		cases:          newTable[CaseRecord](),
		judges:         newTable[JudgeRecord](),
		lawyers:        newTable[LawyerRecord](),
		schedules:      newTable[ScheduleRecord](),
	}
}

// Register creates an account. Usernames are case sensitive, as in Django.
func (s *Store) Register(username, email, password string, profile map[string]string) (UserRecord, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return UserRecord{}, ErrMissingFields
	}

	hash, err := s.passwordParams.Hash(password)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return UserRecord{}, ErrUsernameTaken
	}
	s.nextUserID++
	user := UserRecord{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		FirstName:    profile["first_name"],
		LastName:     profile["last_name"],
		PasswordHash: hash,
		Profile:      profile,
	}
	s.users[username] = user
	return user, nil
}

// Authenticate checks credentials.
func (s *Store) Authenticate(username, password string) (UserRecord, error) {
	s.mu.RLock()
	user, ok := s.users[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return UserRecord{}, ErrInvalidCredentials
	}
	if err := checkPassword(user.PasswordHash, password); err != nil {
		return UserRecord{}, ErrInvalidCredentials
	}
	return user, nil
}

// OpenSession binds a fresh session token to the user.
func (s *Store) OpenSession(user UserRecord) string {
	token := newToken()
	s.mu.Lock()
	s.sessions[token] = user.Username
	s.mu.Unlock()
	return token
}

// SessionUser resolves a session token.
func (s *Store) SessionUser(token string) (UserRecord, bool) {
	if token == "" {
		return UserRecord{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.sessions[token]
	if !ok {
		return UserRecord{}, false
	}
	user, ok := s.users[username]
	return user, ok
}

// CloseSession forgets a session token. Unknown tokens are ignored.
func (s *Store) CloseSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Cases returns every case ordered by id.
func (s *Store) Cases() []CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases.list()
}

// Judges returns every judge ordered by id.
func (s *Store) Judges() []JudgeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.judges.list()
}

// Lawyers returns every lawyer ordered by id.
func (s *Store) Lawyers() []LawyerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lawyers.list()
}

// Schedules returns every schedule ordered by id.
func (s *Store) Schedules() []ScheduleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedules.list()
}

// AddJudge inserts a judge directly, bypassing request validation.
func (s *Store) AddJudge(j JudgeRecord) JudgeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.judges.insert(j)
}

// AddLawyer inserts a lawyer directly.
func (s *Store) AddLawyer(l LawyerRecord) LawyerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lawyers.insert(l)
}

// AddCase inserts a case directly.
func (s *Store) AddCase(c CaseRecord) CaseRecord {
	if c.Lawyers == nil {
		c.Lawyers = []int64{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cases.insert(c)
}

// AddSchedule inserts a schedule directly.
func (s *Store) AddSchedule(sc ScheduleRecord) ScheduleRecord {
	if sc.Version == 0 {
		sc.Version = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedules.insert(sc)
}
