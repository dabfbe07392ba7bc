package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/nalm/vm"
)

var errWorkerStopped = errors.New("session worker stopped")

// Session is one interpreter owned by a client.
type Session struct {
	ID      string
	Name    string
	Created time.Time

	worker *Worker

	mu       sync.Mutex
	lastUsed time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionStore manages sessions and their workers.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newExec  func() *vm.Executor
	log      commonlog.Logger
}

// NewSessionStore creates a store whose sessions get executors from newExec.
func NewSessionStore(newExec func() *vm.Executor) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		newExec:  newExec,
		log:      commonlog.GetLogger("nalm.server"),
	}
}

// Create starts a new session with an optional name.
func (s *SessionStore) Create(name string) *Session {
	now := time.Now()
	session := &Session{
		ID:       uuid.NewString(),
		Name:     name,
		Created:  now,
		worker:   NewWorker(s.newExec()),
		lastUsed: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Debugf("created session %s (%q)", session.ID, name)
	return session
}

// Get retrieves a session by ID and marks it as used.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		session.touch()
	}
	return session, ok
}

// Destroy removes a session and stops its worker. It reports whether the
// session existed.
func (s *SessionStore) Destroy(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		session.worker.Stop()
	}
	return ok
}

// IDs returns the live session IDs, sorted.
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep destroys sessions idle for longer than ttl and returns how many it
// removed.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	var stale []string
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if s.Destroy(id) {
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until the returned stop function is
// called.
func (s *SessionStore) StartSweeper(interval, ttl time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(ttl); n > 0 {
					s.log.Infof("swept %d idle sessions", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// CloseAll destroys every session.
func (s *SessionStore) CloseAll() {
	for _, id := range s.IDs() {
		s.Destroy(id)
	}
}
