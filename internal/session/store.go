package session

import (
	"context"
	"sync"
	"time"

	"eticket/internal/booking"
	"eticket/internal/domain"
	"eticket/internal/metrics"
	"eticket/internal/utils"

	"github.com/google/uuid"
)

// DepsFunc builds the components for a new session; sessionID tags their logs.
type DepsFunc func(sessionID string) booking.Deps

type entry struct {
	session  *booking.Session
	lastSeen time.Time
}

// Store is an in-memory registry of booking sessions with idle expiry.
type Store struct {
	TTL  time.Duration
	Deps DepsFunc
	Now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(ttl time.Duration, deps DepsFunc) *Store {
	return &Store{TTL: ttl, Deps: deps, Now: time.Now, sessions: map[string]*entry{}}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create registers a new session opened with params. It does not start it.
func (s *Store) Create(params domain.EntryParams) *booking.Session {
	id := uuid.NewString()
	sess := booking.NewSession(id, params, s.Deps(id))

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = map[string]*entry{}
	}
	s.sessions[id] = &entry{session: sess, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	utils.LogEventf(id, "session", "create", "mode=%s route_id=%s", params.Mode(), params.RouteID)
	return sess
}

// Get returns a live session and marks it as seen.
func (s *Store) Get(id string) (*booking.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || s.expired(e) {
		return nil, domain.NotFoundError{Resource: "session"}
	}
	e.lastSeen = s.now()
	return e.session, nil
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.SetActiveSessions(n)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions.
func (s *Store) Sweep() int {
	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if !s.expired(e) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	if removed > 0 {
		utils.LogEventf("", "session", "sweep", "removed=%d active=%d", removed, n)
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// expired reports an idle session. A session whose payment still awaits
// verification never expires so the passenger can retry.
func (s *Store) expired(e *entry) bool {
	if s.TTL <= 0 || s.now().Sub(e.lastSeen) <= s.TTL {
		return false
	}
	return e.session.Snapshot().Payment == nil
}
