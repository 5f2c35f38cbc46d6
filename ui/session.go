package ui

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"caseview/domain/results"
)

const sessionCookie = "caseview_session"

type sessionEntry struct {
	state   results.FilterState
	expires time.Time
}

// SessionStore keeps one FilterState per browser session, keyed by a uuid
// cookie. States live in memory only and expire after the configured TTL.
// Updates replace the stored value; nothing mutates a state in place.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	ttl     time.Duration
}

// NewSessionStore creates a session store with the given TTL
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		entries: make(map[string]sessionEntry),
		ttl:     ttl,
	}
}

// Filters returns the filter state for the request's session, defaulting to
// the identity filter for new or expired sessions.
func (s *SessionStore) Filters(r *http.Request) results.FilterState {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return results.DefaultFilterState()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[cookie.Value]
	if !ok || time.Now().After(entry.expires) {
		delete(s.entries, cookie.Value)
		return results.DefaultFilterState()
	}
	return entry.state
}

// Update stores a replacement filter state for the request's session,
// creating the session cookie when absent.
func (s *SessionStore) Update(w http.ResponseWriter, r *http.Request, state results.FilterState) {
	id := s.sessionID(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = sessionEntry{state: state, expires: time.Now().Add(s.ttl)}
	s.pruneLocked()
}

// Reset drops the session's filter state back to the default
func (s *SessionStore) Reset(w http.ResponseWriter, r *http.Request) {
	s.Update(w, r, results.DefaultFilterState())
}

func (s *SessionStore) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// pruneLocked drops expired sessions. Called with the lock held.
func (s *SessionStore) pruneLocked() {
	now := time.Now()
	for id, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}
