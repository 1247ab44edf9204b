package survey

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry maps session ids to live sessions.
type Registry struct {
	svc *Service

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry whose sessions share svc.
func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc, sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating one when id is empty or unknown.
// The returned session's ID may differ from id.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		return s
	}
	if id == "" {
		id = uuid.NewString()
	}
	s := r.svc.NewSession(id)
	r.sessions[id] = s
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many were removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.svc.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
