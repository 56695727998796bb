package server

import (
	"sync"
	"time"

	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/google/uuid"
)

type session struct {
	createdAt time.Time
	lastSeen  time.Time
	engine    *engine.Engine
	id        string
}

// registry tracks live sessions by id. Every lookup counts as activity.
type registry struct {
	sessions map[string]*session
	now      func() time.Time
	mu       sync.RWMutex
}

func newRegistry() *registry {
	return &registry{
		sessions: make(map[string]*session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *registry) add(e *engine.Engine) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	s := &session{
		id:        uuid.NewString(),
		engine:    e,
		createdAt: now,
		lastSeen:  now,
	}
	r.sessions[s.id] = s
	return s
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// expire drops sessions idle for longer than ttl and returns their ids.
func (r *registry) expire(ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	var expired []string
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
