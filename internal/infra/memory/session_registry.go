package memory

import (
	"sync"

	"quizlink-service/internal/app"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) GetOrCreate(id string, create func() *app.Session) (*app.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session, false
	}
	session := create()
	r.sessions[id] = session
	return session, true
}

func (r *SessionRegistry) Get(id string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
