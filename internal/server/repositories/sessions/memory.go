package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

type memorySession struct {
	userID  string
	expires time.Time
}

// MemoryRepository is the in-process session store used when no Redis
// address is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]memorySession), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = memorySession{userID: userID, expires: r.now().Add(ttl)}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return "", common.ErrorNotFound
	}
	if !r.now().Before(s.expires) {
		delete(r.sessions, sessionID)
		return "", common.ErrorNotFound
	}
	return s.userID, nil
}

func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRepository) DeleteUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.userID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}
