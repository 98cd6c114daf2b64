package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager backs everything with process memory. WithTx
// serializes transactional callbacks and writes made through Users() wait
// for any open transaction, so nothing lands between a transaction's read
// and its write. Partial writes are not rolled back.
type MemoryRepositoryManager struct {
	txMu     sync.Mutex
	users    *users.MemoryRepository
	sessions sessions.Repository
}

// NewMemoryRepositoryManager builds an in-memory manager. A nil sess selects
// the in-memory session store.
func NewMemoryRepositoryManager(sess sessions.Repository) *MemoryRepositoryManager {
	if sess == nil {
		sess = sessions.NewMemoryRepository()
	}
	return &MemoryRepositoryManager{users: users.NewMemoryRepository(), sessions: sess}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return lockedUsers{MemoryRepository: m.users, mu: &m.txMu}
}

// lockedUsers takes the transaction lock around writes outside WithTx.
type lockedUsers struct {
	*users.MemoryRepository
	mu *sync.Mutex
}

func (l lockedUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.MemoryRepository.Create(ctx, user)
}

func (l lockedUsers) Update(ctx context.Context, user *models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.MemoryRepository.Update(ctx, user)
}

func (m *MemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.users)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
