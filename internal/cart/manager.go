package cart

import (
	"context"
	"sync"

	"github.com/nevbird/storefront-api/pkg/logger"
)

// Manager hands out one store per session, constructed lazily and restored
// from its slot on first use. The empty session id maps to the default slot
// key, so single-session deployments keep one fixed storage location.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	slots  SlotFactory
	logg   *logger.Logger
}

// NewManager builds a manager over the given slot factory. A nil factory
// yields memory-only stores.
func NewManager(slots SlotFactory, logg *logger.Logger) *Manager {
	return &Manager{
		stores: map[string]*Store{},
		slots:  slots,
		logg:   logg,
	}
}

// StoreFor returns the session's store, creating and restoring it on first
// access. Restore is a no-op on every later call.
func (m *Manager) StoreFor(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		var slot Slot
		if m.slots != nil {
			slot = m.slots.SlotFor(sessionID)
		}
		store = NewStore(slot, m.logg)
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	store.Restore(ctx)
	return store
}
