package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bookhaven/bookshop/internal/event"
)

// Manager hands out one Store per session, creating and hydrating it on
// first use.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	repo   Repository
	events *event.Producer
	logger *slog.Logger
}

// NewManager creates a cart manager backed by the given repository.
func NewManager(repo Repository, events *event.Producer, logger *slog.Logger) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Get returns the session's cart store, hydrated. The same store is returned
// for every call with the same session id.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = NewStore(sessionID, m.repo, m.events, m.logger)
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	store.Hydrate(ctx)
	return store
}

// Close shuts down every store the manager has handed out.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, store := range m.stores {
		store.Close()
	}
	m.stores = make(map[string]*Store)
}
