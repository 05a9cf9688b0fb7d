// Package wishlist implements the per-session wishlist: an insertion-ordered
// set of books that hydrates once from its repository and writes through on
// every change.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"

	"github.com/bookhaven/bookshop/internal/domain"
	"github.com/bookhaven/bookshop/internal/event"
)

// Repository defines the interface for wishlist persistence operations.
type Repository interface {
	// Load retrieves the wishlisted books for a session.
	Load(ctx context.Context, sessionID string) ([]domain.Book, error)

	// Save persists the wishlisted books for a session, overwriting any
	// existing wishlist.
	Save(ctx context.Context, sessionID string, books []domain.Book) error

	// Delete removes the wishlist for a session.
	Delete(ctx context.Context, sessionID string) error
}

// Store holds one session's wishlist. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	books    []domain.Book
	hydrated bool

	subscribers map[int]func()
	nextSubID   int

	sessionID string
	repo      Repository
	events    *event.Producer
	logger    *slog.Logger
}

// NewStore creates an empty, unhydrated wishlist store for the session.
func NewStore(sessionID string, repo Repository, events *event.Producer, logger *slog.Logger) *Store {
	return &Store{
		subscribers: make(map[int]func()),
		sessionID:   sessionID,
		repo:        repo,
		events:      events,
		logger:      logger.With(slog.String("session_id", sessionID)),
	}
}

// Hydrate loads the persisted wishlist into memory. It runs at most once per
// store. A missing or unreadable snapshot hydrates to an empty wishlist.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrateLocked(ctx)
	s.mu.Unlock()

	s.notify()
}

// Hydrated reports whether the store has loaded its persisted state.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Books returns a copy of the wishlist in insertion order.
func (s *Store) Books() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Count returns the number of wishlisted books.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// Contains reports whether the book is wishlisted. It always reports false
// before the store has hydrated, so callers never act on state that has not
// been loaded yet.
func (s *Store) Contains(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return false
	}
	return s.indexLocked(bookID) >= 0
}

// Add puts a book on the wishlist. Adding a book that is already wishlisted
// is a no-op.
func (s *Store) Add(ctx context.Context, book domain.Book) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	if s.indexLocked(book.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	next := append(s.copyBooksLocked(), book)

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publishUpdated(ctx)
	s.notify()
	return nil
}

// Remove takes a book off the wishlist. Removing an absent book is a no-op.
func (s *Store) Remove(ctx context.Context, bookID string) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	idx := s.indexLocked(bookID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.copyBooksLocked()
	next = append(next[:idx], next[idx+1:]...)

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publishUpdated(ctx)
	s.notify()
	return nil
}

// Clear empties the wishlist and deletes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	if err := s.repo.Delete(ctx, s.sessionID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear wishlist: %w", err)
	}
	s.books = nil
	s.mu.Unlock()

	s.publishUpdated(ctx)
	s.notify()
	return nil
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) hydrateLocked(ctx context.Context) {
	if s.hydrated {
		return
	}

	books, err := s.repo.Load(ctx, s.sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to load wishlist, starting empty",
			slog.String("error", err.Error()),
		)
		books = nil
	}
	s.books = books
	s.hydrated = true
}

func (s *Store) copyBooksLocked() []domain.Book {
	next := make([]domain.Book, len(s.books))
	copy(next, s.books)
	return next
}

// commitLocked persists the candidate list and swaps it in only if the save
// succeeds, so a failed write leaves the in-memory wishlist matching storage.
func (s *Store) commitLocked(ctx context.Context, next []domain.Book) error {
	if err := s.repo.Save(ctx, s.sessionID, next); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	s.books = next
	return nil
}

func (s *Store) indexLocked(bookID string) int {
	for i := range s.books {
		if s.books[i].ID == bookID {
			return i
		}
	}
	return -1
}

func (s *Store) publishUpdated(ctx context.Context) {
	if s.events == nil {
		return
	}

	s.mu.Lock()
	ids := make([]string, len(s.books))
	for i, b := range s.books {
		ids[i] = b.ID
	}
	s.mu.Unlock()

	data := event.WishlistUpdatedData{SessionID: s.sessionID, BookIDs: ids}
	if err := s.events.PublishWishlistUpdated(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish wishlist.updated",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Manager hands out one Store per session, creating and hydrating it on
// first use.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	repo   Repository
	events *event.Producer
	logger *slog.Logger
}

// NewManager creates a wishlist manager backed by the given repository.
func NewManager(repo Repository, events *event.Producer, logger *slog.Logger) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Get returns the session's wishlist store, hydrated.
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
