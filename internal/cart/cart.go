// Package cart implements the per-session shopping cart. Each session owns a
// Store that hydrates once from its repository, applies mutations in memory,
// and writes the full cart back after every change.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/sched"

	"github.com/bookhaven/bookshop/internal/domain"
	"github.com/bookhaven/bookshop/internal/event"
)

// ConfirmationWindow is how long an added book is reported by LastAdded
// before the confirmation clears itself.
const ConfirmationWindow = 3 * time.Second

// Item is a cart line: a book, the quantity, and the format the shopper
// picked when adding it.
type Item struct {
	Book           domain.Book       `json:"book"`
	Quantity       int               `json:"quantity"`
	SelectedFormat domain.BookFormat `json:"selected_format,omitempty"`
}

// Store holds one session's cart. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	items    []Item
	hydrated bool

	lastAdded     *domain.Book
	lastAddedTask *sched.Task

	subscribers map[int]func()
	nextSubID   int

	sessionID string
	repo      Repository
	events    *event.Producer
	logger    *slog.Logger
}

// NewStore creates an empty, unhydrated cart store for the session.
func NewStore(sessionID string, repo Repository, events *event.Producer, logger *slog.Logger) *Store {
	return &Store{
		subscribers: make(map[int]func()),
		sessionID:   sessionID,
		repo:        repo,
		events:      events,
		logger:      logger.With(slog.String("session_id", sessionID)),
	}
}

// Hydrate loads the persisted cart into memory. It runs at most once per
// store; later calls are no-ops. A missing or unreadable snapshot hydrates
// to an empty cart rather than failing the session.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}

	items, err := s.repo.Load(ctx, s.sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to load cart, starting empty",
			slog.String("error", err.Error()),
		)
		items = nil
	}

	s.items = items
	s.hydrated = true
	s.mu.Unlock()

	s.notify()
}

// Hydrated reports whether the store has loaded its persisted state.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the total quantity across all cart lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// Total returns the cart subtotal: the sum of price times quantity over all
// lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Book.Price * float64(it.Quantity)
	}
	return total
}

// Add puts a book in the cart. Adding a book that is already present bumps
// its quantity by one and overwrites the selected format; the line keeps its
// position. The added book is reported by LastAdded for the confirmation
// window.
func (s *Store) Add(ctx context.Context, book domain.Book, format domain.BookFormat) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	next := s.copyItemsLocked()
	found := false
	for i := range next {
		if next[i].Book.ID == book.ID {
			next[i].Quantity++
			next[i].SelectedFormat = format
			found = true
			break
		}
	}
	if !found {
		next = append(next, Item{Book: book, Quantity: 1, SelectedFormat: format})
	}

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.setLastAddedLocked(book)
	s.mu.Unlock()

	s.publishUpdated(ctx)
	s.notify()
	return nil
}

// Remove deletes the line for the given book id. Removing an absent book is
// a no-op.
func (s *Store) Remove(ctx context.Context, bookID string) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	idx := -1
	for i := range s.items {
		if s.items[i].Book.ID == bookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.copyItemsLocked()
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

// UpdateQuantity sets the quantity for the given book's line. A quantity of
// zero or less removes the line. Updating an absent book is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, bookID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, bookID)
	}

	s.mu.Lock()
	s.hydrateLocked(ctx)

	next := s.copyItemsLocked()
	found := false
	for i := range next {
		if next[i].Book.ID == bookID {
			next[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return nil
	}

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publishUpdated(ctx)
	s.notify()
	return nil
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.hydrateLocked(ctx)

	if err := s.repo.Delete(ctx, s.sessionID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.items = nil
	s.mu.Unlock()

	if s.events != nil {
		if err := s.events.PublishCartCleared(ctx, s.sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish cart.cleared",
				slog.String("error", err.Error()),
			)
		}
	}

	s.notify()
	return nil
}

// LastAdded returns the most recently added book while its confirmation
// window is open, or nil.
func (s *Store) LastAdded() *domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAdded
}

// ClearLastAdded dismisses the add confirmation before its window elapses.
func (s *Store) ClearLastAdded() {
	s.mu.Lock()
	if s.lastAddedTask != nil {
		s.lastAddedTask.Cancel()
		s.lastAddedTask = nil
	}
	s.lastAdded = nil
	s.mu.Unlock()

	s.notify()
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

// Close cancels any pending confirmation timer. The store must not be used
// afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAddedTask != nil {
		s.lastAddedTask.Cancel()
		s.lastAddedTask = nil
	}
}

func (s *Store) hydrateLocked(ctx context.Context) {
	if s.hydrated {
		return
	}

	items, err := s.repo.Load(ctx, s.sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to load cart, starting empty",
			slog.String("error", err.Error()),
		)
		items = nil
	}
	s.items = items
	s.hydrated = true
}

func (s *Store) copyItemsLocked() []Item {
	next := make([]Item, len(s.items))
	copy(next, s.items)
	return next
}

// commitLocked persists the candidate cart and swaps it in only if the save
// succeeds, so a failed write leaves the in-memory cart matching storage.
func (s *Store) commitLocked(ctx context.Context, next []Item) error {
	if err := s.repo.Save(ctx, s.sessionID, next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) setLastAddedLocked(book domain.Book) {
	if s.lastAddedTask != nil {
		s.lastAddedTask.Cancel()
	}
	s.lastAdded = &book
	s.lastAddedTask = sched.After(ConfirmationWindow, func() {
		s.mu.Lock()
		s.lastAdded = nil
		s.lastAddedTask = nil
		s.mu.Unlock()
		s.notify()
	})
}

func (s *Store) publishUpdated(ctx context.Context) {
	if s.events == nil {
		return
	}

	s.mu.Lock()
	data := event.CartUpdatedData{
		SessionID: s.sessionID,
		Items:     make([]event.CartItemData, len(s.items)),
	}
	for i, it := range s.items {
		data.Items[i] = event.CartItemData{
			BookID:   it.Book.ID,
			Title:    it.Book.Title,
			Price:    it.Book.Price,
			Format:   string(it.SelectedFormat),
			Quantity: it.Quantity,
		}
		data.ItemCount += it.Quantity
		data.Total += it.Book.Price * float64(it.Quantity)
	}
	s.mu.Unlock()

	if err := s.events.PublishCartUpdated(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.updated",
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
