package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"

	"github.com/bookhaven/bookshop/internal/domain"
)

// --- Mock Repository ---

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Load(ctx context.Context, sessionID string) ([]Item, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Item), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, sessionID string, items []Item) error {
	args := m.Called(ctx, sessionID, items)
	return args.Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Test Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestStore builds a store with no event producer; unit tests have no
// broker to publish to.
func newTestStore(repo Repository) *Store {
	return NewStore("sess-1", repo, nil, testLogger())
}

func book(id, title string, price float64) domain.Book {
	return domain.Book{ID: id, Title: title, Price: price}
}

// ---------------------------------------------------------------------------
// Hydrate
// ---------------------------------------------------------------------------

func TestStore_Hydrate_LoadsPersistedItems(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 2},
	}, nil).Once()

	store := newTestStore(repo)
	require.False(t, store.Hydrated())

	store.Hydrate(context.Background())

	assert.True(t, store.Hydrated())
	require.Len(t, store.Items(), 1)
	assert.Equal(t, 2, store.Count())
	repo.AssertExpectations(t)
}

func TestStore_Hydrate_RunsOnce(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1")).Once()

	store := newTestStore(repo)
	store.Hydrate(context.Background())
	store.Hydrate(context.Background())
	store.Hydrate(context.Background())

	repo.AssertNumberOfCalls(t, "Load", 1)
}

func TestStore_Hydrate_MissingSnapshotStartsEmpty(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	assert.True(t, store.Hydrated())
	assert.Empty(t, store.Items())
}

func TestStore_Hydrate_UnreadableSnapshotStartsEmpty(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, errors.New("unmarshal cart: invalid character"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	assert.True(t, store.Hydrated())
	assert.Empty(t, store.Items())
}

// ---------------------------------------------------------------------------
// Add
// ---------------------------------------------------------------------------

func TestStore_Add_NewBook(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	err := store.Add(context.Background(), book("fic-001", "A", 13.99), domain.FormatPaperback)
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, domain.FormatPaperback, items[0].SelectedFormat)
	repo.AssertCalled(t, "Save", mock.Anything, "sess-1", mock.Anything)
}

func TestStore_Add_MergesByBookID(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	b := book("fic-001", "A", 13.99)
	require.NoError(t, store.Add(context.Background(), b, domain.FormatPaperback))
	require.NoError(t, store.Add(context.Background(), book("fic-002", "B", 17), domain.FormatHardcover))
	require.NoError(t, store.Add(context.Background(), b, domain.FormatKindle))

	items := store.Items()
	require.Len(t, items, 2)
	// The merged line keeps its position and takes the latest format.
	assert.Equal(t, "fic-001", items[0].Book.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, domain.FormatKindle, items[0].SelectedFormat)
	assert.Equal(t, 4, store.Count())
}

func TestStore_Add_SaveFailurePropagates(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(errors.New("redis down"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	err := store.Add(context.Background(), book("fic-001", "A", 13.99), "")
	require.Error(t, err)

	// A failed save must not leave a phantom line the repository never saw.
	assert.Empty(t, store.Items())
	assert.Nil(t, store.LastAdded())
}

func TestStore_UpdateQuantity_SaveFailureKeepsOldQuantity(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 2},
	}, nil)
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(errors.New("redis down"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.Error(t, store.UpdateQuantity(context.Background(), "fic-001", 9))
	assert.Equal(t, 2, store.Count())
}

func TestStore_Clear_DeleteFailureKeepsItems(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 1},
		{Book: book("fic-002", "B", 20), Quantity: 1},
	}, nil)
	repo.On("Delete", mock.Anything, "sess-1").Return(errors.New("redis down"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.Error(t, store.Clear(context.Background()))
	assert.Equal(t, 2, store.Count())
}

// ---------------------------------------------------------------------------
// Remove / UpdateQuantity / Clear
// ---------------------------------------------------------------------------

func TestStore_Remove(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 1},
		{Book: book("fic-002", "B", 20), Quantity: 1},
	}, nil)
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.NoError(t, store.Remove(context.Background(), "fic-001"))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "fic-002", items[0].Book.ID)
}

func TestStore_Remove_AbsentBookIsNoop(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.NoError(t, store.Remove(context.Background(), "fic-404"))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_UpdateQuantity(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 1},
	}, nil)
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.NoError(t, store.UpdateQuantity(context.Background(), "fic-001", 7))
	assert.Equal(t, 7, store.Count())

	// Zero or negative removes the line.
	require.NoError(t, store.UpdateQuantity(context.Background(), "fic-001", 0))
	assert.Empty(t, store.Items())
}

func TestStore_Clear(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 10), Quantity: 3},
	}, nil)
	repo.On("Delete", mock.Anything, "sess-1").Return(nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	require.NoError(t, store.Clear(context.Background()))
	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.Count())
	repo.AssertCalled(t, "Delete", mock.Anything, "sess-1")
}

// ---------------------------------------------------------------------------
// Totals
// ---------------------------------------------------------------------------

func TestStore_Total(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return([]Item{
		{Book: book("fic-001", "A", 13.99), Quantity: 2},
		{Book: book("fic-002", "B", 17.00), Quantity: 1},
	}, nil)

	store := newTestStore(repo)
	store.Hydrate(context.Background())

	assert.InDelta(t, 44.98, store.Total(), 0.001)
	assert.Equal(t, 3, store.Count())
}

// ---------------------------------------------------------------------------
// Add confirmation
// ---------------------------------------------------------------------------

func TestStore_LastAdded(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	defer store.Close()
	store.Hydrate(context.Background())

	assert.Nil(t, store.LastAdded())

	require.NoError(t, store.Add(context.Background(), book("fic-001", "A", 10), ""))
	last := store.LastAdded()
	require.NotNil(t, last)
	assert.Equal(t, "fic-001", last.ID)

	store.ClearLastAdded()
	assert.Nil(t, store.LastAdded())
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func TestStore_Subscribe(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, "sess-1").Return(nil, apperrors.NotFound("cart", "sess-1"))
	repo.On("Save", mock.Anything, "sess-1", mock.Anything).Return(nil)

	store := newTestStore(repo)
	defer store.Close()
	store.Hydrate(context.Background())

	var calls atomic.Int32
	unsubscribe := store.Subscribe(func() { calls.Add(1) })

	require.NoError(t, store.Add(context.Background(), book("fic-001", "A", 10), ""))
	assert.Equal(t, int32(1), calls.Load())

	unsubscribe()
	require.NoError(t, store.Add(context.Background(), book("fic-002", "B", 20), ""))
	assert.Equal(t, int32(1), calls.Load())
}

// ---------------------------------------------------------------------------
// Manager
// ---------------------------------------------------------------------------

func TestManager_Get_ReturnsSameStorePerSession(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything, mock.Anything).Return(nil, apperrors.NotFound("cart", "x"))

	mgr := NewManager(repo, nil, testLogger())
	defer mgr.Close()

	a := mgr.Get(context.Background(), "sess-a")
	b := mgr.Get(context.Background(), "sess-b")
	again := mgr.Get(context.Background(), "sess-a")

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.True(t, a.Hydrated())
	// One load per session, not per Get.
	repo.AssertNumberOfCalls(t, "Load", 2)
}
