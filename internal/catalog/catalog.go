// Package catalog holds the immutable book catalog and the pure
// filter/sort/paginate pipeline that turns it into a displayed page.
package catalog

import (
	"log/slog"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/slug"

	"github.com/bookhaven/bookshop/internal/domain"
)

// categoryNames lists the five catalog sections in display order.
var categoryNames = []string{"Fiction", "Non-Fiction", "Science", "Technology", "Self-Help"}

// priceRanges is the fixed price-band table offered by the filter sidebar.
var priceRanges = []domain.PriceRange{
	{Label: "Under $15", Min: 0, Max: 15},
	{Label: "$15 - $25", Min: 15, Max: 25},
	{Label: "$25 - $35", Min: 25, Max: 35},
	{Label: "Over $35", Min: 35, Max: 999},
}

// Store holds the unioned, deduplicated book catalog. The contents never
// change after construction.
type Store struct {
	books      []domain.Book
	byID       map[string]int
	categories []domain.Category
	logger     *slog.Logger
}

// New builds a Store from the given category datasets. The datasets are
// unioned in order; a book id seen more than once keeps its first occurrence
// and the duplicate is dropped with a warning.
func New(logger *slog.Logger, datasets ...[]domain.Book) *Store {
	s := &Store{
		byID:   make(map[string]int),
		logger: logger,
	}

	for _, ds := range datasets {
		for _, b := range ds {
			if _, dup := s.byID[b.ID]; dup {
				logger.Warn("duplicate book id in catalog datasets, keeping first occurrence",
					slog.String("book_id", b.ID),
					slog.String("title", b.Title),
				)
				continue
			}
			s.byID[b.ID] = len(s.books)
			s.books = append(s.books, b)
		}
	}

	s.categories = make([]domain.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		s.categories = append(s.categories, domain.Category{
			Name: name,
			Slug: slug.Generate(name),
		})
	}

	logger.Info("catalog loaded",
		slog.Int("books", len(s.books)),
		slog.Int("datasets", len(datasets)),
	)

	return s
}

// Books returns the full catalog in load order. The returned slice is shared
// and must not be mutated by callers.
func (s *Store) Books() []domain.Book {
	return s.books
}

// Len returns the number of books in the catalog.
func (s *Store) Len() int {
	return len(s.books)
}

// GetByID retrieves a book by id, or a not-found error for unknown ids.
func (s *Store) GetByID(id string) (domain.Book, error) {
	idx, ok := s.byID[id]
	if !ok {
		return domain.Book{}, apperrors.NotFound("book", id)
	}
	return s.books[idx], nil
}

// Categories returns the browsable catalog sections with navigation slugs.
func (s *Store) Categories() []domain.Category {
	return s.categories
}

// PriceRanges returns the selectable price bands.
func (s *Store) PriceRanges() []domain.PriceRange {
	return priceRanges
}

// Query runs the filter/sort/paginate pipeline over the catalog.
func (s *Store) Query(filters domain.Filters, sortOpt domain.SortOption, page, perPage int) Page {
	return Run(s.books, filters, sortOpt, priceRanges, page, perPage)
}
