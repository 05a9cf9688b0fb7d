package catalog

import (
	"sort"
	"strings"

	"github.com/bookhaven/bookshop/internal/domain"
)

// ItemsPerPage is the fixed storefront page size.
const ItemsPerPage = 12

// Page is the result of running the pipeline: one page of books plus the
// totals callers need to render pagination controls.
type Page struct {
	Items      []domain.Book `json:"items"`
	TotalCount int           `json:"total_count"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// CategorySlug normalizes a category name the way the storefront always has:
// lower-cased, with the first space replaced by a hyphen. Only the first
// space is replaced; a category of three or more words would not normalize
// to its navigation slug. That asymmetry is long-standing shipped behavior
// and every current category has at most one space, so it is kept as is.
func CategorySlug(category string) string {
	return strings.Replace(strings.ToLower(category), " ", "-", 1)
}

// FilterByCategory retains books whose normalized category matches the slug.
// The sentinel domain.CategoryAll passes every book.
func FilterByCategory(books []domain.Book, category string) []domain.Book {
	if category == domain.CategoryAll || category == "" {
		return books
	}
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if CategorySlug(b.Category) == category {
			out = append(out, b)
		}
	}
	return out
}

// FilterByPriceRanges retains books whose price falls within any selected
// range (OR semantics, bounds inclusive). An empty selection passes every
// book; selecting a label that is not in ranges matches nothing.
func FilterByPriceRanges(books []domain.Book, selected []string, ranges []domain.PriceRange) []domain.Book {
	if len(selected) == 0 {
		return books
	}

	byLabel := make(map[string]domain.PriceRange, len(ranges))
	for _, r := range ranges {
		byLabel[r.Label] = r
	}

	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		for _, label := range selected {
			if r, ok := byLabel[label]; ok && r.Contains(b.Price) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// FilterByRating retains books rated at or above minRating. Zero means no
// constraint.
func FilterByRating(books []domain.Book, minRating float64) []domain.Book {
	if minRating == 0 {
		return books
	}
	out := make([]domain.Book, 0, len(books))
	for _, b := range books {
		if b.Rating >= minRating {
			out = append(out, b)
		}
	}
	return out
}

// Sort returns a new slice ordered by the given option. The sort is stable:
// books that compare equal keep their prior relative order. SortFeatured
// preserves the input order entirely.
func Sort(books []domain.Book, opt domain.SortOption) []domain.Book {
	sorted := make([]domain.Book, len(books))
	copy(sorted, books)

	switch opt {
	case domain.SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	case domain.SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	case domain.SortRating:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })
	case domain.SortTitle:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Title < sorted[j].Title })
	}
	return sorted
}

// Paginate slices the window [(page-1)*perPage, page*perPage) out of books.
// A page past the end yields an empty slice; the pipeline never clamps the
// requested page. Callers must reset the page to 1 whenever filters or the
// sort option change.
func Paginate(books []domain.Book, page, perPage int) []domain.Book {
	start := (page - 1) * perPage
	if start >= len(books) || start < 0 {
		return []domain.Book{}
	}
	end := start + perPage
	if end > len(books) {
		end = len(books)
	}
	return books[start:end]
}

// Run applies the full pipeline: category, price, and rating filters in
// sequence, then the sort, then pagination. It is a pure function of its
// inputs. A non-positive perPage falls back to ItemsPerPage.
func Run(books []domain.Book, filters domain.Filters, sortOpt domain.SortOption, ranges []domain.PriceRange, page, perPage int) Page {
	if perPage <= 0 {
		perPage = ItemsPerPage
	}

	filtered := FilterByCategory(books, filters.Category)
	filtered = FilterByPriceRanges(filtered, filters.PriceRanges, ranges)
	filtered = FilterByRating(filtered, filters.MinRating)

	sorted := Sort(filtered, sortOpt)

	totalPages := len(sorted) / perPage
	if len(sorted)%perPage > 0 {
		totalPages++
	}

	return Page{
		Items:      Paginate(sorted, page, perPage),
		TotalCount: len(sorted),
		TotalPages: totalPages,
		Page:       page,
		PerPage:    perPage,
	}
}
