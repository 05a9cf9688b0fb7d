package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/httputil"
	"github.com/bookhaven/bookshop/pkg/pagination"

	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/domain"
)

// BookHandler handles HTTP requests for catalog endpoints.
type BookHandler struct {
	catalog *catalog.Store
	logger  *slog.Logger
}

// NewBookHandler creates a new catalog HTTP handler.
func NewBookHandler(store *catalog.Store, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		catalog: store,
		logger:  logger,
	}
}

// ListBooks handles GET /api/v1/books
//
// Query parameters: category, price_range (repeatable), min_rating, sort,
// page. The page size is fixed at the storefront's twelve books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortOpt := domain.SortFeatured
	if s := q.Get("sort"); s != "" {
		sortOpt = domain.SortOption(s)
		if !domain.IsValidSort(sortOpt) {
			httputil.WriteError(w, r, apperrors.InvalidInput("unknown sort option: "+s), h.logger)
			return
		}
	}

	filters := domain.Filters{
		Category:    q.Get("category"),
		PriceRanges: q["price_range"],
	}
	if mr := q.Get("min_rating"); mr != "" {
		rating, err := strconv.ParseFloat(mr, 64)
		if err != nil || rating < 0 {
			httputil.WriteError(w, r, apperrors.InvalidInput("min_rating must be a non-negative number"), h.logger)
			return
		}
		filters.MinRating = rating
	}

	params := pagination.FromRequest(r)

	page := h.catalog.Query(filters, sortOpt, params.Page, catalog.ItemsPerPage)

	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(page.Items, page.TotalCount, page.Page, page.PerPage))
}

// GetBook handles GET /api/v1/books/{bookId}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookId")

	book, err := h.catalog.GetByID(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// ListCategories handles GET /api/v1/categories
func (h *BookHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.catalog.Categories()})
}

// ListPriceRanges handles GET /api/v1/price-ranges
func (h *BookHandler) ListPriceRanges(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.catalog.PriceRanges()})
}
