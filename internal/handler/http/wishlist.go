package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/httputil"
	"github.com/bookhaven/bookshop/pkg/validator"

	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/domain"
	"github.com/bookhaven/bookshop/internal/wishlist"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists *wishlist.Manager
	catalog   *catalog.Store
	logger    *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlists *wishlist.Manager, store *catalog.Store, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		catalog:   store,
		logger:    logger,
	}
}

// AddBookRequest is the JSON request body for wishlisting a book.
type AddBookRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

// WishlistView is the JSON representation of a session's wishlist.
type WishlistView struct {
	Books []domain.Book `json:"books"`
	Count int           `json:"count"`
}

func wishlistView(store *wishlist.Store) WishlistView {
	books := store.Books()
	if books == nil {
		books = []domain.Book{}
	}
	return WishlistView{Books: books, Count: len(books)}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	store := h.wishlists.Get(r.Context(), sid)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistView(store)})
}

// AddBook handles POST /api/v1/wishlist
func (h *WishlistHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	var req AddBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.catalog.GetByID(req.BookID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	store := h.wishlists.Get(r.Context(), sid)
	if err := store.Add(r.Context(), book); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistView(store)})
}

// RemoveBook handles DELETE /api/v1/wishlist/{bookId}
func (h *WishlistHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	bookID := chi.URLParam(r, "bookId")

	store := h.wishlists.Get(r.Context(), sid)
	if err := store.Remove(r.Context(), bookID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistView(store)})
}

// ContainsBook handles GET /api/v1/wishlist/contains/{bookId}
func (h *WishlistHandler) ContainsBook(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	bookID := chi.URLParam(r, "bookId")
	store := h.wishlists.Get(r.Context(), sid)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{
		"in_wishlist": store.Contains(bookID),
	}})
}
