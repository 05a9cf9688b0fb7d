package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/httputil"
	"github.com/bookhaven/bookshop/pkg/validator"

	"github.com/bookhaven/bookshop/internal/cart"
	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/domain"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	carts   *cart.Manager
	catalog *catalog.Store
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(carts *cart.Manager, store *catalog.Store, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: store,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a book to the cart.
type AddItemRequest struct {
	BookID string `json:"book_id" validate:"required"`
	Format string `json:"format"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartView is the JSON representation of a session's cart.
type CartView struct {
	Items     []cart.Item  `json:"items"`
	Count     int          `json:"count"`
	Subtotal  float64      `json:"subtotal"`
	LastAdded *domain.Book `json:"last_added,omitempty"`
}

func cartView(store *cart.Store) CartView {
	items := store.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return CartView{
		Items:     items,
		Count:     store.Count(),
		Subtotal:  store.Total(),
		LastAdded: store.LastAdded(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	store := h.carts.Get(r.Context(), sid)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(store)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	var req AddItemRequest
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

	format := domain.BookFormat(req.Format)
	if req.Format != "" {
		if !domain.IsValidFormat(format) {
			httputil.WriteError(w, r, apperrors.InvalidInput("unknown format: "+req.Format), h.logger)
			return
		}
		if !book.OffersFormat(format) {
			httputil.WriteError(w, r, apperrors.InvalidInput("book is not offered as "+req.Format), h.logger)
			return
		}
	}

	store := h.carts.Get(r.Context(), sid)
	if err := store.Add(r.Context(), book, format); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(store)})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{bookId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	bookID := chi.URLParam(r, "bookId")

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store := h.carts.Get(r.Context(), sid)
	if err := store.UpdateQuantity(r.Context(), bookID, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(store)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{bookId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	bookID := chi.URLParam(r, "bookId")

	store := h.carts.Get(r.Context(), sid)
	if err := store.Remove(r.Context(), bookID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(store)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	store := h.carts.Get(r.Context(), sid)
	if err := store.Clear(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(store)})
}
