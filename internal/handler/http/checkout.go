package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/httputil"
	"github.com/bookhaven/bookshop/pkg/validator"

	"github.com/bookhaven/bookshop/internal/cart"
	"github.com/bookhaven/bookshop/internal/checkout"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	checkout *checkout.Service
	carts    *cart.Manager
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, carts *cart.Manager, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		carts:    carts,
		logger:   logger,
	}
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("session required"), h.logger)
		return
	}

	var input checkout.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	store := h.carts.Get(r.Context(), sid)

	order, err := h.checkout.PlaceOrder(r.Context(), store, sid, &input)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}
