// Package checkout implements mock order placement: form validation, order
// totals, and clearing the cart. No payment provider is involved; the card
// fields are validated for shape and only the last four digits are kept on
// the order.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"
	"github.com/bookhaven/bookshop/pkg/validator"

	"github.com/bookhaven/bookshop/internal/cart"
	"github.com/bookhaven/bookshop/internal/event"
)

// TaxRate is the flat tax applied to the cart subtotal at checkout.
const TaxRate = 0.1

// Input holds the checkout form.
type Input struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`

	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required,min=3,max=12"`
	Country string `json:"country" validate:"required"`

	CardName   string `json:"card_name" validate:"required"`
	CardNumber string `json:"card_number" validate:"required,numeric,min=12,max=19"`
	CardExpiry string `json:"card_expiry" validate:"required,len=5"`
	CardCVC    string `json:"card_cvc" validate:"required,numeric,min=3,max=4"`
}

// Address is the shipping address recorded on an order.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Order is a placed order.
type Order struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"session_id"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	ShippingAddress Address     `json:"shipping_address"`
	CardLast4       string      `json:"card_last4"`
	Items           []cart.Item `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	PlacedAt        time.Time   `json:"placed_at"`
}

// Service implements the business logic for placing orders.
type Service struct {
	events *event.Producer
	logger *slog.Logger
}

// NewService creates a new checkout service.
func NewService(events *event.Producer, logger *slog.Logger) *Service {
	return &Service{
		events: events,
		logger: logger,
	}
}

// PlaceOrder validates the form, totals the session's cart, clears it, and
// returns the placed order. An empty cart is an invalid-input error.
func (s *Service) PlaceOrder(ctx context.Context, store *cart.Store, sessionID string, input *Input) (*Order, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("checkout input is required")
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	items := store.Items()
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	subtotal := store.Total()
	tax := roundCents(subtotal * TaxRate)
	total := roundCents(subtotal + tax)

	order := &Order{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Email:     input.Email,
		Name:      input.FirstName + " " + input.LastName,
		ShippingAddress: Address{
			Address: input.Address,
			City:    input.City,
			ZipCode: input.ZipCode,
			Country: input.Country,
		},
		CardLast4: input.CardNumber[len(input.CardNumber)-4:],
		Items:     items,
		Subtotal:  roundCents(subtotal),
		Tax:       tax,
		Total:     total,
		PlacedAt:  time.Now().UTC(),
	}

	if err := store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear cart after order: %w", err)
	}

	s.publishOrderPlaced(ctx, order)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("session_id", sessionID),
		slog.Int("items", len(order.Items)),
		slog.Float64("total", order.Total),
	)

	return order, nil
}

func (s *Service) publishOrderPlaced(ctx context.Context, order *Order) {
	if s.events == nil {
		return
	}

	data := event.OrderPlacedData{
		OrderID:   order.ID,
		SessionID: order.SessionID,
		Email:     order.Email,
		Items:     make([]event.CartItemData, len(order.Items)),
		Subtotal:  order.Subtotal,
		Tax:       order.Tax,
		Total:     order.Total,
	}
	for i, it := range order.Items {
		data.Items[i] = event.CartItemData{
			BookID:   it.Book.ID,
			Title:    it.Book.Title,
			Price:    it.Book.Price,
			Format:   string(it.SelectedFormat),
			Quantity: it.Quantity,
		}
	}

	if err := s.events.PublishOrderPlaced(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order.placed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
