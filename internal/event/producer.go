// Package event publishes bookshop domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/bookhaven/bookshop/pkg/kafka"
)

// Kafka topics for bookshop domain events.
var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicCartCleared     = pkgkafka.Topic("cart", "cleared")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
	TopicOrderPlaced     = pkgkafka.Topic("order", "placed")
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from the bookshop.
const SourceBookshop = "bookshop"

// CartItemData is the item payload within cart events.
type CartItemData struct {
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Format   string  `json:"format,omitempty"`
	Quantity int     `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     float64        `json:"total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID string   `json:"session_id"`
	BookIDs   []string `json:"book_ids"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID   string         `json:"order_id"`
	SessionID string         `json:"session_id"`
	Email     string         `json:"email"`
	Items     []CartItemData `json:"items"`
	Subtotal  float64        `json:"subtotal"`
	Tax       float64        `json:"tax"`
	Total     float64        `json:"total"`
}

// Producer publishes bookshop domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, data CartUpdatedData) error {
	event, err := pkgkafka.NewEvent(TopicCartUpdated, data.SessionID, AggregateTypeCart, SourceBookshop, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", data.SessionID),
		slog.Int("item_count", data.ItemCount),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceBookshop, CartClearedData{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)

	return nil
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, data WishlistUpdatedData) error {
	event, err := pkgkafka.NewEvent(TopicWishlistUpdated, data.SessionID, AggregateTypeWishlist, SourceBookshop, data)
	if err != nil {
		return fmt.Errorf("create wishlist.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistUpdated, event); err != nil {
		return fmt.Errorf("publish wishlist.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", data.SessionID),
		slog.Int("book_count", len(data.BookIDs)),
	)

	return nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, data OrderPlacedData) error {
	event, err := pkgkafka.NewEvent(TopicOrderPlaced, data.OrderID, AggregateTypeOrder, SourceBookshop, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.InfoContext(ctx, "published order.placed event",
		slog.String("order_id", data.OrderID),
		slog.String("session_id", data.SessionID),
	)

	return nil
}
