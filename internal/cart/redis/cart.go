// Package redis provides the Redis-backed cart repository.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"

	"github.com/bookhaven/bookshop/internal/cart"
)

const keyPrefix = "cart:"

// Repository implements cart.Repository using Redis. The cart is stored as
// one JSON document per session.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates a new Redis-backed cart repository.
func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		client: client,
		ttl:    ttl,
	}
}

// Load retrieves the cart items for a session from Redis.
func (r *Repository) Load(ctx context.Context, sessionID string) ([]cart.Item, error) {
	key := keyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return items, nil
}

// Save persists the cart items for a session to Redis with the configured TTL.
func (r *Repository) Save(ctx context.Context, sessionID string, items []cart.Item) error {
	key := keyPrefix + sessionID

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cart for a session from Redis.
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	key := keyPrefix + sessionID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
