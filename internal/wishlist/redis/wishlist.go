// Package redis provides the Redis-backed wishlist repository.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/bookhaven/bookshop/pkg/errors"

	"github.com/bookhaven/bookshop/internal/domain"
)

const keyPrefix = "wishlist:"

// Repository implements wishlist.Repository using Redis. The wishlist is
// stored as one JSON document per session.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRepository creates a new Redis-backed wishlist repository.
func NewRepository(client *redis.Client, ttl time.Duration) *Repository {
	return &Repository{
		client: client,
		ttl:    ttl,
	}
}

// Load retrieves the wishlisted books for a session from Redis.
func (r *Repository) Load(ctx context.Context, sessionID string) ([]domain.Book, error) {
	key := keyPrefix + sessionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("wishlist", sessionID)
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}

	return books, nil
}

// Save persists the wishlisted books for a session to Redis with the
// configured TTL.
func (r *Repository) Save(ctx context.Context, sessionID string, books []domain.Book) error {
	key := keyPrefix + sessionID

	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}

// Delete removes the wishlist for a session from Redis.
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	key := keyPrefix + sessionID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del wishlist: %w", err)
	}

	return nil
}
