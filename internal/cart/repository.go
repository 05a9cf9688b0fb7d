package cart

import "context"

// Repository defines the interface for cart persistence operations. A cart
// is stored per session as the full item list.
type Repository interface {
	// Load retrieves the cart items for a session.
	Load(ctx context.Context, sessionID string) ([]Item, error)

	// Save persists the cart items for a session, overwriting any existing cart.
	Save(ctx context.Context, sessionID string, items []Item) error

	// Delete removes the cart for a session.
	Delete(ctx context.Context, sessionID string) error
}
