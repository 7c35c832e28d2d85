package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is the Redis-backed cart source.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

// GetCartWithItems loads a cart and its items. A missing key yields a nil
// cart and no error.
func (s *Store) GetCartWithItems(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, key(cartID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: get %q: %w", cartID, err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("cart: decode %q: %w", cartID, err)
	}
	if c.ID == "" {
		c.ID = cartID
	}
	return &c, nil
}

// Save persists a cart document. Used by the surrounding cart module and by
// tests; checkout itself only reads and clears.
func (s *Store) Save(ctx context.Context, c Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode %q: %w", c.ID, err)
	}
	if err := s.client.Set(ctx, key(c.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("cart: save %q: %w", c.ID, err)
	}
	return nil
}

// Clear removes the cart. Deleting an absent key is not an error.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, key(cartID)).Err(); err != nil {
		return fmt.Errorf("cart: clear %q: %w", cartID, err)
	}
	return nil
}
