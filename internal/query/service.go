// Package query answers reads from the query store alone. A not-found
// shortly after a successful command is expected projection lag, surfaced as
// order.ErrOrderNotFound for the caller to retry; it is never answered from
// the command store.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OlegStrokan/free-ebay-sub000/internal/readmodel"
)

// Service serves the read endpoints with a cache-aside Redis layer in front
// of the query store. The cache may be nil; reads then always hit the store.
type Service struct {
	store  readmodel.Store
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(store readmodel.Store, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(orderID string) string {
	return fmt.Sprintf("order-core:order:%s", orderID)
}

// FindOrderByID returns the projected order, served from cache when warm.
// Cache failures degrade to a store read and are only logged.
func (s *Service) FindOrderByID(ctx context.Context, id string) (readmodel.OrderRow, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(id)).Result()
		if err == nil {
			var row readmodel.OrderRow
			if err := json.Unmarshal([]byte(raw), &row); err == nil {
				return row, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "order cache read failed", "order_id", id, "error", err)
		}
	}

	row, err := s.store.FindOrderByID(ctx, id)
	if err != nil {
		return readmodel.OrderRow{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(row); err == nil {
			if err := s.cache.Set(ctx, cacheKey(id), raw, s.ttl).Err(); err != nil {
				s.logger.WarnContext(ctx, "order cache write failed", "order_id", id, "error", err)
			}
		}
	}
	return row, nil
}

// FindOrdersByCustomer lists a customer's projected orders, newest first.
// Listings are not cached; the short TTL would buy little and staleness
// across a whole listing is harder to reason about than a single row.
func (s *Service) FindOrdersByCustomer(ctx context.Context, customerID string) ([]readmodel.OrderRow, error) {
	return s.store.FindOrdersByCustomer(ctx, customerID)
}
