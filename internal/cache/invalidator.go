// Package cache implements the product-list cache invalidation hook.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/events"
)

// Invalidator is notified after every ProductInfo mutation, at least once.
// Services call it post-commit; it never fails the mutation that triggered it.
type Invalidator interface {
	InvalidateProduct(ctx context.Context, productInfoID uuid.UUID)
}

// RedisInvalidator sweeps cached product-list views from Redis and fans the
// change out over NATS. Both backends are optional; a nil client disables
// that half of the hook.
type RedisInvalidator struct {
	redis     *redis.Client
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewRedisInvalidator creates the cache invalidation hook
func NewRedisInvalidator(redisClient *redis.Client, publisher *events.Publisher, logger *logrus.Logger) *RedisInvalidator {
	return &RedisInvalidator{
		redis:     redisClient,
		publisher: publisher,
		logger:    logger.WithField("component", "cache-invalidator"),
	}
}

// InvalidateProduct evicts every cached product-list view and publishes a
// product-updated event. The cache does not track which list keys contain
// which product, so the whole product_list namespace is swept.
func (i *RedisInvalidator) InvalidateProduct(ctx context.Context, productInfoID uuid.UUID) {
	if i.redis != nil {
		sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var deleted int
		iter := i.redis.Scan(sweepCtx, 0, "product_list:*", 100).Iterator()
		for iter.Next(sweepCtx) {
			if err := i.redis.Del(sweepCtx, iter.Val()).Err(); err == nil {
				deleted++
			}
		}
		if err := iter.Err(); err != nil {
			i.logger.WithError(err).Warn("Product list cache sweep failed")
		} else if deleted > 0 {
			i.logger.WithField("keys", deleted).Debug("Swept product list cache")
		}
	}

	if i.publisher != nil {
		if err := i.publisher.PublishProductUpdated(ctx, productInfoID); err != nil {
			i.logger.WithError(err).WithField("product_info_id", productInfoID).
				Warn("Failed to publish product update event")
		}
	}
}

// NoopInvalidator satisfies Invalidator when neither Redis nor NATS is
// configured.
type NoopInvalidator struct{}

// InvalidateProduct does nothing
func (NoopInvalidator) InvalidateProduct(context.Context, uuid.UUID) {}
