package redis

import (
	"Affinity/internal/model"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecommendCache 推荐链路的 Redis 投影，全部可由 Mongo/MySQL 重建
type RecommendCache interface {
	StoreUserActivity(ctx context.Context, userID string, entry *ActivityEntry) error
	GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*ActivityEntry, error)
	GetRecentlyViewedProducts(ctx context.Context, userID string, limit int) ([]string, error)
	GetProductViewers(ctx context.Context, productID string, limit int64) ([]string, error)

	StoreUserInterests(ctx context.Context, userID string, interestType model.InterestType, scores map[string]float64) error
	GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) (map[string]float64, error)

	MarkRecommendationSent(ctx context.Context, userID string, productIDs []string) error
	WasRecommendationSent(ctx context.Context, userID string, productID string, within time.Duration) (bool, error)
	ClaimRecommendations(ctx context.Context, userID string, productIDs []string, within time.Duration) ([]string, error)

	EnqueueRecompute(ctx context.Context, userIDs ...string) error
	DrainRecompute(ctx context.Context) ([]string, error)
}

type Option func(*recommendCacheImpl)

// WithClock 替换时间源，测试用
func WithClock(now func() time.Time) Option {
	return func(c *recommendCacheImpl) {
		c.now = now
	}
}

type recommendCacheImpl struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRecommendCache(rdb *redis.Client, opts ...Option) RecommendCache {
	c := &recommendCacheImpl{
		rdb: rdb,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
