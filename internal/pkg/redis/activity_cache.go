package redis

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/consts"
	"context"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ActivityEntry 最近行为列表中的一项，Timestamp 即 ZSET 分数 (毫秒)
type ActivityEntry struct {
	ProductID    string             `json:"productId,omitempty"`
	Categories   []string           `json:"categories,omitempty"`
	SearchQuery  string             `json:"searchQuery,omitempty"`
	ActivityType model.ActivityType `json:"activityType"`
	Weight       float64            `json:"weight"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
	Timestamp    int64              `json:"-"`
}

// StoreUserActivity 写入最近行为 (保留 100 条, 48h)，带商品时同步写 viewed_by
func (s *recommendCacheImpl) StoreUserActivity(ctx context.Context, userID string, entry *ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	score := float64(entry.Timestamp)
	key := consts.UserActivityKey(userID)

	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: string(data)})
	pipe.ZRemRangeByRank(ctx, key, 0, -(consts.RecentActivityLimit + 1))
	pipe.Expire(ctx, key, consts.RecentActivityTTL)

	if entry.ProductID != "" {
		productKey := consts.ProductViewedByKey(entry.ProductID)
		pipe.ZAdd(ctx, productKey, redis.Z{Score: score, Member: userID})
		pipe.ZRemRangeByRank(ctx, productKey, 0, -(consts.ViewedByLimit + 1))
		pipe.Expire(ctx, productKey, consts.ViewedByTTL)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// GetRecentActivities 按时间倒序取最近 limit 条行为
func (s *recommendCacheImpl) GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*ActivityEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, consts.UserActivityKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	list := make([]*ActivityEntry, 0, len(zs))
	for _, z := range zs {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var entry ActivityEntry
		if err = json.Unmarshal([]byte(raw), &entry); err != nil {
			log.WarnContext(ctx, "skip unparsable activity entry", "userID", userID, "err", err)
			continue
		}
		entry.Timestamp = int64(z.Score)
		list = append(list, &entry)
	}
	return list, nil
}

// GetRecentlyViewedProducts 最近浏览/加购/收藏过的商品，去重保留最新一次，最多 limit 个
func (s *recommendCacheImpl) GetRecentlyViewedProducts(ctx context.Context, userID string, limit int) ([]string, error) {
	activities, err := s.GetRecentActivities(ctx, userID, consts.RecentActivityLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, limit)
	for _, a := range activities {
		if len(ids) >= limit {
			break
		}
		if a.ProductID == "" || !a.ActivityType.IsBrowsing() {
			continue
		}
		if _, ok := seen[a.ProductID]; ok {
			continue
		}
		seen[a.ProductID] = struct{}{}
		ids = append(ids, a.ProductID)
	}
	return ids, nil
}

// GetProductViewers 最近访问过该商品的用户，最新在前
func (s *recommendCacheImpl) GetProductViewers(ctx context.Context, productID string, limit int64) ([]string, error) {
	return s.rdb.ZRevRange(ctx, consts.ProductViewedByKey(productID), 0, limit-1).Result()
}
