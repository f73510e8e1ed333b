package redis

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/consts"
	"context"
	"strconv"
)

// StoreUserInterests 整体替换兴趣快照: 先删后写，空集合只删除
func (s *recommendCacheImpl) StoreUserInterests(ctx context.Context, userID string, interestType model.InterestType, scores map[string]float64) error {
	key := consts.UserInterestsKey(userID, string(interestType))

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(scores) > 0 {
		values := make([]any, 0, len(scores)*2)
		for itemID, score := range scores {
			values = append(values, itemID, strconv.FormatFloat(score, 'f', -1, 64))
		}
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, consts.InterestSnapshotTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// GetUserInterests 读取兴趣快照
func (s *recommendCacheImpl) GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) (map[string]float64, error) {
	raw, err := s.rdb.HGetAll(ctx, consts.UserInterestsKey(userID, string(interestType))).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for itemID, v := range raw {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out[itemID] = score
	}
	return out, nil
}
