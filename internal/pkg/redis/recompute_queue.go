package redis

import (
	"Affinity/internal/pkg/consts"
	"context"
)

// EnqueueRecompute 标记用户兴趣待重算
func (s *recommendCacheImpl) EnqueueRecompute(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, id)
	}
	return s.rdb.SAdd(ctx, consts.UserInterestDirtyKey, members...).Err()
}

// DrainRecompute 分批 SPOP 取出待重算用户
// 每个成员只会被一个调用方弹出，多个实例同时执行也不会丢失或重复
func (s *recommendCacheImpl) DrainRecompute(ctx context.Context) ([]string, error) {
	userIDs := make([]string, 0)
	for i := 0; i < consts.RecomputeDrainMaxBatches; i++ {
		batch, err := s.rdb.SPopN(ctx, consts.UserInterestDirtyKey, consts.RecomputeDrainBatch).Result()
		if err != nil {
			// 已弹出的成员放回集合，交给下一轮
			if len(userIDs) > 0 {
				if qErr := s.EnqueueRecompute(ctx, userIDs...); qErr != nil {
					return nil, qErr
				}
			}
			return nil, err
		}
		userIDs = append(userIDs, batch...)
		if len(batch) < consts.RecomputeDrainBatch {
			break
		}
	}
	return userIDs, nil
}
