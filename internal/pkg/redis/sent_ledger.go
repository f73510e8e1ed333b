package redis

import (
	"Affinity/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimScript 检查与标记在同一个脚本内完成:
// 未发送过或上次发送早于 cutoff 的商品才会被写入当前时间并返回
var claimScript = redis.NewScript(`
local claimed = {}
for i = 4, #ARGV do
	local sent = redis.call('ZSCORE', KEYS[1], ARGV[i])
	if (not sent) or tonumber(sent) <= tonumber(ARGV[2]) then
		redis.call('ZADD', KEYS[1], ARGV[1], ARGV[i])
		table.insert(claimed, ARGV[i])
	end
end
if #claimed > 0 then
	redis.call('EXPIRE', KEYS[1], ARGV[3])
end
return claimed
`)

// MarkRecommendationSent 记录商品已推荐给用户
func (s *recommendCacheImpl) MarkRecommendationSent(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	key := consts.UserSentRecommendationsKey(userID)
	now := float64(s.now().UnixMilli())

	members := make([]redis.Z, 0, len(productIDs))
	for _, id := range productIDs {
		members = append(members, redis.Z{Score: now, Member: id})
	}

	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.Expire(ctx, key, consts.SentLedgerTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// WasRecommendationSent 商品是否在 within 时间窗内推荐过
func (s *recommendCacheImpl) WasRecommendationSent(ctx context.Context, userID string, productID string, within time.Duration) (bool, error) {
	sent, err := s.rdb.ZScore(ctx, consts.UserSentRecommendationsKey(userID), productID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	cutoff := s.now().Add(-within).UnixMilli()
	return sent > float64(cutoff), nil
}

// ClaimRecommendations 原子地占用一批商品，返回本次成功占用的商品 (保持入参顺序)
func (s *recommendCacheImpl) ClaimRecommendations(ctx context.Context, userID string, productIDs []string, within time.Duration) ([]string, error) {
	if len(productIDs) == 0 {
		return []string{}, nil
	}
	now := s.now()
	args := make([]any, 0, len(productIDs)+3)
	args = append(args,
		now.UnixMilli(),
		now.Add(-within).UnixMilli(),
		int64(consts.SentLedgerTTL.Seconds()),
	)
	for _, id := range productIDs {
		args = append(args, id)
	}

	claimed, err := claimScript.Run(ctx, s.rdb, []string{consts.UserSentRecommendationsKey(userID)}, args...).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, err
	}
	return claimed, nil
}
