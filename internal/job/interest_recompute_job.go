package job

import (
	"Affinity/internal/pkg/logger"
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/service"
	"context"
	log "log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const recomputeConcurrency = 4

// InterestRecomputeJob 消费待重算集合，同一用户在一轮里只算一次
type InterestRecomputeJob struct {
	cache           redis.RecommendCache
	interestService service.InterestService
}

func NewInterestRecomputeJob(cache redis.RecommendCache, interestService service.InterestService) *InterestRecomputeJob {
	return &InterestRecomputeJob{
		cache:           cache,
		interestService: interestService,
	}
}

func (s *InterestRecomputeJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-interest-"+uuid.NewString())
	s.RunOnce(ctx)
}

// RunOnce 处理一轮，失败的用户重新入队等待下一轮
func (s *InterestRecomputeJob) RunOnce(ctx context.Context) (processed int, failed []string) {
	userIDs, err := s.cache.DrainRecompute(ctx)
	if err != nil {
		log.ErrorContext(ctx, "drain recompute queue error", "err", err)
		return 0, nil
	}
	if len(userIDs) == 0 {
		return 0, nil
	}
	metrics.RecomputeQueueDrained.Add(float64(len(userIDs)))
	log.InfoContext(ctx, "InterestRecomputeJob processing", "user_count", len(userIDs))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(recomputeConcurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			if err := s.interestService.Recompute(ctx, userID); err != nil {
				log.ErrorContext(ctx, "recompute interests error", "userId", userID, "err", err)
				mu.Lock()
				failed = append(failed, userID)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		if err = s.cache.EnqueueRecompute(ctx, failed...); err != nil {
			log.ErrorContext(ctx, "re-enqueue failed users error", "count", len(failed), "err", err)
		}
	}

	processed = len(userIDs) - len(failed)
	log.InfoContext(ctx, "InterestRecomputeJob finished", "processed_count", processed, "failed_count", len(failed))
	return processed, failed
}
