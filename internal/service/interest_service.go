package service

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

type InterestService interface {
	Recompute(ctx context.Context, userID string) error
	GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) ([]*model.UserInterest, error)
}

type interestServiceImpl struct {
	activityRepo mongo.UserActivityRepo
	interestRepo repository.UserInterestRepo
	cache        redis.RecommendCache
	window       time.Duration
	lambda       float64
	now          func() time.Time
}

func NewInterestService(
	activityRepo mongo.UserActivityRepo,
	interestRepo repository.UserInterestRepo,
	cache redis.RecommendCache,
	cfg config.InterestConfig,
	opts ...Option,
) InterestService {
	o := buildOptions(opts)
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 30
	}
	lambda := cfg.DecayLambda
	if lambda <= 0 {
		lambda = 0.05
	}
	return &interestServiceImpl{
		activityRepo: activityRepo,
		interestRepo: interestRepo,
		cache:        cache,
		window:       time.Duration(windowDays) * 24 * time.Hour,
		lambda:       lambda,
		now:          o.now,
	}
}

// Recompute 重算窗口内的兴趣分并覆盖写入，缓存镜像失败只记录
// 窗口外的旧条目不在这里清理
func (s *interestServiceImpl) Recompute(ctx context.Context, userID string) error {
	start := time.Now()
	now := s.now()

	activities, err := s.activityRepo.GetActivitiesSince(ctx, userID, now.Add(-s.window))
	if err != nil {
		metrics.InterestRecomputeDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		return fmt.Errorf("load activities: %w", err)
	}

	result := ComputeInterests(activities, now, s.lambda)

	if err = s.interestRepo.SaveUserInterests(ctx, toUserInterests(userID, result, now)); err != nil {
		metrics.InterestRecomputeDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		return fmt.Errorf("save interests: %w", err)
	}

	s.mirror(ctx, userID, model.InterestProduct, result.Products)
	s.mirror(ctx, userID, model.InterestCategory, result.Categories)

	metrics.InterestRecomputeDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	log.DebugContext(ctx, "interest recomputed",
		"userId", userID,
		"activities", len(activities),
		"products", len(result.Products),
		"categories", len(result.Categories),
	)
	return nil
}

func (s *interestServiceImpl) mirror(ctx context.Context, userID string, interestType model.InterestType, m model.InterestMap) {
	if err := s.cache.StoreUserInterests(ctx, userID, interestType, m.Scores()); err != nil {
		log.WarnContext(ctx, "mirror interests to cache failed", "userId", userID, "type", interestType, "err", err)
	}
}

func (s *interestServiceImpl) GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) ([]*model.UserInterest, error) {
	if interestType != "" && interestType != model.InterestProduct && interestType != model.InterestCategory {
		return nil, ErrParamInvalid
	}
	return s.interestRepo.GetUserInterests(ctx, userID, interestType)
}
