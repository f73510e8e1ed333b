package service

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/pkg/util"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// ActivityInput 一条待入库的用户行为，Timestamp 为空时取入库时间
type ActivityInput struct {
	UserID       string             `json:"userId" validate:"required,max=64"`
	ProductID    string             `json:"productId,omitempty" validate:"max=128"`
	Categories   []string           `json:"categories,omitempty" validate:"dive,max=128"`
	SearchQuery  string             `json:"searchQuery,omitempty" validate:"max=512"`
	ActivityType model.ActivityType `json:"activityType" validate:"required"`
	Timestamp    time.Time          `json:"timestamp"`
	Metadata     map[string]any     `json:"metadata,omitempty"`
}

type ActivityService interface {
	Ingest(ctx context.Context, in *ActivityInput) (*mongo.UserActivityModel, error)
	GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*mongo.UserActivityModel, error)
}

type activityServiceImpl struct {
	activityRepo    mongo.UserActivityRepo
	cache           redis.RecommendCache
	interestService InterestService
	retention       time.Duration
	recomputeMode   string
	now             func() time.Time
}

func NewActivityService(
	activityRepo mongo.UserActivityRepo,
	cache redis.RecommendCache,
	interestService InterestService,
	activityCfg config.ActivityConfig,
	interestCfg config.InterestConfig,
	opts ...Option,
) ActivityService {
	o := buildOptions(opts)
	retentionDays := activityCfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 90
	}
	mode := interestCfg.RecomputeMode
	if mode != config.RecomputeInline {
		mode = config.RecomputeDeferred
	}
	return &activityServiceImpl{
		activityRepo:    activityRepo,
		cache:           cache,
		interestService: interestService,
		retention:       time.Duration(retentionDays) * 24 * time.Hour,
		recomputeMode:   mode,
		now:             o.now,
	}
}

// Ingest 校验、入库、更新缓存、触发兴趣重算
// 只有入库失败会返回非格式类错误，缓存与重算失败都只记录
func (s *activityServiceImpl) Ingest(ctx context.Context, in *ActivityInput) (*mongo.UserActivityModel, error) {
	if in == nil {
		metrics.ActivitiesConsumed.WithLabelValues("malformed").Inc()
		return nil, ErrMalformedActivity
	}
	if err := util.ValidateDTO(in); err != nil {
		metrics.ActivitiesConsumed.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrMalformedActivity, err)
	}
	weight, ok := in.ActivityType.Weight()
	if !ok {
		metrics.ActivitiesConsumed.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivityType, in.ActivityType)
	}

	now := s.now()
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}

	activity := &mongo.UserActivityModel{
		UserID:       in.UserID,
		ProductID:    in.ProductID,
		Categories:   in.Categories,
		SearchQuery:  in.SearchQuery,
		ActivityType: in.ActivityType,
		Weight:       weight,
		Timestamp:    ts,
		Metadata:     in.Metadata,
		ExpireAt:     now.Add(s.retention),
	}
	if err := s.activityRepo.CreateActivity(ctx, activity); err != nil {
		metrics.ActivitiesConsumed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("persist activity: %w", err)
	}
	metrics.ActivitiesConsumed.WithLabelValues("stored").Inc()

	entry := &redis.ActivityEntry{
		ProductID:    activity.ProductID,
		Categories:   activity.Categories,
		SearchQuery:  activity.SearchQuery,
		ActivityType: activity.ActivityType,
		Weight:       activity.Weight,
		Metadata:     activity.Metadata,
		Timestamp:    activity.Timestamp.UnixMilli(),
	}
	if err := s.cache.StoreUserActivity(ctx, activity.UserID, entry); err != nil {
		log.WarnContext(ctx, "store activity to cache failed", "userId", activity.UserID, "err", err)
	}

	s.triggerRecompute(ctx, activity.UserID)
	return activity, nil
}

// triggerRecompute deferred 模式入队，入队失败退回同步重算
// 同步重算失败时再尝试入队，由定时任务补算
func (s *activityServiceImpl) triggerRecompute(ctx context.Context, userID string) {
	if s.recomputeMode == config.RecomputeDeferred {
		err := s.cache.EnqueueRecompute(ctx, userID)
		if err == nil {
			return
		}
		log.WarnContext(ctx, "enqueue recompute failed, recompute inline", "userId", userID, "err", err)
	}

	if err := s.interestService.Recompute(ctx, userID); err != nil {
		log.ErrorContext(ctx, "recompute interests failed", "userId", userID, "err", err)
		if qErr := s.cache.EnqueueRecompute(ctx, userID); qErr != nil {
			log.ErrorContext(ctx, "enqueue recompute retry failed", "userId", userID, "err", qErr)
		}
	}
}

func (s *activityServiceImpl) GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*mongo.UserActivityModel, error) {
	if userID == "" {
		return nil, ErrParamInvalid
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.activityRepo.GetRecentActivities(ctx, userID, limit)
}
