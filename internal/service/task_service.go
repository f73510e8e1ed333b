package service

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/client"
	"Affinity/internal/pkg/consts"
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// RecommendationTaskRequest daily-recommendations 任务参数
type RecommendationTaskRequest struct {
	MaxRecommendations int    `json:"maxRecommendations"`
	IncludePriceDrops  bool   `json:"includePriceDrops"`
	TaskID             string `json:"taskId" validate:"required,max=128"`
}

// TaskResult 任务汇总，只有拿不到用户列表时 Success 为 false
type TaskResult struct {
	Success              bool     `json:"success"`
	ProcessedUsers       int      `json:"processedUsers"`
	TotalRecommendations int      `json:"totalRecommendations"`
	Errors               []string `json:"errors"`
}

// NotificationPublisher 通知事件出口
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, msg *model.NotificationMessage) error
}

type TaskService interface {
	ProcessRecommendationTask(ctx context.Context, req *RecommendationTaskRequest) *TaskResult
}

type taskServiceImpl struct {
	userClient         client.UserClient
	generator          RecommendationService
	recommendationRepo mongo.RecommendationRepo
	cache              redis.RecommendCache
	publisher          NotificationPublisher
	dedupWindow        time.Duration
	expiry             time.Duration
	defaultLimit       int
	now                func() time.Time
}

func NewTaskService(
	userClient client.UserClient,
	generator RecommendationService,
	recommendationRepo mongo.RecommendationRepo,
	cache redis.RecommendCache,
	publisher NotificationPublisher,
	cfg config.RecommendationConfig,
	opts ...Option,
) TaskService {
	o := buildOptions(opts)
	return &taskServiceImpl{
		userClient:         userClient,
		generator:          generator,
		recommendationRepo: recommendationRepo,
		cache:              cache,
		publisher:          publisher,
		dedupWindow:        dedupWindow(cfg),
		expiry:             time.Duration(positiveOr(cfg.ExpireDays, 7)) * 24 * time.Hour,
		defaultLimit:       positiveOr(cfg.DefaultLimit, 5),
		now:                o.now,
	}
}

// ProcessRecommendationTask 逐个用户生成推荐，单个用户失败不影响其他用户
func (s *taskServiceImpl) ProcessRecommendationTask(ctx context.Context, req *RecommendationTaskRequest) *TaskResult {
	result := &TaskResult{Errors: make([]string, 0)}

	limit := req.MaxRecommendations
	if limit <= 0 {
		limit = s.defaultLimit
	}
	log.InfoContext(ctx, "recommendation task started",
		"taskId", req.TaskID,
		"limit", limit,
		"includePriceDrops", req.IncludePriceDrops,
	)

	userIDs, err := s.userClient.GetEligibleUsersForRecommendations(ctx)
	if err != nil {
		log.ErrorContext(ctx, "fetch eligible users failed", "taskId", req.TaskID, "err", err)
		result.Errors = append(result.Errors, fmt.Errorf("%w: %v", ErrUserListUnavailable, err).Error())
		metrics.TaskRuns.WithLabelValues("failed").Inc()
		return result
	}

	for _, userID := range userIDs {
		generated, err := s.processUser(ctx, req.TaskID, userID, limit)
		if generated > 0 {
			result.ProcessedUsers++
			result.TotalRecommendations += generated
		}
		if err != nil {
			log.ErrorContext(ctx, "process user recommendations failed", "taskId", req.TaskID, "userId", userID, "err", err)
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", userID, err))
			metrics.TaskUserErrors.Inc()
		}
	}

	result.Success = true
	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "degraded"
	}
	metrics.TaskRuns.WithLabelValues(outcome).Inc()
	return result
}

// processUser 返回生成的推荐数
// 先原子占用账本，只保存和通知本次占用成功的商品
func (s *taskServiceImpl) processUser(ctx context.Context, taskID, userID string, limit int) (generated int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	recs := s.generator.Generate(ctx, userID, limit)
	if len(recs) == 0 {
		return 0, nil
	}
	generated = len(recs)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ProductID)
	}
	claimed, err := s.cache.ClaimRecommendations(ctx, userID, ids, s.dedupWindow)
	if err != nil {
		return generated, fmt.Errorf("claim recommendations: %w", err)
	}
	claimedSet := make(map[string]struct{}, len(claimed))
	for _, id := range claimed {
		claimedSet[id] = struct{}{}
	}

	kept := make([]model.RecommendedProduct, 0, len(claimed))
	for _, r := range recs {
		if _, ok := claimedSet[r.ProductID]; ok {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		log.InfoContext(ctx, "all recommendations already claimed", "userId", userID)
		return generated, nil
	}

	now := s.now()
	rec := &mongo.RecommendationModel{
		UserID:      userID,
		TaskID:      taskID,
		Products:    make([]mongo.RecommendedItem, 0, len(kept)),
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.expiry),
	}
	for _, r := range kept {
		rec.Products = append(rec.Products, mongo.RecommendedItem{
			ProductID: r.ProductID,
			Score:     r.Score,
			Reason:    r.Reason,
		})
	}
	if err = s.recommendationRepo.SaveRecommendation(ctx, rec); err != nil {
		return generated, fmt.Errorf("save recommendation: %w", err)
	}

	if err = s.publisher.PublishNotification(ctx, buildNotification(rec, kept, now)); err != nil {
		return generated, err
	}

	if err = s.recommendationRepo.MarkNotified(ctx, rec.ID); err != nil {
		return generated, fmt.Errorf("mark notified: %w", err)
	}
	return generated, nil
}

func buildNotification(rec *mongo.RecommendationModel, products []model.RecommendedProduct, now time.Time) *model.NotificationMessage {
	items := make([]model.NotificationItem, 0, len(products))
	for _, p := range products {
		items = append(items, model.NotificationItem{
			RecommendationID: rec.ID.Hex(),
			ProductID:        p.ProductID,
			ProductName:      p.Name,
			Reason:           p.Reason,
			ImageURL:         p.ImageURL,
			Price:            p.Price,
		})
	}

	body := fmt.Sprintf("We found %d products you might like", len(items))
	if len(items) == 1 {
		body = fmt.Sprintf("We think you might like %s", products[0].Name)
	}

	return &model.NotificationMessage{
		Type:      consts.NotificationTypeRecommend,
		UserID:    rec.UserID,
		Timestamp: now.UTC(),
		Content: model.NotificationContent{
			Title:           consts.NotificationTitleRecommend,
			Body:            body,
			Recommendations: items,
		},
	}
}
