package service

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/client"
	"Affinity/internal/pkg/consts"
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/repository"
	"context"
	log "log/slog"
	"sort"
	"time"
)

const (
	strategyInterest = "interest"
	strategyRecency  = "recency"
)

type RecommendationService interface {
	// Generate 不会返回错误，协作方失败时对应策略返回空
	Generate(ctx context.Context, userID string, limit int) []model.RecommendedProduct
	GetRecommendationHistory(ctx context.Context, userID string, limit int64) ([]*mongo.RecommendationModel, error)
	GetProductViewers(ctx context.Context, productID string, limit int64) ([]string, error)
}

type recommendationServiceImpl struct {
	interestRepo       repository.UserInterestRepo
	recommendationRepo mongo.RecommendationRepo
	cache              redis.RecommendCache
	productClient      client.ProductClient
	dedupWindow        time.Duration
	recentViewLimit    int
	defaultLimit       int
}

func NewRecommendationService(
	interestRepo repository.UserInterestRepo,
	recommendationRepo mongo.RecommendationRepo,
	cache redis.RecommendCache,
	productClient client.ProductClient,
	cfg config.RecommendationConfig,
) RecommendationService {
	return &recommendationServiceImpl{
		interestRepo:       interestRepo,
		recommendationRepo: recommendationRepo,
		cache:              cache,
		productClient:      productClient,
		dedupWindow:        dedupWindow(cfg),
		recentViewLimit:    positiveOr(cfg.RecentViewLimit, 10),
		defaultLimit:       positiveOr(cfg.DefaultLimit, 5),
	}
}

func (s *recommendationServiceImpl) Generate(ctx context.Context, userID string, limit int) []model.RecommendedProduct {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	interestBased := s.interestBased(ctx, userID, limit)
	recencyBased := s.recencyBased(ctx, userID, limit)
	metrics.RecommendationsGenerated.WithLabelValues(strategyInterest).Add(float64(len(interestBased)))
	metrics.RecommendationsGenerated.WithLabelValues(strategyRecency).Add(float64(len(recencyBased)))

	return mergeRecommendations(limit, interestBased, recencyBased)
}

// interestBased 取得分最高的 5 个类目拉候选，得分 = 最匹配类目分 * 0.8
func (s *recommendationServiceImpl) interestBased(ctx context.Context, userID string, limit int) []model.RecommendedProduct {
	top, err := s.interestRepo.GetTopInterests(ctx, userID, model.InterestCategory, consts.InterestTopCategoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "load top category interests failed", "userId", userID, "err", err)
		return nil
	}
	if len(top) == 0 {
		return nil
	}

	categoryScores := make(map[string]float64, len(top))
	categories := make([]string, 0, len(top))
	for _, interest := range top {
		categoryScores[interest.ItemID] = interest.Score
		categories = append(categories, interest.ItemID)
	}

	products, err := s.productClient.GetProducts(ctx, categories, 2*limit)
	if err != nil {
		log.ErrorContext(ctx, "fetch products by categories failed", "userId", userID, "err", err)
		return nil
	}

	out := make([]model.RecommendedProduct, 0, limit)
	for _, p := range products {
		if len(out) >= limit {
			break
		}
		if s.recentlySent(ctx, userID, p.ID) {
			continue
		}

		bestCategory, bestScore := "", 0.0
		for _, c := range p.CategoryList() {
			if score, ok := categoryScores[c]; ok && (bestCategory == "" || score > bestScore) {
				bestCategory, bestScore = c, score
			}
		}

		reason := consts.ReasonCategoryInterests
		if bestCategory != "" {
			reason = consts.ReasonInterestPrefix + bestCategory
		}
		out = append(out, model.NewRecommendedProduct(p, bestScore*consts.InterestScoreFactor, reason))
	}
	return out
}

// recencyBased 最近浏览过的商品，越新得分越高 (0.5, 1]
func (s *recommendationServiceImpl) recencyBased(ctx context.Context, userID string, limit int) []model.RecommendedProduct {
	ids, err := s.cache.GetRecentlyViewedProducts(ctx, userID, s.recentViewLimit)
	if err != nil {
		log.ErrorContext(ctx, "load recently viewed products failed", "userId", userID, "err", err)
		return nil
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := s.productClient.GetProductsByIds(ctx, ids)
	if err != nil {
		log.ErrorContext(ctx, "fetch products by ids failed", "userId", userID, "err", err)
		return nil
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	n := float64(len(ids))
	out := make([]model.RecommendedProduct, 0, limit)
	for i, id := range ids {
		if len(out) >= limit {
			break
		}
		p, ok := byID[id]
		if !ok {
			continue
		}
		if s.recentlySent(ctx, userID, id) {
			continue
		}
		recencyScore := (n - float64(i)) / n
		score := consts.RecencyBaseScore + (1-consts.RecencyBaseScore)*recencyScore
		out = append(out, model.NewRecommendedProduct(p, score, consts.ReasonRecentlyViewed))
	}
	return out
}

// recentlySent 账本读取失败按未发送处理，任务落库前还会原子占用一次
func (s *recommendationServiceImpl) recentlySent(ctx context.Context, userID, productID string) bool {
	sent, err := s.cache.WasRecommendationSent(ctx, userID, productID, s.dedupWindow)
	if err != nil {
		log.WarnContext(ctx, "read sent ledger failed", "userId", userID, "productId", productID, "err", err)
		return false
	}
	return sent
}

// mergeRecommendations 按顺序拼接各策略结果，同一商品保留第一次出现的，再按分数稳定降序截断
func mergeRecommendations(limit int, lists ...[]model.RecommendedProduct) []model.RecommendedProduct {
	seen := make(map[string]struct{})
	merged := make([]model.RecommendedProduct, 0)
	for _, list := range lists {
		for _, r := range list {
			if _, ok := seen[r.ProductID]; ok {
				continue
			}
			seen[r.ProductID] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *recommendationServiceImpl) GetRecommendationHistory(ctx context.Context, userID string, limit int64) ([]*mongo.RecommendationModel, error) {
	if userID == "" {
		return nil, ErrParamInvalid
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.recommendationRepo.GetUserRecommendations(ctx, userID, limit)
}

func (s *recommendationServiceImpl) GetProductViewers(ctx context.Context, productID string, limit int64) ([]string, error) {
	if productID == "" {
		return nil, ErrParamInvalid
	}
	if limit <= 0 || limit > consts.ViewedByLimit {
		limit = consts.ViewedByLimit
	}
	return s.cache.GetProductViewers(ctx, productID, limit)
}

func dedupWindow(cfg config.RecommendationConfig) time.Duration {
	return time.Duration(positiveOr(cfg.DedupWindowHour, 72)) * time.Hour
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
