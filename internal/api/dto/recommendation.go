package dto

import (
	"Affinity/internal/model"
	"time"
)

type RecommendationListDTO struct {
	UserID          string                     `json:"userId"`
	Recommendations []model.RecommendedProduct `json:"recommendations"`
}

type RecommendationItemDTO struct {
	ProductID string  `json:"productId"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

// RecommendationHistoryDTO 一次任务保存下来的推荐
type RecommendationHistoryDTO struct {
	ID          string                   `json:"id"`
	TaskID      string                   `json:"taskId"`
	Products    []*RecommendationItemDTO `json:"products"`
	GeneratedAt time.Time                `json:"generatedAt"`
	ExpiresAt   time.Time                `json:"expiresAt"`
	IsNotified  bool                     `json:"isNotified"`
}

type ProductViewersDTO struct {
	ProductID string   `json:"productId"`
	UserIDs   []string `json:"userIds"`
}

// RunTaskDTO 手动触发推荐任务，taskId 为空时自动生成
type RunTaskDTO struct {
	MaxRecommendations int    `json:"maxRecommendations" validate:"gte=0,lte=50"`
	IncludePriceDrops  bool   `json:"includePriceDrops"`
	TaskID             string `json:"taskId" validate:"max=128"`
}
