package dto

import "time"

// CreateActivityDTO 上报一条用户行为，timestamp 为毫秒时间戳，可省略
type CreateActivityDTO struct {
	ProductID    string         `json:"productId" validate:"max=128"`
	Categories   []string       `json:"categories" validate:"max=20,dive,max=128"`
	SearchQuery  string         `json:"searchQuery" validate:"max=512"`
	ActivityType string         `json:"activityType" validate:"required,oneof=view_product add_to_cart add_to_wishlist purchase search"`
	Timestamp    int64          `json:"timestamp" validate:"gte=0"`
	Metadata     map[string]any `json:"metadata"`
}

type ActivityDTO struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	ProductID    string         `json:"productId,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	SearchQuery  string         `json:"searchQuery,omitempty"`
	ActivityType string         `json:"activityType"`
	Weight       float64        `json:"weight"`
	Timestamp    time.Time      `json:"timestamp"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
