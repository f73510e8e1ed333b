package kafka

import (
	"Affinity/internal/model"
	"Affinity/internal/service"
	"time"

	"github.com/goccy/go-json"
)

// ActivityMessage user.activity 主题的消息体，timestamp 为毫秒时间戳
type ActivityMessage struct {
	UserID       string         `json:"userId"`
	ProductID    string         `json:"productId,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	SearchQuery  string         `json:"searchQuery,omitempty"`
	ActivityType string         `json:"activityType"`
	Timestamp    int64          `json:"timestamp,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (m *ActivityMessage) ToInput() *service.ActivityInput {
	in := &service.ActivityInput{
		UserID:       m.UserID,
		ProductID:    m.ProductID,
		Categories:   m.Categories,
		SearchQuery:  m.SearchQuery,
		ActivityType: model.ActivityType(m.ActivityType),
		Metadata:     m.Metadata,
	}
	if m.Timestamp > 0 {
		in.Timestamp = time.UnixMilli(m.Timestamp)
	}
	return in
}

// TaskMessage 调度服务发来的任务触发消息
type TaskMessage struct {
	TaskName string          `json:"taskName"`
	Data     json.RawMessage `json:"data"`
}

// RecommendationTaskData daily-recommendations 任务参数
type RecommendationTaskData struct {
	MaxRecommendations int    `json:"maxRecommendations"`
	IncludePriceDrops  bool   `json:"includePriceDrops"`
	TaskID             string `json:"taskId"`
}
