package model

import "time"

// NotificationMessage 发往通知服务的事件，一个用户一次任务一条
type NotificationMessage struct {
	Type      string              `json:"type"`
	UserID    string              `json:"userId"`
	Timestamp time.Time           `json:"timestamp"`
	Content   NotificationContent `json:"content"`
}

type NotificationContent struct {
	Title           string             `json:"title"`
	Body            string             `json:"body"`
	Recommendations []NotificationItem `json:"recommendations"`
}

type NotificationItem struct {
	RecommendationID string  `json:"recommendationId"`
	ProductID        string  `json:"productId"`
	ProductName      string  `json:"productName"`
	Reason           string  `json:"reason"`
	ImageURL         string  `json:"imageUrl"`
	Price            float64 `json:"price"`
}
