package api

import "Affinity/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ActivityHandler       *handler.ActivityHandler
	InterestHandler       *handler.InterestHandler
	RecommendationHandler *handler.RecommendationHandler
	TaskHandler           *handler.TaskHandler
}
