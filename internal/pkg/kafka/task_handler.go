package kafka

import (
	"Affinity/internal/pkg/consts"
	"Affinity/internal/service"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type taskFunc func(ctx context.Context, data json.RawMessage) error

// TaskHandler 消费调度任务，按 taskName 分发
type TaskHandler struct {
	taskService service.TaskService
	tasks       map[string]taskFunc
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	h := &TaskHandler{taskService: taskService}
	h.tasks = map[string]taskFunc{
		consts.TaskDailyRecommendations: h.handleRecommendationTask,
	}
	return h
}

func (s *TaskHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("task consumer setup")
	return nil
}

func (s *TaskHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("task consumer cleanup")
	return nil
}

func (s *TaskHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("recommendation-tasks consume claim", "partition", claim.Partition())
	return pullMessageBatch(session, claim, "task", s.logic)
}

func (s *TaskHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	err := s.dispatch(ctx, msg.Value)
	if err != nil && service.IsMalformed(err) {
		log.WarnContext(ctx, "drop task message", "offset", msg.Offset, "err", err)
		return nil
	}
	return err
}

func (s *TaskHandler) dispatch(ctx context.Context, value []byte) error {
	var taskMsg TaskMessage
	if err := json.Unmarshal(value, &taskMsg); err != nil {
		return fmt.Errorf("%w: %v", service.ErrMalformedTask, err)
	}

	fn, ok := s.tasks[taskMsg.TaskName]
	if !ok {
		return fmt.Errorf("%w: %q", service.ErrUnknownTask, taskMsg.TaskName)
	}
	return fn(ctx, taskMsg.Data)
}

// handleRecommendationTask 任务级失败只记录，不重投
// 重投同一个 taskId 时账本里的商品已被占用，不会重复保存或通知
func (s *TaskHandler) handleRecommendationTask(ctx context.Context, data json.RawMessage) error {
	var taskData RecommendationTaskData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &taskData); err != nil {
			return fmt.Errorf("%w: data: %v", service.ErrMalformedTask, err)
		}
	}
	if taskData.TaskID == "" {
		taskData.TaskID = "task-" + uuid.NewString()
		log.WarnContext(ctx, "recommendation task without taskId", "generated", taskData.TaskID)
	}

	result := s.taskService.ProcessRecommendationTask(ctx, &service.RecommendationTaskRequest{
		MaxRecommendations: taskData.MaxRecommendations,
		IncludePriceDrops:  taskData.IncludePriceDrops,
		TaskID:             taskData.TaskID,
	})

	log.InfoContext(ctx, "recommendation task finished",
		"taskId", taskData.TaskID,
		"success", result.Success,
		"processedUsers", result.ProcessedUsers,
		"totalRecommendations", result.TotalRecommendations,
		"errors", len(result.Errors),
	)
	return nil
}
