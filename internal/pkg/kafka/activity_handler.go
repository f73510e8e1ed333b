package kafka

import (
	"Affinity/internal/pkg/metrics"
	"Affinity/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// ActivityHandler 消费用户行为事件
type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (s *ActivityHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("activity consumer setup")
	return nil
}

func (s *ActivityHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("activity consumer cleanup")
	return nil
}

func (s *ActivityHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("user-activity consume claim", "partition", claim.Partition())
	return pullMessageBatch(session, claim, "activity", s.logic)
}

// logic 格式错误的消息记录后丢弃，持久化失败返回错误交给重试
func (s *ActivityHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var activityMsg ActivityMessage
	if err := json.Unmarshal(msg.Value, &activityMsg); err != nil {
		log.WarnContext(ctx, "drop unparsable activity message", "offset", msg.Offset, "err", err)
		metrics.ActivitiesConsumed.WithLabelValues("malformed").Inc()
		return nil
	}

	_, err := s.activityService.Ingest(ctx, activityMsg.ToInput())
	if err != nil {
		if service.IsMalformed(err) {
			log.WarnContext(ctx, "drop malformed activity message",
				"offset", msg.Offset,
				"userId", activityMsg.UserID,
				"activityType", activityMsg.ActivityType,
				"err", err,
			)
			return nil
		}
		return err
	}
	return nil
}
