package kafka

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/metrics"
	"context"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// NotificationProducer 发布 notification.created 事件
type NotificationProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewNotificationProducer(cfg *config.Config) (*NotificationProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, err
	}
	return NewNotificationProducerWith(producer, cfg.KafkaNotificationProducer.Topic), nil
}

// NewNotificationProducerWith 使用已有的 SyncProducer
func NewNotificationProducerWith(producer sarama.SyncProducer, topic string) *NotificationProducer {
	return &NotificationProducer{producer: producer, topic: topic}
}

// PublishNotification 以 userId 为 key 发送，同一用户的通知落在同一分区
func (p *NotificationProducer) PublishNotification(ctx context.Context, msg *model.NotificationMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.UserID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		metrics.NotificationsPublished.WithLabelValues("failed").Inc()
		return fmt.Errorf("publish notification: %w", err)
	}

	metrics.NotificationsPublished.WithLabelValues("ok").Inc()
	log.InfoContext(ctx, "notification published",
		"userId", msg.UserID,
		"partition", partition,
		"offset", offset,
		"items", len(msg.Content.Recommendations),
	)
	return nil
}

func (p *NotificationProducer) Close() error {
	return p.producer.Close()
}
