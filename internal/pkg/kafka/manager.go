package kafka

import (
	"Affinity/internal/api/config"
	"Affinity/internal/service"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	activityConsumer sarama.ConsumerGroup
	activityHandler  sarama.ConsumerGroupHandler
	activityTopic    string

	taskConsumer sarama.ConsumerGroup
	taskHandler  sarama.ConsumerGroupHandler
	taskTopic    string
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	activityService service.ActivityService,
	taskService service.TaskService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	activityConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaActivityConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	taskConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaTaskConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = activityConsumer.Close()
		return nil, err
	}

	return &ConsumerManager{
		activityConsumer: activityConsumer,
		activityHandler:  NewActivityHandler(activityService),
		activityTopic:    cfg.KafkaActivityConsumer.Topic,
		taskConsumer:     taskConsumer,
		taskHandler:      NewTaskHandler(taskService),
		taskTopic:        cfg.KafkaTaskConsumer.Topic,
	}, nil
}

// Start 启动所有消费者，ctx 取消后关闭并返回
func (m *ConsumerManager) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		consumeLoop(ctx, "activity", m.activityTopic, m.activityConsumer, m.activityHandler)
	}()
	go func() {
		defer wg.Done()
		consumeLoop(ctx, "task", m.taskTopic, m.taskConsumer, m.taskHandler)
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.activityConsumer.Close(); err != nil {
		log.Error("Failed to close activity consumer", "err", err)
	}
	if err := m.taskConsumer.Close(); err != nil {
		log.Error("Failed to close task consumer", "err", err)
	}

	wg.Wait()
	return nil
}

// consumeLoop Consume 在每次 rebalance 后返回，需要循环调用
func consumeLoop(ctx context.Context, name, topic string, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler) {
	log.Info("consumer started", "consumer", name, "topic", topic)

	go func() {
		for err := range group.Errors() {
			log.Error("consumer group error", "consumer", name, "err", err)
		}
	}()

	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			log.Error("Error from consumer", "consumer", name, "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}
