package kafka

import (
	"Affinity/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize       = 32
	batchTimeout    = 1 * time.Second
	keyConcurrency  = 8
	maxRetryBackoff = 5 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, name string, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			processBatch(session, batch, name, logic)
			batch = make([]*sarama.ConsumerMessage, 0, batchSize)
		}
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			flush()
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 同一 key 的消息按顺序处理，不同 key 并发
// 整批处理完才提交最后一条的位点，会话中断时不提交
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, name string, logic LogicFunc) {
	ctx := session.Context()
	groups := groupByKey(messages)

	g := new(errgroup.Group)
	g.SetLimit(keyConcurrency)
	for _, group := range groups {
		g.Go(func() error {
			for _, m := range group {
				if !processWithRetry(ctx, m, name, logic) {
					return ctx.Err()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn("batch interrupted, offsets not committed", "consumer", name, "err", err)
		return
	}

	session.MarkMessage(messages[len(messages)-1], "")
}

// processWithRetry 失败后指数退避重试，会话结束时返回 false
func processWithRetry(ctx context.Context, m *sarama.ConsumerMessage, name string, logic LogicFunc) bool {
	msgCtx := logger.WithTraceID(ctx, "kafka-"+name+"-"+uuid.NewString())
	retryInterval := 100 * time.Millisecond

	for {
		err := logic(msgCtx, m)
		if err == nil {
			return true
		}

		log.ErrorContext(msgCtx, "process message error",
			"consumer", name,
			"partition", m.Partition,
			"offset", m.Offset,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(retryInterval):
		}

		retryInterval *= 2
		if retryInterval > maxRetryBackoff {
			retryInterval = maxRetryBackoff
		}
	}
}

// groupByKey 按消息 key 分组，组内保持原顺序；没有 key 的消息各自成组
func groupByKey(messages []*sarama.ConsumerMessage) [][]*sarama.ConsumerMessage {
	index := make(map[string]int)
	groups := make([][]*sarama.ConsumerMessage, 0, len(messages))

	for _, m := range messages {
		if len(m.Key) == 0 {
			groups = append(groups, []*sarama.ConsumerMessage{m})
			continue
		}
		key := string(m.Key)
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], m)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []*sarama.ConsumerMessage{m})
	}
	return groups
}
