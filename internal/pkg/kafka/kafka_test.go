package kafka

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/service"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockActivityService struct {
	mock.Mock
}

func (m *mockActivityService) Ingest(ctx context.Context, in *service.ActivityInput) (*mongo.UserActivityModel, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*mongo.UserActivityModel)
	return a, args.Error(1)
}

func (m *mockActivityService) GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*mongo.UserActivityModel, error) {
	args := m.Called(ctx, userID, limit)
	list, _ := args.Get(0).([]*mongo.UserActivityModel)
	return list, args.Error(1)
}

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) ProcessRecommendationTask(ctx context.Context, req *service.RecommendationTaskRequest) *service.TaskResult {
	return m.Called(ctx, req).Get(0).(*service.TaskResult)
}

// fakeSession 只记录 MarkMessage
type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []*sarama.ConsumerMessage
}

func (s *fakeSession) Claims() map[string][]int32 { return nil }
func (s *fakeSession) MemberID() string { return "test" }
func (s *fakeSession) GenerationID() int32 { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string) {}
func (s *fakeSession) Commit() {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg)
}

func message(key string, offset int64, value string) *sarama.ConsumerMessage {
	m := &sarama.ConsumerMessage{Offset: offset, Value: []byte(value)}
	if key != "" {
		m.Key = []byte(key)
	}
	return m
}

func TestGroupByKey(t *testing.T) {
	msgs := []*sarama.ConsumerMessage{
		message("u1", 1, ""),
		message("u2", 2, ""),
		message("", 3, ""),
		message("u1", 4, ""),
		message("", 5, ""),
	}

	groups := groupByKey(msgs)
	require.Len(t, groups, 4)
	assert.Equal(t, []*sarama.ConsumerMessage{msgs[0], msgs[3]}, groups[0])
	assert.Equal(t, []*sarama.ConsumerMessage{msgs[1]}, groups[1])
	assert.Equal(t, []*sarama.ConsumerMessage{msgs[2]}, groups[2])
	assert.Equal(t, []*sarama.ConsumerMessage{msgs[4]}, groups[3])
}

func TestProcessBatch_OrderPerKeyAndCommit(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	msgs := []*sarama.ConsumerMessage{
		message("u1", 1, ""),
		message("u2", 2, ""),
		message("u1", 3, ""),
		message("u1", 4, ""),
	}

	var mu sync.Mutex
	seen := map[string][]int64{}
	failedOnce := false
	processBatch(session, msgs, "test", func(_ context.Context, m *sarama.ConsumerMessage) error {
		mu.Lock()
		defer mu.Unlock()
		if m.Offset == 3 && !failedOnce {
			failedOnce = true
			return errors.New("transient")
		}
		seen[string(m.Key)] = append(seen[string(m.Key)], m.Offset)
		return nil
	})

	assert.Equal(t, []int64{1, 3, 4}, seen["u1"], "a retried message blocks later messages of the same key")
	assert.Equal(t, []int64{2}, seen["u2"])
	require.Len(t, session.marked, 1)
	assert.Equal(t, int64(4), session.marked[0].Offset)
}

func TestProcessBatch_CancelledSessionDoesNotCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}
	time.AfterFunc(50*time.Millisecond, cancel)

	processBatch(session, []*sarama.ConsumerMessage{message("u1", 1, "")}, "test",
		func(context.Context, *sarama.ConsumerMessage) error { return errors.New("always") })

	assert.Empty(t, session.marked)
}

func TestActivityHandler_Logic(t *testing.T) {
	ctx := context.Background()

	t.Run("valid message is ingested", func(t *testing.T) {
		svc := &mockActivityService{}
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(in *service.ActivityInput) bool {
			return in.UserID == "u1" &&
				in.ActivityType == model.ActivityViewProduct &&
				in.Timestamp.Equal(time.UnixMilli(1700000000000))
		})).Return(&mongo.UserActivityModel{}, nil).Once()

		h := NewActivityHandler(svc)
		err := h.logic(ctx, message("u1", 1, `{"userId":"u1","productId":"p1","activityType":"view_product","timestamp":1700000000000}`))
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("unparsable message is dropped", func(t *testing.T) {
		svc := &mockActivityService{}
		h := NewActivityHandler(svc)
		assert.NoError(t, h.logic(ctx, message("u1", 1, `{not json`)))
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("malformed activity is dropped", func(t *testing.T) {
		svc := &mockActivityService{}
		svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, service.ErrUnknownActivityType).Once()
		h := NewActivityHandler(svc)
		assert.NoError(t, h.logic(ctx, message("u1", 1, `{"userId":"u1","activityType":"share"}`)))
	})

	t.Run("storage failure is retried", func(t *testing.T) {
		svc := &mockActivityService{}
		svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, errors.New("mongo down")).Once()
		h := NewActivityHandler(svc)
		assert.Error(t, h.logic(ctx, message("u1", 1, `{"userId":"u1","activityType":"purchase"}`)))
	})
}

func TestActivityMessage_ToInput(t *testing.T) {
	in := (&ActivityMessage{UserID: "u1", ActivityType: "search", SearchQuery: "lamp"}).ToInput()
	assert.True(t, in.Timestamp.IsZero())
	assert.Equal(t, model.ActivitySearch, in.ActivityType)
}

func TestTaskHandler_Logic(t *testing.T) {
	ctx := context.Background()
	ok := &service.TaskResult{Success: true, Errors: []string{}}

	t.Run("daily recommendations", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("ProcessRecommendationTask", mock.Anything, &service.RecommendationTaskRequest{
			MaxRecommendations: 3,
			IncludePriceDrops:  true,
			TaskID:             "t1",
		}).Return(ok).Once()

		h := NewTaskHandler(svc)
		err := h.logic(ctx, message("", 1, `{"taskName":"daily-recommendations","data":{"maxRecommendations":3,"includePriceDrops":true,"taskId":"t1"}}`))
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("missing task id is generated", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("ProcessRecommendationTask", mock.Anything, mock.MatchedBy(func(req *service.RecommendationTaskRequest) bool {
			return len(req.TaskID) > len("task-")
		})).Return(ok).Once()

		h := NewTaskHandler(svc)
		require.NoError(t, h.logic(ctx, message("", 1, `{"taskName":"daily-recommendations"}`)))
		svc.AssertExpectations(t)
	})

	t.Run("failed task is not redelivered", func(t *testing.T) {
		svc := &mockTaskService{}
		svc.On("ProcessRecommendationTask", mock.Anything, mock.Anything).
			Return(&service.TaskResult{Errors: []string{"user list unavailable"}}).Once()

		h := NewTaskHandler(svc)
		assert.NoError(t, h.logic(ctx, message("", 1, `{"taskName":"daily-recommendations","data":{"taskId":"t2"}}`)))
	})

	t.Run("unknown task is dropped", func(t *testing.T) {
		svc := &mockTaskService{}
		h := NewTaskHandler(svc)
		assert.ErrorIs(t, h.dispatch(ctx, []byte(`{"taskName":"weekly-digest"}`)), service.ErrUnknownTask)
		assert.NoError(t, h.logic(ctx, message("", 1, `{"taskName":"weekly-digest"}`)))
		svc.AssertNotCalled(t, "ProcessRecommendationTask", mock.Anything, mock.Anything)
	})

	t.Run("malformed task is dropped", func(t *testing.T) {
		svc := &mockTaskService{}
		h := NewTaskHandler(svc)
		for _, raw := range []string{
			`not json`,
			`{"taskName":"daily-recommendations","data":"oops"}`,
			`{"taskName":"daily-recommendations","data":{"maxRecommendations":"many"}}`,
		} {
			assert.ErrorIs(t, h.dispatch(ctx, []byte(raw)), service.ErrMalformedTask, raw)
			assert.NoError(t, h.logic(ctx, message("", 1, raw)), raw)
		}
		svc.AssertNotCalled(t, "ProcessRecommendationTask", mock.Anything, mock.Anything)
	})
}

func TestNotificationProducer_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var decoded model.NotificationMessage
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.UserID != "u1" || len(decoded.Content.Recommendations) != 1 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewNotificationProducerWith(producer, "notification.created")
	err := p.PublishNotification(context.Background(), &model.NotificationMessage{
		Type:   "recommendation",
		UserID: "u1",
		Content: model.NotificationContent{
			Title:           "Recommended for you",
			Recommendations: []model.NotificationItem{{ProductID: "p1"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestNotificationProducer_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewNotificationProducerWith(producer, "notification.created")
	err := p.PublishNotification(context.Background(), &model.NotificationMessage{UserID: "u1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
