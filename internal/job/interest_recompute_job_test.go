package job

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/redis"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInterestService struct {
	mock.Mock
}

func (m *mockInterestService) Recompute(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockInterestService) GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) ([]*model.UserInterest, error) {
	args := m.Called(ctx, userID, interestType)
	list, _ := args.Get(0).([]*model.UserInterest)
	return list, args.Error(1)
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, redis.RecommendCache) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, redis.NewRecommendCache(rdb)
}

func TestInterestRecomputeJob_RunOnce(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)
	svc := &mockInterestService{}
	svc.On("Recompute", mock.Anything, "u1").Return(nil).Once()
	svc.On("Recompute", mock.Anything, "u2").Return(errors.New("mysql down")).Once()
	svc.On("Recompute", mock.Anything, "u3").Return(nil).Once()

	require.NoError(t, cache.EnqueueRecompute(ctx, "u1", "u2", "u3", "u1"))

	job := NewInterestRecomputeJob(cache, svc)
	processed, failed := job.RunOnce(ctx)

	assert.Equal(t, 2, processed)
	assert.Equal(t, []string{"u2"}, failed)
	svc.AssertExpectations(t)

	requeued, err := cache.DrainRecompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, requeued, "failed users wait for the next round")
}

func TestInterestRecomputeJob_EmptyQueue(t *testing.T) {
	_, cache := newTestCache(t)
	svc := &mockInterestService{}

	processed, failed := NewInterestRecomputeJob(cache, svc).RunOnce(context.Background())

	assert.Zero(t, processed)
	assert.Empty(t, failed)
	svc.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
}

func TestInterestRecomputeJob_Coalesces(t *testing.T) {
	ctx := context.Background()
	_, cache := newTestCache(t)
	svc := &mockInterestService{}
	svc.On("Recompute", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.EnqueueRecompute(ctx, "u1", "u2"))
	}

	processed, _ := NewInterestRecomputeJob(cache, svc).RunOnce(ctx)
	assert.Equal(t, 2, processed)
	svc.AssertNumberOfCalls(t, "Recompute", 2)

	users := make([]string, 0, 2)
	for _, c := range svc.Calls {
		users = append(users, c.Arguments.String(1))
	}
	sort.Strings(users)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestInterestRecomputeJob_DrainError(t *testing.T) {
	s, cache := newTestCache(t)
	svc := &mockInterestService{}
	s.SetError("LOADING")

	processed, failed := NewInterestRecomputeJob(cache, svc).RunOnce(context.Background())
	assert.Zero(t, processed)
	assert.Empty(t, failed)
}
