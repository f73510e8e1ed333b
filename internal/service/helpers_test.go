package service

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/redis"
	"Affinity/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, clock *testClock) (*miniredis.Miniredis, redis.RecommendCache) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, redis.NewRecommendCache(rdb, redis.WithClock(clock.Now))
}

func newTestInterestRepo(t *testing.T) repository.UserInterestRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.UserInterest{}))
	return repository.NewUserInterestRepository(db)
}

// fakeActivityRepo 内存版行为存储
type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []*mongo.UserActivityModel
	createErr  error
	readErr    error
}

func (r *fakeActivityRepo) CreateActivity(_ context.Context, activity *mongo.UserActivityModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	activity.ID = primitive.NewObjectID()
	r.activities = append(r.activities, activity)
	return nil
}

func (r *fakeActivityRepo) GetActivitiesSince(_ context.Context, userID string, since time.Time) ([]*mongo.UserActivityModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	out := make([]*mongo.UserActivityModel, 0)
	for _, a := range r.activities {
		if a.UserID == userID && !a.Timestamp.Before(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *fakeActivityRepo) GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*mongo.UserActivityModel, error) {
	all, err := r.GetActivitiesSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

// fakeProductClient 按类目或 id 返回预置商品
type fakeProductClient struct {
	catalog    []*model.Product
	err        error
	lastLimit  int
	lastCats   []string
	byIDsCalls int
}

func (c *fakeProductClient) GetProducts(_ context.Context, categories []string, limit int) ([]*model.Product, error) {
	c.lastLimit = limit
	c.lastCats = categories
	if c.err != nil {
		return nil, c.err
	}
	wanted := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		wanted[cat] = struct{}{}
	}
	out := make([]*model.Product, 0)
	for _, p := range c.catalog {
		for _, cat := range p.CategoryList() {
			if _, ok := wanted[cat]; ok {
				out = append(out, p)
				break
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (c *fakeProductClient) GetProductsByIds(_ context.Context, ids []string) ([]*model.Product, error) {
	c.byIDsCalls++
	if c.err != nil {
		return nil, c.err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]*model.Product, 0)
	// 故意倒序返回，调用方不能依赖顺序
	for i := len(c.catalog) - 1; i >= 0; i-- {
		if _, ok := wanted[c.catalog[i].ID]; ok {
			out = append(out, c.catalog[i])
		}
	}
	return out, nil
}

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

var errBoom = errors.New("boom")
