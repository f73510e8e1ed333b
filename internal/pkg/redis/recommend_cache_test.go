package redis

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/consts"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCache(t *testing.T) (*miniredis.Miniredis, *fakeClock, RecommendCache) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return s, clock, NewRecommendCache(rdb, WithClock(clock.Now))
}

func TestStoreUserActivity_TrimsAndSetsTTL(t *testing.T) {
	s, clock, cache := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < consts.RecentActivityLimit+20; i++ {
		err := cache.StoreUserActivity(ctx, "u1", &ActivityEntry{
			ProductID:    fmt.Sprintf("p%d", i),
			ActivityType: model.ActivityViewProduct,
			Weight:       1,
			Timestamp:    clock.now.Add(time.Duration(i) * time.Second).UnixMilli(),
		})
		require.NoError(t, err)
	}

	key := consts.UserActivityKey("u1")
	members, err := s.ZMembers(key)
	require.NoError(t, err)
	assert.Len(t, members, consts.RecentActivityLimit)
	assert.Equal(t, consts.RecentActivityTTL, s.TTL(key))

	recent, err := cache.GetRecentActivities(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "p119", recent[0].ProductID)
	assert.Equal(t, "p117", recent[2].ProductID)
	assert.Equal(t, clock.now.Add(119*time.Second).UnixMilli(), recent[0].Timestamp)

	viewers, err := cache.GetProductViewers(ctx, "p5", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, viewers)
	assert.Equal(t, consts.ViewedByTTL, s.TTL(consts.ProductViewedByKey("p5")))
}

func TestStoreUserActivity_SearchHasNoViewedBy(t *testing.T) {
	s, clock, cache := newTestCache(t)

	err := cache.StoreUserActivity(context.Background(), "u1", &ActivityEntry{
		SearchQuery:  "shoes",
		ActivityType: model.ActivitySearch,
		Weight:       0.5,
		Timestamp:    clock.now.UnixMilli(),
	})
	require.NoError(t, err)
	assert.False(t, s.Exists(consts.ProductViewedByKey("")))
}

func TestGetRecentlyViewedProducts_FiltersAndDedups(t *testing.T) {
	_, clock, cache := newTestCache(t)
	ctx := context.Background()

	events := []struct {
		product string
		typ     model.ActivityType
	}{
		{"p1", model.ActivityViewProduct},
		{"p2", model.ActivityPurchase},
		{"p3", model.ActivityAddToCart},
		{"p1", model.ActivityAddToWishlist},
		{"", model.ActivitySearch},
		{"p4", model.ActivityViewProduct},
	}
	for i, e := range events {
		require.NoError(t, cache.StoreUserActivity(ctx, "u1", &ActivityEntry{
			ProductID:    e.product,
			ActivityType: e.typ,
			Timestamp:    clock.now.Add(time.Duration(i) * time.Minute).UnixMilli(),
		}))
	}

	ids, err := cache.GetRecentlyViewedProducts(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p1", "p3"}, ids)

	ids, err = cache.GetRecentlyViewedProducts(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p1"}, ids)

	ids, err = cache.GetRecentlyViewedProducts(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStoreUserInterests_ReplacesSnapshot(t *testing.T) {
	s, _, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreUserInterests(ctx, "u1", model.InterestCategory, map[string]float64{"A": 3, "B": 1.5}))
	require.NoError(t, cache.StoreUserInterests(ctx, "u1", model.InterestCategory, map[string]float64{"C": 2}))

	got, err := cache.GetUserInterests(ctx, "u1", model.InterestCategory)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"C": 2}, got)
	assert.Equal(t, consts.InterestSnapshotTTL, s.TTL(consts.UserInterestsKey("u1", "category")))

	require.NoError(t, cache.StoreUserInterests(ctx, "u1", model.InterestCategory, map[string]float64{}))
	got, err = cache.GetUserInterests(ctx, "u1", model.InterestCategory)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWasRecommendationSent_Window(t *testing.T) {
	_, clock, cache := newTestCache(t)
	ctx := context.Background()
	window := 72 * time.Hour

	sent, err := cache.WasRecommendationSent(ctx, "u1", "P1", window)
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, cache.MarkRecommendationSent(ctx, "u1", []string{"P1"}))

	clock.now = clock.now.Add(71 * time.Hour)
	sent, err = cache.WasRecommendationSent(ctx, "u1", "P1", window)
	require.NoError(t, err)
	assert.True(t, sent)

	clock.now = clock.now.Add(2 * time.Hour)
	sent, err = cache.WasRecommendationSent(ctx, "u1", "P1", window)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestClaimRecommendations(t *testing.T) {
	s, clock, cache := newTestCache(t)
	ctx := context.Background()
	window := 72 * time.Hour

	require.NoError(t, cache.MarkRecommendationSent(ctx, "u1", []string{"P1"}))

	claimed, err := cache.ClaimRecommendations(ctx, "u1", []string{"P1", "P2", "P3"}, window)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2", "P3"}, claimed)

	// 第二次占用同一批商品什么也拿不到
	claimed, err = cache.ClaimRecommendations(ctx, "u1", []string{"P2", "P3"}, window)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	sent, err := cache.WasRecommendationSent(ctx, "u1", "P2", window)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, consts.SentLedgerTTL, s.TTL(consts.UserSentRecommendationsKey("u1")))

	clock.now = clock.now.Add(window + time.Minute)
	claimed, err = cache.ClaimRecommendations(ctx, "u1", []string{"P1", "P2"}, window)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, claimed)

	claimed, err = cache.ClaimRecommendations(ctx, "u1", nil, window)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestRecomputeQueue_CoalescesAndDrains(t *testing.T) {
	s, _, cache := newTestCache(t)
	ctx := context.Background()

	ids, err := cache.DrainRecompute(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, cache.EnqueueRecompute(ctx, "u1", "u2"))
	require.NoError(t, cache.EnqueueRecompute(ctx, "u1"))

	ids, err = cache.DrainRecompute(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
	assert.False(t, s.Exists(consts.UserInterestDirtyKey))

	ids, err = cache.DrainRecompute(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecomputeQueue_DrainsLargeSetInBatches(t *testing.T) {
	_, _, cache := newTestCache(t)
	ctx := context.Background()

	total := consts.RecomputeDrainBatch*2 + 7
	want := make([]string, 0, total)
	for i := 0; i < total; i++ {
		want = append(want, fmt.Sprintf("u%d", i))
	}
	require.NoError(t, cache.EnqueueRecompute(ctx, want...))

	ids, err := cache.DrainRecompute(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, ids)
}

// 两个实例交错 drain，同时有新用户入队，所有用户都必须恰好被取出一次
func TestRecomputeQueue_ConcurrentDrainsLoseNothing(t *testing.T) {
	_, _, cache := newTestCache(t)
	ctx := context.Background()

	const rounds = 50
	var (
		mu      sync.Mutex
		drained []string
		wg      sync.WaitGroup
		errs    = make(chan error, rounds*3)
	)
	drain := func() {
		defer wg.Done()
		ids, err := cache.DrainRecompute(ctx)
		if err != nil {
			errs <- err
			return
		}
		mu.Lock()
		drained = append(drained, ids...)
		mu.Unlock()
	}

	want := make([]string, 0, rounds*2)
	for i := 0; i < rounds; i++ {
		a, b := fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)
		want = append(want, a, b)
		wg.Add(3)
		go drain()
		go func() {
			defer wg.Done()
			if err := cache.EnqueueRecompute(ctx, a, b); err != nil {
				errs <- err
			}
		}()
		go drain()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rest, err := cache.DrainRecompute(ctx)
	require.NoError(t, err)
	drained = append(drained, rest...)

	assert.ElementsMatch(t, want, drained)
}
