package api

import (
	"Affinity/internal/api/config"
	"Affinity/internal/api/dto"
	"Affinity/internal/api/handler"
	"Affinity/internal/model"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubActivityService struct {
	lastInput *service.ActivityInput
}

func (s *stubActivityService) Ingest(_ context.Context, in *service.ActivityInput) (*mongo.UserActivityModel, error) {
	s.lastInput = in
	w, ok := in.ActivityType.Weight()
	if !ok {
		return nil, service.ErrUnknownActivityType
	}
	return &mongo.UserActivityModel{
		ID:           primitive.NewObjectID(),
		UserID:       in.UserID,
		ProductID:    in.ProductID,
		ActivityType: in.ActivityType,
		Weight:       w,
		Timestamp:    in.Timestamp,
	}, nil
}

func (s *stubActivityService) GetRecentActivities(context.Context, string, int64) ([]*mongo.UserActivityModel, error) {
	return []*mongo.UserActivityModel{}, nil
}

type stubInterestService struct{}

func (stubInterestService) Recompute(context.Context, string) error { return nil }

func (stubInterestService) GetUserInterests(_ context.Context, userID string, t model.InterestType) ([]*model.UserInterest, error) {
	if t == "brand" {
		return nil, service.ErrParamInvalid
	}
	return []*model.UserInterest{
		{UserID: userID, InterestType: model.InterestCategory, ItemID: "shoes", Score: 4.2},
	}, nil
}

type stubRecommendationService struct {
	lastLimit int
}

func (s *stubRecommendationService) Generate(_ context.Context, _ string, limit int) []model.RecommendedProduct {
	s.lastLimit = limit
	return []model.RecommendedProduct{{ProductID: "p1", Score: 1}}
}

func (s *stubRecommendationService) GetRecommendationHistory(context.Context, string, int64) ([]*mongo.RecommendationModel, error) {
	return []*mongo.RecommendationModel{{
		ID:       primitive.NewObjectID(),
		TaskID:   "t1",
		Products: []mongo.RecommendedItem{{ProductID: "p1", Score: 2, Reason: "Recently viewed"}},
	}}, nil
}

func (s *stubRecommendationService) GetProductViewers(_ context.Context, productID string, _ int64) ([]string, error) {
	return []string{"u2", "u1"}, nil
}

type stubTaskService struct {
	result *service.TaskResult
	last   *service.RecommendationTaskRequest
}

func (s *stubTaskService) ProcessRecommendationTask(_ context.Context, req *service.RecommendationTaskRequest) *service.TaskResult {
	s.last = req
	return s.result
}

type testEnv struct {
	router   *gin.Engine
	activity *stubActivityService
	recs     *stubRecommendationService
	tasks    *stubTaskService
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		activity: &stubActivityService{},
		recs:     &stubRecommendationService{},
		tasks:    &stubTaskService{result: &service.TaskResult{Success: true, Errors: []string{}}},
	}
	env.router = SetupRouter(&HandlersGroup{
		ActivityHandler:       handler.NewActivityHandler(env.activity),
		InterestHandler:       handler.NewInterestHandler(stubInterestService{}),
		RecommendationHandler: handler.NewRecommendationHandler(env.recs),
		TaskHandler:           handler.NewTaskHandler(env.tasks),
	}, config.LogstashConfig{})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (dto.Response, json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return dto.Response{Code: envelope.Code, Message: envelope.Message}, envelope.Data
}

func TestPing(t *testing.T) {
	resp, _ := newTestEnv().do(t, http.MethodGet, "/api/ping", "")
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "pong", resp.Message)
}

func TestCreateActivity(t *testing.T) {
	env := newTestEnv()
	resp, data := env.do(t, http.MethodPost, "/api/recommendation/users/u1/activities",
		`{"productId":"p1","activityType":"add_to_cart","timestamp":1700000000000}`)

	require.Equal(t, 200, resp.Code)
	var activity dto.ActivityDTO
	require.NoError(t, json.Unmarshal(data, &activity))
	assert.Equal(t, "u1", activity.UserID)
	assert.Equal(t, 5.0, activity.Weight)
	assert.True(t, env.activity.lastInput.Timestamp.Equal(time.UnixMilli(1700000000000)))
}

func TestCreateActivity_InvalidType(t *testing.T) {
	env := newTestEnv()
	resp, _ := env.do(t, http.MethodPost, "/api/recommendation/users/u1/activities", `{"activityType":"share"}`)
	assert.Equal(t, 400, resp.Code)
	assert.Nil(t, env.activity.lastInput)
}

func TestGetInterests(t *testing.T) {
	env := newTestEnv()
	resp, data := env.do(t, http.MethodGet, "/api/recommendation/users/u1/interests?type=category", "")
	require.Equal(t, 200, resp.Code)
	assert.Contains(t, string(data), `"shoes"`)

	resp, _ = env.do(t, http.MethodGet, "/api/recommendation/users/u1/interests?type=brand", "")
	assert.Equal(t, 400, resp.Code)
}

func TestGetRecommendations(t *testing.T) {
	env := newTestEnv()
	resp, data := env.do(t, http.MethodGet, "/api/recommendation/users/u1/recommendations?limit=3", "")
	require.Equal(t, 200, resp.Code)
	assert.Equal(t, 3, env.recs.lastLimit)

	var list dto.RecommendationListDTO
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, "u1", list.UserID)
	assert.Len(t, list.Recommendations, 1)

	resp, _ = env.do(t, http.MethodGet, "/api/recommendation/users/u1/recommendations?limit=500", "")
	assert.Equal(t, 400, resp.Code)
}

func TestGetHistoryAndViewers(t *testing.T) {
	env := newTestEnv()
	resp, data := env.do(t, http.MethodGet, "/api/recommendation/users/u1/recommendations/history", "")
	require.Equal(t, 200, resp.Code)
	var history []dto.RecommendationHistoryDTO
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "t1", history[0].TaskID)
	assert.Equal(t, "p1", history[0].Products[0].ProductID)

	resp, data = env.do(t, http.MethodGet, "/api/recommendation/products/p1/viewers", "")
	require.Equal(t, 200, resp.Code)
	var viewers dto.ProductViewersDTO
	require.NoError(t, json.Unmarshal(data, &viewers))
	assert.Equal(t, []string{"u2", "u1"}, viewers.UserIDs)
}

func TestRunTask(t *testing.T) {
	env := newTestEnv()
	resp, _ := env.do(t, http.MethodPost, "/api/recommendation/tasks", `{"maxRecommendations":3}`)
	require.Equal(t, 200, resp.Code)
	assert.True(t, strings.HasPrefix(env.tasks.last.TaskID, "manual-"))
	assert.Equal(t, 3, env.tasks.last.MaxRecommendations)

	env.tasks.result = &service.TaskResult{Errors: []string{"user service down"}}
	resp, _ = env.do(t, http.MethodPost, "/api/recommendation/tasks", `{"taskId":"t9"}`)
	assert.Equal(t, 500, resp.Code)
}
