package client

import (
	"Affinity/internal/api/config"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// UserClient 用户目录服务
type UserClient interface {
	GetEligibleUsersForRecommendations(ctx context.Context) ([]string, error)
}

// eligibleUsersResponse 兼容 {userIds} 与 {success, data} 两种返回
type eligibleUsersResponse struct {
	UserIDs []string `json:"userIds"`
	Success *bool    `json:"success,omitempty"`
	Data    []string `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
}

type userClientImpl struct {
	http *resty.Client
	cb   *gobreaker.CircuitBreaker[[]string]
}

func NewUserClient(cfg config.ServicesConfig) UserClient {
	return &userClientImpl{
		http: newRestyClient(cfg.UserURL, cfg),
		cb:   newBreaker[[]string]("user-service"),
	}
}

// GetEligibleUsersForRecommendations 开启了推荐通知的用户
func (s *userClientImpl) GetEligibleUsersForRecommendations(ctx context.Context) ([]string, error) {
	return execute(s.cb, func() ([]string, error) {
		var out eligibleUsersResponse
		resp, err := s.http.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/api/users/eligible")
		if err != nil {
			return nil, fmt.Errorf("user service: %w", err)
		}
		if err = checkResponse("user", resp); err != nil {
			return nil, err
		}
		if out.Success != nil && !*out.Success {
			return nil, fmt.Errorf("user service: %w: %s", ErrUnsuccessful, out.Message)
		}
		if out.UserIDs != nil {
			return out.UserIDs, nil
		}
		if out.Data != nil {
			return out.Data, nil
		}
		return nil, fmt.Errorf("user service: %w: response has neither userIds nor data", ErrUnsuccessful)
	})
}
