package client

import (
	"Affinity/internal/api/config"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
)

const ServiceAuthHeader = "Service-Auth"

var ErrUnsuccessful = errors.New("collaborator reported failure")

// apiResponse 协作服务统一响应 {success, data}
type apiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// newRestyClient 服务间调用的公共设置
func newRestyClient(baseURL string, cfg config.ServicesConfig) *resty.Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		// 下游不一定带 Content-Type，统一按 JSON 解析
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			r.ForceContentType("application/json")
			return nil
		}).
		SetHeader(ServiceAuthHeader, cfg.Secret).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
}

func checkResponse(service string, resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("%s service: %s %s returned status %d", service, resp.Request.Method, resp.Request.URL, resp.StatusCode())
	}
	return nil
}
