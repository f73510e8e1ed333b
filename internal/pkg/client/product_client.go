package client

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// ProductClient 商品目录服务
type ProductClient interface {
	GetProducts(ctx context.Context, categories []string, limit int) ([]*model.Product, error)
	GetProductsByIds(ctx context.Context, ids []string) ([]*model.Product, error)
}

type productClientImpl struct {
	http *resty.Client
	cb   *gobreaker.CircuitBreaker[[]*model.Product]
}

func NewProductClient(cfg config.ServicesConfig) ProductClient {
	return &productClientImpl{
		http: newRestyClient(cfg.ProductURL, cfg),
		cb:   newBreaker[[]*model.Product]("product-service"),
	}
}

// GetProducts 按类目拉取候选商品
func (s *productClientImpl) GetProducts(ctx context.Context, categories []string, limit int) ([]*model.Product, error) {
	return execute(s.cb, func() ([]*model.Product, error) {
		var out apiResponse[[]*model.Product]
		resp, err := s.http.R().
			SetContext(ctx).
			SetQueryParam("categories", strings.Join(categories, ",")).
			SetQueryParam("limit", strconv.Itoa(limit)).
			SetResult(&out).
			Get("/api/products")
		if err != nil {
			return nil, fmt.Errorf("product service: %w", err)
		}
		return unwrapProducts(resp, &out)
	})
}

// GetProductsByIds 批量查询商品详情，顺序不保证
func (s *productClientImpl) GetProductsByIds(ctx context.Context, ids []string) ([]*model.Product, error) {
	if len(ids) == 0 {
		return []*model.Product{}, nil
	}
	return execute(s.cb, func() ([]*model.Product, error) {
		var out apiResponse[[]*model.Product]
		resp, err := s.http.R().
			SetContext(ctx).
			SetBody(map[string]any{"ids": ids}).
			SetResult(&out).
			Post("/api/products/batch")
		if err != nil {
			return nil, fmt.Errorf("product service: %w", err)
		}
		return unwrapProducts(resp, &out)
	})
}

func unwrapProducts(resp *resty.Response, out *apiResponse[[]*model.Product]) ([]*model.Product, error) {
	if err := checkResponse("product", resp); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("product service: %w: %s", ErrUnsuccessful, out.Message)
	}
	products := make([]*model.Product, 0, len(out.Data))
	for _, p := range out.Data {
		if p == nil {
			continue
		}
		p.Normalize()
		if p.ID == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}
