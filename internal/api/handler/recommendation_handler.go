package handler

import (
	"Affinity/internal/api/dto"
	"Affinity/internal/pkg/response"
	"Affinity/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendationSvc service.RecommendationService
}

func NewRecommendationHandler(recommendationSvc service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationSvc: recommendationSvc,
	}
}

// GetRecommendations 实时生成，不落库也不写发送账本
func (s *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 || limit > 50 {
		response.Fail(c, response.BadRequest, "limit 超出范围")
		return
	}

	recs := s.recommendationSvc.Generate(c.Request.Context(), userID, limit)
	response.Success(c, &dto.RecommendationListDTO{
		UserID:          userID,
		Recommendations: recs,
	})
}

func (s *RecommendationHandler) GetHistory(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	history, err := s.recommendationSvc.GetRecommendationHistory(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.RecommendationHistoryDTO, 0, len(history))
	for _, h := range history {
		item := &dto.RecommendationHistoryDTO{
			ID:          h.ID.Hex(),
			TaskID:      h.TaskID,
			Products:    make([]*dto.RecommendationItemDTO, 0, len(h.Products)),
			GeneratedAt: h.GeneratedAt,
			ExpiresAt:   h.ExpiresAt,
			IsNotified:  h.IsNotified,
		}
		for _, p := range h.Products {
			item.Products = append(item.Products, &dto.RecommendationItemDTO{
				ProductID: p.ProductID,
				Score:     p.Score,
				Reason:    p.Reason,
			})
		}
		list = append(list, item)
	}
	response.Success(c, list)
}

func (s *RecommendationHandler) GetProductViewers(c *gin.Context) {
	productID := c.Param("product_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	viewers, err := s.recommendationSvc.GetProductViewers(c.Request.Context(), productID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ProductViewersDTO{
		ProductID: productID,
		UserIDs:   viewers,
	})
}
