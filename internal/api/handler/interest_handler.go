package handler

import (
	"Affinity/internal/api/dto"
	"Affinity/internal/model"
	"Affinity/internal/pkg/response"
	"Affinity/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type InterestHandler struct {
	interestSvc service.InterestService
}

func NewInterestHandler(interestSvc service.InterestService) *InterestHandler {
	return &InterestHandler{
		interestSvc: interestSvc,
	}
}

// GetInterests ?type=product|category，不传返回全部
func (s *InterestHandler) GetInterests(c *gin.Context) {
	userID := c.Param("user_id")
	interestType := model.InterestType(c.Query("type"))

	interests, err := s.interestSvc.GetUserInterests(c.Request.Context(), userID, interestType)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.InterestDTO, 0, len(interests))
	if err = copier.Copy(&list, &interests); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.UserInterestsDTO{
		UserID:    userID,
		Interests: list,
	})
}
