package handler

import (
	"Affinity/internal/api/dto"
	"Affinity/internal/model"
	"Affinity/internal/pkg/mongo"
	"Affinity/internal/pkg/response"
	"Affinity/internal/pkg/util"
	"Affinity/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activitySvc service.ActivityService
}

func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activitySvc: activitySvc,
	}
}

func (s *ActivityHandler) CreateActivity(c *gin.Context) {
	userID := c.Param("user_id")
	var req dto.CreateActivityDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	in := &service.ActivityInput{
		UserID:       userID,
		ProductID:    req.ProductID,
		Categories:   req.Categories,
		SearchQuery:  req.SearchQuery,
		ActivityType: model.ActivityType(req.ActivityType),
		Metadata:     req.Metadata,
	}
	if req.Timestamp > 0 {
		in.Timestamp = time.UnixMilli(req.Timestamp)
	}

	activity, err := s.activitySvc.Ingest(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toActivityDTO(activity))
}

func (s *ActivityHandler) GetActivities(c *gin.Context) {
	userID := c.Param("user_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	activities, err := s.activitySvc.GetRecentActivities(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ActivityDTO, 0, len(activities))
	for _, a := range activities {
		list = append(list, toActivityDTO(a))
	}
	response.Success(c, list)
}

func toActivityDTO(a *mongo.UserActivityModel) *dto.ActivityDTO {
	return &dto.ActivityDTO{
		ID:           a.ID.Hex(),
		UserID:       a.UserID,
		ProductID:    a.ProductID,
		Categories:   a.Categories,
		SearchQuery:  a.SearchQuery,
		ActivityType: string(a.ActivityType),
		Weight:       a.Weight,
		Timestamp:    a.Timestamp,
		Metadata:     a.Metadata,
	}
}
