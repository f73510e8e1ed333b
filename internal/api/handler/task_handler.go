package handler

import (
	"Affinity/internal/api/dto"
	"Affinity/internal/pkg/response"
	"Affinity/internal/pkg/util"
	"Affinity/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskSvc service.TaskService
}

func NewTaskHandler(taskSvc service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskSvc: taskSvc,
	}
}

// RunTask 同步执行一次推荐任务并返回汇总
func (s *TaskHandler) RunTask(c *gin.Context) {
	var req dto.RunTaskDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}
	if req.TaskID == "" {
		req.TaskID = "manual-" + uuid.NewString()
	}

	result := s.taskSvc.ProcessRecommendationTask(c.Request.Context(), &service.RecommendationTaskRequest{
		MaxRecommendations: req.MaxRecommendations,
		IncludePriceDrops:  req.IncludePriceDrops,
		TaskID:             req.TaskID,
	})
	if !result.Success {
		c.JSON(200, dto.Response{
			Code:    response.InternalServerError,
			Message: service.ErrUserListUnavailable.Error(),
			Data:    result,
		})
		return
	}
	response.Success(c, result)
}
