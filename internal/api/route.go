package api

import (
	"Affinity/internal/api/config"
	"Affinity/internal/api/middleware"
	"Affinity/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup, logCfg config.LogstashConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logCfg)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		recGroup := apiGroup.Group("/recommendation")
		{
			userGroup := recGroup.Group("/users/:user_id")
			{
				userGroup.GET("/activities", group.ActivityHandler.GetActivities)
				userGroup.POST("/activities", group.ActivityHandler.CreateActivity)
				userGroup.GET("/interests", group.InterestHandler.GetInterests)
				userGroup.GET("/recommendations", group.RecommendationHandler.GetRecommendations)
				userGroup.GET("/recommendations/history", group.RecommendationHandler.GetHistory)
			}

			recGroup.GET("/products/:product_id/viewers", group.RecommendationHandler.GetProductViewers)
			recGroup.POST("/tasks", group.TaskHandler.RunTask)
		}
	}

	return r
}
