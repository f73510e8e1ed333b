package middleware

import (
	"Affinity/internal/pkg/client"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsAllowHeaders  = strings.Join([]string{"Origin", "Content-Type", "Accept", client.ServiceAuthHeader, traceHeader}, ", ")
	corsExposeHeaders = strings.Join([]string{"Content-Length", "Content-Type", traceHeader}, ", ")
)

// CORSMiddleware 内部管理台直接调用推荐接口时需要
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
