package middleware

import (
	"time"

	"storefront/internal/logger"

	"github.com/gin-gonic/gin"
)

func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		logf := logger.Info
		if status >= 500 {
			logf = logger.Error
		}
		logf("%s %s %d %s %s", c.Request.Method, path, status, time.Since(start), c.ClientIP())
	}
}
