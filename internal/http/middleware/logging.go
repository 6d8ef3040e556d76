package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ktz03/tab-game/internal/logger"
)

// RequestLogger puts a request scoped logger in the request context and logs
// each finished request at debug level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := logger.With("method", c.Request.Method, "path", c.Request.URL.Path, "ip", c.ClientIP())
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))

		c.Next()

		l.Debug("request", "status", c.Writer.Status(), "took", time.Since(start))
	}
}
