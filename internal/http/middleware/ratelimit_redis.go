package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/ktz03/tab-game/internal/db"
	"github.com/ktz03/tab-game/internal/logger"
)

var redisClient *redis.Client

// InitRedisRateLimiter initializes a shared Redis client used by the middleware.
// If the connection fails, redisClient stays nil and the middleware fails open.
func InitRedisRateLimiter(addr, password string, index int) {
	if addr == "" {
		return
	}
	rdb, err := db.ConnectRedis(context.Background(), addr, password, index)
	if err != nil {
		logger.Warn("redis rate limiter disabled", "addr", addr, "error", err)
		return
	}
	redisClient = rdb
}

// RedisEnabled reports whether RedisRateLimit has a live client.
func RedisEnabled() bool { return redisClient != nil }

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: tab:rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		ident := c.ClientIP()
		key := "tab:rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
