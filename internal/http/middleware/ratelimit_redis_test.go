package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), db)
	require.True(t, RedisEnabled(), "redis not reachable at %s", addr)
	t.Cleanup(func() {
		_ = redisClient.Close()
		redisClient = nil
	})

	// odd window so runs of other tests never share the key
	w := time.Duration(2+time.Now().UnixNano()%50) * time.Second
	limit := 2

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/roll", RedisRateLimit(limit, w), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	do := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/roll", nil)
		req.RemoteAddr = "192.0.2." + strconv.Itoa(int(time.Now().UnixNano()%200)+1) + ":5000"
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	ip := "192.0.2.250:5000"
	doFrom := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/roll", nil)
		req.RemoteAddr = ip
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < limit; i++ {
		assert.Equal(t, http.StatusOK, doFrom(), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, doFrom())

	// other clients keep their own window
	assert.Equal(t, http.StatusOK, do())
}
