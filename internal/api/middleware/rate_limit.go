package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// Limiter 滑动窗口计数器（由 pkg/redis.Client 实现）
type Limiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// scope: 限流分类（read/write/bulk/public/auth），不同分类各自计数
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// limiter 为 nil 时降级放行
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), rateLimitKey(c, scope), limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitKey 已认证请求按协调员计数，其余按 IP
func rateLimitKey(c *gin.Context, scope string) string {
	if id := c.GetString(ContextCoordinatorID); id != "" {
		return fmt.Sprintf("rate_limit:%s:coord:%s", scope, id)
	}
	return fmt.Sprintf("rate_limit:%s:ip:%s", scope, c.ClientIP())
}

// RateLimitByMethod GET/HEAD 计入 read 分类，其余计入 write 分类
func RateLimitByMethod(limiter Limiter, read, write int, window time.Duration) gin.HandlerFunc {
	readLimit := RateLimit(limiter, "read", read, window)
	writeLimit := RateLimit(limiter, "write", write, window)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			readLimit(c)
		default:
			writeLimit(c)
		}
	}
}
