package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftgrid/pkg/redis"
	"shiftgrid/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件（用于文本生成接口）
// 已认证请求按操作员计数，否则按客户端 IP。
// rdb 为 nil 或 Redis 出错时降级放行。
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.GetString(CtxOperator)
		if subject == "" {
			subject = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), subject)

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
