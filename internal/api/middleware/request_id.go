package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey gin.Context 中的请求 ID 键
const RequestIDKey = "request_id"

// requestIDMaxLen 外部传入的 X-Request-ID 超过该长度时重新生成
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 优先沿用请求头 X-Request-ID，否则生成 UUID；同时写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// GetRequestID 读取当前请求 ID，未经过 RequestID 中间件时为空
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
