package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"shiftgrid/internal/api/middleware"
	"shiftgrid/pkg/response"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	CtxOperator = middleware.CtxOperator
	CtxRole     = middleware.CtxRole
	CtxTokenJTI = middleware.CtxTokenJTI
	CtxTokenExp = middleware.CtxTokenExp
)

// MustGetOperator 从 Gin 上下文中安全提取操作员用户名。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperator(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxOperator)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxRole)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetToken 提取当前 Access Token 的 jti 与过期时间（登出时使用）
func MustGetToken(c *gin.Context) (string, time.Time, bool) {
	jti, ok := mustGetString(c, CtxTokenJTI)
	if !ok {
		return "", time.Time{}, false
	}
	exp, ok := c.Get(CtxTokenExp)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	t, ok := exp.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, t, true
}
