package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftgrid/pkg/response"
)

// BodyLimit 请求体大小限制中间件（登记文本、xlsx 上传、手动粘贴的生成结果）
// 声明的 Content-Length 超限时直接拒绝；未声明时由 MaxBytesReader 在读取时截断。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
