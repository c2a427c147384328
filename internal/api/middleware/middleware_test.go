package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftgrid/config"
	"shiftgrid/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "middleware-test-secret", AccessTokenTTL: time.Hour})
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	token, err := mgr.GenerateAccessToken("linh", "operator")
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	var gotOperator, gotJTI string
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil, zap.NewNop()), func(c *gin.Context) {
		gotOperator = c.GetString(CtxOperator)
		gotJTI = c.GetString(CtxTokenJTI)
		if _, ok := c.Get(CtxTokenExp); !ok {
			t.Error("应写入 Token 过期时间")
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}

	if gotOperator != "linh" || gotJTI == "" {
		t.Errorf("上下文注入错误: operator=%q jti=%q", gotOperator, gotJTI)
	}
}

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		role   string
		status int
	}{
		{"operator", http.StatusOK},
		{"viewer", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := gin.New()
			r.POST("/x", func(c *gin.Context) {
				c.Set(CtxRole, tt.role)
				c.Next()
			}, RoleAuth("operator"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("POST", "/x", nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/upload", strings.NewReader("short")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/upload", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if seen != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("应沿用请求头中的 ID，实际 %q", seen)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 100))
	r.ServeHTTP(w, req)
	if len(seen) != 36 {
		t.Errorf("超长 ID 应被替换为 UUID，实际 %q", seen)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求应返回 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("应允许配置的来源")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("应暴露 Content-Disposition")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未配置的来源不应被允许")
	}
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/gen", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/gen", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Redis 不可用时应放行，第 %d 次返回 %d", i+1, w.Code)
		}
	}
}
