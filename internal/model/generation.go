package model

import "time"

// 生成来源
const (
	GenerationSourceAI     = "ai"
	GenerationSourceManual = "manual"
)

// 生成状态
const (
	GenerationStatusParsed = "parsed"
	GenerationStatusFailed = "failed"
)

// Generation 一轮生成（AI 或手动粘贴），对应 generations
type Generation struct {
	GenerationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"generation_id"`
	SessionID    string    `gorm:"type:uuid;not null"                             json:"session_id"`
	Source       string    `gorm:"type:varchar(10);not null"                      json:"source"`
	Status       string    `gorm:"type:varchar(10);not null"                      json:"status"`
	Prompt       string    `gorm:"type:text;not null;default:''"                  json:"prompt,omitempty"`
	Response     string    `gorm:"type:text;not null;default:''"                  json:"response,omitempty"`
	Reason       string    `gorm:"type:text;not null;default:''"                  json:"reason,omitempty"` // 失败原因
	Strategy     string    `gorm:"type:varchar(20);not null;default:''"           json:"strategy,omitempty"`
	DroppedRows  int       `gorm:"not null;default:0"                             json:"dropped_rows"`
	CreatedBy    string    `gorm:"type:varchar(64);not null"                      json:"created_by"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Assignments []Assignment `gorm:"foreignKey:GenerationID" json:"assignments,omitempty"`
}

func (Generation) TableName() string { return "generations" }

// Assignment 解析后的排班行，对应 assignments
type Assignment struct {
	AssignmentID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	GenerationID  string     `gorm:"type:uuid;not null"                             json:"generation_id"`
	Position      int        `gorm:"not null"                                       json:"position"`
	WorkDate      time.Time  `gorm:"type:date;not null"                             json:"work_date"`
	Shift         string     `gorm:"type:varchar(1);not null;default:''"            json:"shift"` // A | B | ""（无法识别）
	ShiftLabel    string     `gorm:"type:varchar(64);not null;default:''"           json:"shift_label"`
	AssignedNames StringList `gorm:"type:jsonb;not null"                            json:"assigned_names"`
	Notes         StringList `gorm:"type:jsonb;not null"                            json:"notes"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Assignment) TableName() string { return "assignments" }
