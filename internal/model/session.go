package model

import "time"

// 会话状态
const (
	SessionStatusRegistered = "registered"
	SessionStatusGenerated  = "generated"
)

// 登记来源
const (
	SessionSourceText = "text"
	SessionSourceXLSX = "xlsx"
)

// PlanningSession 排班会话，对应 planning_sessions
type PlanningSession struct {
	SessionID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	Operator      string     `gorm:"type:varchar(64);not null"                      json:"operator"`
	WeekMonday    *time.Time `gorm:"type:date"                                      json:"week_monday,omitempty"` // NULL = 周次未知
	Degraded      bool       `gorm:"not null;default:false"                         json:"degraded"`
	Status        string     `gorm:"type:varchar(20);not null;default:'registered'" json:"status"`
	Source        string     `gorm:"type:varchar(10);not null;default:'text'"       json:"source"`
	RawInput      string     `gorm:"type:text;not null"                             json:"-"`
	StaffBase     int        `gorm:"type:smallint;not null;default:2"               json:"staff_base"`
	StaffElevated int        `gorm:"type:smallint;not null;default:3"               json:"staff_elevated"`
	VersionedModel
}

func (PlanningSession) TableName() string { return "planning_sessions" }

// Registration 登记行，对应 registrations
type Registration struct {
	RegistrationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"registration_id"`
	SessionID      string     `gorm:"type:uuid;not null"                             json:"session_id"`
	Position       int        `gorm:"not null"                                       json:"position"`
	Employee       string     `gorm:"type:varchar(128);not null"                     json:"employee"`
	WeekCell       string     `gorm:"type:varchar(128);not null;default:''"          json:"week_cell"`
	Days           StringList `gorm:"type:jsonb;not null"                            json:"days"` // 周一..周日
	Note           string     `gorm:"type:text;not null;default:''"                  json:"note"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Registration) TableName() string { return "registrations" }

// Availability 可用性记录，对应 availabilities
// (session_id, work_date, employee, shift) 唯一
type Availability struct {
	AvailabilityID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"availability_id"`
	SessionID      string    `gorm:"type:uuid;not null"                             json:"session_id"`
	Position       int       `gorm:"not null"                                       json:"-"` // 提取顺序
	WorkDate       time.Time `gorm:"type:date;not null"                             json:"work_date"`
	Employee       string    `gorm:"type:varchar(128);not null"                     json:"employee"`
	Shift          string    `gorm:"type:char(1);not null"                          json:"shift"` // A | B
	CanWork        bool      `gorm:"not null;default:false"                         json:"can_work"`
	Note           string    `gorm:"type:text;not null;default:''"                  json:"note"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Availability) TableName() string { return "availabilities" }

// [自证通过] internal/model/session.go
