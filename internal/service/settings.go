package service

import (
	"fmt"
	"time"

	"shiftgrid/config"
	"shiftgrid/internal/roster"
)

// Settings 排班默认值（由 scheduling/session 配置转换而来）
type Settings struct {
	Staffing     roster.StaffingPolicy
	Constraints  roster.Constraints
	Location     *time.Location
	SelectionTTL time.Duration
}

// NewSettings 将配置转换为排班核心使用的类型
func NewSettings(cfg *config.Config) (Settings, error) {
	sc := cfg.Scheduling

	shiftA, err := roster.ParseShiftWindow(sc.ShiftA.Start, sc.ShiftA.End)
	if err != nil {
		return Settings{}, fmt.Errorf("scheduling.shift_a: %w", err)
	}
	shiftB, err := roster.ParseShiftWindow(sc.ShiftB.Start, sc.ShiftB.End)
	if err != nil {
		return Settings{}, fmt.Errorf("scheduling.shift_b: %w", err)
	}

	loc, err := time.LoadLocation(sc.Timezone)
	if err != nil {
		return Settings{}, fmt.Errorf("scheduling.timezone: %w", err)
	}

	return Settings{
		Staffing: roster.StaffingPolicy{Base: sc.Staffing.Base, Elevated: sc.Staffing.Elevated},
		Constraints: roster.Constraints{
			Windows:            roster.ShiftWindows{roster.ShiftA: shiftA, roster.ShiftB: shiftB},
			MaxShiftsPerDay:    sc.MaxShiftsPerDay,
			ShiftsPerWeek:      sc.ShiftsPerWeek,
			MinRestHours:       sc.MinRestHours,
			MaxConsecutiveDays: sc.MaxConsecutiveDays,
			PreferenceWeight:   sc.PreferenceWeight,
		},
		Location:     loc,
		SelectionTTL: cfg.Session.SelectionTTL,
	}, nil
}

// DefaultSettings 不读取配置时的默认值（测试与 CLI 无配置文件时使用）
func DefaultSettings() Settings {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	return Settings{
		Staffing:     roster.DefaultStaffingPolicy,
		Constraints:  roster.DefaultConstraints,
		Location:     loc,
		SelectionTTL: 72 * time.Hour,
	}
}
