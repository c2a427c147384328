package roster

import "time"

// StaffingPolicy 每日每班所需人数
type StaffingPolicy struct {
	Base     int
	Elevated int
}

// DefaultStaffingPolicy 平日 2 人；日 == 月 的日子 3 人
var DefaultStaffingPolicy = StaffingPolicy{Base: 2, Elevated: 3}

// Headcounts 从周一起 7 天的所需人数；周次未知时全部为 Base
func (p StaffingPolicy) Headcounts(anchor WeekAnchor) [7]int {
	var out [7]int
	for i := range out {
		out[i] = p.Base
		if !anchor.Resolved {
			continue
		}
		if isElevatedDay(anchor.Day(i)) {
			out[i] = p.Elevated
		}
	}
	return out
}

// Plan 生成可按日期查询的人数计划
func (p StaffingPolicy) Plan(anchor WeekAnchor) StaffingPlan {
	return StaffingPlan{Anchor: anchor, Days: p.Headcounts(anchor), Base: p.Base}
}

func isElevatedDay(d time.Time) bool {
	return d.Day() == int(d.Month())
}

// StaffingPlan Headcounts 的结果，附带周次
type StaffingPlan struct {
	Anchor WeekAnchor
	Days   [7]int
	Base   int
}

// For 查询某日所需人数；不在本周的日期按 Base 计
func (p StaffingPlan) For(d time.Time) int {
	if i := p.Anchor.Index(d); i >= 0 {
		return p.Days[i]
	}
	return p.Base
}
