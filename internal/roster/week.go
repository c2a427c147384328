package roster

import (
	"strings"
	"time"
)

// WeekAnchor 排班周的周一；Resolved=false 表示周次未知
type WeekAnchor struct {
	Monday   time.Time
	Resolved bool
}

// UnknownAnchor 未知周次
func UnknownAnchor() WeekAnchor {
	return WeekAnchor{}
}

// AnchorFor 将任意日期归一化到所在周的周一
func AnchorFor(t time.Time) WeekAnchor {
	d := civil(t)
	offset := (int(d.Weekday()) + 6) % 7
	return WeekAnchor{Monday: d.AddDate(0, 0, -offset), Resolved: true}
}

// Day 周内第 i 天（0=周一）
func (a WeekAnchor) Day(i int) time.Time {
	return a.Monday.AddDate(0, 0, i)
}

// Contains 日期是否落在该周内
func (a WeekAnchor) Contains(d time.Time) bool {
	if !a.Resolved {
		return false
	}
	d = civil(d)
	return !d.Before(a.Monday) && d.Before(a.Monday.AddDate(0, 0, 7))
}

// Index 日期在周内的序号，不在周内返回 -1
func (a WeekAnchor) Index(d time.Time) int {
	if !a.Contains(d) {
		return -1
	}
	return int(civil(d).Sub(a.Monday).Hours() / 24)
}

func (a WeekAnchor) String() string {
	if !a.Resolved {
		return "unknown"
	}
	return a.Monday.Format(isoDate)
}

// Ptr 便于持久化的可空日期
func (a WeekAnchor) Ptr() *time.Time {
	if !a.Resolved {
		return nil
	}
	m := a.Monday
	return &m
}

var weekColumnKeywords = []string{"tuần", "week"}

// ResolveWeekAnchor 从登记表的“周”列取第一个非空值并解析为周一。
// 列缺失、值缺失或解析失败都返回未知周次，不报错。
func ResolveWeekAnchor(sheet *RegistrationSheet) WeekAnchor {
	if sheet == nil {
		return UnknownAnchor()
	}
	col := sheet.findColumn(weekColumnKeywords...)
	if col < 0 {
		return UnknownAnchor()
	}
	for _, row := range sheet.Rows {
		v := strings.TrimSpace(cellAt(row, col))
		if v == "" {
			continue
		}
		t, ok := WeekDateParser.Parse(v)
		if !ok {
			return UnknownAnchor()
		}
		return AnchorFor(t)
	}
	return UnknownAnchor()
}
