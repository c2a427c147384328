package roster

import (
	"testing"
	"time"
)

func sheetWithWeek(value string) *RegistrationSheet {
	return &RegistrationSheet{
		Columns: []string{"Tên nhân viên:", "Đăng kí ca cho tuần:", "[Thứ 2]"},
		Rows:    [][]string{{"An", value, "ca 1"}},
	}
}

func TestResolveWeekAnchor_Formats(t *testing.T) {
	monday := Date(2025, time.May, 5)
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"日/月/年", "05/05/2025", monday},
		{"ISO", "2025-05-05", monday},
		{"周中日期归一到周一", "07/05/2025", monday},
		{"周日归一到前一个周一", "11/05/2025", monday},
		{"日/月/年失败后按月/日/年", "05/13/2025", Date(2025, time.May, 12)},
		{"单位数日月", "5/5/2025", monday},
		{"带时间", "2025-05-07 00:00:00", monday},
		{"英文月份", "May 9, 2025", monday},
		{"Excel 序列号", "45782", monday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWeekAnchor(sheetWithWeek(tt.value))
			if !got.Resolved {
				t.Fatalf("期望解析成功，值=%q", tt.value)
			}
			if !got.Monday.Equal(tt.want) {
				t.Errorf("期望 %s，实际 %s", tt.want.Format(isoDate), got)
			}
			if got.Monday.Weekday() != time.Monday {
				t.Errorf("锚点必须是周一，实际 %s", got.Monday.Weekday())
			}
		})
	}
}

func TestResolveWeekAnchor_ScenarioE(t *testing.T) {
	a := ResolveWeekAnchor(sheetWithWeek("05/05/2025"))
	b := ResolveWeekAnchor(sheetWithWeek("2025-05-05"))
	if !a.Resolved || !b.Resolved || !a.Monday.Equal(b.Monday) {
		t.Errorf("两种写法应得到同一周一: %s vs %s", a, b)
	}
}

func TestResolveWeekAnchor_Unknown(t *testing.T) {
	tests := []struct {
		name  string
		sheet *RegistrationSheet
	}{
		{"nil", nil},
		{"无周列", &RegistrationSheet{Columns: []string{"Tên"}, Rows: [][]string{{"An"}}}},
		{"周列为空", sheetWithWeek("")},
		{"无法解析", sheetWithWeek("tuần sau")},
		{"周数不是日期", sheetWithWeek("19")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveWeekAnchor(tt.sheet); got.Resolved {
				t.Errorf("期望未知周次，实际 %s", got)
			}
		})
	}
}

func TestResolveWeekAnchor_FirstNonEmptyValue(t *testing.T) {
	sheet := &RegistrationSheet{
		Columns: []string{"Name", "Week"},
		Rows: [][]string{
			{"An", ""},
			{"Bình", "12/05/2025"},
			{"Chi", "05/05/2025"},
		},
	}
	got := ResolveWeekAnchor(sheet)
	if !got.Monday.Equal(Date(2025, time.May, 12)) {
		t.Errorf("应取第一个非空值，实际 %s", got)
	}
}

func TestWeekAnchor_IndexAndContains(t *testing.T) {
	a := AnchorFor(Date(2025, time.May, 5))
	if i := a.Index(Date(2025, time.May, 11)); i != 6 {
		t.Errorf("期望 6，实际 %d", i)
	}
	if a.Contains(Date(2025, time.May, 12)) {
		t.Error("下周一不应在本周内")
	}
	if UnknownAnchor().Contains(Date(2025, time.May, 5)) {
		t.Error("未知周次不包含任何日期")
	}
	if UnknownAnchor().Ptr() != nil {
		t.Error("未知周次应返回 nil")
	}
}
