package roster

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseScheduleTable_ScenarioC(t *testing.T) {
	text := "| 2025-05-05 | Shift A | X, Y, Z |\n|---|---|---|\n"
	got, err := ParseScheduleTable(text)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	want := []ParsedAssignment{{
		Date:          Date(2025, time.May, 5),
		Shift:         ShiftA,
		ShiftLabel:    "Shift A",
		AssignedNames: []string{"X", "Y", "Z"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("结果不符 (-want +got):\n%s", diff)
	}

	anchor := AnchorFor(got[0].Date)
	if n := DefaultStaffingPolicy.Plan(anchor).For(got[0].Date); n != 3 {
		t.Errorf("5月5日应需要 3 人，实际 %d", n)
	}
}

func TestParseScheduleTable_BlockInProse(t *testing.T) {
	text := `Dưới đây là lịch làm việc:

| Ngày | Ca | Nhân viên |
|:-----|:--:|-----------|
| 2025-05-05 | Ca 1 | An, Bình |
| **2025-05-05** | Ca 2 (14:00-20:00) | Chi |
| 06/05/2025 | Ca 1 | Dũng, Em, Giang, Hà |

Lưu ý: lịch có thể thay đổi.
`
	got, report, err := ParseScheduleTableWithReport(text)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if report.Strategy != StrategyBlock {
		t.Errorf("期望策略 %s，实际 %s", StrategyBlock, report.Strategy)
	}
	if report.DroppedRows != 1 {
		t.Errorf("表头行应作为无效日期被丢弃，实际丢弃 %d", report.DroppedRows)
	}
	if len(got) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(got))
	}
	if got[1].Shift != ShiftB || got[1].ShiftLabel != "Ca 2 (14:00-20:00)" {
		t.Errorf("第二行班次识别错误: %+v", got[1])
	}
	if !got[2].Date.Equal(Date(2025, time.May, 6)) {
		t.Errorf("06/05/2025 应按日/月/年解析，实际 %s", got[2].Date.Format(isoDate))
	}
	if len(got[2].AssignedNames) != 4 {
		t.Errorf("解析阶段保留全部姓名，实际 %v", got[2].AssignedNames)
	}
}

func TestParseScheduleTable_ScenarioD_NoSeparator(t *testing.T) {
	text := "Lịch:\n| Ngày | Ca | Người |\n| 2025-05-05 | Ca 1 | An |\n| 2025-05-05 | Ca 2 | Bình, Chi |\n"
	got, report, err := ParseScheduleTableWithReport(text)
	if err != nil {
		t.Fatalf("缺少分隔行时应走补表头路径: %v", err)
	}
	if report.Strategy != StrategySynthesizedHead {
		t.Errorf("期望策略 %s，实际 %s", StrategySynthesizedHead, report.Strategy)
	}
	if len(got) != 2 || got[1].Shift != ShiftB {
		t.Errorf("结果不符: %+v", got)
	}
}

func TestParseScheduleTable_ScatteredPipeLines(t *testing.T) {
	text := "| Ngày | Ca | Người |\n|---|---|---|\nBảng tạm:\n| 2025-05-07 | Ca 1 | An |\n"
	got, report, err := ParseScheduleTableWithReport(text)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if report.Strategy != StrategyPipeLines {
		t.Errorf("期望策略 %s，实际 %s", StrategyPipeLines, report.Strategy)
	}
	if len(got) != 1 || got[0].AssignedNames[0] != "An" {
		t.Errorf("结果不符: %+v", got)
	}
}

func TestParseScheduleTable_TwoColumns(t *testing.T) {
	text := "| Ngày | Ca |\n|---|---|\n| 2025-05-05 | Ca 1 |\n| 2025-05-06 | Ca 2 |\n"
	got, err := ParseScheduleTable(text)
	if err != nil {
		t.Fatalf("两列日期/班次应补空姓名列: %v", err)
	}
	if len(got) != 2 || len(got[0].AssignedNames) != 0 {
		t.Errorf("结果不符: %+v", got)
	}
}

func TestParseScheduleTable_ExtraColumnsTruncated(t *testing.T) {
	text := "| Ngày | Ca | Nhân viên | Ghi chú |\n|---|---|---|---|\n| 2025-05-05 | Ca 1 | An | đủ người |\n"
	got, report, err := ParseScheduleTableWithReport(text)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if report.Columns != 4 {
		t.Errorf("期望记录 4 列，实际 %d", report.Columns)
	}
	if len(got[0].AssignedNames) != 1 || got[0].AssignedNames[0] != "An" {
		t.Errorf("只取前三列，实际 %+v", got[0])
	}
}

func TestParseScheduleTable_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"无表格", "Xin lỗi, tôi không thể tạo lịch.", ErrUnparseableTable},
		{"只有一行", "| 2025-05-05 | Ca 1 | An |", ErrUnparseableTable},
		{"日期全部无效", "| a | b | c |\n|---|---|---|\n| foo | Ca 1 | An |\n", ErrUnparseableTable},
		{"仅一列", "| a |\n|---|\n| b |\n", ErrColumnCountMismatch},
		{"两列但不像日期班次", "| a | b |\n|---|---|\n| x | y |\n", ErrColumnCountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScheduleTable(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseScheduleTable_ColumnCountErrorCarriesCount(t *testing.T) {
	_, err := ParseScheduleTable("| a |\n|---|\n| b |\n")
	var cce *ColumnCountError
	if !errors.As(err, &cce) || cce.Found != 1 {
		t.Errorf("期望 ColumnCountError{Found:1}，实际 %v", err)
	}
}

func TestParseScheduleTable_DateFallbacks(t *testing.T) {
	tests := []struct {
		cell string
		want time.Time
	}{
		{"2025-05-05", Date(2025, time.May, 5)},
		{"13/05/2025", Date(2025, time.May, 13)},
		{"05/13/2025", Date(2025, time.May, 13)},
		{"2025/05/14", Date(2025, time.May, 14)},
		{"15-05-2025", Date(2025, time.May, 15)},
		{"05-16-2025", Date(2025, time.May, 16)},
		{"2025-05-05 (Thứ 2)", Date(2025, time.May, 5)},
		{"Thứ 3, 06/05/2025", Date(2025, time.May, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := TableDateParser.Parse(tt.cell)
			if !ok || !got.Equal(tt.want) {
				t.Errorf("期望 %s，实际 %s (ok=%v)", tt.want.Format(isoDate), got.Format(isoDate), ok)
			}
		})
	}
}

func TestParseScheduleTable_ShortageNotesAndDuplicates(t *testing.T) {
	text := "| Ngày | Ca | NV |\n|---|---|---|\n" +
		"| 2025-05-05 | Ca 1 | An, , (Thiếu 1 người) |\n" +
		"| 2025-05-05 | Ca 1 | Bình |\n"
	got, report, err := ParseScheduleTableWithReport(text)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if report.DuplicateRows != 1 || len(got) != 1 {
		t.Fatalf("重复的日期/班次应保留第一行，实际 %+v / %+v", got, report)
	}
	if diff := cmp.Diff([]string{"An"}, got[0].AssignedNames); diff != "" {
		t.Errorf("姓名不符: %s", diff)
	}
	if diff := cmp.Diff([]string{"(Thiếu 1 người)"}, got[0].Notes); diff != "" {
		t.Errorf("缺员说明不符: %s", diff)
	}
}

func TestParseScheduleTable_Idempotent(t *testing.T) {
	text := "```\n| Ngày | Ca | Nhân viên |\n|---|---|---|\n" +
		"| 2025-05-05 | Ca 1 | An, Bình |\n" +
		"| 2025-05-05 | Ca 2 | Chi, (Thiếu 1 người) |\n" +
		"| 2025-05-06 | Ca 1 |  |\n" +
		"| 2025-05-06 | Ca 2 | Dũng, Em, Giang |\n```\n"
	first, err := ParseScheduleTable(text)
	if err != nil {
		t.Fatalf("首次解析失败: %v", err)
	}
	canonical := FormatScheduleTable(first)
	second, err := ParseScheduleTable(canonical)
	if err != nil {
		t.Fatalf("再次解析失败: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("重新序列化后解析结果应一致 (-first +second):\n%s", diff)
	}
	if !strings.HasPrefix(canonical, canonicalHeader+"\n"+canonicalSeparator+"\n") {
		t.Errorf("标准表格应以固定表头开始:\n%s", canonical)
	}
}

func TestParseShift(t *testing.T) {
	tests := []struct {
		label string
		want  Shift
	}{
		{"Ca 1", ShiftA},
		{"ca 2", ShiftB},
		{"Shift A", ShiftA},
		{"Shift B", ShiftB},
		{"Ca sáng", ShiftA},
		{"Ca chiều (14:00-20:00)", ShiftB},
		{"Afternoon shift", ShiftB},
		{"Ca 1 (09:00-15:00)", ShiftA},
		{"2", ShiftB},
		{"Ca tối", ShiftUnknown},
		{"", ShiftUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseShift(tt.label); got != tt.want {
				t.Errorf("ParseShift(%q) = %q，期望 %q", tt.label, got, tt.want)
			}
		})
	}
}
