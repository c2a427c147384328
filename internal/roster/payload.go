package roster

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Constraints 排班约束，随生成请求发送
type Constraints struct {
	Windows            ShiftWindows
	MaxShiftsPerDay    int
	ShiftsPerWeek      int
	MinRestHours       int
	MaxConsecutiveDays int
	PreferenceWeight   float64
}

// DefaultConstraints 默认约束
var DefaultConstraints = Constraints{
	Windows:            DefaultShiftWindows,
	MaxShiftsPerDay:    1,
	ShiftsPerWeek:      4,
	MinRestHours:       8,
	MaxConsecutiveDays: 6,
	PreferenceWeight:   0.7,
}

// DayRequirement 某日每班所需人数
type DayRequirement struct {
	Date      time.Time
	Weekday   string
	Headcount int
}

// GenerationPayload 发送给文本生成服务的结构化内容
type GenerationPayload struct {
	Anchor WeekAnchor
	// Registrations 原始登记单元格，周次未知时仍完整发送
	Registrations []RawRegistration
	Employees     []EmployeeSummary
	Requirements []DayRequirement
	Constraints  Constraints
}

// BuildGenerationPayload 汇总原始登记、可用性、每日人数与约束
func BuildGenerationPayload(regs []RawRegistration, table AvailabilityTable, anchor WeekAnchor, policy StaffingPolicy, constraints Constraints) GenerationPayload {
	p := GenerationPayload{
		Anchor:        anchor,
		Registrations: regs,
		Employees:     table.Summaries(),
		Constraints:   constraints,
	}
	if anchor.Resolved {
		counts := policy.Headcounts(anchor)
		for i, n := range counts {
			d := anchor.Day(i)
			p.Requirements = append(p.Requirements, DayRequirement{Date: d, Weekday: WeekdayLabel(d), Headcount: n})
		}
	}
	return p
}

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"date":  func(t time.Time) string { return t.Format(isoDate) },
	"mark":  availabilityMark,
	"label": func(s Shift) string { return s.Label() },
	"cells": registrationCells,
}).Parse(`You are a staff scheduling assistant. Build a weekly shift schedule.

Shifts:
{{- range $s := .Shifts}}
- {{label $s}}: {{index $.Constraints.Windows $s}}
{{- end}}

Rules:
- At most {{.Constraints.MaxShiftsPerDay}} shift(s) per employee per day.
- Aim for about {{.Constraints.ShiftsPerWeek}} shifts per employee per week.
- At least {{.Constraints.MinRestHours}} hours of rest between shifts.
- No more than {{.Constraints.MaxConsecutiveDays}} consecutive working days.
- Respect stated preferences with weight {{printf "%.1f" .Constraints.PreferenceWeight}}.
- Only assign employees to shifts they marked available.
- If a shift cannot be fully staffed, append "(Thiếu N người)" after the names.
{{if .Payload.Requirements}}
Required staff per shift:
{{- range .Payload.Requirements}}
- {{.Weekday}} {{date .Date}}: {{.Headcount}}
{{- end}}
{{else}}
Week start is unknown. Require {{.BaseHeadcount}} staff per shift.
{{end}}
Registrations (employee: raw answer per day, "-" = blank):
{{- range .Payload.Registrations}}
- {{.Employee}}: {{cells . $.Payload.Anchor}}{{if .Note}} (note: {{.Note}}){{end}}
{{- end}}
{{if .Payload.Employees}}
Availability (A = {{label .ShiftA}}, B = {{label .ShiftB}}):
{{- range .Payload.Employees}}
- {{.Employee}}:{{range .Days}} {{date .Date}}={{mark .}}{{end}}
{{- end}}
{{end}}
Answer with one markdown table and nothing else, using exactly these columns:
| Ngày | Ca | Nhân viên được phân công |
|---|---|---|
| YYYY-MM-DD | Ca 1 | Name 1, Name 2 |
`))

// registrationCells "Thứ 2 2025-05-05=ca 1; Thứ 3 2025-05-06=off; ..."，周次未知时省略日期
func registrationCells(r RawRegistration, anchor WeekAnchor) string {
	parts := make([]string, 0, len(r.Days))
	for i, cell := range r.Days {
		day := WeekdayLabels[i]
		if anchor.Resolved {
			day += " " + anchor.Day(i).Format(isoDate)
		}
		cell = strings.Join(strings.Fields(cell), " ")
		if cell == "" {
			cell = "-"
		}
		parts = append(parts, day+"="+cell)
	}
	return strings.Join(parts, "; ")
}

func availabilityMark(d DayAvailability) string {
	var b strings.Builder
	if d.ShiftA {
		b.WriteString("A")
	}
	if d.ShiftB {
		b.WriteString("B")
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// RenderPrompt 将结构化内容渲染为提示词文本
func RenderPrompt(p GenerationPayload, baseHeadcount int) (string, error) {
	if p.Constraints.Windows == nil {
		p.Constraints.Windows = DefaultShiftWindows
	}
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, map[string]any{
		"Payload":       p,
		"Constraints":   p.Constraints,
		"Shifts":        Shifts,
		"ShiftA":        ShiftA,
		"ShiftB":        ShiftB,
		"BaseHeadcount": baseHeadcount,
	})
	if err != nil {
		return "", fmt.Errorf("渲染提示词失败: %w", err)
	}
	return buf.String(), nil
}
