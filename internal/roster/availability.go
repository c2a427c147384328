package roster

import (
	"sort"
	"time"
)

// AvailabilityRecord 某员工某日某班是否可上班
type AvailabilityRecord struct {
	Date     time.Time
	Employee string
	Shift    Shift
	CanWork  bool
	Note     string
}

// AvailabilityTable 一次提取的结果。Degraded 表示周次未知，未能生成任何记录。
type AvailabilityTable struct {
	Records  []AvailabilityRecord
	Degraded bool
}

// Verdict 单元格的判定结果
type Verdict struct {
	ShiftA bool
	ShiftB bool
}

// For 取某班次的判定
func (v Verdict) For(s Shift) bool {
	switch s {
	case ShiftA:
		return v.ShiftA
	case ShiftB:
		return v.ShiftB
	default:
		return false
	}
}

// ── 可用性判定规则 ──

var (
	negativeKeywords = []string{"nghỉ", "off", "bận", "unavailable", "busy"}
	shiftAKeywords   = []string{"ca 1", "shift 1", "sáng", "morning", "9h", "9:00"}
	shiftBKeywords   = []string{"ca 2", "shift 2", "chiều", "afternoon", "14h", "2h", "14:00"}
)

type availabilityRule struct {
	name    string
	when    func(text string) bool
	verdict func(text string) Verdict
}

// availabilityRules 按顺序匹配，首条命中即定
var availabilityRules = []availabilityRule{
	{
		name:    "negative",
		when:    func(t string) bool { return containsAnyKeyword(t, negativeKeywords) },
		verdict: func(string) Verdict { return Verdict{} },
	},
	{
		name: "shift-specific",
		when: func(t string) bool {
			return containsAnyKeyword(t, shiftAKeywords) || containsAnyKeyword(t, shiftBKeywords)
		},
		verdict: func(t string) Verdict {
			return Verdict{
				ShiftA: containsAnyKeyword(t, shiftAKeywords),
				ShiftB: containsAnyKeyword(t, shiftBKeywords),
			}
		},
	},
	{
		// 非空但未命中任何关键词，视为两班均可
		name:    "open-ended",
		when:    func(t string) bool { return t != "" },
		verdict: func(string) Verdict { return Verdict{ShiftA: true, ShiftB: true} },
	},
	{
		name:    "empty",
		when:    func(string) bool { return true },
		verdict: func(string) Verdict { return Verdict{} },
	},
}

// Classify 判定一个登记单元格，返回结论与命中的规则名
func Classify(cell string) (Verdict, string) {
	text := normalizeText(cell)
	for _, rule := range availabilityRules {
		if rule.when(text) {
			return rule.verdict(text), rule.name
		}
	}
	return Verdict{}, ""
}

// ExtractAvailability 将登记表展开为每人每天两条（两班）记录。
// 周次未知时返回空表并标记 Degraded，不报错。
func ExtractAvailability(sheet *RegistrationSheet, anchor WeekAnchor) (AvailabilityTable, error) {
	if !anchor.Resolved {
		return AvailabilityTable{Degraded: true}, nil
	}
	regs, err := sheet.Registrations()
	if err != nil {
		return AvailabilityTable{}, err
	}
	regs = latestPerEmployee(regs)

	records := make([]AvailabilityRecord, 0, len(regs)*7*len(Shifts))
	for _, reg := range regs {
		for day, cell := range reg.Days {
			verdict, _ := Classify(cell)
			date := anchor.Day(day)
			for _, shift := range Shifts {
				records = append(records, AvailabilityRecord{
					Date:     date,
					Employee: reg.Employee,
					Shift:    shift,
					CanWork:  verdict.For(shift),
					Note:     reg.Note,
				})
			}
		}
	}
	return AvailabilityTable{Records: records}, nil
}

// latestPerEmployee 同名员工多次登记时以最后一次为准，保持首次出现的顺序
func latestPerEmployee(regs []RawRegistration) []RawRegistration {
	index := make(map[string]int, len(regs))
	out := make([]RawRegistration, 0, len(regs))
	for _, reg := range regs {
		if i, ok := index[reg.Employee]; ok {
			out[i] = reg
			continue
		}
		index[reg.Employee] = len(out)
		out = append(out, reg)
	}
	return out
}

// Employees 所有出现过的员工，去重并排序
func (t AvailabilityTable) Employees() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Records {
		if !seen[r.Employee] {
			seen[r.Employee] = true
			out = append(out, r.Employee)
		}
	}
	sort.Strings(out)
	return out
}

// Available 某日某班 CanWork 的员工，去重并排序
func (t AvailabilityTable) Available(date time.Time, shift Shift) []string {
	date = civil(date)
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Records {
		if !r.CanWork || r.Shift != shift || !r.Date.Equal(date) || seen[r.Employee] {
			continue
		}
		seen[r.Employee] = true
		out = append(out, r.Employee)
	}
	sort.Strings(out)
	return out
}

// Lookup 查询单条记录
func (t AvailabilityTable) Lookup(date time.Time, employee string, shift Shift) (AvailabilityRecord, bool) {
	date = civil(date)
	for _, r := range t.Records {
		if r.Employee == employee && r.Shift == shift && r.Date.Equal(date) {
			return r, true
		}
	}
	return AvailabilityRecord{}, false
}

// EmployeeSummary 员工一周可用情况摘要，用于生成请求
type EmployeeSummary struct {
	Employee string
	Note     string
	Days     []DayAvailability
}

// DayAvailability 单日两班的可用性
type DayAvailability struct {
	Date   time.Time
	ShiftA bool
	ShiftB bool
}

// Summaries 按员工聚合（员工按首次出现顺序）
func (t AvailabilityTable) Summaries() []EmployeeSummary {
	index := make(map[string]int)
	var out []EmployeeSummary
	for _, r := range t.Records {
		i, ok := index[r.Employee]
		if !ok {
			i = len(out)
			index[r.Employee] = i
			out = append(out, EmployeeSummary{Employee: r.Employee, Note: r.Note})
		}
		s := &out[i]
		if n := len(s.Days); n == 0 || !s.Days[n-1].Date.Equal(r.Date) {
			s.Days = append(s.Days, DayAvailability{Date: r.Date})
		}
		day := &s.Days[len(s.Days)-1]
		switch r.Shift {
		case ShiftA:
			day.ShiftA = r.CanWork
		case ShiftB:
			day.ShiftB = r.CanWork
		}
	}
	return out
}
