package roster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SlotsPerShift 每班固定 3 个位置
const SlotsPerShift = 3

// WeekdayLabels 周一..周日的显示名称
var WeekdayLabels = [7]string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7", "Chủ Nhật"}

// WeekdayLabel 日期对应的星期名称
func WeekdayLabel(d time.Time) string {
	return WeekdayLabels[(int(d.Weekday())+6)%7]
}

// SelectionKey 手动选择的定位：班次、位置序号、日期
type SelectionKey struct {
	Shift Shift
	Slot  int
	Date  time.Time
}

// String 存储用的文本形式，如 "A:0:2025-05-05"
func (k SelectionKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.Shift, k.Slot, k.Date.Format(isoDate))
}

// ParseSelectionKey 解析 SelectionKey.String 的输出
func ParseSelectionKey(s string) (SelectionKey, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return SelectionKey{}, fmt.Errorf("%w: 键格式错误 %q", ErrInvalidSelection, s)
	}
	shift := Shift(parts[0])
	if !shift.Valid() {
		return SelectionKey{}, fmt.Errorf("%w: 未知班次 %q", ErrInvalidSelection, parts[0])
	}
	slot, err := strconv.Atoi(parts[1])
	if err != nil || slot < 0 || slot >= SlotsPerShift {
		return SelectionKey{}, fmt.Errorf("%w: 位置序号 %q 超出范围", ErrInvalidSelection, parts[1])
	}
	date, err := time.Parse(isoDate, parts[2])
	if err != nil {
		return SelectionKey{}, fmt.Errorf("%w: 日期 %q", ErrInvalidSelection, parts[2])
	}
	return SelectionKey{Shift: shift, Slot: slot, Date: date}, nil
}

// Selections 手动选择映射，由调用方持有并在多次调和之间传递
type Selections map[SelectionKey]string

// Clone 浅拷贝
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SlotGroup 一个班次的 3 个位置及候选名单
type SlotGroup struct {
	Slots      [SlotsPerShift]string
	Candidates []string
	Required   int
}

// Filled 已填人数
func (g SlotGroup) Filled() int {
	n := 0
	for _, s := range g.Slots {
		if s != "" {
			n++
		}
	}
	return n
}

// Names 非空位置的姓名，保持位置顺序
func (g SlotGroup) Names() []string {
	var out []string
	for _, s := range g.Slots {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasCandidate 是否为可选项
func (g SlotGroup) HasCandidate(name string) bool {
	return contains(g.Candidates, name)
}

// GridRow 排班网格的一行（8 列：星期、日期、两班各 3 人）
type GridRow struct {
	Weekday string
	Date    time.Time
	ShiftA  SlotGroup
	ShiftB  SlotGroup
}

// Group 取对应班次的位置组
func (r *GridRow) Group(s Shift) *SlotGroup {
	switch s {
	case ShiftA:
		return &r.ShiftA
	case ShiftB:
		return &r.ShiftB
	default:
		return nil
	}
}

// ReconcileInput 调和所需的全部输入
type ReconcileInput struct {
	Assignments  []ParsedAssignment
	Availability AvailabilityTable
	Staffing     StaffingPlan
	Selections   Selections
}

// ReconcileResult 调和结果及回写后的手动选择
type ReconcileResult struct {
	Rows       []GridRow
	Selections Selections
}

// Reconcile 将解析出的排班表与可用性对照，生成每个日期一行的网格。
// 每个位置的取值顺序：仍有效的手动选择 → 生成结果中的姓名 → 空；
// 不在候选名单中时回退到第一个候选（空选项）。
func Reconcile(in ReconcileInput) ReconcileResult {
	seeds := indexAssignments(in.Assignments)
	universe := in.Availability.Employees()
	next := make(Selections)

	var rows []GridRow
	for _, date := range assignmentDates(in.Assignments) {
		row := GridRow{Weekday: WeekdayLabel(date), Date: date}
		for _, shift := range Shifts {
			seed := seeds[slotRef{date: date, shift: shift}]
			if len(seed) > SlotsPerShift {
				seed = seed[:SlotsPerShift]
			}

			group := row.Group(shift)
			group.Required = in.Staffing.For(date)
			group.Candidates = candidateList(in.Availability.Available(date, shift), universe, seed)

			for i := 0; i < SlotsPerShift; i++ {
				key := SelectionKey{Shift: shift, Slot: i, Date: date}
				value, ok := in.Selections[key]
				if !ok || !contains(group.Candidates, value) {
					value = ""
					if i < len(seed) {
						value = seed[i]
					}
				}
				if !contains(group.Candidates, value) {
					value = group.Candidates[0]
				}
				group.Slots[i] = value
				next[key] = value
			}
		}
		rows = append(rows, row)
	}
	return ReconcileResult{Rows: rows, Selections: next}
}

// candidateList 空选项 + 当班可用员工；无人可用时退化为全部员工；再补上生成结果中的姓名
func candidateList(available, universe, seed []string) []string {
	out := append([]string{""}, available...)
	if len(out) == 1 {
		out = append(out, universe...)
	}
	for _, name := range seed {
		if !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// ApplySelection 记录一次手动选择，返回新的选择映射；输入不被修改
func ApplySelection(res ReconcileResult, key SelectionKey, employee string) (Selections, error) {
	if !key.Shift.Valid() {
		return nil, fmt.Errorf("%w: 未知班次 %q", ErrInvalidSelection, key.Shift)
	}
	if key.Slot < 0 || key.Slot >= SlotsPerShift {
		return nil, fmt.Errorf("%w: 位置序号 %d 超出范围", ErrInvalidSelection, key.Slot)
	}
	for i := range res.Rows {
		row := &res.Rows[i]
		if !row.Date.Equal(civil(key.Date)) {
			continue
		}
		if !row.Group(key.Shift).HasCandidate(employee) {
			return nil, fmt.Errorf("%w: %s 不在候选名单中", ErrInvalidSelection, employee)
		}
		out := res.Selections.Clone()
		out[SelectionKey{Shift: key.Shift, Slot: key.Slot, Date: row.Date}] = employee
		return out, nil
	}
	return nil, fmt.Errorf("%w: 日期 %s 不在排班表中", ErrInvalidSelection, key.Date.Format(isoDate))
}

// BuildExportGrid 只读版本：直接由解析结果生成 8 列网格，不做候选与手动选择处理
func BuildExportGrid(assignments []ParsedAssignment) []GridRow {
	seeds := indexAssignments(assignments)
	var rows []GridRow
	for _, date := range assignmentDates(assignments) {
		row := GridRow{Weekday: WeekdayLabel(date), Date: date}
		for _, shift := range Shifts {
			group := row.Group(shift)
			for i, name := range seeds[slotRef{date: date, shift: shift}] {
				if i >= SlotsPerShift {
					break
				}
				group.Slots[i] = name
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Assignments 由网格反推每个日期/班次的分配（用于导出 markdown 表格）
func (r ReconcileResult) Assignments() []ParsedAssignment {
	return GridAssignments(r.Rows)
}

// GridAssignments 按行与班次顺序输出网格中的分配
func GridAssignments(rows []GridRow) []ParsedAssignment {
	var out []ParsedAssignment
	for i := range rows {
		for _, shift := range Shifts {
			out = append(out, ParsedAssignment{
				Date:          rows[i].Date,
				Shift:         shift,
				ShiftLabel:    shift.Label(),
				AssignedNames: rows[i].Group(shift).Names(),
			})
		}
	}
	return out
}

type slotRef struct {
	date  time.Time
	shift Shift
}

// indexAssignments 同一日期同一班次以首次出现为准
func indexAssignments(assignments []ParsedAssignment) map[slotRef][]string {
	out := make(map[slotRef][]string)
	for _, a := range assignments {
		if !a.Shift.Valid() {
			continue
		}
		ref := slotRef{date: civil(a.Date), shift: a.Shift}
		if _, ok := out[ref]; !ok {
			out[ref] = a.AssignedNames
		}
	}
	return out
}

func assignmentDates(assignments []ParsedAssignment) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, a := range assignments {
		d := civil(a.Date)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
