package roster

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ParsedAssignment 生成结果表格中的一行：日期、班次、分配的员工
type ParsedAssignment struct {
	Date          time.Time
	Shift         Shift
	ShiftLabel    string
	AssignedNames []string
	// Notes 从姓名列中剔除的缺员说明，如 "(Thiếu 1 người)"
	Notes []string
}

// Key 分配所在的日期与班次
func (a ParsedAssignment) Key() (time.Time, Shift) {
	return a.Date, a.Shift
}

// 表格提取策略
const (
	StrategyBlock           = "block"
	StrategyPipeLines       = "pipe-lines"
	StrategySynthesizedHead = "synthesized-header"
)

const (
	canonicalHeader    = "| Ngày | Ca | Nhân viên được phân công |"
	canonicalSeparator = "|---|---|---|"
)

// ParseReport 一次表格解析的统计
type ParseReport struct {
	Strategy string
	// Columns 清洗后的有效列数
	Columns int
	// DroppedRows 日期无法解析而被丢弃的行（含表头行）
	DroppedRows int
	// DuplicateRows 同一日期同一班次重复出现而被忽略的行
	DuplicateRows int
}

// ParseScheduleTable 从生成服务返回的自由文本中提取 (日期, 班次, 员工) 表格
func ParseScheduleTable(text string) ([]ParsedAssignment, error) {
	out, _, err := ParseScheduleTableWithReport(text)
	return out, err
}

// ParseScheduleTableWithReport 同 ParseScheduleTable，并返回解析统计
func ParseScheduleTableWithReport(text string) ([]ParsedAssignment, ParseReport, error) {
	var report ParseReport

	lines, strategy, ok := extractTableLines(text)
	if !ok {
		return nil, report, ErrUnparseableTable
	}
	report.Strategy = strategy

	grid := cleanTable(lines)
	report.Columns = columnCount(grid)

	switch {
	case report.Columns >= 3:
		for i, row := range grid {
			grid[i] = row[:3]
		}
	case report.Columns == 2 && plausibleDateShift(grid):
		for i, row := range grid {
			grid[i] = append(row, "")
		}
	default:
		return nil, report, &ColumnCountError{Found: report.Columns}
	}

	type slotKey struct {
		date  time.Time
		shift Shift
		label string
	}
	seen := make(map[slotKey]bool)
	var out []ParsedAssignment
	for _, row := range grid {
		date, ok := TableDateParser.Parse(row[0])
		if !ok {
			report.DroppedRows++
			continue
		}
		shift := ParseShift(row[1])
		key := slotKey{date: date, shift: shift}
		if shift == ShiftUnknown {
			key.label = normalizeText(row[1])
		}
		if seen[key] {
			report.DuplicateRows++
			continue
		}
		seen[key] = true

		names, notes := splitNames(row[2])
		out = append(out, ParsedAssignment{
			Date:          date,
			Shift:         shift,
			ShiftLabel:    row[1],
			AssignedNames: names,
			Notes:         notes,
		})
	}
	if len(out) == 0 {
		return nil, report, fmt.Errorf("%w: 所有数据行的日期均无法识别", ErrUnparseableTable)
	}
	return out, report, nil
}

// extractTableLines 先找完整表格块（表头+分隔行+数据行），
// 再退化为收集所有以 | 开头的行，必要时补上标准表头。
func extractTableLines(text string) ([]string, string, bool) {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var run []string
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "|") {
			run = append(run, l)
			continue
		}
		if isTableBlock(run) {
			return run, StrategyBlock, true
		}
		run = nil
	}
	if isTableBlock(run) {
		return run, StrategyBlock, true
	}

	var piped []string
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "|") {
			piped = append(piped, l)
		}
	}
	if len(piped) < 2 {
		return nil, "", false
	}
	if !isSeparatorLine(piped[1]) {
		return append([]string{canonicalHeader, canonicalSeparator}, piped...), StrategySynthesizedHead, true
	}
	return piped, StrategyPipeLines, true
}

func isTableBlock(run []string) bool {
	return len(run) >= 3 && isSeparatorLine(run[1])
}

var separatorCell = regexp.MustCompile(`^:?-{2,}:?$`)

func isSeparatorLine(line string) bool {
	return isSeparatorRow(splitCells(line))
}

func isSeparatorRow(cells []string) bool {
	found := false
	for _, c := range cells {
		c = strings.ReplaceAll(c, " ", "")
		if c == "" {
			continue
		}
		if !separatorCell.MatchString(c) {
			return false
		}
		found = true
	}
	return found
}

func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = cleanCell(p)
	}
	return parts
}

// cleanCell 去空白及包裹的 markdown 强调符
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`")
	return strings.TrimSpace(s)
}

// cleanTable 拆分单元格，去掉分隔行、全空行和全空列
func cleanTable(lines []string) [][]string {
	var rows [][]string
	width := 0
	for _, l := range lines {
		cells := splitCells(l)
		if isSeparatorRow(cells) || isBlankRow(cells) {
			continue
		}
		rows = append(rows, cells)
		if len(cells) > width {
			width = len(cells)
		}
	}

	var keep []int
	for col := 0; col < width; col++ {
		for _, row := range rows {
			if col < len(row) && row[col] != "" {
				keep = append(keep, col)
				break
			}
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(keep))
		for i, col := range keep {
			cells[i] = cellAt(row, col)
		}
		out[r] = cells
	}
	return out
}

func columnCount(grid [][]string) int {
	if len(grid) == 0 {
		return 0
	}
	return len(grid[0])
}

// plausibleDateShift 两列表格中至少有一行是 (可解析日期, 可识别班次)
func plausibleDateShift(grid [][]string) bool {
	for _, row := range grid {
		if _, ok := TableDateParser.Parse(row[0]); ok && ParseShift(row[1]) != ShiftUnknown {
			return true
		}
	}
	return false
}

var shortageMarkers = []string{"thiếu", "missing", "short"}

// splitNames 按逗号拆分姓名，缺员说明单独返回
func splitNames(cell string) (names, notes []string) {
	for _, tok := range strings.Split(cell, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, "(") && containsAnyKeyword(normalizeText(tok), shortageMarkers) {
			notes = append(notes, tok)
			continue
		}
		names = append(names, tok)
	}
	return names, notes
}

// FormatScheduleTable 以标准三列 markdown 表格输出，可被 ParseScheduleTable 原样解析回来
func FormatScheduleTable(assignments []ParsedAssignment) string {
	var b strings.Builder
	b.WriteString(canonicalHeader)
	b.WriteByte('\n')
	b.WriteString(canonicalSeparator)
	b.WriteByte('\n')
	for _, a := range assignments {
		label := a.ShiftLabel
		if label == "" {
			label = a.Shift.Label()
		}
		cells := append(append([]string(nil), a.AssignedNames...), a.Notes...)
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Date.Format(isoDate), label, strings.Join(cells, ", "))
	}
	return b.String()
}
