package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// PredefinedColumns 无法识别表头时按位置映射的 10 列
var PredefinedColumns = []string{
	"Tên nhân viên:",
	"Đăng kí ca cho tuần:",
	"Bạn có thể làm việc thời gian nào? [Thứ 2]",
	"Bạn có thể làm việc thời gian nào? [Thứ 3]",
	"Bạn có thể làm việc thời gian nào? [Thứ 4]",
	"Bạn có thể làm việc thời gian nào? [Thứ 5]",
	"Bạn có thể làm việc thời gian nào? [Thứ 6]",
	"Bạn có thể làm việc thời gian nào? [Thứ 7]",
	"Bạn có thể làm việc thời gian nào? [Chủ nhật]",
	"Ghi chú (nếu có)",
}

var headerKeywords = []string{"tên", "thứ", "ghi chú", "tuần", "ngày", "name", "day", "note", "week", "date"}

var (
	employeeColumnKeywords = []string{"tên", "name"}
	noteColumnKeywords     = []string{"ghi chú", "note"}
)

// dayColumnKeywords 周一..周日的列名关键词
var dayColumnKeywords = [7][]string{
	{"thứ 2", "mon"},
	{"thứ 3", "tue"},
	{"thứ 4", "wed"},
	{"thứ 5", "thu"},
	{"thứ 6", "fri"},
	{"thứ 7", "sat"},
	{"chủ nhật", "sun", "cn"},
}

// RawRegistration 一名员工的登记行
type RawRegistration struct {
	Employee string
	Days     [7]string
	WeekCell string
	Note     string
}

// RegistrationSheet 清洗后的登记表
type RegistrationSheet struct {
	Columns []string
	Rows    [][]string
	// HeaderDetected 为 false 表示按 PredefinedColumns 位置映射
	HeaderDetected bool
}

// ParseRegistrationText 解析从表格软件粘贴的制表符分隔文本
func ParseRegistrationText(text string) (*RegistrationSheet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyRegistration
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取粘贴内容失败: %w", err)
		}
		records = append(records, rec)
	}
	return NewRegistrationSheet(records)
}

// ReadRegistrationWorkbook 读取上传的 .xlsx 登记表（第一个工作表）
func ReadRegistrationWorkbook(reader io.Reader) (*RegistrationSheet, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return NewRegistrationSheet(rows)
}

// NewRegistrationSheet 从原始二维单元格构建登记表：
// 首行命中表头关键词则作为表头，否则按 10 列预定义结构映射；
// 然后去掉全空行与全空列。
func NewRegistrationSheet(records [][]string) (*RegistrationSheet, error) {
	var nonEmpty [][]string
	for _, rec := range records {
		row := make([]string, len(rec))
		for i, c := range rec {
			row[i] = strings.TrimSpace(c)
		}
		if !isBlankRow(row) {
			nonEmpty = append(nonEmpty, row)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, ErrEmptyRegistration
	}

	sheet := &RegistrationSheet{}
	if looksLikeHeader(nonEmpty[0]) {
		sheet.HeaderDetected = true
		sheet.Columns = nonEmpty[0]
		sheet.Rows = nonEmpty[1:]
	} else {
		sheet.Columns = append([]string(nil), PredefinedColumns...)
		sheet.Rows = nonEmpty
	}
	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyRegistration
	}

	width := len(sheet.Columns)
	if sheet.HeaderDetected {
		for _, row := range sheet.Rows {
			if len(row) > width {
				width = len(row)
			}
		}
	}
	for len(sheet.Columns) < width {
		sheet.Columns = append(sheet.Columns, "")
	}
	for i, row := range sheet.Rows {
		sheet.Rows[i] = fitRow(row, width)
	}

	sheet.dropEmptyColumns()
	return sheet, nil
}

// WriteText 以制表符分隔文本写出（表头 + 数据行），可被 ParseRegistrationText 重新读取
func (s *RegistrationSheet) WriteText(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(s.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("写出登记表失败: %w", err)
	}
	return nil
}

func looksLikeHeader(row []string) bool {
	for _, cell := range row {
		if containsAnyKeyword(normalizeText(cell), headerKeywords) {
			return true
		}
	}
	return false
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func (s *RegistrationSheet) dropEmptyColumns() {
	keep := make([]int, 0, len(s.Columns))
	for col := range s.Columns {
		for _, row := range s.Rows {
			if row[col] != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == len(s.Columns) {
		return
	}
	cols := make([]string, len(keep))
	for i, col := range keep {
		cols[i] = s.Columns[col]
	}
	for r, row := range s.Rows {
		out := make([]string, len(keep))
		for i, col := range keep {
			out[i] = row[col]
		}
		s.Rows[r] = out
	}
	s.Columns = cols
}

// findColumn 返回第一个列名包含任一关键词的列，未找到返回 -1
func (s *RegistrationSheet) findColumn(keywords ...string) int {
	for i, name := range s.Columns {
		if containsAnyKeyword(normalizeText(name), keywords) {
			return i
		}
	}
	return -1
}

// dayColumns 周一..周日对应的列序号，缺失为 -1
func (s *RegistrationSheet) dayColumns() [7]int {
	var out [7]int
	for day := range out {
		out[day] = -1
	}
	for i, name := range s.Columns {
		col := normalizeText(name)
		for day, keywords := range dayColumnKeywords {
			if out[day] >= 0 {
				continue
			}
			if matchesDayColumn(col, keywords) {
				out[day] = i
				break
			}
		}
	}
	return out
}

// matchesDayColumn 列名形如 "...[thứ 2]"、"... mon..." 或恰为关键词
func matchesDayColumn(col string, keywords []string) bool {
	bare := strings.TrimSpace(strings.Trim(col, "[]"))
	for _, kw := range keywords {
		if strings.Contains(col, "["+kw+"]") || strings.Contains(col, " "+kw) || bare == kw {
			return true
		}
	}
	return false
}

// Registrations 按列映射出每名员工的登记行，跳过姓名为空的行
func (s *RegistrationSheet) Registrations() ([]RawRegistration, error) {
	empCol := s.findColumn(employeeColumnKeywords...)
	if empCol < 0 {
		return nil, fmt.Errorf("%w: 员工姓名", ErrMissingRequiredColumn)
	}
	days := s.dayColumns()
	found := false
	for _, col := range days {
		if col >= 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: 星期", ErrMissingRequiredColumn)
	}
	weekCol := s.findColumn(weekColumnKeywords...)
	noteCol := s.findColumn(noteColumnKeywords...)

	var regs []RawRegistration
	for _, row := range s.Rows {
		name := strings.TrimSpace(cellAt(row, empCol))
		if name == "" {
			continue
		}
		reg := RawRegistration{
			Employee: name,
			WeekCell: cellAt(row, weekCol),
			Note:     cellAt(row, noteCol),
		}
		for day, col := range days {
			reg.Days[day] = cellAt(row, col)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// normalizeText NFC 归一化、转小写、去首尾空白
func normalizeText(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(s)))
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
