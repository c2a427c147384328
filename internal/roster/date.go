package roster

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const isoDate = "2006-01-02"

// civil 截断为 UTC 零点，只保留日历日期
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date 构造日历日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateAttempt 一次日期解析尝试，失败返回 ok=false
type DateAttempt func(s string) (time.Time, bool)

// DateParser 按顺序执行解析尝试，首次成功即返回
type DateParser []DateAttempt

// Parse 依次尝试，全部失败时返回 ok=false
func (p DateParser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, attempt := range p {
		if t, ok := attempt(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Layout 以固定 time layout 解析
func Layout(layout string) DateAttempt {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, false
		}
		return civil(t), true
	}
}

// AnyLayout 依次尝试多个 layout
func AnyLayout(layouts ...string) DateAttempt {
	attempts := make(DateParser, len(layouts))
	for i, l := range layouts {
		attempts[i] = Layout(l)
	}
	return attempts.Parse
}

// ExcelSerial 解析 Excel 日期序列号（如 45782）。
// 只接受 1954~2119 年范围，避免把周数等小整数误认为日期。
func ExcelSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 20000 || f > 80000 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return civil(t), true
}

var embeddedDatePattern = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{4}`)

// Embedded 从较长文本中提取第一个日期片段再交给 inner 解析，例如 "2025-05-05 (Thứ 2)"
func Embedded(inner DateParser) DateAttempt {
	return func(s string) (time.Time, bool) {
		token := embeddedDatePattern.FindString(s)
		if token == "" || token == s {
			return time.Time{}, false
		}
		return inner.Parse(token)
	}
}

// WeekDateParser 登记表中“周”列的解析顺序：日/月/年 → 月/日/年 → 年-月-日 → 宽松解析
var WeekDateParser = DateParser{
	Layout("2/1/2006"),
	Layout("1/2/2006"),
	Layout("2006-1-2"),
	AnyLayout(
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-1-2 15:04:05",
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2006/1/2",
		"2-1-2006",
		"2.1.2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"Monday, January 2, 2006",
	),
	ExcelSerial,
}

// tableFallbacks 表格日期列的回退格式
var tableFallbacks = DateParser{
	Layout("2/1/2006"),
	Layout("1/2/2006"),
	Layout("2006/1/2"),
	Layout("2-1-2006"),
	Layout("1-2-2006"),
}

// TableDateParser 表格日期列：严格 ISO 优先，其次回退格式，最后提取嵌入的日期片段
var TableDateParser = DateParser{
	Layout(isoDate),
	tableFallbacks.Parse,
	Embedded(append(DateParser{Layout("2006-1-2")}, tableFallbacks...)),
}

// FormatDisplayDate 导出使用的 dd/mm/yyyy
func FormatDisplayDate(t time.Time) string {
	return t.Format("02/01/2006")
}
