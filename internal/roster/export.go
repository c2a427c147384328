package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// GridHeader 导出的固定 8 列表头
var GridHeader = []string{
	"Thứ", "Ngày",
	"Ca 1 (NV1)", "Ca 1 (NV2)", "Ca 1 (NV3)",
	"Ca 2 (NV1)", "Ca 2 (NV2)", "Ca 2 (NV3)",
}

// WorkbookSheet 导出 xlsx 的工作表名
const WorkbookSheet = "Edited_Schedule_8Col"

const utf8BOM = "\ufeff"

// GridRecord 一行网格的 8 个单元格
func GridRecord(row GridRow) []string {
	rec := make([]string, 0, len(GridHeader))
	rec = append(rec, row.Weekday, FormatDisplayDate(row.Date))
	rec = append(rec, row.ShiftA.Slots[:]...)
	rec = append(rec, row.ShiftB.Slots[:]...)
	return rec
}

// WriteDelimited 以指定分隔符写出表头与全部行
func WriteDelimited(w io.Writer, rows []GridRow, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(GridHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(GridRecord(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSV 制表符分隔，用于复制到剪贴板
func WriteTSV(w io.Writer, rows []GridRow) error {
	return WriteDelimited(w, rows, '\t')
}

// WriteCSV 逗号分隔并带 UTF-8 BOM，便于 Excel 正确识别越南语
func WriteCSV(w io.Writer, rows []GridRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	return WriteDelimited(w, rows, ',')
}

// WriteWorkbook 写出单工作表的 xlsx
func WriteWorkbook(w io.Writer, rows []GridRow) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(WorkbookSheet)
	if err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(WorkbookSheet, "A", "A", 10)
	f.SetColWidth(WorkbookSheet, "B", "B", 12)
	f.SetColWidth(WorkbookSheet, "C", "H", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range GridHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(WorkbookSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(GridHeader), 1)
	f.SetCellStyle(WorkbookSheet, "A1", last, headerStyle)

	for r, row := range rows {
		for c, v := range GridRecord(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(WorkbookSheet, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写入 Excel 失败: %w", err)
	}
	return nil
}

// calendarNamespace 生成稳定的事件 UID
var calendarNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("shiftgrid/roster"))

// CalendarUID 事件 UID：同一 scope（会话）内同一位置稳定，不同 scope 互不覆盖
func CalendarUID(scope string, key SelectionKey) string {
	return uuid.NewSHA1(calendarNamespace, []byte(scope+"|"+key.String())).String()
}

// WriteCalendar 每个已填位置生成一个 VEVENT，时间取班次时段，按 loc 解释。
// scope 区分不同会话导出的日历，参与 UID 计算。
func WriteCalendar(w io.Writer, scope string, rows []GridRow, windows ShiftWindows, loc *time.Location, stamp time.Time) error {
	if loc == nil {
		loc = time.UTC
	}
	if windows == nil {
		windows = DefaultShiftWindows
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftgrid//roster//VI")

	for i := range rows {
		row := &rows[i]
		day := time.Date(row.Date.Year(), row.Date.Month(), row.Date.Day(), 0, 0, 0, 0, loc)
		for _, shift := range Shifts {
			window, ok := windows[shift]
			if !ok {
				continue
			}
			for slot, name := range row.Group(shift).Slots {
				if name == "" {
					continue
				}
				key := SelectionKey{Shift: shift, Slot: slot, Date: row.Date}
				event := cal.AddEvent(CalendarUID(scope, key))
				event.SetDtStampTime(stamp)
				event.SetStartAt(day.Add(window.Start))
				event.SetEndAt(day.Add(window.End))
				event.SetSummary(fmt.Sprintf("%s - %s", shift.Label(), name))
				event.SetDescription(fmt.Sprintf("%s %s, %s", row.Weekday, FormatDisplayDate(row.Date), window))
			}
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
