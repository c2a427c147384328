package roster

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Shift 每日固定班次
type Shift string

const (
	ShiftUnknown Shift = ""
	ShiftA       Shift = "A"
	ShiftB       Shift = "B"
)

// Shifts 班次的固定顺序
var Shifts = []Shift{ShiftA, ShiftB}

// Label 班次的显示名称
func (s Shift) Label() string {
	switch s {
	case ShiftA:
		return "Ca 1"
	case ShiftB:
		return "Ca 2"
	default:
		return ""
	}
}

func (s Shift) Valid() bool {
	return s == ShiftA || s == ShiftB
}

// ParseShift 将外部文本（"Ca 1"、"Shift A"、"Ca sáng (09:00-15:00)" 等）识别为班次
func ParseShift(label string) Shift {
	tokens := strings.FieldsFunc(normalizeText(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	// "ca 1" / "shift b"
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] != "ca" && tokens[i] != "shift" {
			continue
		}
		switch tokens[i+1] {
		case "1", "a":
			return ShiftA
		case "2", "b":
			return ShiftB
		}
	}

	for _, tok := range tokens {
		switch tok {
		case "sáng", "morning":
			return ShiftA
		case "chiều", "afternoon":
			return ShiftB
		}
	}

	if len(tokens) == 1 {
		switch tokens[0] {
		case "1", "a":
			return ShiftA
		case "2", "b":
			return ShiftB
		}
	}
	return ShiftUnknown
}

// ShiftWindow 班次的起止时刻（距当日零点的偏移）
type ShiftWindow struct {
	Start time.Duration
	End   time.Duration
}

// ShiftWindows 各班次时段
type ShiftWindows map[Shift]ShiftWindow

// DefaultShiftWindows Ca 1 09:00-15:00，Ca 2 14:00-20:00
var DefaultShiftWindows = ShiftWindows{
	ShiftA: {Start: 9 * time.Hour, End: 15 * time.Hour},
	ShiftB: {Start: 14 * time.Hour, End: 20 * time.Hour},
}

// ParseShiftWindow 解析 "HH:MM" 形式的起止时间
func ParseShiftWindow(start, end string) (ShiftWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return ShiftWindow{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return ShiftWindow{}, err
	}
	if e <= s {
		return ShiftWindow{}, fmt.Errorf("班次结束时间 %s 必须晚于开始时间 %s", end, start)
	}
	return ShiftWindow{Start: s, End: e}, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("无效的时间 %q: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// String 输出 "09:00-15:00"
func (w ShiftWindow) String() string {
	clock := func(d time.Duration) string {
		return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
	}
	return clock(w.Start) + "-" + clock(w.End)
}
