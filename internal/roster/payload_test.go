package roster

import (
	"strings"
	"testing"
	"time"
)

func fixtureRegistrations(t *testing.T) []RawRegistration {
	t.Helper()
	sheet, err := ParseRegistrationText(registrationFixture)
	if err != nil {
		t.Fatalf("解析登记表失败: %v", err)
	}
	regs, err := sheet.Registrations()
	if err != nil {
		t.Fatalf("Registrations 失败: %v", err)
	}
	return regs
}

func TestBuildGenerationPayload(t *testing.T) {
	table := extractFixture(t)
	anchor := AnchorFor(Date(2025, time.May, 5))
	p := BuildGenerationPayload(fixtureRegistrations(t), table, anchor, DefaultStaffingPolicy, DefaultConstraints)

	if len(p.Requirements) != 7 || p.Requirements[0].Headcount != 3 || p.Requirements[6].Weekday != "Chủ Nhật" {
		t.Errorf("每日人数不符: %+v", p.Requirements)
	}
	if len(p.Employees) != 2 || len(p.Registrations) != 2 {
		t.Errorf("期望 2 名员工，实际 %d / %d 条登记", len(p.Employees), len(p.Registrations))
	}
}

func TestRenderPrompt(t *testing.T) {
	table := extractFixture(t)
	anchor := AnchorFor(Date(2025, time.May, 5))
	prompt, err := RenderPrompt(BuildGenerationPayload(fixtureRegistrations(t), table, anchor, DefaultStaffingPolicy, DefaultConstraints), 2)
	if err != nil {
		t.Fatalf("RenderPrompt 失败: %v", err)
	}
	for _, want := range []string{
		"Ca 1: 09:00-15:00",
		"Ca 2: 14:00-20:00",
		"Thứ 2 2025-05-05: 3",
		"- An: 2025-05-05=A 2025-05-06=- ",
		"- An: Thứ 2 2025-05-05=ca 1; Thứ 3 2025-05-06=off; Thứ 4 2025-05-07=shift 1 only",
		"Thứ 6 2025-05-09=-",
		"(note: ưu tiên sáng)",
		"| Ngày | Ca | Nhân viên được phân công |",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("提示词缺少 %q:\n%s", want, prompt)
		}
	}
}

func TestRenderPrompt_UnknownWeek(t *testing.T) {
	sheet, err := ParseRegistrationText("Tên nhân viên\tThứ 2\tThứ 3\nAn\tca 1\toff\nBình\tsáng\tsau 16h")
	if err != nil {
		t.Fatalf("解析登记表失败: %v", err)
	}
	anchor := ResolveWeekAnchor(sheet)
	if anchor.Resolved {
		t.Fatal("无周次列时不应解析出周次")
	}
	table, err := ExtractAvailability(sheet, anchor)
	if err != nil {
		t.Fatalf("ExtractAvailability 失败: %v", err)
	}
	regs, err := sheet.Registrations()
	if err != nil {
		t.Fatalf("Registrations 失败: %v", err)
	}

	prompt, err := RenderPrompt(BuildGenerationPayload(regs, table, anchor, DefaultStaffingPolicy, Constraints{}), 2)
	if err != nil {
		t.Fatalf("RenderPrompt 失败: %v", err)
	}
	for _, want := range []string{
		"Require 2 staff per shift",
		"- An: Thứ 2=ca 1; Thứ 3=off;",
		"- Bình: Thứ 2=sáng; Thứ 3=sau 16h;",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("提示词缺少 %q:\n%s", want, prompt)
		}
	}
	// 无可用性记录时不输出空的 Availability 段
	if strings.Contains(prompt, "Availability (A =") {
		t.Errorf("降级时不应有可用性段:\n%s", prompt)
	}
}
