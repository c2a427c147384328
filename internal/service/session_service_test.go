package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/model"
)

// ── CreateFromText ──

func TestCreateFromText_Success(t *testing.T) {
	env := newFixtureEnv(t)

	resp, err := env.svc.Session.CreateFromText(context.Background(), testOperator, weekFixture)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	if resp.WeekMonday != "2025-05-05" {
		t.Errorf("周一期望 2025-05-05，实际 %s", resp.WeekMonday)
	}
	if resp.Degraded {
		t.Error("有周次时不应降级")
	}
	if diff := cmp.Diff([]int{3, 2, 2, 2, 2, 2, 2}, resp.Headcounts); diff != "" {
		t.Errorf("人数计划不符 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"An", "Bình", "Chi"}, resp.Employees); diff != "" {
		t.Errorf("员工列表不符 (-want +got):\n%s", diff)
	}
	if resp.RegistrationRows != 3 || resp.AvailabilityRows != 42 {
		t.Errorf("期望 3 行登记 / 42 条可用性，实际 %d / %d", resp.RegistrationRows, resp.AvailabilityRows)
	}
	if resp.Status != model.SessionStatusRegistered || resp.Source != model.SessionSourceText {
		t.Errorf("状态或来源错误: %s / %s", resp.Status, resp.Source)
	}
	if resp.Version != 1 {
		t.Errorf("新会话版本应为 1，实际 %d", resp.Version)
	}

	stored := env.repos.sessions.sessions[resp.SessionID]
	if stored.Operator != testOperator || stored.RawInput != weekFixture {
		t.Error("会话应保存操作员与原始输入")
	}
	if stored.StaffBase != 2 || stored.StaffElevated != 3 {
		t.Errorf("应固化创建时的人数配置，实际 %d/%d", stored.StaffBase, stored.StaffElevated)
	}
}

func TestCreateFromText_UnknownWeekDegrades(t *testing.T) {
	env := newFixtureEnv(t)

	resp, err := env.svc.Session.CreateFromText(context.Background(), testOperator, undatedFixture)
	if err != nil {
		t.Fatalf("无周次不应报错: %v", err)
	}
	if !resp.Degraded {
		t.Error("无周次时应降级")
	}
	if resp.WeekMonday != "unknown" {
		t.Errorf("周次应为 unknown，实际 %s", resp.WeekMonday)
	}
	if resp.AvailabilityRows != 0 {
		t.Errorf("降级时不应生成可用性记录，实际 %d", resp.AvailabilityRows)
	}
	if resp.Headcounts != nil {
		t.Errorf("周次未知时不应返回人数计划，实际 %v", resp.Headcounts)
	}
}

func TestCreateFromText_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "  \n\t\n", ErrRegistrationEmpty},
		{"header only", "Tên nhân viên:\t[Thứ 2]\n", ErrRegistrationEmpty},
		{"no employee column", "Ghi chú\tTuần\nabc\t05/05/2025\n", ErrRegistrationColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFixtureEnv(t)
			_, err := env.svc.Session.CreateFromText(context.Background(), testOperator, tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际 %v", tt.want, err)
			}
			if len(env.repos.sessions.sessions) != 0 {
				t.Error("失败时不应创建会话")
			}
		})
	}
}

// ── CreateFromWorkbook ──

func TestCreateFromWorkbook_StoresTabText(t *testing.T) {
	env := newFixtureEnv(t)

	f := excelize.NewFile()
	for r, line := range strings.Split(strings.TrimSuffix(weekFixture, "\n"), "\n") {
		for c, cell := range strings.Split(line, "\t") {
			name, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellStr("Sheet1", name, cell); err != nil {
				t.Fatalf("写单元格失败: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("写工作簿失败: %v", err)
	}

	resp, err := env.svc.Session.CreateFromWorkbook(context.Background(), testOperator, &buf)
	if err != nil {
		t.Fatalf("导入工作簿失败: %v", err)
	}
	if resp.Source != model.SessionSourceXLSX {
		t.Errorf("来源应为 xlsx，实际 %s", resp.Source)
	}
	if resp.WeekMonday != "2025-05-05" || resp.AvailabilityRows != 42 {
		t.Errorf("工作簿解析结果不符: %s / %d", resp.WeekMonday, resp.AvailabilityRows)
	}

	raw := env.repos.sessions.sessions[resp.SessionID].RawInput
	if !strings.Contains(raw, "Bình\t") || !strings.HasPrefix(raw, "Tên nhân viên:") {
		t.Errorf("原始输入应保存为制表符文本，实际:\n%s", raw)
	}

	// 保存的文本可直接用于重新登记
	again, err := env.svc.Session.CreateFromText(context.Background(), testOperator, raw)
	if err != nil {
		t.Fatalf("重新解析保存的文本失败: %v", err)
	}
	if again.AvailabilityRows != resp.AvailabilityRows {
		t.Errorf("重新解析的记录数不一致: %d vs %d", again.AvailabilityRows, resp.AvailabilityRows)
	}
}

func TestCreateFromWorkbook_NotAWorkbook(t *testing.T) {
	env := newFixtureEnv(t)
	_, err := env.svc.Session.CreateFromWorkbook(context.Background(), testOperator, strings.NewReader("not xlsx"))
	if !errors.Is(err, ErrRegistrationUnreadable) {
		t.Errorf("期望 ErrRegistrationUnreadable，实际 %v", err)
	}
}

// ── Reregister ──

func TestReregister_ReplacesRosterAndClearsSelections(t *testing.T) {
	env := newFixtureEnv(t)
	ctx := context.Background()
	id := env.generated(t)

	grid, err := env.svc.Grid.Select(ctx, id, &dto.SelectionRequest{Date: "2025-05-05", Shift: "A", Slot: 2, Employee: "An"})
	if err != nil {
		t.Fatalf("手动选择失败: %v", err)
	}
	genID := grid.GenerationID

	session, _ := env.repos.sessions.GetByID(ctx, id)
	text := strings.Replace(weekFixture, "Chi\t\tchiều", "Chi\t\tca 1", 1)
	resp, err := env.svc.Session.Reregister(ctx, id, testOperator, &dto.ReregisterRequest{Text: text, Version: session.Version})
	if err != nil {
		t.Fatalf("重新登记失败: %v", err)
	}
	if resp.Version != session.Version+1 {
		t.Errorf("版本应递增，实际 %d", resp.Version)
	}
	if resp.Status != model.SessionStatusRegistered {
		t.Errorf("重新登记后状态应为 registered，实际 %s", resp.Status)
	}

	sel, _ := env.store.Load(ctx, id, genID)
	if len(sel) != 0 {
		t.Errorf("重新登记后应清空手动选择，实际 %d 项", len(sel))
	}

	avail, err := env.svc.Session.GetAvailability(ctx, id)
	if err != nil {
		t.Fatalf("查询可用性失败: %v", err)
	}
	for _, r := range avail.Records {
		if r.Employee == "Chi" && r.Date == "2025-05-05" {
			if want := r.Shift == "A"; r.CanWork != want {
				t.Errorf("Chi 5/5 %s 班 CanWork 应为 %v", r.Shift, want)
			}
		}
	}
}

func TestReregister_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("other operator", func(t *testing.T) {
		env := newFixtureEnv(t)
		id := env.registered(t)
		_, err := env.svc.Session.Reregister(ctx, id, "someone-else", &dto.ReregisterRequest{Text: weekFixture, Version: 1})
		if !errors.Is(err, ErrRegistrationNotOwnedByOp) {
			t.Errorf("期望 ErrRegistrationNotOwnedByOp，实际 %v", err)
		}
	})

	t.Run("stale version", func(t *testing.T) {
		env := newFixtureEnv(t)
		id := env.registered(t)
		_, err := env.svc.Session.Reregister(ctx, id, testOperator, &dto.ReregisterRequest{Text: weekFixture, Version: 7})
		if !errors.Is(err, ErrSessionVersionConflict) {
			t.Errorf("期望 ErrSessionVersionConflict，实际 %v", err)
		}
	})

	t.Run("concurrent update", func(t *testing.T) {
		env := newFixtureEnv(t)
		id := env.registered(t)
		env.repos.sessions.bumpBeforeUpdate = true
		_, err := env.svc.Session.Reregister(ctx, id, testOperator, &dto.ReregisterRequest{Text: weekFixture, Version: 1})
		if !errors.Is(err, ErrSessionVersionConflict) {
			t.Errorf("期望 ErrSessionVersionConflict，实际 %v", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.svc.Session.Reregister(ctx, "nope", testOperator, &dto.ReregisterRequest{Text: weekFixture, Version: 1})
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("期望 ErrSessionNotFound，实际 %v", err)
		}
	})
}

// ── 查询 ──

func TestGetSession(t *testing.T) {
	env := newFixtureEnv(t)
	id := env.registered(t)

	resp, err := env.svc.Session.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if resp.RegistrationRows != 3 || resp.AvailabilityRows != 42 {
		t.Errorf("行数不符: %d / %d", resp.RegistrationRows, resp.AvailabilityRows)
	}

	if _, err := env.svc.Session.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("期望 ErrSessionNotFound，实际 %v", err)
	}
}

func TestListSessions(t *testing.T) {
	env := newFixtureEnv(t)
	ctx := context.Background()
	env.registered(t)
	if _, err := env.svc.Session.CreateFromText(ctx, "khoa", weekFixture); err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}

	all, err := env.svc.Session.List(ctx, testOperator, &dto.SessionListRequest{})
	if err != nil {
		t.Fatalf("查询列表失败: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("期望 2 个会话，实际 %d", len(all))
	}
	if all[0].Operator != "khoa" {
		t.Errorf("列表应按创建时间倒序，首项为 %s", all[0].Operator)
	}
	if all[0].Employees != nil {
		t.Error("列表项不应包含员工名单")
	}

	mine, _ := env.svc.Session.List(ctx, testOperator, &dto.SessionListRequest{Mine: true})
	if len(mine) != 1 || mine[0].Operator != testOperator {
		t.Errorf("mine=true 应只返回自己的会话，实际 %+v", mine)
	}
}

func TestGetAvailability_OrderAndLabels(t *testing.T) {
	env := newFixtureEnv(t)
	id := env.registered(t)

	resp, err := env.svc.Session.GetAvailability(context.Background(), id)
	if err != nil {
		t.Fatalf("查询可用性失败: %v", err)
	}
	if len(resp.Records) != 42 {
		t.Fatalf("期望 42 条，实际 %d", len(resp.Records))
	}
	first := resp.Records[0]
	want := dto.AvailabilityResponse{Date: "2025-05-05", Weekday: "Thứ 2", Employee: "An", Shift: "A", CanWork: true}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("首条记录不符 (-want +got):\n%s", diff)
	}
	for _, r := range resp.Records {
		if r.Employee == "Bình" && r.Note != "thích ca sáng" {
			t.Errorf("Bình 的备注应附在每条记录上，实际 %q", r.Note)
		}
		if r.Employee == "An" && r.Date == "2025-05-06" && r.CanWork {
			t.Error("An 5/6 登记 off，不应可上班")
		}
	}
}

func TestGetPrompt(t *testing.T) {
	env := newFixtureEnv(t)
	id := env.registered(t)

	max := 2
	resp, err := env.svc.Session.GetPrompt(context.Background(), id, &dto.ConstraintOverrides{MaxShiftsPerDay: &max})
	if err != nil {
		t.Fatalf("渲染提示词失败: %v", err)
	}
	if resp.WeekMonday != "2025-05-05" || resp.Employees != 3 {
		t.Errorf("提示词元信息不符: %+v", resp)
	}
	for _, want := range []string{"An", "Bình", "Chi", "2025-05-05"} {
		if !strings.Contains(resp.Prompt, want) {
			t.Errorf("提示词应包含 %q", want)
		}
	}
}
