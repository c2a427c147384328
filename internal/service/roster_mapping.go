package service

import (
	"time"

	"shiftgrid/internal/dto"
	"shiftgrid/internal/model"
	"shiftgrid/internal/roster"
)

// ── 持久化模型 ↔ 排班核心类型 ──

const isoDate = "2006-01-02"

func civilDate(t time.Time) time.Time {
	return roster.Date(t.Year(), t.Month(), t.Day())
}

func sessionAnchor(s *model.PlanningSession) roster.WeekAnchor {
	if s.WeekMonday == nil {
		return roster.UnknownAnchor()
	}
	return roster.AnchorFor(civilDate(*s.WeekMonday))
}

func sessionPolicy(s *model.PlanningSession) roster.StaffingPolicy {
	return roster.StaffingPolicy{Base: s.StaffBase, Elevated: s.StaffElevated}
}

func toRegistrationRows(regs []roster.RawRegistration) []model.Registration {
	out := make([]model.Registration, 0, len(regs))
	for i, r := range regs {
		out = append(out, model.Registration{
			Position: i,
			Employee: r.Employee,
			WeekCell: r.WeekCell,
			Days:     model.StringList(r.Days[:]),
			Note:     r.Note,
		})
	}
	return out
}

// rawRegistrations 登记行还原为原始登记，Days 不足 7 项时补空
func rawRegistrations(rows []model.Registration) []roster.RawRegistration {
	out := make([]roster.RawRegistration, 0, len(rows))
	for _, r := range rows {
		reg := roster.RawRegistration{Employee: r.Employee, WeekCell: r.WeekCell, Note: r.Note}
		copy(reg.Days[:], r.Days)
		out = append(out, reg)
	}
	return out
}

func toAvailabilityRows(table roster.AvailabilityTable) []model.Availability {
	out := make([]model.Availability, 0, len(table.Records))
	for i, r := range table.Records {
		out = append(out, model.Availability{
			Position: i,
			WorkDate: r.Date,
			Employee: r.Employee,
			Shift:    string(r.Shift),
			CanWork:  r.CanWork,
			Note:     r.Note,
		})
	}
	return out
}

// availabilityTable 由持久化行重建可用性表；行需按 position 排序
func availabilityTable(s *model.PlanningSession, rows []model.Availability) roster.AvailabilityTable {
	table := roster.AvailabilityTable{Degraded: s.Degraded}
	for _, r := range rows {
		table.Records = append(table.Records, roster.AvailabilityRecord{
			Date:     civilDate(r.WorkDate),
			Employee: r.Employee,
			Shift:    roster.Shift(r.Shift),
			CanWork:  r.CanWork,
			Note:     r.Note,
		})
	}
	return table
}

func toAssignmentRows(parsed []roster.ParsedAssignment) []model.Assignment {
	out := make([]model.Assignment, 0, len(parsed))
	for i, a := range parsed {
		out = append(out, model.Assignment{
			Position:      i,
			WorkDate:      a.Date,
			Shift:         string(a.Shift),
			ShiftLabel:    a.ShiftLabel,
			AssignedNames: model.StringList(a.AssignedNames),
			Notes:         model.StringList(a.Notes),
		})
	}
	return out
}

func parsedAssignments(rows []model.Assignment) []roster.ParsedAssignment {
	out := make([]roster.ParsedAssignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, roster.ParsedAssignment{
			Date:          civilDate(r.WorkDate),
			Shift:         roster.Shift(r.Shift),
			ShiftLabel:    r.ShiftLabel,
			AssignedNames: []string(r.AssignedNames),
			Notes:         []string(r.Notes),
		})
	}
	return out
}

// ── DTO 转换 ──

func toAvailabilityResponses(table roster.AvailabilityTable) []dto.AvailabilityResponse {
	out := make([]dto.AvailabilityResponse, 0, len(table.Records))
	for _, r := range table.Records {
		out = append(out, dto.AvailabilityResponse{
			Date:     r.Date.Format(isoDate),
			Weekday:  roster.WeekdayLabel(r.Date),
			Employee: r.Employee,
			Shift:    string(r.Shift),
			CanWork:  r.CanWork,
			Note:     r.Note,
		})
	}
	return out
}

func toAssignmentResponses(parsed []roster.ParsedAssignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(parsed))
	for _, a := range parsed {
		names := a.AssignedNames
		if names == nil {
			names = []string{}
		}
		out = append(out, dto.AssignmentResponse{
			Date:          a.Date.Format(isoDate),
			Shift:         string(a.Shift),
			ShiftLabel:    a.ShiftLabel,
			AssignedNames: names,
			Notes:         a.Notes,
		})
	}
	return out
}

func toGridResponse(sessionID, generationID string, rows []roster.GridRow) *dto.GridResponse {
	resp := &dto.GridResponse{
		SessionID:    sessionID,
		GenerationID: generationID,
		Header:       roster.GridHeader,
		Rows:         make([]dto.GridRowResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.Rows = append(resp.Rows, dto.GridRowResponse{
			Weekday: rows[i].Weekday,
			Date:    rows[i].Date.Format(isoDate),
			ShiftA:  toSlotGroupResponse(rows[i].ShiftA),
			ShiftB:  toSlotGroupResponse(rows[i].ShiftB),
		})
	}
	return resp
}

func toSlotGroupResponse(g roster.SlotGroup) dto.SlotGroupResponse {
	return dto.SlotGroupResponse{
		Slots:      append([]string(nil), g.Slots[:]...),
		Candidates: g.Candidates,
		Required:   g.Required,
		Filled:     g.Filled(),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
