/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract: field renames,
  flattened pointers and string-encoded decimals all live here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"sort"

	"github.com/mschabhuettl/openschichtplaner5-api/analytics"
	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// MASTER DATA
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstname,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	Active    bool   `json:"active"`
}

// GroupDTO represents a group and its ordered membership.
type GroupDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ShiftDTO represents a shift definition.
type ShiftDTO struct {
	ID               string `json:"id"`
	Code             string `json:"code,omitempty"`
	Name             string `json:"name"`
	Starts           string `json:"starts"`
	Ends             string `json:"ends"`
	RequiredStaffing *int   `json:"required_staffing,omitempty"`
}

// WorkplaceDTO represents a workplace.
type WorkplaceDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// SCHEDULE VIEWS
// =============================================================================

// SlotDTO is one resolved day slot in the employee view.
type SlotDTO struct {
	Date        string `json:"date"`
	Kind        string `json:"kind"` // shift | absence | unassigned
	ShiftID     string `json:"shift_id,omitempty"`
	ShiftCode   string `json:"shift_code,omitempty"`
	ShiftName   string `json:"shift_name,omitempty"`
	LeaveTypeID string `json:"leave_type_id,omitempty"`
	LeaveName   string `json:"leave_name,omitempty"`
}

// EmployeeScheduleDTO is one employee's calendar (Dienstplan row).
type EmployeeScheduleDTO struct {
	Employee EmployeeDTO `json:"employee"`
	Days     []SlotDTO   `json:"days"`
}

// DienstplanResponse is the employee-centric schedule view.
type DienstplanResponse struct {
	Start     string                `json:"start"`
	End       string                `json:"end"`
	Days      int                   `json:"days_in_range"`
	Employees []EmployeeScheduleDTO `json:"employees"`
	Conflicts []ConflictDTO         `json:"conflicts,omitempty"`
}

// ShiftDayDTO is the employee set of one (shift, date) cell.
type ShiftDayDTO struct {
	Date      string   `json:"date"`
	Employees []string `json:"employees"`
}

// ShiftRosterDTO is one shift's roster (Einsatzplan row).
type ShiftRosterDTO struct {
	Shift ShiftDTO      `json:"shift"`
	Days  []ShiftDayDTO `json:"days"`
}

// EinsatzplanResponse is the shift-centric schedule view.
type EinsatzplanResponse struct {
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Days      int              `json:"days_in_range"`
	Shifts    []ShiftRosterDTO `json:"shifts"`
	Conflicts []ConflictDTO    `json:"conflicts,omitempty"`
}

// ConflictDTO reports an assignment/absence collision the resolver found.
type ConflictDTO struct {
	EmployeeID  string `json:"employee_id"`
	Date        string `json:"date"`
	ShiftID     string `json:"shift_id"`
	LeaveTypeID string `json:"leave_type_id"`
}

// =============================================================================
// BALANCES & ANALYTICS
// =============================================================================

// BalanceDTO is one employee's leave balance for a year. Amounts are
// string-encoded decimals.
type BalanceDTO struct {
	EmployeeID         string `json:"employee_id"`
	Year               int    `json:"year"`
	Entitled           string `json:"entitled"`
	Consumed           string `json:"consumed"`
	Remaining          string `json:"remaining"`
	MissingEntitlement bool   `json:"missing_entitlement,omitempty"`
	OverConsumed       bool   `json:"over_consumed,omitempty"`
}

// WarningDTO is a non-fatal data quality finding.
type WarningDTO struct {
	Kind       string `json:"kind"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
}

// BalanceReportResponse wraps the reconciled balances for a year.
type BalanceReportResponse struct {
	Year     int          `json:"year"`
	Balances []BalanceDTO `json:"balances"`
	Warnings []WarningDTO `json:"warnings,omitempty"`
}

// UtilizationDTO is one employee's utilization over the report range.
type UtilizationDTO struct {
	EmployeeID    string `json:"employee_id"`
	WorkedDays    int    `json:"worked_days"`
	AbsenceDays   int    `json:"absence_days"`
	AvailableDays int    `json:"available_days"`
	Utilization   string `json:"utilization,omitempty"`
	Anomalous     bool   `json:"anomalous,omitempty"`
}

// CapacityDTO is assigned-vs-required staffing for one (shift, date).
type CapacityDTO struct {
	Date     string `json:"date"`
	ShiftID  string `json:"shift_id"`
	Assigned int    `json:"assigned"`
	Required *int   `json:"required,omitempty"`
	Status   string `json:"status"`
}

// CoverageGapDTO is an understaffed (shift, date) combination.
type CoverageGapDTO struct {
	Date      string `json:"date"`
	ShiftID   string `json:"shift_id"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Shortfall int    `json:"shortfall"`
}

// SummaryDTO is the aggregate rollup.
type SummaryDTO struct {
	Employees           int    `json:"employees"`
	MeanUtilization     string `json:"mean_utilization"`
	UtilizationSamples  int    `json:"utilization_samples"`
	CoverageGaps        int    `json:"coverage_gaps"`
	AssignedDays        int    `json:"assigned_days"`
	AbsenceDays         int    `json:"absence_days"`
	CountingAbsenceDays int    `json:"counting_absence_days"`
	MissingEntitlements int    `json:"missing_entitlements"`
	OverConsumed        int    `json:"over_consumed"`
}

// AnalyticsResponse is the full analytics report.
type AnalyticsResponse struct {
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Utilization []UtilizationDTO `json:"utilization"`
	Capacity    []CapacityDTO    `json:"capacity"`
	Gaps        []CoverageGapDTO `json:"coverage_gaps"`
	Summary     SummaryDTO       `json:"summary"`
	Conflicts   []ConflictDTO    `json:"conflicts,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e schedule.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		FirstName: e.FirstName,
		GroupID:   string(e.GroupID),
		Active:    e.Active,
	}
}

func toShiftDTO(s schedule.Shift) ShiftDTO {
	return ShiftDTO{
		ID:               string(s.ID),
		Code:             s.Code,
		Name:             s.Name,
		Starts:           s.Starts.String(),
		Ends:             s.Ends.String(),
		RequiredStaffing: s.RequiredStaffing,
	}
}

func toSlotDTO(m *schedule.OccupancyModel, day schedule.DaySlot) SlotDTO {
	dto := SlotDTO{
		Date: day.Date.String(),
		Kind: day.Slot.Kind.String(),
	}
	switch day.Slot.Kind {
	case schedule.SlotShift:
		dto.ShiftID = string(day.Slot.ShiftID)
		if shift, ok := m.Shift(day.Slot.ShiftID); ok {
			dto.ShiftCode = shift.Code
			dto.ShiftName = shift.Name
		}
	case schedule.SlotAbsence:
		dto.LeaveTypeID = string(day.Slot.LeaveTypeID)
		if lt, ok := m.LeaveType(day.Slot.LeaveTypeID); ok {
			dto.LeaveName = lt.Name
		}
	}
	return dto
}

func toConflictDTOs(conflicts []schedule.Conflict) []ConflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	dtos := make([]ConflictDTO, len(conflicts))
	for i, c := range conflicts {
		dtos[i] = ConflictDTO{
			EmployeeID:  string(c.EmployeeID),
			Date:        c.Date.String(),
			ShiftID:     string(c.ShiftID),
			LeaveTypeID: string(c.LeaveTypeID),
		}
	}
	return dtos
}

func toBalanceDTO(b analytics.EmployeeBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:         string(b.EmployeeID),
		Year:               b.Year,
		Entitled:           b.Entitled.String(),
		Consumed:           b.Consumed.String(),
		Remaining:          b.Remaining.String(),
		MissingEntitlement: b.MissingEntitlement,
		OverConsumed:       b.OverConsumed,
	}
}

func toBalanceReportResponse(r *analytics.BalanceReport) BalanceReportResponse {
	resp := BalanceReportResponse{Year: r.Year}
	ids := make([]string, 0, len(r.Balances))
	for id := range r.Balances {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		resp.Balances = append(resp.Balances, toBalanceDTO(r.Balances[schedule.EmployeeID(id)]))
	}
	for _, warn := range r.Warnings {
		resp.Warnings = append(resp.Warnings, WarningDTO{
			Kind:       string(warn.Kind),
			EmployeeID: string(warn.EmployeeID),
			Year:       warn.Year,
		})
	}
	return resp
}

func toDienstplanResponse(m *schedule.OccupancyModel) DienstplanResponse {
	view := schedule.EmployeeView(m)
	resp := DienstplanResponse{
		Start:     m.Range.Start.String(),
		End:       m.Range.End.String(),
		Days:      m.Range.Len(),
		Employees: make([]EmployeeScheduleDTO, 0, len(view)),
		Conflicts: toConflictDTOs(m.Conflicts),
	}
	for _, es := range view {
		dto := EmployeeScheduleDTO{
			Employee: toEmployeeDTO(es.Employee),
			Days:     make([]SlotDTO, 0, len(es.Days)),
		}
		for _, day := range es.Days {
			dto.Days = append(dto.Days, toSlotDTO(m, day))
		}
		resp.Employees = append(resp.Employees, dto)
	}
	return resp
}

func toEinsatzplanResponse(m *schedule.OccupancyModel) EinsatzplanResponse {
	view := schedule.ShiftView(m)
	resp := EinsatzplanResponse{
		Start:     m.Range.Start.String(),
		End:       m.Range.End.String(),
		Days:      m.Range.Len(),
		Shifts:    make([]ShiftRosterDTO, 0, len(view)),
		Conflicts: toConflictDTOs(m.Conflicts),
	}
	for _, roster := range view {
		dto := ShiftRosterDTO{
			Shift: toShiftDTO(roster.Shift),
			Days:  make([]ShiftDayDTO, 0, len(roster.Days)),
		}
		for _, day := range roster.Days {
			employees := make([]string, len(day.Employees))
			for i, id := range day.Employees {
				employees[i] = string(id)
			}
			dto.Days = append(dto.Days, ShiftDayDTO{Date: day.Date.String(), Employees: employees})
		}
		resp.Shifts = append(resp.Shifts, dto)
	}
	return resp
}

func toAnalyticsResponse(m *schedule.OccupancyModel, report *analytics.Report) AnalyticsResponse {
	resp := AnalyticsResponse{
		Start:     report.Range.Start.String(),
		End:       report.Range.End.String(),
		Conflicts: toConflictDTOs(m.Conflicts),
		Summary: SummaryDTO{
			Employees:           report.Summary.Employees,
			MeanUtilization:     report.Summary.MeanUtilization.String(),
			UtilizationSamples:  report.Summary.UtilizationSamples,
			CoverageGaps:        report.Summary.CoverageGaps,
			AssignedDays:        report.Summary.AssignedDays,
			AbsenceDays:         report.Summary.AbsenceDays,
			CountingAbsenceDays: report.Summary.CountingAbsenceDays,
			MissingEntitlements: report.Summary.MissingEntitlements,
			OverConsumed:        report.Summary.OverConsumed,
		},
	}
	for _, u := range report.Utilization {
		dto := UtilizationDTO{
			EmployeeID:    string(u.EmployeeID),
			WorkedDays:    u.WorkedDays,
			AbsenceDays:   u.AbsenceDays,
			AvailableDays: u.AvailableDays,
			Anomalous:     u.Anomalous,
		}
		if !u.Anomalous {
			dto.Utilization = u.Utilization.String()
		}
		resp.Utilization = append(resp.Utilization, dto)
	}
	for _, c := range report.Capacity {
		resp.Capacity = append(resp.Capacity, CapacityDTO{
			Date:     c.Date.String(),
			ShiftID:  string(c.ShiftID),
			Assigned: c.Assigned,
			Required: c.Required,
			Status:   string(c.Status),
		})
	}
	for _, g := range report.Gaps {
		resp.Gaps = append(resp.Gaps, CoverageGapDTO{
			Date:      g.Date.String(),
			ShiftID:   string(g.ShiftID),
			Required:  g.Required,
			Assigned:  g.Assigned,
			Shortfall: g.Shortfall,
		})
	}
	return resp
}
