/*
aggregate.go - Workforce analytics over a resolved occupancy model

PURPOSE:
  Computes the analytics report for the date range of a supplied model:

  Utilization per employee: worked days / available days, where available
  days = range length - counting-leave absence days. A zero denominator
  with nonzero worked days is a reported anomaly, never a division fault.

  Capacity per (shift, date): assigned vs. required staffing. Shifts
  without a requirement are excluded from gap computation; their capacity
  entries exist only where assignments do.

  Coverage gaps: every (shift, date) where a requirement is set and
  assigned < required, sorted by (date, shift id).

DETERMINISM:
  Pure function of its inputs. Identical inputs produce bit-identical
  output: all map iteration is funneled through sorted key slices, and
  there is no wall-clock dependency beyond the model's own range.
*/
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// EmployeeUtilization is one employee's worked/available ratio over the
// report range.
type EmployeeUtilization struct {
	EmployeeID    schedule.EmployeeID
	WorkedDays    int
	AbsenceDays   int // counting-leave absence days only
	AvailableDays int

	// Utilization is worked/available. Defined (and zero-valued) only
	// when Anomalous is false.
	Utilization decimal.Decimal

	// Anomalous marks a zero available-days denominator with nonzero
	// worked days; Utilization is undefined in that case.
	Anomalous bool
}

// CapacityStatus classifies a (shift, date) staffing level.
type CapacityStatus string

const (
	CapacityUnderstaffed  CapacityStatus = "understaffed"
	CapacityOK            CapacityStatus = "ok"
	CapacityOverstaffed   CapacityStatus = "overstaffed"
	CapacityUnconstrained CapacityStatus = "unconstrained"
)

// CapacityEntry is the assigned-vs-required staffing for one shift on one
// day. Required is nil for shifts without a staffing requirement.
type CapacityEntry struct {
	Date     schedule.Date
	ShiftID  schedule.ShiftID
	Assigned int
	Required *int
	Status   CapacityStatus
}

// CoverageGap is an understaffed (shift, date) combination.
type CoverageGap struct {
	Date      schedule.Date
	ShiftID   schedule.ShiftID
	Required  int
	Assigned  int
	Shortfall int
}

// Summary is the aggregate rollup of the report.
type Summary struct {
	Employees           int
	MeanUtilization     decimal.Decimal
	UtilizationSamples  int // employees with a defined utilization value
	CoverageGaps        int
	AssignedDays        int
	AbsenceDays         int
	CountingAbsenceDays int
	MissingEntitlements int
	OverConsumed        int
}

// Report is the full analytics output for one resolved range.
type Report struct {
	Range       schedule.DateRange
	Utilization []EmployeeUtilization
	Capacity    []CapacityEntry
	Gaps        []CoverageGap
	Summary     Summary
}

// Requirements overrides per-shift required staffing for one aggregation,
// mirroring ad-hoc demand rules. An entry here wins over the shift
// definition's own RequiredStaffing.
type Requirements map[schedule.ShiftID]int

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate computes the analytics report over the model's range. The
// balance report is optional (nil skips the entitlement counters in the
// summary), as are the requirement overrides.
func Aggregate(m *schedule.OccupancyModel, balances *BalanceReport, overrides Requirements) *Report {
	report := &Report{Range: m.Range}
	rangeLen := m.Range.Len()

	// ---- Utilization ----------------------------------------------------
	utilizationSum := decimal.Zero
	for _, emp := range m.Employees {
		u := EmployeeUtilization{EmployeeID: emp.ID}
		for _, day := range m.Range.Days() {
			slot, _ := m.Slot(day, emp.ID)
			switch slot.Kind {
			case schedule.SlotShift:
				u.WorkedDays++
			case schedule.SlotAbsence:
				report.Summary.AbsenceDays++
				if lt, ok := m.LeaveType(slot.LeaveTypeID); ok && lt.CountsAgainstEntitlement {
					u.AbsenceDays++
				}
			}
		}
		u.AvailableDays = rangeLen - u.AbsenceDays
		report.Summary.AssignedDays += u.WorkedDays
		report.Summary.CountingAbsenceDays += u.AbsenceDays

		switch {
		case u.AvailableDays == 0 && u.WorkedDays > 0:
			u.Anomalous = true
		case u.AvailableDays == 0:
			u.Utilization = decimal.Zero
		default:
			u.Utilization = decimal.NewFromInt(int64(u.WorkedDays)).
				Div(decimal.NewFromInt(int64(u.AvailableDays)))
		}
		if !u.Anomalous {
			report.Summary.UtilizationSamples++
			utilizationSum = utilizationSum.Add(u.Utilization)
		}
		report.Utilization = append(report.Utilization, u)
	}

	// ---- Capacity and coverage gaps -------------------------------------
	assigned := assignedCounts(m)
	for _, shift := range m.Shifts() {
		required := requiredStaffing(shift, overrides)
		if required != nil {
			// Requirement set: one capacity entry per day in range, gaps
			// where understaffed - including days with zero assignments.
			for _, day := range m.Range.Days() {
				n := assigned[capacityKey{day, shift.ID}]
				entry := CapacityEntry{
					Date:     day,
					ShiftID:  shift.ID,
					Assigned: n,
					Required: required,
					Status:   capacityStatus(n, *required),
				}
				report.Capacity = append(report.Capacity, entry)
				if n < *required {
					report.Gaps = append(report.Gaps, CoverageGap{
						Date:      day,
						ShiftID:   shift.ID,
						Required:  *required,
						Assigned:  n,
						Shortfall: *required - n,
					})
				}
			}
			continue
		}
		// No requirement: capacity entries only where assignments exist,
		// excluded from gap computation.
		for _, day := range m.Range.Days() {
			if n := assigned[capacityKey{day, shift.ID}]; n > 0 {
				report.Capacity = append(report.Capacity, CapacityEntry{
					Date:     day,
					ShiftID:  shift.ID,
					Assigned: n,
					Status:   CapacityUnconstrained,
				})
			}
		}
	}
	sortCapacity(report.Capacity)
	sortGaps(report.Gaps)

	// ---- Summary ---------------------------------------------------------
	report.Summary.Employees = len(m.Employees)
	report.Summary.CoverageGaps = len(report.Gaps)
	if report.Summary.UtilizationSamples > 0 {
		report.Summary.MeanUtilization = utilizationSum.
			Div(decimal.NewFromInt(int64(report.Summary.UtilizationSamples)))
	}
	if balances != nil {
		for _, id := range sortedBalanceIDs(balances) {
			b := balances.Balances[id]
			if b.MissingEntitlement {
				report.Summary.MissingEntitlements++
			}
			if b.OverConsumed {
				report.Summary.OverConsumed++
			}
		}
	}

	return report
}

// =============================================================================
// HELPERS
// =============================================================================

type capacityKey struct {
	date  schedule.Date
	shift schedule.ShiftID
}

// assignedCounts derives per-(shift, date) headcounts from the same model
// snapshot the shift view uses, so capacity can never disagree with the
// Einsatzplan.
func assignedCounts(m *schedule.OccupancyModel) map[capacityKey]int {
	counts := make(map[capacityKey]int)
	for key, slot := range m.Slots {
		if slot.Kind == schedule.SlotShift {
			counts[capacityKey{key.Date, slot.ShiftID}]++
		}
	}
	return counts
}

func requiredStaffing(shift schedule.Shift, overrides Requirements) *int {
	if overrides != nil {
		if n, ok := overrides[shift.ID]; ok {
			return &n
		}
	}
	return shift.RequiredStaffing
}

func capacityStatus(assigned, required int) CapacityStatus {
	switch {
	case assigned < required:
		return CapacityUnderstaffed
	case assigned > required:
		return CapacityOverstaffed
	default:
		return CapacityOK
	}
}

func sortCapacity(entries []CapacityEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ShiftID < entries[j].ShiftID
	})
}

func sortGaps(gaps []CoverageGap) {
	sort.Slice(gaps, func(i, j int) bool {
		if !gaps[i].Date.Equal(gaps[j].Date) {
			return gaps[i].Date.Before(gaps[j].Date)
		}
		return gaps[i].ShiftID < gaps[j].ShiftID
	})
}

func sortedBalanceIDs(r *BalanceReport) []schedule.EmployeeID {
	ids := make([]schedule.EmployeeID, 0, len(r.Balances))
	for id := range r.Balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
