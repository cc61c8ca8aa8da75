/*
projection.go - Dual view projection over the occupancy model

PURPOSE:
  Emits the two complementary planning views from one resolved model:

  Employee view ("Dienstplan"): per employee, the chronological sequence of
  day slots. Every day in the range has a slot, possibly Unassigned or an
  Absence.

  Shift view ("Einsatzplan"): per shift, the chronological sequence of
  days with the set of assigned employees. An entry exists only where an
  actual Assignment maps to the shift; absences and unassigned days do not
  appear here.

  Both projections are independent pure functions over the same immutable
  snapshot, so they cannot disagree about the underlying facts within one
  resolved request.
*/
package schedule

import "sort"

// =============================================================================
// EMPLOYEE VIEW - Dienstplan
// =============================================================================

// DaySlot pairs a calendar day with its resolved slot.
type DaySlot struct {
	Date Date
	Slot Slot
}

// EmployeeSchedule is one employee's calendar over the resolved range.
type EmployeeSchedule struct {
	Employee Employee
	Days     []DaySlot
}

// EmployeeView projects the model into one entry per employee in scope,
// ordered by employee ID, with days ascending. Each employee has exactly
// one slot per day in the range.
func EmployeeView(m *OccupancyModel) []EmployeeSchedule {
	days := m.Range.Days()
	view := make([]EmployeeSchedule, 0, len(m.Employees))
	for _, emp := range m.Employees {
		schedule := EmployeeSchedule{
			Employee: emp,
			Days:     make([]DaySlot, 0, len(days)),
		}
		for _, day := range days {
			slot := m.Slots[SlotKey{Date: day, Employee: emp.ID}]
			schedule.Days = append(schedule.Days, DaySlot{Date: day, Slot: slot})
		}
		view = append(view, schedule)
	}
	return view
}

// =============================================================================
// SHIFT VIEW - Einsatzplan
// =============================================================================

// ShiftDay is the set of employees assigned to a shift on one day.
type ShiftDay struct {
	Date      Date
	Employees []EmployeeID
}

// ShiftRoster is one shift's day-by-day roster over the resolved range.
type ShiftRoster struct {
	Shift Shift
	Days  []ShiftDay
}

// ShiftView projects the model into one entry per distinct shift appearing
// in it, ordered by shift ID, with days ascending and employee sets
// sorted. Only days with at least one assignment produce an entry.
func ShiftView(m *OccupancyModel) []ShiftRoster {
	// shift -> date -> employees
	byShift := make(map[ShiftID]map[Date][]EmployeeID)
	for key, slot := range m.Slots {
		if slot.Kind != SlotShift {
			continue
		}
		byDate := byShift[slot.ShiftID]
		if byDate == nil {
			byDate = make(map[Date][]EmployeeID)
			byShift[slot.ShiftID] = byDate
		}
		byDate[key.Date] = append(byDate[key.Date], key.Employee)
	}

	shiftIDs := make([]ShiftID, 0, len(byShift))
	for id := range byShift {
		shiftIDs = append(shiftIDs, id)
	}
	sort.Slice(shiftIDs, func(i, j int) bool { return shiftIDs[i] < shiftIDs[j] })

	view := make([]ShiftRoster, 0, len(shiftIDs))
	for _, id := range shiftIDs {
		shift, ok := m.Shift(id)
		if !ok {
			// Assignment referencing an unknown shift definition: keep the
			// fact visible under a bare ID rather than dropping it.
			shift = Shift{ID: id}
		}
		roster := ShiftRoster{Shift: shift}

		byDate := byShift[id]
		dates := make([]Date, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for _, d := range dates {
			employees := byDate[d]
			sort.Slice(employees, func(i, j int) bool { return employees[i] < employees[j] })
			roster.Days = append(roster.Days, ShiftDay{Date: d, Employees: employees})
		}
		view = append(view, roster)
	}
	return view
}
