// Package store provides an in-memory RecordSource implementation.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// MEMORY SOURCE - In-memory implementation (for testing/dev/demo)
// =============================================================================

// Memory is a mutex-guarded fixture store. Writes happen during setup;
// reads implement schedule.RecordSource with copy-out semantics and
// deterministic ordering.
type Memory struct {
	mu           sync.RWMutex
	employees    map[schedule.EmployeeID]schedule.Employee
	groups       map[schedule.GroupID]schedule.Group
	shifts       map[schedule.ShiftID]schedule.Shift
	workplaces   map[schedule.WorkplaceID]schedule.Workplace
	leaveTypes   map[schedule.LeaveTypeID]schedule.LeaveType
	assignments  []schedule.Assignment
	absences     []schedule.Absence
	entitlements []schedule.LeaveEntitlement
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[schedule.EmployeeID]schedule.Employee),
		groups:     make(map[schedule.GroupID]schedule.Group),
		shifts:     make(map[schedule.ShiftID]schedule.Shift),
		workplaces: make(map[schedule.WorkplaceID]schedule.Workplace),
		leaveTypes: make(map[schedule.LeaveTypeID]schedule.LeaveType),
	}
}

// =============================================================================
// FIXTURE WRITES
// =============================================================================

func (m *Memory) AddEmployee(e schedule.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) AddGroup(g schedule.Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[g.ID] = g
}

func (m *Memory) AddShift(s schedule.Shift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
}

func (m *Memory) AddWorkplace(w schedule.Workplace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workplaces[w.ID] = w
}

func (m *Memory) AddLeaveType(lt schedule.LeaveType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveTypes[lt.ID] = lt
}

func (m *Memory) AddAssignment(a schedule.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, a)
}

func (m *Memory) AddAbsence(a schedule.Absence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.absences = append(m.absences, a)
}

func (m *Memory) AddEntitlement(e schedule.LeaveEntitlement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entitlements = append(m.entitlements, e)
}

// =============================================================================
// RECORD SOURCE READS
// =============================================================================

func (m *Memory) Employees(_ context.Context, ids []schedule.EmployeeID) ([]schedule.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Employee
	if ids == nil {
		for _, e := range m.employees {
			result = append(result, e)
		}
	} else {
		for _, id := range ids {
			if e, ok := m.employees[id]; ok {
				result = append(result, e)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Groups(_ context.Context, ids []schedule.GroupID) ([]schedule.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Group
	if ids == nil {
		for _, g := range m.groups {
			result = append(result, copyGroup(g))
		}
	} else {
		for _, id := range ids {
			if g, ok := m.groups[id]; ok {
				result = append(result, copyGroup(g))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Shifts(_ context.Context, ids []schedule.ShiftID) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Shift
	if ids == nil {
		for _, s := range m.shifts {
			result = append(result, copyShift(s))
		}
	} else {
		for _, id := range ids {
			if s, ok := m.shifts[id]; ok {
				result = append(result, copyShift(s))
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Workplaces(_ context.Context, ids []schedule.WorkplaceID) ([]schedule.Workplace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Workplace
	if ids == nil {
		for _, w := range m.workplaces {
			result = append(result, w)
		}
	} else {
		for _, id := range ids {
			if w, ok := m.workplaces[id]; ok {
				result = append(result, w)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) LeaveTypes(_ context.Context, ids []schedule.LeaveTypeID) ([]schedule.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.LeaveType
	if ids == nil {
		for _, lt := range m.leaveTypes {
			result = append(result, lt)
		}
	} else {
		for _, id := range ids {
			if lt, ok := m.leaveTypes[id]; ok {
				result = append(result, lt)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Assignments(_ context.Context, employees []schedule.EmployeeID) ([]schedule.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := employeeFilter(employees)
	var result []schedule.Assignment
	for _, a := range m.assignments {
		if want == nil || want[a.EmployeeID] {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

func (m *Memory) Absences(_ context.Context, employees []schedule.EmployeeID) ([]schedule.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := employeeFilter(employees)
	var result []schedule.Absence
	for _, a := range m.absences {
		if want == nil || want[a.EmployeeID] {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

func (m *Memory) Entitlements(_ context.Context, year int, employees []schedule.EmployeeID) ([]schedule.LeaveEntitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := employeeFilter(employees)
	var result []schedule.LeaveEntitlement
	for _, e := range m.entitlements {
		if year != 0 && e.Year != year {
			continue
		}
		if want == nil || want[e.EmployeeID] {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].Year < result[j].Year
	})
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// employeeFilter turns an id slice into a lookup set, preserving the
// nil = all / empty = none contract (an empty non-nil slice produces an
// empty, non-nil set that matches nothing).
func employeeFilter(ids []schedule.EmployeeID) map[schedule.EmployeeID]bool {
	if ids == nil {
		return nil
	}
	set := make(map[schedule.EmployeeID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func copyGroup(g schedule.Group) schedule.Group {
	members := make([]schedule.EmployeeID, len(g.Members))
	copy(members, g.Members)
	g.Members = members
	return g
}

func copyShift(s schedule.Shift) schedule.Shift {
	if s.RequiredStaffing != nil {
		required := *s.RequiredStaffing
		s.RequiredStaffing = &required
	}
	return s
}
