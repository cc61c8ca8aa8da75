/*
resolver.go - Calendar resolution into an occupancy model

PURPOSE:
  Reconciles raw assignment and absence records into a day-by-day occupancy
  model over a date range: which employee works which shift on which day,
  and which days are covered by an absence instead.

TOTALITY:
  The model assigns exactly one slot to every (date, employee) pair in
  scope. A pair with neither an assignment nor an absence is Unassigned,
  never missing. len(model.Slots) == range length * employees in scope.

CONFLICT POLICY:
  A (employee, date) key carrying both an Assignment and an Absence is a
  source data violation. The Absence wins (an absence record is the
  stronger fact in legacy scheduling semantics) and the conflict is
  recorded in the model's side-channel list, never swallowed.

SCOPE:
  Employee and group filters combine by union, matching the "group or
  specific employee" usage of the exposed views. A nil filter pair scopes
  to all active employees; an explicitly empty filter yields an empty
  model.

SEE ALSO:
  - projection.go: the two views derived from the model
  - analytics package: aggregation over the model
*/
package schedule

import (
	"context"
	"sort"
)

// =============================================================================
// OCCUPANCY MODEL
// =============================================================================

// SlotKind discriminates the three possible states of a (date, employee)
// pair.
type SlotKind int

const (
	SlotUnassigned SlotKind = iota
	SlotShift
	SlotAbsence
)

func (k SlotKind) String() string {
	switch k {
	case SlotShift:
		return "shift"
	case SlotAbsence:
		return "absence"
	default:
		return "unassigned"
	}
}

// Slot is the resolved state of one (date, employee) pair. ShiftID is set
// only for SlotShift, LeaveTypeID only for SlotAbsence.
type Slot struct {
	Kind        SlotKind
	ShiftID     ShiftID
	LeaveTypeID LeaveTypeID
}

// SlotKey addresses a single slot in the model.
type SlotKey struct {
	Date     Date
	Employee EmployeeID
}

// OccupancyModel is the resolved day-by-day mapping of employees to shifts
// and absences over a date range. It is an immutable snapshot: both
// projections and the analytics aggregator derive from the same model, so
// the views cannot disagree about the underlying facts.
type OccupancyModel struct {
	Range     DateRange
	Employees []Employee // in scope, ordered by ID
	Slots     map[SlotKey]Slot
	Conflicts []Conflict // assignment/absence collisions, absence won

	shifts     map[ShiftID]Shift
	leaveTypes map[LeaveTypeID]LeaveType
}

// Slot returns the resolved slot for a (date, employee) pair.
func (m *OccupancyModel) Slot(d Date, e EmployeeID) (Slot, bool) {
	s, ok := m.Slots[SlotKey{Date: d, Employee: e}]
	return s, ok
}

// Shift returns the shift definition captured at resolve time.
func (m *OccupancyModel) Shift(id ShiftID) (Shift, bool) {
	s, ok := m.shifts[id]
	return s, ok
}

// LeaveType returns the leave type record captured at resolve time.
func (m *OccupancyModel) LeaveType(id LeaveTypeID) (LeaveType, bool) {
	lt, ok := m.leaveTypes[id]
	return lt, ok
}

// Shifts returns all shift definitions known to the model, ordered by ID.
func (m *OccupancyModel) Shifts() []Shift {
	shifts := make([]Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		shifts = append(shifts, s)
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].ID < shifts[j].ID })
	return shifts
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine resolves schedules against an injected record source. It is
// stateless: concurrent resolutions with different parameters are safe and
// produce independent models.
type Engine struct {
	source RecordSource
}

func NewEngine(source RecordSource) *Engine {
	return &Engine{source: source}
}

// ResolveOptions narrows the employee scope of a resolution. Employee and
// group filters combine by union. Both nil means all active employees; a
// non-nil empty slice means an explicitly empty scope.
type ResolveOptions struct {
	Employees []EmployeeID
	Groups    []GroupID
}

// Resolve produces the occupancy model for a date range. The only fatal
// error conditions are an inverted range and record source failures;
// conflicting source data is resolved (absence wins) and reported in
// the model's conflict list.
func (e *Engine) Resolve(ctx context.Context, r DateRange, opts ResolveOptions) (*OccupancyModel, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	employees, err := e.scopedEmployees(ctx, opts)
	if err != nil {
		return nil, err
	}

	model := &OccupancyModel{
		Range:     r,
		Employees: employees,
		Slots:     make(map[SlotKey]Slot, r.Len()*len(employees)),
	}

	if err := e.captureLookups(ctx, model); err != nil {
		return nil, err
	}

	if len(employees) == 0 {
		return model, nil
	}

	scopeIDs := make([]EmployeeID, len(employees))
	inScope := make(map[EmployeeID]bool, len(employees))
	for i, emp := range employees {
		scopeIDs[i] = emp.ID
		inScope[emp.ID] = true
	}

	assignments, err := e.source.Assignments(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}
	absences, err := e.source.Absences(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}

	// Index facts by (employee, date), keeping only in-range records.
	// An employee has at most one assignment per day; if the source
	// violates that, the first record wins.
	assignmentAt := make(map[SlotKey]Assignment)
	for _, a := range assignments {
		if !r.Contains(a.Date) || !inScope[a.EmployeeID] {
			continue
		}
		k := SlotKey{Date: a.Date, Employee: a.EmployeeID}
		if _, dup := assignmentAt[k]; !dup {
			assignmentAt[k] = a
		}
	}
	absenceAt := make(map[SlotKey]Absence)
	for _, a := range absences {
		if !r.Contains(a.Date) || !inScope[a.EmployeeID] {
			continue
		}
		k := SlotKey{Date: a.Date, Employee: a.EmployeeID}
		if _, dup := absenceAt[k]; !dup {
			absenceAt[k] = a
		}
	}

	// One slot per (date, employee) pair. Iteration order does not affect
	// the result; conflicts are sorted afterwards for determinism.
	for _, day := range r.Days() {
		for _, emp := range employees {
			k := SlotKey{Date: day, Employee: emp.ID}
			absence, hasAbsence := absenceAt[k]
			assignment, hasAssignment := assignmentAt[k]

			switch {
			case hasAbsence && hasAssignment:
				model.Conflicts = append(model.Conflicts, Conflict{
					EmployeeID:  emp.ID,
					Date:        day,
					ShiftID:     assignment.ShiftID,
					LeaveTypeID: absence.LeaveTypeID,
				})
				model.Slots[k] = Slot{Kind: SlotAbsence, LeaveTypeID: absence.LeaveTypeID}
			case hasAbsence:
				model.Slots[k] = Slot{Kind: SlotAbsence, LeaveTypeID: absence.LeaveTypeID}
			case hasAssignment:
				model.Slots[k] = Slot{Kind: SlotShift, ShiftID: assignment.ShiftID}
			default:
				model.Slots[k] = Slot{Kind: SlotUnassigned}
			}
		}
	}

	sort.Slice(model.Conflicts, func(i, j int) bool {
		a, b := model.Conflicts[i], model.Conflicts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.EmployeeID < b.EmployeeID
	})

	return model, nil
}

// scopedEmployees expands the filter options into the ordered employee
// scope.
func (e *Engine) scopedEmployees(ctx context.Context, opts ResolveOptions) ([]Employee, error) {
	// No filter at all: every active employee.
	if opts.Employees == nil && opts.Groups == nil {
		all, err := e.source.Employees(ctx, nil)
		if err != nil {
			return nil, err
		}
		active := make([]Employee, 0, len(all))
		for _, emp := range all {
			if emp.Active {
				active = append(active, emp)
			}
		}
		sortEmployees(active)
		return active, nil
	}

	// Union of explicit employee ids and group member ids. Explicitly
	// named employees are included even when inactive.
	idSet := make(map[EmployeeID]bool)
	for _, id := range opts.Employees {
		idSet[id] = true
	}
	if len(opts.Groups) > 0 {
		groups, err := e.source.Groups(ctx, opts.Groups)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			for _, member := range g.Members {
				idSet[member] = true
			}
		}
	}
	if len(idSet) == 0 {
		return nil, nil
	}

	ids := make([]EmployeeID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	employees, err := e.source.Employees(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortEmployees(employees)
	return employees, nil
}

// captureLookups snapshots shift and leave type definitions into the model
// so projections and analytics resolve references without touching the
// source again.
func (e *Engine) captureLookups(ctx context.Context, model *OccupancyModel) error {
	shifts, err := e.source.Shifts(ctx, nil)
	if err != nil {
		return err
	}
	model.shifts = make(map[ShiftID]Shift, len(shifts))
	for _, s := range shifts {
		model.shifts[s.ID] = s
	}

	leaveTypes, err := e.source.LeaveTypes(ctx, nil)
	if err != nil {
		return err
	}
	model.leaveTypes = make(map[LeaveTypeID]LeaveType, len(leaveTypes))
	for _, lt := range leaveTypes {
		model.leaveTypes[lt.ID] = lt
	}
	return nil
}

func sortEmployees(employees []Employee) {
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
}
