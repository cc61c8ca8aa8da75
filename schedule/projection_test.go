package schedule_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// EMPLOYEE VIEW TESTS
// =============================================================================

func TestEmployeeView_ShiftAbsenceAndGap(t *testing.T) {
	// GIVEN: e1 works Monday, is on vacation Tuesday, has nothing Wednesday
	// WHEN: Projecting the employee view over Mon-Wed
	// THEN: The three days come back as shift, absence, unassigned

	src := newFixture()
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: date(3)})
	src.AddAbsence(schedule.Absence{EmployeeID: "e1", LeaveTypeID: "vacation", Date: date(4)})
	engine := schedule.NewEngine(src)

	r, _ := schedule.NewDateRange(date(3), date(5))
	model, err := engine.Resolve(context.Background(), r, schedule.ResolveOptions{
		Employees: []schedule.EmployeeID{"e1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := schedule.EmployeeView(model)
	if len(view) != 1 {
		t.Fatalf("expected 1 employee entry, got %d", len(view))
	}
	days := view[0].Days
	if len(days) != 3 {
		t.Fatalf("expected 3 day slots, got %d", len(days))
	}
	if days[0].Slot.Kind != schedule.SlotShift || days[0].Slot.ShiftID != "early" {
		t.Errorf("expected early shift on %s, got %+v", days[0].Date, days[0].Slot)
	}
	if days[1].Slot.Kind != schedule.SlotAbsence || days[1].Slot.LeaveTypeID != "vacation" {
		t.Errorf("expected vacation on %s, got %+v", days[1].Date, days[1].Slot)
	}
	if days[2].Slot.Kind != schedule.SlotUnassigned {
		t.Errorf("expected unassigned on %s, got %+v", days[2].Date, days[2].Slot)
	}
}

func TestEmployeeView_OneSlotPerDayForEveryEmployee(t *testing.T) {
	// GIVEN: A resolved week with three employees
	// WHEN: Projecting the employee view
	// THEN: Every entry covers every day of the range in order

	engine := schedule.NewEngine(newFixture())
	model, err := engine.Resolve(context.Background(), weekRange(t), schedule.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := schedule.EmployeeView(model)
	wantDays := model.Range.Days()
	for _, entry := range view {
		if len(entry.Days) != len(wantDays) {
			t.Fatalf("employee %s: expected %d days, got %d",
				entry.Employee.ID, len(wantDays), len(entry.Days))
		}
		for i, day := range entry.Days {
			if day.Date != wantDays[i] {
				t.Errorf("employee %s: day %d is %s, expected %s",
					entry.Employee.ID, i, day.Date, wantDays[i])
			}
		}
	}
}

// =============================================================================
// SHIFT VIEW TESTS
// =============================================================================

func TestShiftView_GroupsAssignmentsByShift(t *testing.T) {
	// GIVEN: e1 and e2 on the early shift Monday, e2 on the late shift Tuesday
	// WHEN: Projecting the shift view
	// THEN: Rosters are keyed by shift with sorted employee sets per day

	src := newFixture()
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "early", Date: date(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: date(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "late", Date: date(4)})
	engine := schedule.NewEngine(src)

	model, err := engine.Resolve(context.Background(), weekRange(t), schedule.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := schedule.ShiftView(model)
	if len(view) != 2 {
		t.Fatalf("expected 2 shift rosters, got %d", len(view))
	}

	early := view[0]
	if early.Shift.ID != "early" || early.Shift.Name != "Frühdienst" {
		t.Errorf("expected early shift first, got %+v", early.Shift)
	}
	if len(early.Days) != 1 || early.Days[0].Date != date(3) {
		t.Fatalf("expected one early roster day on %s, got %+v", date(3), early.Days)
	}
	if want := []schedule.EmployeeID{"e1", "e2"}; !reflect.DeepEqual(early.Days[0].Employees, want) {
		t.Errorf("expected sorted employees %v, got %v", want, early.Days[0].Employees)
	}

	late := view[1]
	if late.Shift.ID != "late" || len(late.Days) != 1 || late.Days[0].Date != date(4) {
		t.Errorf("unexpected late roster: %+v", late)
	}
}

func TestShiftView_AbsencesAndGapsExcluded(t *testing.T) {
	// GIVEN: Only absences and empty days in the range
	// WHEN: Projecting the shift view
	// THEN: No rosters appear

	src := newFixture()
	src.AddAbsence(schedule.Absence{EmployeeID: "e1", LeaveTypeID: "vacation", Date: date(3)})
	engine := schedule.NewEngine(src)

	model, err := engine.Resolve(context.Background(), weekRange(t), schedule.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view := schedule.ShiftView(model); len(view) != 0 {
		t.Errorf("expected empty shift view, got %d rosters", len(view))
	}
}

func TestShiftView_UnknownShiftKeptVisible(t *testing.T) {
	// GIVEN: An assignment referencing a shift with no definition
	// WHEN: Projecting the shift view
	// THEN: The roster appears under the bare shift ID

	src := newFixture()
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "ghost", Date: date(3)})
	engine := schedule.NewEngine(src)

	model, err := engine.Resolve(context.Background(), weekRange(t), schedule.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := schedule.ShiftView(model)
	if len(view) != 1 || view[0].Shift.ID != "ghost" || view[0].Shift.Name != "" {
		t.Errorf("expected bare ghost roster, got %+v", view)
	}
}

// =============================================================================
// VIEW AGREEMENT TESTS
// =============================================================================

func TestViews_AgreeOnAssignments(t *testing.T) {
	// GIVEN: A resolved week with mixed assignments and absences
	// WHEN: Projecting both views from the same model
	// THEN: The set of (employee, shift, date) triples is identical

	src := newFixture()
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: date(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "early", Date: date(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "late", Date: date(5)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e3", ShiftID: "late", Date: date(7)})
	src.AddAbsence(schedule.Absence{EmployeeID: "e2", LeaveTypeID: "sick", Date: date(5)})
	engine := schedule.NewEngine(src)

	model, err := engine.Resolve(context.Background(), weekRange(t), schedule.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type triple struct {
		emp   schedule.EmployeeID
		shift schedule.ShiftID
		date  schedule.Date
	}

	fromEmployeeView := make(map[triple]bool)
	for _, entry := range schedule.EmployeeView(model) {
		for _, day := range entry.Days {
			if day.Slot.Kind == schedule.SlotShift {
				fromEmployeeView[triple{entry.Employee.ID, day.Slot.ShiftID, day.Date}] = true
			}
		}
	}

	fromShiftView := make(map[triple]bool)
	for _, roster := range schedule.ShiftView(model) {
		for _, day := range roster.Days {
			for _, emp := range day.Employees {
				fromShiftView[triple{emp, roster.Shift.ID, day.Date}] = true
			}
		}
	}

	if !reflect.DeepEqual(fromEmployeeView, fromShiftView) {
		t.Errorf("views disagree: employee view %v, shift view %v",
			fromEmployeeView, fromShiftView)
	}
}
