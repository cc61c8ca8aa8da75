package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschabhuettl/openschichtplaner5-api/analytics"
	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
	"github.com/mschabhuettl/openschichtplaner5-api/schedule/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newAggregateFixture(requiredEarly int) *store.Memory {
	m := store.NewMemory()
	m.AddEmployee(schedule.Employee{ID: "e1", Name: "Huber", Active: true})
	m.AddEmployee(schedule.Employee{ID: "e2", Name: "Maier", Active: true})
	m.AddLeaveType(schedule.LeaveType{ID: "vacation", Name: "Urlaub", CountsAgainstEntitlement: true})
	m.AddLeaveType(schedule.LeaveType{ID: "sick", Name: "Krank"})
	m.AddShift(schedule.Shift{ID: "early", Code: "F", Name: "Frühdienst",
		Starts: schedule.TimeOfDay{Hour: 6}, Ends: schedule.TimeOfDay{Hour: 14},
		RequiredStaffing: &requiredEarly})
	m.AddShift(schedule.Shift{ID: "late", Code: "S", Name: "Spätdienst",
		Starts: schedule.TimeOfDay{Hour: 14}, Ends: schedule.TimeOfDay{Hour: 22}})
	return m
}

func resolveJune(t *testing.T, src *store.Memory, startDay, endDay int) *schedule.OccupancyModel {
	t.Helper()
	r, err := schedule.NewDateRange(
		schedule.NewDate(2024, time.June, startDay),
		schedule.NewDate(2024, time.June, endDay),
	)
	require.NoError(t, err)

	model, err := schedule.NewEngine(src).Resolve(context.Background(), r, schedule.ResolveOptions{})
	require.NoError(t, err)
	return model
}

func june(day int) schedule.Date {
	return schedule.NewDate(2024, time.June, day)
}

// =============================================================================
// UTILIZATION TESTS
// =============================================================================

func TestAggregate_Utilization_WorkedOverAvailable(t *testing.T) {
	// GIVEN: A 5-day range where e1 works 3 days and has 1 counting vacation day
	// WHEN: Aggregating
	// THEN: available = 4, utilization = 3/4

	src := newAggregateFixture(1)
	for _, d := range []int{3, 4, 5} {
		src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(d)})
	}
	src.AddAbsence(schedule.Absence{EmployeeID: "e1", LeaveTypeID: "vacation", Date: june(6)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 7), nil, nil)

	require.Len(t, report.Utilization, 2)
	u := report.Utilization[0]
	assert.Equal(t, schedule.EmployeeID("e1"), u.EmployeeID)
	assert.Equal(t, 3, u.WorkedDays)
	assert.Equal(t, 1, u.AbsenceDays)
	assert.Equal(t, 4, u.AvailableDays)
	assert.False(t, u.Anomalous)
	assert.True(t, u.Utilization.Equal(decimal.NewFromInt(3).Div(decimal.NewFromInt(4))),
		"expected 0.75, got %s", u.Utilization)
}

func TestAggregate_Utilization_NonCountingAbsenceKeepsAvailability(t *testing.T) {
	// GIVEN: A sick day (non-counting leave) in a 5-day range
	// WHEN: Aggregating
	// THEN: Available days stay at the full range length

	src := newAggregateFixture(1)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})
	src.AddAbsence(schedule.Absence{EmployeeID: "e1", LeaveTypeID: "sick", Date: june(4)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 7), nil, nil)

	u := report.Utilization[0]
	assert.Equal(t, 0, u.AbsenceDays)
	assert.Equal(t, 5, u.AvailableDays)
	assert.Equal(t, 1, report.Summary.AbsenceDays, "summary still counts the sick day")
	assert.Equal(t, 0, report.Summary.CountingAbsenceDays)
}

func TestAggregate_Utilization_ZeroOverZeroDefined(t *testing.T) {
	// GIVEN: A single-day range fully covered by counting leave
	// WHEN: Aggregating
	// THEN: 0 worked / 0 available is a defined zero, not an anomaly

	src := newAggregateFixture(1)
	src.AddAbsence(schedule.Absence{EmployeeID: "e1", LeaveTypeID: "vacation", Date: june(3)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 3), nil, nil)

	u := report.Utilization[0]
	assert.Equal(t, 0, u.AvailableDays)
	assert.False(t, u.Anomalous)
	assert.True(t, u.Utilization.IsZero())
}

func TestAggregate_FullLeave_ExcludedFromMeanDenominator(t *testing.T) {
	// GIVEN: e1 works the whole 2-day range, e2 is on counting leave for all
	//        of it
	// WHEN: Aggregating
	// THEN: Both employees have defined utilization and the mean averages
	//        over both samples

	src := newAggregateFixture(1)
	for _, d := range []int{3, 4} {
		src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(d)})
		src.AddAbsence(schedule.Absence{EmployeeID: "e2", LeaveTypeID: "vacation", Date: june(d)})
	}

	report := analytics.Aggregate(resolveJune(t, src, 3, 4), nil, nil)

	assert.Equal(t, 2, report.Summary.UtilizationSamples)
	// e1 at 1.0, e2 at 0/0 = 0, mean 0.5
	assert.True(t, report.Summary.MeanUtilization.Equal(decimal.RequireFromString("0.5")),
		"expected 0.5, got %s", report.Summary.MeanUtilization)
}

// =============================================================================
// CAPACITY AND COVERAGE GAP TESTS
// =============================================================================

func TestAggregate_CoverageGap_Shortfall(t *testing.T) {
	// GIVEN: Early shift requires 2, only e1 assigned on June 3
	// WHEN: Aggregating a single day
	// THEN: One gap with shortfall 1 and an understaffed capacity entry

	src := newAggregateFixture(2)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 3), nil, nil)

	require.Len(t, report.Gaps, 1)
	gap := report.Gaps[0]
	assert.Equal(t, june(3), gap.Date)
	assert.Equal(t, schedule.ShiftID("early"), gap.ShiftID)
	assert.Equal(t, 2, gap.Required)
	assert.Equal(t, 1, gap.Assigned)
	assert.Equal(t, 1, gap.Shortfall)

	require.Len(t, report.Capacity, 1)
	assert.Equal(t, analytics.CapacityUnderstaffed, report.Capacity[0].Status)
}

func TestAggregate_CoverageGap_ZeroAssignedDaysIncluded(t *testing.T) {
	// GIVEN: A requirement of 1 and a 3-day range with one staffed day
	// WHEN: Aggregating
	// THEN: The two unstaffed days are gaps too

	src := newAggregateFixture(1)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(4)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 5), nil, nil)

	require.Len(t, report.Gaps, 2)
	assert.Equal(t, june(3), report.Gaps[0].Date)
	assert.Equal(t, june(5), report.Gaps[1].Date)
	for _, gap := range report.Gaps {
		assert.Equal(t, 0, gap.Assigned)
		assert.Equal(t, 1, gap.Shortfall)
	}
}

func TestAggregate_UnconstrainedShift_NeverGaps(t *testing.T) {
	// GIVEN: The late shift carries no staffing requirement
	// WHEN: Aggregating a day with one late assignment
	// THEN: A capacity entry exists but no gap

	src := newAggregateFixture(1)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "late", Date: june(3)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 3), nil, nil)

	assert.Empty(t, report.Gaps)
	require.Len(t, report.Capacity, 2)
	late := report.Capacity[1]
	assert.Equal(t, schedule.ShiftID("late"), late.ShiftID)
	assert.Nil(t, late.Required)
	assert.Equal(t, analytics.CapacityUnconstrained, late.Status)
}

func TestAggregate_Overstaffed_Classified(t *testing.T) {
	src := newAggregateFixture(1)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "early", Date: june(3)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 3), nil, nil)

	require.Len(t, report.Capacity, 1)
	assert.Equal(t, analytics.CapacityOverstaffed, report.Capacity[0].Status)
	assert.Empty(t, report.Gaps)
}

func TestAggregate_RequirementOverride_Wins(t *testing.T) {
	// GIVEN: The shift definition requires 1, the override demands 3
	// WHEN: Aggregating with the override
	// THEN: The gap reflects the override

	src := newAggregateFixture(1)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})

	report := analytics.Aggregate(resolveJune(t, src, 3, 3), nil,
		analytics.Requirements{"early": 3})

	require.Len(t, report.Gaps, 1)
	assert.Equal(t, 3, report.Gaps[0].Required)
	assert.Equal(t, 2, report.Gaps[0].Shortfall)
}

func TestAggregate_GapsSortedByDateThenShift(t *testing.T) {
	// GIVEN: Gaps across two days and two constrained shifts
	// WHEN: Aggregating
	// THEN: Gaps come back ordered by (date, shift id)

	one := 1
	src := newAggregateFixture(1)
	src.AddShift(schedule.Shift{ID: "night", Code: "N", Name: "Nachtdienst",
		Starts: schedule.TimeOfDay{Hour: 22}, Ends: schedule.TimeOfDay{Hour: 6},
		RequiredStaffing: &one})

	report := analytics.Aggregate(resolveJune(t, src, 3, 4), nil, nil)

	require.Len(t, report.Gaps, 4)
	var got []string
	for _, gap := range report.Gaps {
		got = append(got, gap.Date.String()+"/"+string(gap.ShiftID))
	}
	assert.Equal(t, []string{
		"2024-06-03/early", "2024-06-03/night",
		"2024-06-04/early", "2024-06-04/night",
	}, got)
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestAggregate_Summary_RollsUpBalancesAndMean(t *testing.T) {
	// GIVEN: Two employees, one with a balance warning, both fully worked
	// WHEN: Aggregating with a reconciled balance report
	// THEN: The summary carries counts and the mean utilization

	src := newAggregateFixture(1)
	src.AddEntitlement(schedule.LeaveEntitlement{
		EmployeeID: "e1", Year: 2024, Days: decimal.NewFromInt(30),
	})
	for _, d := range []int{3, 4} {
		src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(d)})
		src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "late", Date: june(d)})
	}

	balances, err := analytics.NewReconciler(src).Reconcile(context.Background(), 2024, nil)
	require.NoError(t, err)

	report := analytics.Aggregate(resolveJune(t, src, 3, 4), balances, nil)

	assert.Equal(t, 2, report.Summary.Employees)
	assert.Equal(t, 4, report.Summary.AssignedDays)
	assert.Equal(t, 2, report.Summary.UtilizationSamples)
	assert.Equal(t, 1, report.Summary.MissingEntitlements, "e2 has no entitlement record")
	assert.Equal(t, 0, report.Summary.OverConsumed)
	assert.True(t, report.Summary.MeanUtilization.Equal(decimal.NewFromInt(1)),
		"both employees fully utilized, got %s", report.Summary.MeanUtilization)
}

func TestAggregate_Deterministic(t *testing.T) {
	// GIVEN: A fixed model and balance report
	// WHEN: Aggregating twice
	// THEN: The reports are identical

	src := newAggregateFixture(2)
	src.AddAssignment(schedule.Assignment{EmployeeID: "e1", ShiftID: "early", Date: june(3)})
	src.AddAssignment(schedule.Assignment{EmployeeID: "e2", ShiftID: "late", Date: june(4)})
	src.AddAbsence(schedule.Absence{EmployeeID: "e2", LeaveTypeID: "vacation", Date: june(5)})

	model := resolveJune(t, src, 3, 5)
	first := analytics.Aggregate(model, nil, nil)
	second := analytics.Aggregate(model, nil, nil)

	assert.Equal(t, first, second)
}
