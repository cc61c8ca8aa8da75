package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
	"github.com/mschabhuettl/openschichtplaner5-api/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployees(t *testing.T, store *sqlite.Store) {
	ctx := context.Background()
	for _, e := range []schedule.Employee{
		{ID: "e1", Name: "Huber", FirstName: "Anna", GroupID: "g1", Active: true},
		{ID: "e2", Name: "Maier", FirstName: "Jonas", GroupID: "g1", Active: true},
		{ID: "e9", Name: "Weber", Active: false},
	} {
		require.NoError(t, store.PutEmployee(ctx, e))
	}
}

// =============================================================================
// MASTER DATA ROUND TRIPS
// =============================================================================

func TestStore_Employees_FilterContract(t *testing.T) {
	store := newTestStore(t)
	seedEmployees(t, store)
	ctx := context.Background()

	// nil filter: all records, ordered by id
	all, err := store.Employees(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, schedule.EmployeeID("e1"), all[0].ID)
	assert.Equal(t, schedule.EmployeeID("e9"), all[2].ID)
	assert.False(t, all[2].Active)

	// explicit ids: only those
	some, err := store.Employees(ctx, []schedule.EmployeeID{"e2", "missing"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Jonas", some[0].FirstName)

	// empty non-nil filter: nothing
	none, err := store.Employees(ctx, []schedule.EmployeeID{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Groups_MembershipOrderPreserved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutGroup(ctx, schedule.Group{
		ID: "g1", Name: "Station A",
		Members: []schedule.EmployeeID{"e3", "e1", "e2"},
	}))

	groups, err := store.Groups(ctx, []schedule.GroupID{"g1"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []schedule.EmployeeID{"e3", "e1", "e2"}, groups[0].Members,
		"insertion order survives the round trip")

	// Re-putting replaces the membership rather than accumulating it.
	require.NoError(t, store.PutGroup(ctx, schedule.Group{
		ID: "g1", Name: "Station A",
		Members: []schedule.EmployeeID{"e1"},
	}))
	groups, err = store.Groups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []schedule.EmployeeID{"e1"}, groups[0].Members)
}

func TestStore_Shifts_OptionalStaffingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	two := 2

	require.NoError(t, store.PutShift(ctx, schedule.Shift{
		ID: "early", Code: "F", Name: "Frühdienst",
		Starts: schedule.TimeOfDay{Hour: 6, Minute: 30}, Ends: schedule.TimeOfDay{Hour: 14},
		RequiredStaffing: &two,
	}))
	require.NoError(t, store.PutShift(ctx, schedule.Shift{
		ID: "late", Code: "S", Name: "Spätdienst",
		Starts: schedule.TimeOfDay{Hour: 14}, Ends: schedule.TimeOfDay{Hour: 22},
	}))

	shifts, err := store.Shifts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	early := shifts[0]
	require.NotNil(t, early.RequiredStaffing)
	assert.Equal(t, 2, *early.RequiredStaffing)
	assert.Equal(t, "06:30", early.Starts.String())

	assert.Nil(t, shifts[1].RequiredStaffing, "NULL staffing maps back to nil")
}

// =============================================================================
// FACT RECORD READS
// =============================================================================

func TestStore_Assignments_UniquePerEmployeeAndDay(t *testing.T) {
	// GIVEN: Two assignments for the same (employee, date)
	// WHEN: Reading back
	// THEN: The second write replaced the first

	store := newTestStore(t)
	ctx := context.Background()
	day := schedule.NewDate(2024, time.June, 3)

	require.NoError(t, store.PutAssignment(ctx, schedule.Assignment{
		EmployeeID: "e1", ShiftID: "early", Date: day,
	}))
	require.NoError(t, store.PutAssignment(ctx, schedule.Assignment{
		EmployeeID: "e1", ShiftID: "late", Date: day,
	}))

	assignments, err := store.Assignments(ctx, []schedule.EmployeeID{"e1"})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, schedule.ShiftID("late"), assignments[0].ShiftID)
	assert.Equal(t, day, assignments[0].Date)
}

func TestStore_Absences_FilteredByEmployee(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutAbsence(ctx, schedule.Absence{
		EmployeeID: "e1", LeaveTypeID: "vacation", Date: schedule.NewDate(2024, time.June, 3),
	}))
	require.NoError(t, store.PutAbsence(ctx, schedule.Absence{
		EmployeeID: "e2", LeaveTypeID: "sick", Date: schedule.NewDate(2024, time.June, 4),
	}))

	absences, err := store.Absences(ctx, []schedule.EmployeeID{"e2"})
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, schedule.LeaveTypeID("sick"), absences[0].LeaveTypeID)
}

func TestStore_Entitlements_YearFilterAndDecimalDays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutEntitlement(ctx, schedule.LeaveEntitlement{
		EmployeeID: "e1", Year: 2023, Days: decimal.NewFromInt(30),
	}))
	require.NoError(t, store.PutEntitlement(ctx, schedule.LeaveEntitlement{
		EmployeeID: "e1", Year: 2024, Days: decimal.RequireFromString("28.5"),
	}))

	entitlements, err := store.Entitlements(ctx, 2024, nil)
	require.NoError(t, err)
	require.Len(t, entitlements, 1)
	assert.Equal(t, 2024, entitlements[0].Year)
	assert.True(t, entitlements[0].Days.Equal(decimal.RequireFromString("28.5")),
		"fractional days survive the TEXT round trip, got %s", entitlements[0].Days)

	// year 0 means no year filter
	all, err := store.Entitlements(ctx, 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// ENGINE INTEGRATION
// =============================================================================

func TestStore_DrivesResolution(t *testing.T) {
	// GIVEN: A seeded SQLite store
	// WHEN: Resolving a range through the engine
	// THEN: The model reflects the persisted facts

	store := newTestStore(t)
	seedEmployees(t, store)
	ctx := context.Background()
	day := schedule.NewDate(2024, time.June, 3)

	require.NoError(t, store.PutShift(ctx, schedule.Shift{ID: "early", Name: "Frühdienst"}))
	require.NoError(t, store.PutLeaveType(ctx, schedule.LeaveType{
		ID: "vacation", Name: "Urlaub", CountsAgainstEntitlement: true,
	}))
	require.NoError(t, store.PutAssignment(ctx, schedule.Assignment{
		EmployeeID: "e1", ShiftID: "early", Date: day,
	}))
	require.NoError(t, store.PutAbsence(ctx, schedule.Absence{
		EmployeeID: "e2", LeaveTypeID: "vacation", Date: day,
	}))

	r, err := schedule.NewDateRange(day, day)
	require.NoError(t, err)
	model, err := schedule.NewEngine(store).Resolve(ctx, r, schedule.ResolveOptions{})
	require.NoError(t, err)

	require.Len(t, model.Employees, 2, "inactive e9 out of scope")

	slot, ok := model.Slot(day, "e1")
	require.True(t, ok)
	assert.Equal(t, schedule.SlotShift, slot.Kind)

	slot, ok = model.Slot(day, "e2")
	require.True(t, ok)
	assert.Equal(t, schedule.SlotAbsence, slot.Kind)
}
