/*
Package schedule provides the core schedule resolution engine.

PURPOSE:
  This package reconciles raw per-record shift assignment data into a
  day-by-day occupancy model and projects it into the two classic planning
  views: the Dienstplan (schedule by person) and the Einsatzplan (schedule
  by shift). It owns only derived structures; canonical records come from a
  read-only RecordSource and are never mutated here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee/Group/Shift/Workplace: master data records
  - Assignment: the atomic fact "employee E works shift S on date D"
  - Absence: marks a day as non-working for an employee
  - LeaveType/LeaveEntitlement: annual leave accounting records
  - Type-safe string IDs to prevent mixing identifier spaces

DESIGN PRINCIPLES:
  1. Immutability: records are snapshot inputs, derived models are rebuilt
     per request and never persisted
  2. Purity: every operation is a function of (range, filters, snapshot);
     no hidden state, no wall clock
  3. Precision: fractional day quantities use decimal.Decimal, never float64
  4. Data quality issues are reported values, not errors

SEE ALSO:
  - calendar.go: Date and DateRange day-granular calendar math
  - resolver.go: the occupancy resolution algorithm
  - projection.go: employee-view and shift-view projections
  - source.go: the RecordSource read interface
*/
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type GroupID string
type ShiftID string
type WorkplaceID string
type LeaveTypeID string

// =============================================================================
// MASTER DATA RECORDS
// =============================================================================

// Employee is a person that can be scheduled. Inactive employees are
// excluded from unfiltered resolution scope but remain addressable by ID.
type Employee struct {
	ID        EmployeeID
	Name      string
	FirstName string
	GroupID   GroupID
	Active    bool
}

// DisplayName returns "Firstname Name", falling back to the ID when the
// record carries no name at all.
func (e Employee) DisplayName() string {
	switch {
	case e.FirstName != "" && e.Name != "":
		return e.FirstName + " " + e.Name
	case e.Name != "":
		return e.Name
	default:
		return string(e.ID)
	}
}

// Group is an ordered set of employees, used as a filter dimension.
type Group struct {
	ID      GroupID
	Name    string
	Members []EmployeeID
}

// Shift is a shift definition. RequiredStaffing is optional: nil means the
// shift carries no staffing requirement and is excluded from coverage-gap
// computation.
type Shift struct {
	ID               ShiftID
	Code             string
	Name             string
	Starts           TimeOfDay
	Ends             TimeOfDay
	RequiredStaffing *int
}

// TimeOfDay is a nominal wall-clock time for shift boundaries.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Workplace is a filter dimension only; the engine never transforms it.
type Workplace struct {
	ID   WorkplaceID
	Name string
}

// =============================================================================
// FACT RECORDS
// =============================================================================

// Assignment is the atomic fact "this employee works this shift on this
// date". Unique per (EmployeeID, Date): an employee has at most one shift
// assignment per calendar day.
type Assignment struct {
	EmployeeID  EmployeeID
	ShiftID     ShiftID
	WorkplaceID WorkplaceID
	Date        Date
}

// Absence marks a day as non-working for an employee. A date carrying both
// an Absence and an Assignment for the same employee is a source conflict;
// the resolver treats the Absence as the stronger fact.
type Absence struct {
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID
	Date        Date
}

// LeaveType classifies absences. CountsAgainstEntitlement marks types
// (vacation and friends) that consume the annual allotment.
type LeaveType struct {
	ID                       LeaveTypeID
	Name                     string
	CountsAgainstEntitlement bool
}

// LeaveEntitlement is an employee's annual allotment of leave days.
// Days is decimal because legacy sources store half-day allotments.
type LeaveEntitlement struct {
	EmployeeID EmployeeID
	Year       int
	Days       decimal.Decimal
}
