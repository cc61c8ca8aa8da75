/*
source.go - Read-only record source interface

PURPOSE:
  Defines the boundary between the engine and the canonical record store.
  The engine treats the store as a synchronous read API keyed by entity
  kind, optionally filtered by an id set. The store's file format, caching
  and write path are entirely the adapter's business.

FILTER CONTRACT:
  Every method takes an id slice:
    nil          -> all records of that kind
    empty, !nil  -> no records (an explicitly empty scope)
  This distinction matters: an empty filter yields an empty occupancy
  model, while an absent filter means "everyone".

IMPLEMENTATIONS:
  - schedule/store: in-memory fixture store (tests, demo scenarios)
  - store/sqlite:   SQLite-backed adapter

SEE ALSO:
  - resolver.go: the only consumer inside this package
*/
package schedule

import "context"

// RecordSource supplies immutable, typed record collections per entity
// kind. Implementations must be safe for concurrent readers.
type RecordSource interface {
	// Employees returns employee records matching the id filter.
	Employees(ctx context.Context, ids []EmployeeID) ([]Employee, error)

	// Groups returns group records matching the id filter.
	Groups(ctx context.Context, ids []GroupID) ([]Group, error)

	// Shifts returns shift definitions matching the id filter.
	Shifts(ctx context.Context, ids []ShiftID) ([]Shift, error)

	// Workplaces returns workplace records matching the id filter.
	Workplaces(ctx context.Context, ids []WorkplaceID) ([]Workplace, error)

	// Assignments returns assignment facts for the given employees.
	Assignments(ctx context.Context, employees []EmployeeID) ([]Assignment, error)

	// Absences returns absence facts for the given employees.
	Absences(ctx context.Context, employees []EmployeeID) ([]Absence, error)

	// LeaveTypes returns leave type records matching the id filter.
	LeaveTypes(ctx context.Context, ids []LeaveTypeID) ([]LeaveType, error)

	// Entitlements returns annual leave entitlements for the given
	// employees. year == 0 means all years.
	Entitlements(ctx context.Context, year int, employees []EmployeeID) ([]LeaveEntitlement, error)
}
