/*
Package analytics aggregates resolved schedules into workforce metrics.

PURPOSE:
  Two concerns live here, layered on top of the schedule package:

  Entitlement reconciliation: tracks each employee's annual leave
  entitlement against consumed absence days of counting leave types,
  producing a running balance per (employee, year).

  Aggregation: turns an occupancy model plus balances into utilization,
  capacity and coverage-gap metrics (aggregate.go).

BALANCE SEMANTICS:
  remaining = entitled - consumed, exactly. A negative remaining is
  reported as-is with the OverConsumed flag set - clamping it to zero
  would hide a real scheduling problem. A missing entitlement record
  renders the same balance as a legitimate zero allotment; the ambiguity
  is preserved as a MissingEntitlement warning and left to the caller.

SEE ALSO:
  - aggregate.go: the analytics report
  - schedule/source.go: the record source this reads from
*/
package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// BALANCES
// =============================================================================

// EmployeeBalance is the reconciled leave balance for one employee and
// year. Remaining may be negative; it is never clamped.
type EmployeeBalance struct {
	EmployeeID schedule.EmployeeID
	Year       int
	Entitled   decimal.Decimal
	Consumed   decimal.Decimal
	Remaining  decimal.Decimal

	// MissingEntitlement marks that no entitlement record exists for the
	// year; Entitled is zero in that case but the employee may just as
	// well have a legitimate zero allotment.
	MissingEntitlement bool

	// OverConsumed marks that consumption exceeds the entitlement.
	OverConsumed bool
}

// WarningKind classifies non-fatal data quality findings.
type WarningKind string

const (
	WarnMissingEntitlement WarningKind = "missing_entitlement"
	WarnOverConsumed       WarningKind = "over_consumed"
)

// Warning is a non-fatal finding accumulated during reconciliation.
type Warning struct {
	Kind       WarningKind
	EmployeeID schedule.EmployeeID
	Year       int
}

// BalanceReport maps every employee in scope to a balance, plus the
// warnings collected along the way.
type BalanceReport struct {
	Year     int
	Balances map[schedule.EmployeeID]EmployeeBalance
	Warnings []Warning
}

// Balance returns the balance for an employee, if in scope.
func (r *BalanceReport) Balance(id schedule.EmployeeID) (EmployeeBalance, bool) {
	b, ok := r.Balances[id]
	return b, ok
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler computes annual leave balances from entitlement and absence
// records. Stateless; safe for concurrent use.
type Reconciler struct {
	source schedule.RecordSource
}

func NewReconciler(source schedule.RecordSource) *Reconciler {
	return &Reconciler{source: source}
}

// Reconcile computes balances for the given year. A nil employee filter
// scopes to all active employees; an explicitly empty filter yields an
// empty report.
func (rc *Reconciler) Reconcile(ctx context.Context, year int, employees []schedule.EmployeeID) (*BalanceReport, error) {
	scope, err := rc.scopedEmployees(ctx, employees)
	if err != nil {
		return nil, err
	}

	report := &BalanceReport{
		Year:     year,
		Balances: make(map[schedule.EmployeeID]EmployeeBalance, len(scope)),
	}
	if len(scope) == 0 {
		return report, nil
	}

	scopeIDs := make([]schedule.EmployeeID, len(scope))
	for i, emp := range scope {
		scopeIDs[i] = emp.ID
	}

	entitlements, err := rc.source.Entitlements(ctx, year, scopeIDs)
	if err != nil {
		return nil, err
	}
	entitled := make(map[schedule.EmployeeID]decimal.Decimal, len(entitlements))
	for _, e := range entitlements {
		entitled[e.EmployeeID] = e.Days
	}

	counting, err := rc.countingLeaveTypes(ctx)
	if err != nil {
		return nil, err
	}

	absences, err := rc.source.Absences(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}
	// Consumed days: one per counting-leave absence record in the target
	// year, deduplicated per (employee, date) so a doubly recorded day is
	// not counted twice.
	consumedDays := make(map[schedule.EmployeeID]map[schedule.Date]bool)
	for _, a := range absences {
		if a.Date.Year != year || !counting[a.LeaveTypeID] {
			continue
		}
		days := consumedDays[a.EmployeeID]
		if days == nil {
			days = make(map[schedule.Date]bool)
			consumedDays[a.EmployeeID] = days
		}
		days[a.Date] = true
	}

	for _, emp := range scope {
		balance := EmployeeBalance{
			EmployeeID: emp.ID,
			Year:       year,
			Consumed:   decimal.NewFromInt(int64(len(consumedDays[emp.ID]))),
		}
		if days, ok := entitled[emp.ID]; ok {
			balance.Entitled = days
		} else {
			balance.Entitled = decimal.Zero
			balance.MissingEntitlement = true
			report.Warnings = append(report.Warnings, Warning{
				Kind:       WarnMissingEntitlement,
				EmployeeID: emp.ID,
				Year:       year,
			})
		}
		balance.Remaining = balance.Entitled.Sub(balance.Consumed)
		if balance.Remaining.IsNegative() {
			balance.OverConsumed = true
			report.Warnings = append(report.Warnings, Warning{
				Kind:       WarnOverConsumed,
				EmployeeID: emp.ID,
				Year:       year,
			})
		}
		report.Balances[emp.ID] = balance
	}

	return report, nil
}

func (rc *Reconciler) scopedEmployees(ctx context.Context, ids []schedule.EmployeeID) ([]schedule.Employee, error) {
	employees, err := rc.source.Employees(ctx, ids)
	if err != nil {
		return nil, err
	}
	if ids != nil {
		return employees, nil
	}
	active := make([]schedule.Employee, 0, len(employees))
	for _, emp := range employees {
		if emp.Active {
			active = append(active, emp)
		}
	}
	return active, nil
}

func (rc *Reconciler) countingLeaveTypes(ctx context.Context) (map[schedule.LeaveTypeID]bool, error) {
	leaveTypes, err := rc.source.LeaveTypes(ctx, nil)
	if err != nil {
		return nil, err
	}
	counting := make(map[schedule.LeaveTypeID]bool, len(leaveTypes))
	for _, lt := range leaveTypes {
		if lt.CountsAgainstEntitlement {
			counting[lt.ID] = true
		}
	}
	return counting, nil
}
