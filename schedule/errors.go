/*
errors.go - Error types for the schedule engine

PURPOSE:
  Only structural errors abort an operation. Data-quality findings
  (assignment/absence conflicts, missing entitlements, anomalies) are
  collected values returned alongside the primary result, so callers keep
  full information instead of a silently corrected answer.

USAGE:
  if errors.Is(err, schedule.ErrInvalidRange) {
      // reject the request, no partial result exists
  }
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a range's start date is after its
	// end date. Fatal to the calling operation, no partial result.
	ErrInvalidRange = errors.New("invalid range: start after end")
)

// =============================================================================
// DATA QUALITY FINDINGS - Collected, never raised
// =============================================================================

// Conflict records a (employee, date) key carrying both an Assignment and
// an Absence. The resolver lets the Absence win and keeps the conflict
// externally visible rather than hard-coding the precedence irreversibly.
type Conflict struct {
	EmployeeID  EmployeeID
	Date        Date
	ShiftID     ShiftID
	LeaveTypeID LeaveTypeID
}

func (c Conflict) String() string {
	return fmt.Sprintf("assignment/absence conflict: employee %s on %s (shift %s vs leave type %s)",
		c.EmployeeID, c.Date, c.ShiftID, c.LeaveTypeID)
}
