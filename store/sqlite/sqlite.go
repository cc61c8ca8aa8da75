/*
Package sqlite provides a SQLite-backed RecordSource adapter.

PURPOSE:
  Implements schedule.RecordSource on SQLite. The legacy tabular store the
  schedule data originates from is loaded into these tables once; the
  engine only ever sees the read interface and never writes through it.

KEY TABLES:
  employees:          master data, active flag
  groups:             group header records
  group_members:      ordered group membership
  shifts:             shift definitions with optional required staffing
  workplaces:         filter dimension records
  assignments:        (employee, shift, date) facts, unique per (employee, date)
  absences:           (employee, leave type, date) facts
  leave_types:        absence classification, entitlement-counting flag
  leave_entitlements: (employee, year, days), unique per (employee, year)

FILTER CONTRACT:
  Read methods follow the RecordSource convention: a nil id slice selects
  all records, an empty non-nil slice selects none.

WAL MODE:
  Opened with WAL so concurrent readers (one per in-flight resolution)
  never block each other.

SEE ALSO:
  - schedule/source.go: the interface definition
  - schedule/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// Store implements schedule.RecordSource plus the write path used to load
// fixtures and seed data.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		firstname TEXT NOT NULL DEFAULT '',
		group_id TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (group_id, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_group_members_group
		ON group_members(group_id, position);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		start_hour INTEGER NOT NULL DEFAULT 0,
		start_minute INTEGER NOT NULL DEFAULT 0,
		end_hour INTEGER NOT NULL DEFAULT 0,
		end_minute INTEGER NOT NULL DEFAULT 0,
		required_staffing INTEGER
	);

	CREATE TABLE IF NOT EXISTS workplaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	-- An employee has at most one shift assignment per calendar day.
	CREATE TABLE IF NOT EXISTS assignments (
		employee_id TEXT NOT NULL,
		shift_id TEXT NOT NULL,
		workplace_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_date
		ON assignments(date);
	CREATE INDEX IF NOT EXISTS idx_assignments_shift
		ON assignments(shift_id, date);

	CREATE TABLE IF NOT EXISTS absences (
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		date TEXT NOT NULL,
		PRIMARY KEY (employee_id, date, leave_type_id)
	);

	CREATE INDEX IF NOT EXISTS idx_absences_employee_date
		ON absences(employee_id, date);

	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		counts_against_entitlement INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS leave_entitlements (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		days TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD SOURCE READS
// =============================================================================

func (s *Store) Employees(ctx context.Context, ids []schedule.EmployeeID) ([]schedule.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("id", employeeIDStrings(ids))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, firstname, group_id, active FROM employees`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var result []schedule.Employee
	for rows.Next() {
		var e schedule.Employee
		var active int
		if err := rows.Scan(&e.ID, &e.Name, &e.FirstName, &e.GroupID, &active); err != nil {
			return nil, err
		}
		e.Active = active != 0
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) Groups(ctx context.Context, ids []schedule.GroupID) ([]schedule.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("id", groupIDStrings(ids))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM groups`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var result []schedule.Group
	for rows.Next() {
		var g schedule.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		members, err := s.groupMembers(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Members = members
	}
	return result, nil
}

func (s *Store) groupMembers(ctx context.Context, id schedule.GroupID) ([]schedule.EmployeeID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM group_members WHERE group_id = ? ORDER BY position, employee_id`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var members []schedule.EmployeeID
	for rows.Next() {
		var m schedule.EmployeeID
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) Shifts(ctx context.Context, ids []schedule.ShiftID) ([]schedule.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("id", shiftIDStrings(ids))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, start_hour, start_minute, end_hour, end_minute, required_staffing
		 FROM shifts`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	var result []schedule.Shift
	for rows.Next() {
		var sh schedule.Shift
		var required sql.NullInt64
		if err := rows.Scan(&sh.ID, &sh.Code, &sh.Name,
			&sh.Starts.Hour, &sh.Starts.Minute, &sh.Ends.Hour, &sh.Ends.Minute, &required); err != nil {
			return nil, err
		}
		if required.Valid {
			n := int(required.Int64)
			sh.RequiredStaffing = &n
		}
		result = append(result, sh)
	}
	return result, rows.Err()
}

func (s *Store) Workplaces(ctx context.Context, ids []schedule.WorkplaceID) ([]schedule.Workplace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("id", workplaceIDStrings(ids))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM workplaces`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query workplaces: %w", err)
	}
	defer rows.Close()

	var result []schedule.Workplace
	for rows.Next() {
		var w schedule.Workplace
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (s *Store) Assignments(ctx context.Context, employees []schedule.EmployeeID) ([]schedule.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("employee_id", employeeIDStrings(employees))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, shift_id, workplace_id, date FROM assignments`+where+
			` ORDER BY date, employee_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var result []schedule.Assignment
	for rows.Next() {
		var a schedule.Assignment
		var date string
		if err := rows.Scan(&a.EmployeeID, &a.ShiftID, &a.WorkplaceID, &date); err != nil {
			return nil, err
		}
		var err error
		if a.Date, err = schedule.ParseDate(date); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) Absences(ctx context.Context, employees []schedule.EmployeeID) ([]schedule.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("employee_id", employeeIDStrings(employees))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, leave_type_id, date FROM absences`+where+
			` ORDER BY date, employee_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query absences: %w", err)
	}
	defer rows.Close()

	var result []schedule.Absence
	for rows.Next() {
		var a schedule.Absence
		var date string
		if err := rows.Scan(&a.EmployeeID, &a.LeaveTypeID, &date); err != nil {
			return nil, err
		}
		var err error
		if a.Date, err = schedule.ParseDate(date); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) LeaveTypes(ctx context.Context, ids []schedule.LeaveTypeID) ([]schedule.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("id", leaveTypeIDStrings(ids))
	if empty {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, counts_against_entitlement FROM leave_types`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query leave types: %w", err)
	}
	defer rows.Close()

	var result []schedule.LeaveType
	for rows.Next() {
		var lt schedule.LeaveType
		var counts int
		if err := rows.Scan(&lt.ID, &lt.Name, &counts); err != nil {
			return nil, err
		}
		lt.CountsAgainstEntitlement = counts != 0
		result = append(result, lt)
	}
	return result, rows.Err()
}

func (s *Store) Entitlements(ctx context.Context, year int, employees []schedule.EmployeeID) ([]schedule.LeaveEntitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args, empty := idClause("employee_id", employeeIDStrings(employees))
	if empty {
		return nil, nil
	}
	query := `SELECT employee_id, year, days FROM leave_entitlements` + where
	if year != 0 {
		if where == "" {
			query += ` WHERE year = ?`
		} else {
			query += ` AND year = ?`
		}
		args = append(args, year)
	}
	query += ` ORDER BY employee_id, year`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entitlements: %w", err)
	}
	defer rows.Close()

	var result []schedule.LeaveEntitlement
	for rows.Next() {
		var e schedule.LeaveEntitlement
		var days string
		if err := rows.Scan(&e.EmployeeID, &e.Year, &days); err != nil {
			return nil, err
		}
		var err error
		if e.Days, err = decimal.NewFromString(days); err != nil {
			return nil, fmt.Errorf("entitlement days %q: %w", days, err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// FIXTURE WRITES - loader side only, never used by the engine
// =============================================================================

func (s *Store) PutEmployee(ctx context.Context, e schedule.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO employees (id, name, firstname, group_id, active) VALUES (?, ?, ?, ?, ?)`,
		string(e.ID), e.Name, e.FirstName, string(e.GroupID), boolInt(e.Active))
	return err
}

func (s *Store) PutGroup(ctx context.Context, g schedule.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO groups (id, name) VALUES (?, ?)`, string(g.ID), g.Name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ?`, string(g.ID)); err != nil {
		return err
	}
	for i, member := range g.Members {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO group_members (group_id, employee_id, position) VALUES (?, ?, ?)`,
			string(g.ID), string(member), i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) PutShift(ctx context.Context, sh schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var required interface{}
	if sh.RequiredStaffing != nil {
		required = *sh.RequiredStaffing
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO shifts
		 (id, code, name, start_hour, start_minute, end_hour, end_minute, required_staffing)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(sh.ID), sh.Code, sh.Name,
		sh.Starts.Hour, sh.Starts.Minute, sh.Ends.Hour, sh.Ends.Minute, required)
	return err
}

func (s *Store) PutWorkplace(ctx context.Context, w schedule.Workplace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO workplaces (id, name) VALUES (?, ?)`, string(w.ID), w.Name)
	return err
}

func (s *Store) PutAssignment(ctx context.Context, a schedule.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO assignments (employee_id, shift_id, workplace_id, date) VALUES (?, ?, ?, ?)`,
		string(a.EmployeeID), string(a.ShiftID), string(a.WorkplaceID), a.Date.String())
	return err
}

func (s *Store) PutAbsence(ctx context.Context, a schedule.Absence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO absences (employee_id, leave_type_id, date) VALUES (?, ?, ?)`,
		string(a.EmployeeID), string(a.LeaveTypeID), a.Date.String())
	return err
}

func (s *Store) PutLeaveType(ctx context.Context, lt schedule.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO leave_types (id, name, counts_against_entitlement) VALUES (?, ?, ?)`,
		string(lt.ID), lt.Name, boolInt(lt.CountsAgainstEntitlement))
	return err
}

func (s *Store) PutEntitlement(ctx context.Context, e schedule.LeaveEntitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO leave_entitlements (employee_id, year, days) VALUES (?, ?, ?)`,
		string(e.EmployeeID), e.Year, e.Days.String())
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

// idClause builds a WHERE ... IN (...) fragment for the nil = all /
// empty = none filter convention. The third return marks an explicitly
// empty filter (select nothing, skip the query entirely).
func idClause(column string, ids []string) (where string, args []interface{}, empty bool) {
	if ids == nil {
		return "", nil, false
	}
	if len(ids) == 0 {
		return "", nil, true
	}
	placeholders := make([]string, len(ids))
	args = make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return fmt.Sprintf(" WHERE %s IN (%s)", column, strings.Join(placeholders, ", ")), args, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func employeeIDStrings(ids []schedule.EmployeeID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func groupIDStrings(ids []schedule.GroupID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func shiftIDStrings(ids []schedule.ShiftID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func workplaceIDStrings(ids []schedule.WorkplaceID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func leaveTypeIDStrings(ids []schedule.LeaveTypeID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
