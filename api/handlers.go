/*
handlers.go - HTTP API handlers for the schedule resolution engine

PURPOSE:
  Exposes the schedule engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the resolver, projector, reconciler
  and aggregator.

ENDPOINTS:
  Master data:
    GET /api/employees                      List employees (?all=true incl. inactive)
    GET /api/employees/{id}                 Get employee details
    GET /api/employees/{id}/calendar        Year calendar for one employee (?year=)
    GET /api/employees/{id}/balance         Leave balance for one employee (?year=)
    GET /api/groups                         List groups
    GET /api/shifts                         List shift definitions
    GET /api/workplaces                     List workplaces

  Schedule views:
    GET /api/schedule/dienstplan            Employee-centric view
    GET /api/schedule/einsatzplan           Shift-centric view
      Query: start=YYYY-MM-DD&end=YYYY-MM-DD (or year=&month= for a whole
      month), employees=comma,separated, groups=comma,separated

  Analytics:
    GET /api/balances                       Leave balances for a year (?year=)
    GET /api/analytics/report               Full analytics report
      Query: range params as above, year= for the entitlement counters,
      require_<shiftID>=N to override staffing requirements

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid range or malformed parameters
  - 404: Resource not found
  - 500: Record source failures

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mschabhuettl/openschichtplaner5-api/analytics"
	"github.com/mschabhuettl/openschichtplaner5-api/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Source     schedule.RecordSource
	Engine     *schedule.Engine
	Reconciler *analytics.Reconciler
}

// NewHandler creates a new handler over the given record source.
func NewHandler(source schedule.RecordSource) *Handler {
	return &Handler{
		Source:     source,
		Engine:     schedule.NewEngine(source),
		Reconciler: analytics.NewReconciler(source),
	}
}

// =============================================================================
// MASTER DATA HANDLERS
// =============================================================================

// ListEmployees returns active employees; ?all=true includes inactive ones.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Source.Employees(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	includeInactive := r.URL.Query().Get("all") == "true"
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		if !e.Active && !includeInactive {
			continue
		}
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))

	employees, err := h.Source.Employees(r.Context(), []schedule.EmployeeID{id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if len(employees) == 0 {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(employees[0]))
}

// GetEmployeeCalendar returns one employee's full-year calendar
// (Jahresübersicht). Defaults to the current year.
func (h *Handler) GetEmployeeCalendar(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	year, err := parseYear(r, time.Now().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	model, err := h.Engine.Resolve(r.Context(), schedule.YearRange(year), schedule.ResolveOptions{
		Employees: []schedule.EmployeeID{id},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve calendar", err)
		return
	}
	if len(model.Employees) == 0 {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toDienstplanResponse(model))
}

// GetEmployeeBalance returns one employee's leave balance for a year.
func (h *Handler) GetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	year, err := parseYear(r, time.Now().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	report, err := h.Reconciler.Reconcile(r.Context(), year, []schedule.EmployeeID{id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reconcile balance", err)
		return
	}
	balance, ok := report.Balance(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// ListGroups returns all groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Source.Groups(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list groups", err)
		return
	}

	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = string(m)
		}
		dtos = append(dtos, GroupDTO{ID: string(g.ID), Name: g.Name, Members: members})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListShifts returns all shift definitions.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Source.Shifts(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListWorkplaces returns all workplaces.
func (h *Handler) ListWorkplaces(w http.ResponseWriter, r *http.Request) {
	workplaces, err := h.Source.Workplaces(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workplaces", err)
		return
	}

	dtos := make([]WorkplaceDTO, 0, len(workplaces))
	for _, wp := range workplaces {
		dtos = append(dtos, WorkplaceDTO{ID: string(wp.ID), Name: wp.Name})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SCHEDULE VIEW HANDLERS
// =============================================================================

// GetDienstplan resolves the range and returns the employee-centric view.
func (h *Handler) GetDienstplan(w http.ResponseWriter, r *http.Request) {
	model, ok := h.resolveFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDienstplanResponse(model))
}

// GetEinsatzplan resolves the range and returns the shift-centric view.
func (h *Handler) GetEinsatzplan(w http.ResponseWriter, r *http.Request) {
	model, ok := h.resolveFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEinsatzplanResponse(model))
}

// resolveFromQuery parses range and scope parameters and resolves the
// occupancy model. On failure it writes the error response and returns
// ok=false.
func (h *Handler) resolveFromQuery(w http.ResponseWriter, r *http.Request) (*schedule.OccupancyModel, bool) {
	dateRange, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return nil, false
	}

	opts := schedule.ResolveOptions{
		Employees: employeeIDs(r.URL.Query().Get("employees")),
		Groups:    groupIDs(r.URL.Query().Get("groups")),
	}
	model, err := h.Engine.Resolve(r.Context(), dateRange, opts)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to resolve schedule", err)
		}
		return nil, false
	}
	return model, true
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// ListBalances returns leave balances for all active employees in a year.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r, time.Now().Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	report, err := h.Reconciler.Reconcile(r.Context(), year, employeeIDs(r.URL.Query().Get("employees")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reconcile balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceReportResponse(report))
}

// GetAnalyticsReport resolves the range, reconciles balances for the range's
// start year (or ?year=), and returns the full analytics report.
func (h *Handler) GetAnalyticsReport(w http.ResponseWriter, r *http.Request) {
	model, ok := h.resolveFromQuery(w, r)
	if !ok {
		return
	}

	year, err := parseYear(r, model.Range.Start.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	scope := make([]schedule.EmployeeID, len(model.Employees))
	for i, emp := range model.Employees {
		scope[i] = emp.ID
	}
	balances, err := h.Reconciler.Reconcile(r.Context(), year, scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reconcile balances", err)
		return
	}

	overrides, err := parseRequirements(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requirement override", err)
		return
	}

	report := analytics.Aggregate(model, balances, overrides)
	writeJSON(w, http.StatusOK, toAnalyticsResponse(model, report))
}

// =============================================================================
// PARAMETER PARSING
// =============================================================================

// parseRange accepts either start=/end= ISO dates or year=&month= for a
// whole calendar month.
func parseRange(r *http.Request) (schedule.DateRange, error) {
	q := r.URL.Query()
	if q.Get("month") != "" {
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			return schedule.DateRange{}, errors.New("month requires a numeric year")
		}
		month, err := strconv.Atoi(q.Get("month"))
		if err != nil || month < 1 || month > 12 {
			return schedule.DateRange{}, errors.New("month must be 1..12")
		}
		return schedule.MonthRange(year, time.Month(month)), nil
	}

	start, err := schedule.ParseDate(q.Get("start"))
	if err != nil {
		return schedule.DateRange{}, err
	}
	end, err := schedule.ParseDate(q.Get("end"))
	if err != nil {
		return schedule.DateRange{}, err
	}
	return schedule.NewDateRange(start, end)
}

func parseYear(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// parseRequirements collects require_<shiftID>=N query parameters into a
// requirement override set.
func parseRequirements(r *http.Request) (analytics.Requirements, error) {
	var overrides analytics.Requirements
	for key, values := range r.URL.Query() {
		shiftID, ok := strings.CutPrefix(key, "require_")
		if !ok || len(values) == 0 {
			continue
		}
		n, err := strconv.Atoi(values[0])
		if err != nil || n < 0 {
			return nil, errors.New("requirement for " + shiftID + " must be a non-negative integer")
		}
		if overrides == nil {
			overrides = make(analytics.Requirements)
		}
		overrides[schedule.ShiftID(shiftID)] = n
	}
	return overrides, nil
}

// employeeIDs splits a comma-separated id list. An absent or empty
// parameter yields nil (all in scope).
func employeeIDs(raw string) []schedule.EmployeeID {
	parts := splitIDs(raw)
	if parts == nil {
		return nil
	}
	ids := make([]schedule.EmployeeID, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, schedule.EmployeeID(p))
	}
	return ids
}

func groupIDs(raw string) []schedule.GroupID {
	parts := splitIDs(raw)
	if parts == nil {
		return nil
	}
	ids := make([]schedule.GroupID, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, schedule.GroupID(p))
	}
	return ids
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if parts == nil {
		return []string{}
	}
	return parts
}
