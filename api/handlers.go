/*
handlers.go - HTTP API handlers for the back-office core

PURPOSE:
  Exposes the shift/ledger consistency core via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.
  This layer is a thin wrapper: every invariant lives in the core.

ENDPOINTS:
  Shifts:
    GET    /api/shifts               List shifts (optional ?branch=)
    POST   /api/shifts               Open a shift for (branch, day)
    GET    /api/shifts/{id}          Get one shift
    POST   /api/shifts/{id}/lock     Close the shift (idempotent)
    POST   /api/shifts/{id}/unlock   Reopen the shift (idempotent)
    PUT    /api/shifts/{id}/balances Replace drawer balances

  Ledgers:
    GET    /api/ledgers              List entries (?shift=, ?staff=)
    POST   /api/ledgers              Record an entry (lock-gated)
    PUT    /api/ledgers/{id}         Patch an entry (lock-gated)
    DELETE /api/ledgers/{id}         Remove an entry (lock-gated)

  Reports:
    GET    /api/reports?from=&to=&branch=  Range report
    GET    /api/reports/info?date=&branch= Single-day report

  Audit:
    GET    /api/audit                Shift action log (?shift=)

ERROR HANDLING:
  Domain error kinds map to HTTP statuses:
  - 404: NotFound (shift/ledger id doesn't resolve, "no data" info)
  - 409: DuplicateShift
  - 400: InvalidShift, ShiftLocked, malformed input
  - 500: everything else

ACTOR:
  The acting user comes from the X-User header (session handling is an
  external collaborator). Blank means "system".

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lolo266/spa-saigon/backoffice"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Shifts  *backoffice.ShiftService
	Ledgers *backoffice.LedgerGuard
	Reports *backoffice.Reporter
	Audit   backoffice.AuditLog
}

func NewHandler(shifts *backoffice.ShiftService, ledgers *backoffice.LedgerGuard, reports *backoffice.Reporter, audit backoffice.AuditLog) *Handler {
	return &Handler{Shifts: shifts, Ledgers: ledgers, Reports: reports, Audit: audit}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// CreateShift opens a new shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Branch == "" {
		writeError(w, http.StatusBadRequest, "branch is required", nil)
		return
	}

	day, err := parseDayValue(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD or epoch milliseconds)", err)
		return
	}

	balances := backoffice.ZeroBalances()
	if req.Balances != nil {
		balances = req.Balances.toDomain()
	}

	shift, err := h.Shifts.Create(r.Context(), day, backoffice.BranchID(req.Branch), balances, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(*shift))
}

// GetShift returns a single shift.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Get(r.Context(), backoffice.ShiftID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// ListShifts returns shifts, newest first.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	var filter backoffice.ShiftFilter
	if b := r.URL.Query().Get("branch"); b != "" {
		branch := backoffice.BranchID(b)
		filter.BranchID = &branch
	}

	shifts, err := h.Shifts.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LockShift closes the shift. Idempotent.
func (h *Handler) LockShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Lock(r.Context(), backoffice.ShiftID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// UnlockShift reopens the shift. Idempotent.
func (h *Handler) UnlockShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Unlock(r.Context(), backoffice.ShiftID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// UpdateShiftBalances replaces the shift's drawer balances.
func (h *Handler) UpdateShiftBalances(w http.ResponseWriter, r *http.Request) {
	var req UpdateBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.Shifts.UpdateBalances(r.Context(), backoffice.ShiftID(chi.URLParam(r, "id")), req.Balances.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// CreateLedger records a drawer adjustment. Rejected when the owning
// shift is locked or doesn't resolve.
func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	var req CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft := backoffice.LedgerDraft{
		ShiftID:   backoffice.ShiftID(req.Shift),
		StaffID:   backoffice.StaffID(req.Staff),
		CreatedBy: backoffice.UserID(actor(r)),
		Amount:    req.Amount,
		Kind:      req.Type,
		Content:   req.Content,
	}

	ledger, err := h.Ledgers.Create(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerDTO(*ledger))
}

// UpdateLedger merges a patch into an entry. All-or-nothing.
func (h *Handler) UpdateLedger(w http.ResponseWriter, r *http.Request) {
	var req UpdateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch backoffice.LedgerPatch
	if req.Staff != nil {
		staff := backoffice.StaffID(*req.Staff)
		patch.StaffID = &staff
	}
	patch.Amount = req.Amount
	patch.Kind = req.Type
	patch.Content = req.Content

	ledger, err := h.Ledgers.Update(r.Context(), backoffice.LedgerID(chi.URLParam(r, "id")), patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTO(*ledger))
}

// DeleteLedger removes an entry and returns the removed record.
func (h *Handler) DeleteLedger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.Ledgers.Remove(r.Context(), backoffice.LedgerID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTO(*ledger))
}

// ListLedgers returns entries, newest first. Never lock-gated.
func (h *Handler) ListLedgers(w http.ResponseWriter, r *http.Request) {
	var filter backoffice.LedgerFilter
	if v := r.URL.Query().Get("shift"); v != "" {
		shift := backoffice.ShiftID(v)
		filter.ShiftID = &shift
	}
	if v := r.URL.Query().Get("staff"); v != "" {
		staff := backoffice.StaffID(v)
		filter.StaffID = &staff
	}

	ledgers, err := h.Ledgers.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTOs(ledgers))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Report returns every ledger entry in an inclusive day range.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	from, err := parseDayValue(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := parseDayValue(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}

	var branch *backoffice.BranchID
	if b := r.URL.Query().Get("branch"); b != "" {
		id := backoffice.BranchID(b)
		branch = &id
	}

	ledgers, err := h.Reports.Report(r.Context(), from, to, branch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTOs(ledgers))
}

// Info returns the ledger entries of the single shift for (date, branch).
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	date, err := parseDayValue(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		writeError(w, http.StatusBadRequest, "branch is required", nil)
		return
	}

	ledgers, err := h.Reports.Info(r.Context(), date, backoffice.BranchID(branch))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTOs(ledgers))
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// ListAudit returns the shift action log.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	var filter backoffice.AuditFilter
	if v := r.URL.Query().Get("shift"); v != "" {
		shift := backoffice.ShiftID(v)
		filter.ShiftID = &shift
	}

	entries, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:     e.ID,
			At:     e.At.Format(time.RFC3339),
			Actor:  e.ActorID,
			Action: string(e.Action),
			Shift:  string(e.ShiftID),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func toShiftDTO(s backoffice.Shift) ShiftDTO {
	return ShiftDTO{
		ID:         string(s.ID),
		Date:       s.Date.String(),
		Branch:     string(s.BranchID),
		BranchName: s.BranchName,
		Lock:       s.Lock,
		Balances: BalancesDTO{
			Cash:             s.Balances.Cash,
			Certificate:      s.Balances.Certificate,
			AdminCash:        s.Balances.AdminCash,
			AdminCertificate: s.Balances.AdminCertificate,
		},
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

func toLedgerDTO(l backoffice.Ledger) LedgerDTO {
	return LedgerDTO{
		ID:            string(l.ID),
		Shift:         string(l.ShiftID),
		Staff:         string(l.StaffID),
		StaffName:     l.StaffName,
		CreatedBy:     string(l.CreatedBy),
		CreatedByName: l.CreatedByName,
		Amount:        l.Amount,
		Type:          l.Kind,
		Content:       l.Content,
		CreatedAt:     l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.Format(time.RFC3339),
	}
}

func toLedgerDTOs(ledgers []backoffice.Ledger) []LedgerDTO {
	dtos := make([]LedgerDTO, len(ledgers))
	for i, l := range ledgers {
		dtos[i] = toLedgerDTO(l)
	}
	return dtos
}

// parseDayValue accepts YYYY-MM-DD or epoch milliseconds, the wire form
// used by older clients.
func parseDayValue(v string) (backoffice.Day, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return backoffice.DayOfUnixMilli(ms), nil
	}
	return backoffice.ParseDay(v)
}

func actor(r *http.Request) string {
	if u := r.Header.Get("X-User"); u != "" {
		return u
	}
	return "system"
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case backoffice.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, backoffice.ErrDuplicateShift):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case backoffice.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
