package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lolo266/spa-saigon/backoffice"
	"github.com/lolo266/spa-saigon/backoffice/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	mem.AddBranch("b1", "District 1")
	mem.AddStaff("staff-1", "Linh")
	mem.AddUser("alice", "alice")

	shifts := backoffice.NewShiftService(mem, mem, mem)
	ledgers := backoffice.NewLedgerGuard(mem, shifts, mem)
	reports := backoffice.NewReporter(shifts, mem, mem)

	srv := httptest.NewServer(NewRouter(NewHandler(shifts, ledgers, reports, mem)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "alice")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createShift(t *testing.T, srv *httptest.Server, date, branch string) ShiftDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", CreateShiftRequest{Date: date, Branch: branch})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create shift: got status %d, want 201", resp.StatusCode)
	}
	var dto ShiftDTO
	decodeBody(t, resp, &dto)
	return dto
}

// =============================================================================
// SHIFT ENDPOINTS
// =============================================================================

func TestAPI_CreateShift(t *testing.T) {
	srv, _ := newTestServer(t)

	shift := createShift(t, srv, "2024-01-05", "b1")
	if shift.ID == "" {
		t.Error("expected generated shift id")
	}
	if shift.Date != "2024-01-05" {
		t.Errorf("date = %q, want 2024-01-05", shift.Date)
	}
	if shift.BranchName != "District 1" {
		t.Errorf("branch name = %q, want District 1", shift.BranchName)
	}
	if shift.Lock {
		t.Error("new shift must be unlocked")
	}
}

func TestAPI_CreateShift_Duplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", CreateShiftRequest{Date: "2024-01-05", Branch: "b1"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_CreateShift_EpochMillisDate(t *testing.T) {
	srv, _ := newTestServer(t)

	// 2024-01-05T15:30:00Z in epoch milliseconds.
	shift := createShift(t, srv, "1704468600000", "b1")
	if shift.Date != "2024-01-05" {
		t.Errorf("date = %q, want 2024-01-05", shift.Date)
	}
}

func TestAPI_CreateShift_BadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		req  CreateShiftRequest
	}{
		{"missing branch", CreateShiftRequest{Date: "2024-01-05"}},
		{"bad date", CreateShiftRequest{Date: "05/01/2024", Branch: "b1"}},
	}
	for _, tc := range cases {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", tc.req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestAPI_GetShift_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/shifts/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_LockUnlockShift(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/"+shift.ID+"/lock", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock: status = %d, want 200", resp.StatusCode)
	}
	var locked ShiftDTO
	decodeBody(t, resp, &locked)
	if !locked.Lock {
		t.Error("shift should be locked")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/shifts/"+shift.ID+"/unlock", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlock: status = %d, want 200", resp.StatusCode)
	}
	var unlocked ShiftDTO
	decodeBody(t, resp, &unlocked)
	if unlocked.Lock {
		t.Error("shift should be unlocked")
	}
}

// =============================================================================
// LEDGER ENDPOINTS
// =============================================================================

func TestAPI_CreateLedger(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
		"shift": shift.ID, "staff": "staff-1", "amount": "150.50", "type": "expense", "content": "towels",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var dto LedgerDTO
	decodeBody(t, resp, &dto)

	if dto.StaffName != "Linh" {
		t.Errorf("staff name = %q, want Linh", dto.StaffName)
	}
	if dto.CreatedBy != "alice" {
		t.Errorf("created by = %q, want alice (from X-User)", dto.CreatedBy)
	}
	if dto.Amount.String() != "150.5" {
		t.Errorf("amount = %s, want 150.5", dto.Amount)
	}
}

func TestAPI_CreateLedger_LockedShift(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/"+shift.ID+"/lock", nil)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
		"shift": shift.ID, "staff": "staff-1", "amount": "10", "type": "expense", "content": "late entry",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("locked shift write: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_CreateLedger_UnknownShift(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
		"shift": "missing", "staff": "staff-1", "amount": "10", "type": "expense", "content": "orphan",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown shift: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_UpdateAndDeleteLedger(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
		"shift": shift.ID, "staff": "staff-1", "amount": "100", "type": "expense", "content": "supplies",
	})
	var created LedgerDTO
	decodeBody(t, resp, &created)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/ledgers/"+created.ID, map[string]any{
		"content": "cleaning supplies",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", resp.StatusCode)
	}
	var updated LedgerDTO
	decodeBody(t, resp, &updated)
	if updated.Content != "cleaning supplies" {
		t.Errorf("content = %q, want patched value", updated.Content)
	}
	if updated.Amount.String() != "100" {
		t.Errorf("amount = %s, want untouched 100", updated.Amount)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/ledgers/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d, want 200", resp.StatusCode)
	}
	var removed LedgerDTO
	decodeBody(t, resp, &removed)
	if removed.ID != created.ID {
		t.Errorf("delete should echo the removed record, got id %q", removed.ID)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/ledgers/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

func TestAPI_Report(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	for i := 0; i < 2; i++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
			"shift": shift.ID, "staff": "staff-1", "amount": fmt.Sprintf("%d", 10*(i+1)), "type": "expense", "content": "entry",
		})
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports?from=2024-01-01&to=2024-01-31", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []LedgerDTO
	decodeBody(t, resp, &entries)
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}

	// Window with no shifts is an empty success, not an error.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports?from=2025-06-01&to=2025-06-30", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty window: status = %d, want 200", resp.StatusCode)
	}
	var none []LedgerDTO
	decodeBody(t, resp, &none)
	if len(none) != 0 {
		t.Errorf("got %d entries, want 0", len(none))
	}
}

func TestAPI_Info(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/ledgers", map[string]any{
		"shift": shift.ID, "staff": "staff-1", "amount": "75", "type": "expense", "content": "entry",
	})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/info?date=2024-01-05&branch=b1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []LedgerDTO
	decodeBody(t, resp, &entries)
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}

	// No shift for that (day, branch) pair is "no data".
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/info?date=2024-01-06&branch=b1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("no data: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/info?date=2024-01-05", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing branch: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

// =============================================================================
// AUDIT ENDPOINT
// =============================================================================

func TestAPI_Audit(t *testing.T) {
	srv, _ := newTestServer(t)
	shift := createShift(t, srv, "2024-01-05", "b1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/"+shift.ID+"/lock", nil)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/audit?shift="+shift.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []AuditEntryDTO
	decodeBody(t, resp, &entries)
	if len(entries) != 2 {
		t.Fatalf("got %d audit entries, want 2 (created, locked)", len(entries))
	}
	if entries[0].Actor != "alice" {
		t.Errorf("actor = %q, want alice", entries[0].Actor)
	}
	if entries[1].Action != string(backoffice.AuditShiftLocked) {
		t.Errorf("action = %q, want lock", entries[1].Action)
	}
}
