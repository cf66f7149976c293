/*
report.go - Ledger reporting across date ranges

PURPOSE:
  Deterministically reconstructs, for an arbitrary date range or a
  single day, exactly the ledger entries belonging to shifts in that
  window. Two sequential store calls: resolve shifts, then join their
  ledgers. No per-entry transform; report consumers need the shift
  linkage intact.

EDGE CASES:
  - Shift exists but has zero ledger entries: success, empty result.
  - No shift for a single-day info query: ErrShiftNotFound ("no data"),
    the same kind as a malformed id since the caller remedy is the same.

SEE ALSO:
  - shifts.go: ResolveRange
  - guard.go:  Writes the entries this reads
*/
package backoffice

import "context"

// Reporter aggregates ledger entries over shifts.
type Reporter struct {
	shifts  *ShiftService
	ledgers LedgerStore
	staff   StaffDirectory
}

func NewReporter(shifts *ShiftService, ledgers LedgerStore, staff StaffDirectory) *Reporter {
	return &Reporter{shifts: shifts, ledgers: ledgers, staff: staff}
}

// Report returns every ledger entry owned by a shift whose date falls
// in the inclusive day range [from, to], optionally restricted to one
// branch. An empty window is success, not an error.
func (r *Reporter) Report(ctx context.Context, from, to Day, branch *BranchID) ([]Ledger, error) {
	ids, err := r.shifts.ResolveRange(ctx, from, to, branch)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Ledger{}, nil
	}
	return r.ledgers.LedgersByShiftIDs(ctx, ids)
}

// Info is the single-day convenience form of Report. It resolves the
// shift for (branch, day-of(date)) and returns its ledger entries with
// staff names populated. Fails with ErrShiftNotFound when no shift
// exists for that day and branch.
func (r *Reporter) Info(ctx context.Context, date Day, branch BranchID) ([]Ledger, error) {
	ids, err := r.shifts.ResolveRange(ctx, date, date, &branch)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		// "No data" for this day/branch.
		return nil, ErrShiftNotFound
	}

	ledgers, err := r.ledgers.LedgersByShiftIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range ledgers {
		r.populate(ctx, &ledgers[i])
	}
	return ledgers, nil
}

func (r *Reporter) populate(ctx context.Context, ledger *Ledger) {
	if r.staff == nil {
		return
	}
	if name, err := r.staff.StaffName(ctx, ledger.StaffID); err == nil {
		ledger.StaffName = name
	}
}
