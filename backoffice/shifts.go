/*
shifts.go - Shift lifecycle management

PURPOSE:
  Creates, locks, and unlocks shifts, enforcing one shift per branch
  per calendar day. The lock flag is the single shared mutable resource
  of the whole core: only this service flips it, everything else reads.

UNIQUENESS:
  Create performs an advisory duplicate check first (so the common case
  fails fast with context), then relies on the store's atomic constraint
  for the concurrent case. Both paths surface ErrDuplicateShift.

IDEMPOTENCE:
  Lock and Unlock are idempotent flips. Locking a locked shift is a
  no-op returning the same state, not an error.

SEE ALSO:
  - guard.go:  Reads the lock flag before every ledger mutation
  - report.go: Uses ResolveRange to join ledgers per date range
*/
package backoffice

import (
	"context"
	"log"
	"time"
)

// ShiftService owns shift lifecycle and locking.
type ShiftService struct {
	store    TxStore
	branches BranchDirectory
	audit    AuditLog

	now   func() time.Time
	newID func() string
}

// NewShiftService wires the service. branches and audit may be nil;
// population and auditing are then skipped.
func NewShiftService(store TxStore, branches BranchDirectory, audit AuditLog) *ShiftService {
	return &ShiftService{
		store:    store,
		branches: branches,
		audit:    audit,
		now:      time.Now,
		newID:    NewID,
	}
}

// Create opens a new shift for (branch, day-of(date)) with the given
// opening balances. Fails with ErrDuplicateShift if one already exists
// for that branch and calendar day.
func (s *ShiftService) Create(ctx context.Context, date Day, branch BranchID, balances Balances, actor string) (*Shift, error) {
	// Advisory pre-check; the insert constraint is authoritative.
	existing, err := s.store.ShiftsInRange(ctx, date, date, &branch)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &DuplicateShiftError{BranchID: branch, Day: date}
	}

	now := s.now()
	shift := Shift{
		ID:        ShiftID(s.newID()),
		Date:      date,
		BranchID:  branch,
		Balances:  balances,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertShift(ctx, shift); err != nil {
		return nil, err
	}

	s.writeAudit(ctx, actor, AuditShiftCreated, shift.ID)
	s.populate(ctx, &shift)
	return &shift, nil
}

// Get resolves a shift by id. A blank or unknown id is ErrShiftNotFound.
func (s *ShiftService) Get(ctx context.Context, id ShiftID) (*Shift, error) {
	if id == "" {
		return nil, ErrShiftNotFound
	}
	shift, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	s.populate(ctx, shift)
	return shift, nil
}

// Lock closes the shift; its ledger entries become read-only.
func (s *ShiftService) Lock(ctx context.Context, id ShiftID, actor string) (*Shift, error) {
	return s.setLock(ctx, id, true, actor)
}

// Unlock reopens the shift. Privileged; the action is audited.
func (s *ShiftService) Unlock(ctx context.Context, id ShiftID, actor string) (*Shift, error) {
	return s.setLock(ctx, id, false, actor)
}

func (s *ShiftService) setLock(ctx context.Context, id ShiftID, locked bool, actor string) (*Shift, error) {
	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.Lock == locked {
		// Idempotent: flipping to the current state is a no-op.
		return shift, nil
	}

	shift.Lock = locked
	shift.UpdatedAt = s.now()
	if err := s.store.UpdateShift(ctx, *shift); err != nil {
		return nil, err
	}
	shift.Version++

	action := AuditShiftLocked
	if !locked {
		action = AuditShiftUnlocked
	}
	s.writeAudit(ctx, actor, action, shift.ID)
	return shift, nil
}

// UpdateBalances replaces the shift's drawer balances.
func (s *ShiftService) UpdateBalances(ctx context.Context, id ShiftID, balances Balances) (*Shift, error) {
	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shift.Balances = balances
	shift.UpdatedAt = s.now()
	if err := s.store.UpdateShift(ctx, *shift); err != nil {
		return nil, err
	}
	shift.Version++
	return shift, nil
}

// List returns shifts in descending creation order, optionally filtered
// by branch.
func (s *ShiftService) List(ctx context.Context, filter ShiftFilter) ([]Shift, error) {
	shifts, err := s.store.ListShifts(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range shifts {
		s.populate(ctx, &shifts[i])
	}
	return shifts, nil
}

// ResolveRange returns the ids of every shift whose date falls in the
// inclusive day range [from, to], optionally restricted to one branch.
func (s *ShiftService) ResolveRange(ctx context.Context, from, to Day, branch *BranchID) ([]ShiftID, error) {
	shifts, err := s.store.ShiftsInRange(ctx, from, to, branch)
	if err != nil {
		return nil, err
	}
	ids := make([]ShiftID, len(shifts))
	for i, shift := range shifts {
		ids[i] = shift.ID
	}
	return ids, nil
}

func (s *ShiftService) populate(ctx context.Context, shift *Shift) {
	if s.branches == nil {
		return
	}
	name, err := s.branches.BranchName(ctx, shift.BranchID)
	if err != nil {
		return
	}
	shift.BranchName = name
}

func (s *ShiftService) writeAudit(ctx context.Context, actor string, action AuditAction, id ShiftID) {
	if s.audit == nil {
		return
	}
	entry := AuditEntry{
		ID:      s.newID(),
		At:      s.now(),
		ActorID: actor,
		Action:  action,
		ShiftID: id,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		// Auditing never fails the operation itself.
		log.Printf("audit append failed: %v", err)
	}
}
