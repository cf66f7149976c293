/*
guard.go - Lock-gated ledger mutations

PURPOSE:
  Every ledger create/update/delete goes through this guard, so the
  lock check cannot be bypassed by any mutation path. Reads are never
  gated: locked shifts stay fully reportable.

LOCK-VS-WRITE RACE:
  The initial lock check can race against a concurrent Lock() call
  completing before the write lands. The guard therefore re-reads the
  owning shift inside the same store transaction as the write; the
  transaction's isolation guarantees no ledger write commits against a
  shift whose lock became true strictly before that commit.

POPULATION:
  Display fields (staff name, creator username) are filled in after the
  core operation returns. Population stays out of the write path: a
  failed lookup never fails the mutation.

SEE ALSO:
  - shifts.go: The only component that flips the lock flag
  - store.go:  WithTx contract
*/
package backoffice

import (
	"context"
	"time"
)

// LedgerGuard gates every ledger mutation on the owning shift's lock.
type LedgerGuard struct {
	store  TxStore
	shifts *ShiftService
	staff  StaffDirectory

	now   func() time.Time
	newID func() string
}

// NewLedgerGuard wires the guard. staff may be nil; population is then
// skipped.
func NewLedgerGuard(store TxStore, shifts *ShiftService, staff StaffDirectory) *LedgerGuard {
	return &LedgerGuard{
		store:  store,
		shifts: shifts,
		staff:  staff,
		now:    time.Now,
		newID:  NewID,
	}
}

// Create records a new ledger entry against an open shift.
// Fails with ErrInvalidShift if the referenced shift doesn't resolve,
// ErrShiftLocked if it is closed. Nothing is written on failure.
func (g *LedgerGuard) Create(ctx context.Context, draft LedgerDraft) (*Ledger, error) {
	shift, err := g.shifts.Get(ctx, draft.ShiftID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidShift
		}
		return nil, err
	}
	if shift.Lock {
		return nil, &ShiftLockedError{ShiftID: shift.ID}
	}

	now := g.now()
	ledger := Ledger{
		ID:        LedgerID(g.newID()),
		ShiftID:   draft.ShiftID,
		StaffID:   draft.StaffID,
		CreatedBy: draft.CreatedBy,
		Amount:    draft.Amount,
		Kind:      draft.Kind,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = g.store.WithTx(ctx, func(tx Store) error {
		if err := g.recheckLock(ctx, tx, draft.ShiftID); err != nil {
			return err
		}
		return tx.InsertLedger(ctx, ledger)
	})
	if err != nil {
		return nil, err
	}

	g.populate(ctx, &ledger)
	return &ledger, nil
}

// Update merges a patch into an existing ledger entry. The patch is
// rejected in full when the owning shift is locked; no partial field
// writes occur.
func (g *LedgerGuard) Update(ctx context.Context, id LedgerID, patch LedgerPatch) (*Ledger, error) {
	ledger, err := g.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.checkLock(ctx, ledger.ShiftID); err != nil {
		return nil, err
	}

	patch.apply(ledger)
	ledger.UpdatedAt = g.now()

	err = g.store.WithTx(ctx, func(tx Store) error {
		if err := g.recheckLock(ctx, tx, ledger.ShiftID); err != nil {
			return err
		}
		return tx.UpdateLedger(ctx, *ledger)
	})
	if err != nil {
		return nil, err
	}

	g.populate(ctx, ledger)
	return ledger, nil
}

// Remove deletes a ledger entry and returns the removed record so
// callers can show what was deleted.
func (g *LedgerGuard) Remove(ctx context.Context, id LedgerID) (*Ledger, error) {
	ledger, err := g.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.checkLock(ctx, ledger.ShiftID); err != nil {
		return nil, err
	}

	err = g.store.WithTx(ctx, func(tx Store) error {
		if err := g.recheckLock(ctx, tx, ledger.ShiftID); err != nil {
			return err
		}
		return tx.DeleteLedger(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	g.populate(ctx, ledger)
	return ledger, nil
}

// List is a pass-through query. No lock gating: reads are always
// allowed, including on locked shifts.
func (g *LedgerGuard) List(ctx context.Context, filter LedgerFilter) ([]Ledger, error) {
	ledgers, err := g.store.ListLedgers(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range ledgers {
		g.populate(ctx, &ledgers[i])
	}
	return ledgers, nil
}

func (g *LedgerGuard) load(ctx context.Context, id LedgerID) (*Ledger, error) {
	if id == "" {
		return nil, ErrLedgerNotFound
	}
	ledger, err := g.store.GetLedger(ctx, id)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, ErrLedgerNotFound
	}
	return ledger, nil
}

func (g *LedgerGuard) checkLock(ctx context.Context, id ShiftID) error {
	shift, err := g.shifts.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return ErrInvalidShift
		}
		return err
	}
	if shift.Lock {
		return &ShiftLockedError{ShiftID: shift.ID}
	}
	return nil
}

// recheckLock re-validates the lock flag inside the write transaction.
func (g *LedgerGuard) recheckLock(ctx context.Context, tx Store, id ShiftID) error {
	shift, err := tx.GetShift(ctx, id)
	if err != nil {
		return err
	}
	if shift == nil {
		return ErrInvalidShift
	}
	if shift.Lock {
		return &ShiftLockedError{ShiftID: shift.ID}
	}
	return nil
}

func (g *LedgerGuard) populate(ctx context.Context, ledger *Ledger) {
	if g.staff == nil {
		return
	}
	if name, err := g.staff.StaffName(ctx, ledger.StaffID); err == nil {
		ledger.StaffName = name
	}
	if name, err := g.staff.Username(ctx, ledger.CreatedBy); err == nil {
		ledger.CreatedByName = name
	}
}
