/*
store.go - Persistence interfaces for shifts and ledgers

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage; the
  core only ever talks to these interfaces.

KEY INTERFACES:
  ShiftStore:  Shift records, queryable by id, branch, and day range
  LedgerStore: Ledger records, queryable by id and shift-id set
  TxStore:     Transactional composition of both (atomic re-checks)
  Directories: Read-only id -> display-name lookups for population

UNIQUENESS CONTRACT:
  InsertShift MUST enforce at most one shift per (branch, civil day)
  with an atomic constraint and return ErrDuplicateShift (wrapped in
  DuplicateShiftError) on conflict. A check-then-insert in the service
  layer is advisory only; the constraint is what closes the race.

TRANSACTIONAL CONTRACT:
  Ledger writes run inside WithTx so the owning shift's lock flag can
  be re-read immediately before the write commits. No ledger write may
  commit against a shift whose lock became true strictly before that
  commit.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:     Production SQLite
  - backoffice/store/memory.go: In-memory for testing

SEE ALSO:
  - shifts.go: Uses ShiftStore
  - guard.go:  Uses TxStore
*/
package backoffice

import (
	"context"
	"time"
)

// =============================================================================
// SHIFT STORE
// =============================================================================

// ShiftFilter narrows ListShifts. A nil BranchID means unfiltered.
type ShiftFilter struct {
	BranchID *BranchID
}

type ShiftStore interface {
	// InsertShift persists a new shift. Returns ErrDuplicateShift if a
	// shift already exists for (BranchID, Date).
	InsertShift(ctx context.Context, shift Shift) error

	// GetShift returns the shift or nil when no record exists.
	GetShift(ctx context.Context, id ShiftID) (*Shift, error)

	// UpdateShift persists a full shift record and bumps its version.
	UpdateShift(ctx context.Context, shift Shift) error

	// ListShifts returns shifts in descending creation order.
	ListShifts(ctx context.Context, filter ShiftFilter) ([]Shift, error)

	// ShiftsInRange returns shifts whose date falls in the inclusive
	// day range, optionally restricted to one branch.
	ShiftsInRange(ctx context.Context, from, to Day, branch *BranchID) ([]Shift, error)
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerFilter narrows ListLedgers. Nil fields are unfiltered.
type LedgerFilter struct {
	ShiftID *ShiftID
	StaffID *StaffID
}

type LedgerStore interface {
	InsertLedger(ctx context.Context, ledger Ledger) error

	// GetLedger returns the ledger or nil when no record exists.
	GetLedger(ctx context.Context, id LedgerID) (*Ledger, error)

	UpdateLedger(ctx context.Context, ledger Ledger) error

	DeleteLedger(ctx context.Context, id LedgerID) error

	// ListLedgers returns ledgers in descending creation order.
	ListLedgers(ctx context.Context, filter LedgerFilter) ([]Ledger, error)

	// LedgersByShiftIDs returns every ledger owned by the given shifts.
	// An empty id set yields an empty result, not an error.
	LedgersByShiftIDs(ctx context.Context, ids []ShiftID) ([]Ledger, error)
}

// =============================================================================
// COMPOSED STORE
// =============================================================================

// Store combines shift and ledger persistence.
type Store interface {
	ShiftStore
	LedgerStore
}

// TxStore adds transaction support. The lock re-check in guard.go runs
// inside WithTx.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// DIRECTORIES - Read-only collaborators for display-name population
// =============================================================================

// BranchDirectory resolves branch display names. Unknown ids resolve to
// an empty name, not an error.
type BranchDirectory interface {
	BranchName(ctx context.Context, id BranchID) (string, error)
}

// StaffDirectory resolves staff and acting-user display names.
type StaffDirectory interface {
	StaffName(ctx context.Context, id StaffID) (string, error)
	Username(ctx context.Context, id UserID) (string, error)
}

// =============================================================================
// AUDIT LOG - Tracks privileged shift actions (lock/unlock especially)
// =============================================================================

type AuditAction string

const (
	AuditShiftCreated  AuditAction = "shift_created"
	AuditShiftLocked   AuditAction = "shift_locked"
	AuditShiftUnlocked AuditAction = "shift_unlocked"
)

// AuditEntry records who did what when. Append-only.
type AuditEntry struct {
	ID      string
	At      time.Time
	ActorID string
	Action  AuditAction
	ShiftID ShiftID
}

type AuditFilter struct {
	ShiftID *ShiftID
	ActorID *string
}

type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}
