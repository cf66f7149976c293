/*
Package backoffice provides the consistency core of the point-of-sale
back office.

PURPOSE:
  Branches run one work shift per calendar day. Cash-drawer adjustments
  (ledger entries) are recorded against the shift while it is open. Once
  a shift is locked its ledger entries become read-only until it is
  explicitly unlocked.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift:    A lockable daily aggregate per branch, holding balances
  - Ledger:   A single cash/certificate adjustment owned by one Shift
  - Balances: Drawer balances carried by a shift (decimal, never float)
  - IDs:      Type-safe identifiers so shift/ledger/branch ids can't mix

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money values
  2. Type Safety: distinct ID types for each entity
  3. Population: display names (branch, staff, creator) are filled in by
     a read-side step, never stored on the record

SEE ALSO:
  - shifts.go: Shift lifecycle (create, lock, unlock, list, resolve)
  - guard.go:  Lock-gated ledger mutations
  - errors.go: Error taxonomy
*/
package backoffice

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ShiftID string
type LedgerID string
type BranchID string
type StaffID string
type UserID string

// NewID returns a random opaque identifier.
func NewID() string {
	b := make([]byte, 12)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// =============================================================================
// BALANCES - Drawer balances carried by a shift
// =============================================================================

type Balances struct {
	Cash             decimal.Decimal
	Certificate      decimal.Decimal
	AdminCash        decimal.Decimal
	AdminCertificate decimal.Decimal
}

// ZeroBalances returns all-zero balances (the default for a new shift).
func ZeroBalances() Balances {
	return Balances{
		Cash:             decimal.Zero,
		Certificate:      decimal.Zero,
		AdminCash:        decimal.Zero,
		AdminCertificate: decimal.Zero,
	}
}

// =============================================================================
// SHIFT - Lockable daily operating window for one branch
// =============================================================================

// Shift is the daily aggregate. At most one shift exists per
// (branch, calendar day); the store enforces this with an atomic
// uniqueness constraint.
type Shift struct {
	ID       ShiftID
	Date     Day
	BranchID BranchID
	Lock     bool
	Balances Balances

	// Version supports the optimistic re-check that closes the
	// lock-vs-write race. Bumped on every shift update.
	Version int64

	// BranchName is populated on read from the branch directory.
	BranchName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// LEDGER - Cash/certificate adjustment owned by one shift
// =============================================================================

// Ledger is a single drawer adjustment. It is mutable only while its
// owning shift has Lock == false.
type Ledger struct {
	ID      LedgerID
	ShiftID ShiftID

	StaffID   StaffID
	CreatedBy UserID

	// Business fields carried opaquely; the consistency core does not
	// interpret them.
	Amount  decimal.Decimal
	Kind    string
	Content string

	// Populated on read from the staff/user directories.
	StaffName     string
	CreatedByName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerDraft is the input to LedgerGuard.Create.
type LedgerDraft struct {
	ShiftID   ShiftID
	StaffID   StaffID
	CreatedBy UserID
	Amount    decimal.Decimal
	Kind      string
	Content   string
}

// LedgerPatch carries a partial update. Nil fields are left unchanged.
// The patch is applied whole or not at all: a locked shift rejects it
// before any field is written.
type LedgerPatch struct {
	StaffID *StaffID
	Amount  *decimal.Decimal
	Kind    *string
	Content *string
}

func (p LedgerPatch) apply(l *Ledger) {
	if p.StaffID != nil {
		l.StaffID = *p.StaffID
	}
	if p.Amount != nil {
		l.Amount = *p.Amount
	}
	if p.Kind != nil {
		l.Kind = *p.Kind
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
}
