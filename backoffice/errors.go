/*
errors.go - Centralized error types for the consistency core

PURPOSE:
  All error kinds in one place. The transport layer branches on these
  with errors.Is/errors.As and maps each kind to a user-facing status;
  the core never retries or swallows them.

ERROR CATEGORIES:
  1. NotFound errors  - id doesn't resolve (malformed ids included)
  2. Conflict errors  - uniqueness violation on shift creation
  3. Guard errors     - ledger mutation rejected by the lock invariant

USAGE:
  if errors.Is(err, backoffice.ErrShiftLocked) {
      // reject with 400, nothing was written
  }

SEE ALSO:
  - guard.go:  Raises ErrInvalidShift / ErrShiftLocked
  - shifts.go: Raises ErrDuplicateShift / ErrShiftNotFound
*/
package backoffice

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrShiftNotFound is returned when a shift id is malformed or no
	// record exists. A missing shift for a single-day report surfaces
	// the same kind ("no data") since the caller remedy is identical.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrLedgerNotFound is returned when a ledger id doesn't resolve.
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrDuplicateShift is returned when a shift already exists for the
	// same (branch, calendar day). The store's atomic constraint maps
	// to this kind as well, so the check-then-insert race cannot leak a
	// generic fault.
	ErrDuplicateShift = errors.New("duplicate shift for branch and day")

	// ErrInvalidShift is returned when a ledger draft references a
	// shift that doesn't resolve.
	ErrInvalidShift = errors.New("referenced shift is not valid")

	// ErrShiftLocked is returned when a ledger mutation targets a
	// locked shift. No partial write occurs.
	ErrShiftLocked = errors.New("shift is locked")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateShiftError identifies which (branch, day) pair collided.
type DuplicateShiftError struct {
	BranchID BranchID
	Day      Day
}

func (e *DuplicateShiftError) Error() string {
	return fmt.Sprintf("shift already exists for branch %s on %s", e.BranchID, e.Day)
}

func (e *DuplicateShiftError) Unwrap() error { return ErrDuplicateShift }

// ShiftLockedError identifies the locked shift that rejected a write.
type ShiftLockedError struct {
	ShiftID ShiftID
}

func (e *ShiftLockedError) Error() string {
	return fmt.Sprintf("shift %s is locked; unlock it before editing its ledger", e.ShiftID)
}

func (e *ShiftLockedError) Unwrap() error { return ErrShiftLocked }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound) || errors.Is(err, ErrLedgerNotFound)
}

// IsClientError returns true if the error is permanent and caused by
// the request itself. None of these are retried internally.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrDuplicateShift) ||
		errors.Is(err, ErrInvalidShift) ||
		errors.Is(err, ErrShiftLocked)
}
