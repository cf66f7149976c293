// Package store provides backoffice.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/lolo266/spa-saigon/backoffice"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type branchDay struct {
	Branch backoffice.BranchID
	Day    string
}

type Memory struct {
	mu sync.RWMutex

	shifts      map[backoffice.ShiftID]backoffice.Shift
	shiftOrder  []backoffice.ShiftID
	byBranchDay map[branchDay]backoffice.ShiftID

	ledgers     map[backoffice.LedgerID]backoffice.Ledger
	ledgerOrder []backoffice.LedgerID

	branches map[backoffice.BranchID]string
	staff    map[backoffice.StaffID]string
	users    map[backoffice.UserID]string

	auditEntries []backoffice.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		shifts:      make(map[backoffice.ShiftID]backoffice.Shift),
		byBranchDay: make(map[branchDay]backoffice.ShiftID),
		ledgers:     make(map[backoffice.LedgerID]backoffice.Ledger),
		branches:    make(map[backoffice.BranchID]string),
		staff:       make(map[backoffice.StaffID]string),
		users:       make(map[backoffice.UserID]string),
	}
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Memory) InsertShift(_ context.Context, shift backoffice.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertShiftLocked(shift)
}

func (m *Memory) insertShiftLocked(shift backoffice.Shift) error {
	key := branchDay{Branch: shift.BranchID, Day: shift.Date.String()}
	if _, exists := m.byBranchDay[key]; exists {
		return &backoffice.DuplicateShiftError{BranchID: shift.BranchID, Day: shift.Date}
	}
	m.shifts[shift.ID] = shift
	m.shiftOrder = append(m.shiftOrder, shift.ID)
	m.byBranchDay[key] = shift.ID
	return nil
}

func (m *Memory) GetShift(_ context.Context, id backoffice.ShiftID) (*backoffice.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getShiftLocked(id), nil
}

func (m *Memory) getShiftLocked(id backoffice.ShiftID) *backoffice.Shift {
	shift, ok := m.shifts[id]
	if !ok {
		return nil
	}
	return &shift
}

func (m *Memory) UpdateShift(_ context.Context, shift backoffice.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateShiftLocked(shift)
}

func (m *Memory) updateShiftLocked(shift backoffice.Shift) error {
	existing, ok := m.shifts[shift.ID]
	if !ok {
		return backoffice.ErrShiftNotFound
	}
	shift.Version = existing.Version + 1
	m.shifts[shift.ID] = shift
	return nil
}

func (m *Memory) ListShifts(_ context.Context, filter backoffice.ShiftFilter) ([]backoffice.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first: reverse insertion order.
	result := make([]backoffice.Shift, 0, len(m.shiftOrder))
	for i := len(m.shiftOrder) - 1; i >= 0; i-- {
		shift := m.shifts[m.shiftOrder[i]]
		if filter.BranchID != nil && shift.BranchID != *filter.BranchID {
			continue
		}
		result = append(result, shift)
	}
	return result, nil
}

func (m *Memory) ShiftsInRange(_ context.Context, from, to backoffice.Day, branch *backoffice.BranchID) ([]backoffice.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shiftsInRangeLocked(from, to, branch), nil
}

func (m *Memory) shiftsInRangeLocked(from, to backoffice.Day, branch *backoffice.BranchID) []backoffice.Shift {
	var result []backoffice.Shift
	for _, id := range m.shiftOrder {
		shift := m.shifts[id]
		if branch != nil && shift.BranchID != *branch {
			continue
		}
		if shift.Date.InRange(from, to) {
			result = append(result, shift)
		}
	}
	return result
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) InsertLedger(_ context.Context, ledger backoffice.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLedgerLocked(ledger)
}

func (m *Memory) insertLedgerLocked(ledger backoffice.Ledger) error {
	m.ledgers[ledger.ID] = ledger
	m.ledgerOrder = append(m.ledgerOrder, ledger.ID)
	return nil
}

func (m *Memory) GetLedger(_ context.Context, id backoffice.LedgerID) (*backoffice.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ledger, ok := m.ledgers[id]
	if !ok {
		return nil, nil
	}
	return &ledger, nil
}

func (m *Memory) UpdateLedger(_ context.Context, ledger backoffice.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLedgerLocked(ledger)
}

func (m *Memory) updateLedgerLocked(ledger backoffice.Ledger) error {
	if _, ok := m.ledgers[ledger.ID]; !ok {
		return backoffice.ErrLedgerNotFound
	}
	m.ledgers[ledger.ID] = ledger
	return nil
}

func (m *Memory) DeleteLedger(_ context.Context, id backoffice.LedgerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLedgerLocked(id)
}

func (m *Memory) deleteLedgerLocked(id backoffice.LedgerID) error {
	if _, ok := m.ledgers[id]; !ok {
		return backoffice.ErrLedgerNotFound
	}
	delete(m.ledgers, id)
	for i, lid := range m.ledgerOrder {
		if lid == id {
			m.ledgerOrder = append(m.ledgerOrder[:i], m.ledgerOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListLedgers(_ context.Context, filter backoffice.LedgerFilter) ([]backoffice.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]backoffice.Ledger, 0, len(m.ledgerOrder))
	for i := len(m.ledgerOrder) - 1; i >= 0; i-- {
		ledger := m.ledgers[m.ledgerOrder[i]]
		if filter.ShiftID != nil && ledger.ShiftID != *filter.ShiftID {
			continue
		}
		if filter.StaffID != nil && ledger.StaffID != *filter.StaffID {
			continue
		}
		result = append(result, ledger)
	}
	return result, nil
}

func (m *Memory) LedgersByShiftIDs(_ context.Context, ids []backoffice.ShiftID) ([]backoffice.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[backoffice.ShiftID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	result := []backoffice.Ledger{}
	for _, id := range m.ledgerOrder {
		ledger := m.ledgers[id]
		if want[ledger.ShiftID] {
			result = append(result, ledger)
		}
	}
	return result, nil
}

// =============================================================================
// TRANSACTIONS - Simulated with snapshot + rollback on error
// =============================================================================

func (m *Memory) WithTx(_ context.Context, fn func(backoffice.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txMemoryView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	shifts      map[backoffice.ShiftID]backoffice.Shift
	shiftOrder  []backoffice.ShiftID
	byBranchDay map[branchDay]backoffice.ShiftID
	ledgers     map[backoffice.LedgerID]backoffice.Ledger
	ledgerOrder []backoffice.LedgerID
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		shifts:      make(map[backoffice.ShiftID]backoffice.Shift, len(m.shifts)),
		byBranchDay: make(map[branchDay]backoffice.ShiftID, len(m.byBranchDay)),
		ledgers:     make(map[backoffice.LedgerID]backoffice.Ledger, len(m.ledgers)),
	}
	for k, v := range m.shifts {
		s.shifts[k] = v
	}
	for k, v := range m.byBranchDay {
		s.byBranchDay[k] = v
	}
	for k, v := range m.ledgers {
		s.ledgers[k] = v
	}
	s.shiftOrder = append([]backoffice.ShiftID{}, m.shiftOrder...)
	s.ledgerOrder = append([]backoffice.LedgerID{}, m.ledgerOrder...)
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.shifts = s.shifts
	m.shiftOrder = s.shiftOrder
	m.byBranchDay = s.byBranchDay
	m.ledgers = s.ledgers
	m.ledgerOrder = s.ledgerOrder
}

// txMemoryView runs inside WithTx while the parent's lock is held, so
// it must use the unlocked helpers.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) InsertShift(_ context.Context, shift backoffice.Shift) error {
	return tv.parent.insertShiftLocked(shift)
}

func (tv *txMemoryView) GetShift(_ context.Context, id backoffice.ShiftID) (*backoffice.Shift, error) {
	return tv.parent.getShiftLocked(id), nil
}

func (tv *txMemoryView) UpdateShift(_ context.Context, shift backoffice.Shift) error {
	return tv.parent.updateShiftLocked(shift)
}

func (tv *txMemoryView) ListShifts(_ context.Context, filter backoffice.ShiftFilter) ([]backoffice.Shift, error) {
	var result []backoffice.Shift
	for i := len(tv.parent.shiftOrder) - 1; i >= 0; i-- {
		shift := tv.parent.shifts[tv.parent.shiftOrder[i]]
		if filter.BranchID != nil && shift.BranchID != *filter.BranchID {
			continue
		}
		result = append(result, shift)
	}
	return result, nil
}

func (tv *txMemoryView) ShiftsInRange(_ context.Context, from, to backoffice.Day, branch *backoffice.BranchID) ([]backoffice.Shift, error) {
	return tv.parent.shiftsInRangeLocked(from, to, branch), nil
}

func (tv *txMemoryView) InsertLedger(_ context.Context, ledger backoffice.Ledger) error {
	return tv.parent.insertLedgerLocked(ledger)
}

func (tv *txMemoryView) GetLedger(_ context.Context, id backoffice.LedgerID) (*backoffice.Ledger, error) {
	ledger, ok := tv.parent.ledgers[id]
	if !ok {
		return nil, nil
	}
	return &ledger, nil
}

func (tv *txMemoryView) UpdateLedger(_ context.Context, ledger backoffice.Ledger) error {
	return tv.parent.updateLedgerLocked(ledger)
}

func (tv *txMemoryView) DeleteLedger(_ context.Context, id backoffice.LedgerID) error {
	return tv.parent.deleteLedgerLocked(id)
}

func (tv *txMemoryView) ListLedgers(_ context.Context, filter backoffice.LedgerFilter) ([]backoffice.Ledger, error) {
	var result []backoffice.Ledger
	for i := len(tv.parent.ledgerOrder) - 1; i >= 0; i-- {
		ledger := tv.parent.ledgers[tv.parent.ledgerOrder[i]]
		if filter.ShiftID != nil && ledger.ShiftID != *filter.ShiftID {
			continue
		}
		if filter.StaffID != nil && ledger.StaffID != *filter.StaffID {
			continue
		}
		result = append(result, ledger)
	}
	return result, nil
}

func (tv *txMemoryView) LedgersByShiftIDs(_ context.Context, ids []backoffice.ShiftID) ([]backoffice.Ledger, error) {
	want := make(map[backoffice.ShiftID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	result := []backoffice.Ledger{}
	for _, id := range tv.parent.ledgerOrder {
		ledger := tv.parent.ledgers[id]
		if want[ledger.ShiftID] {
			result = append(result, ledger)
		}
	}
	return result, nil
}

// =============================================================================
// DIRECTORIES - Seeded lookups for population
// =============================================================================

func (m *Memory) AddBranch(id backoffice.BranchID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[id] = name
}

func (m *Memory) AddStaff(id backoffice.StaffID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff[id] = name
}

func (m *Memory) AddUser(id backoffice.UserID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = username
}

func (m *Memory) BranchName(_ context.Context, id backoffice.BranchID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.branches[id], nil
}

func (m *Memory) StaffName(_ context.Context, id backoffice.StaffID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.staff[id], nil
}

func (m *Memory) Username(_ context.Context, id backoffice.UserID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id], nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) Append(_ context.Context, entry backoffice.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditEntries = append(m.auditEntries, entry)
	return nil
}

func (m *Memory) Query(_ context.Context, filter backoffice.AuditFilter) ([]backoffice.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []backoffice.AuditEntry{}
	for _, entry := range m.auditEntries {
		if filter.ShiftID != nil && entry.ShiftID != *filter.ShiftID {
			continue
		}
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}
