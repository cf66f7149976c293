/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements backoffice.TxStore plus the read-only directories and the
  audit log using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  backoffice.TxStore:         Shift + ledger persistence, transactions
  backoffice.BranchDirectory: Branch display names
  backoffice.StaffDirectory:  Staff/user display names
  backoffice.AuditLog:        Append-only shift action log

UNIQUENESS ENFORCEMENT:
  idx_shifts_branch_day is a unique compound index on (branch_id, day).
  Two concurrent creates for the same branch and calendar day cannot
  both succeed; the losing insert surfaces as ErrDuplicateShift.

LOCK RE-CHECK:
  Ledger writes run inside WithTx. SQLite serializes writers, so a
  lock flip committed before the write transaction is always visible
  to the re-read the guard performs inside it.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/saigon.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - backoffice/store.go:        Interface definitions
  - backoffice/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lolo266/spa-saigon/backoffice"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Shifts (one per branch per civil day)
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		branch_id TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		cash TEXT NOT NULL DEFAULT '0',
		certificate TEXT NOT NULL DEFAULT '0',
		admin_cash TEXT NOT NULL DEFAULT '0',
		admin_certificate TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: closes the duplicate-shift race. The service's
	-- check-then-insert is advisory; this constraint is atomic.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_branch_day
		ON shifts(branch_id, day);

	CREATE INDEX IF NOT EXISTS idx_shifts_day ON shifts(day);
	CREATE INDEX IF NOT EXISTS idx_shifts_created_at ON shifts(created_at DESC);

	-- Ledger entries (mutable only while the owning shift is open)
	CREATE TABLE IF NOT EXISTS ledgers (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id),
		staff_id TEXT,
		created_by TEXT,
		amount TEXT NOT NULL DEFAULT '0',
		kind TEXT,
		content TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledgers_shift ON ledgers(shift_id);
	CREATE INDEX IF NOT EXISTS idx_ledgers_staff ON ledgers(staff_id);

	-- Directories (owned externally, read-only for the core)
	CREATE TABLE IF NOT EXISTS branches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL
	);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		shift_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_shift ON audit_log(shift_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// SHIFT STORE (backoffice.ShiftStore interface)
// =============================================================================

func (s *Store) InsertShift(ctx context.Context, shift backoffice.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertShift(ctx, s.db, shift)
}

func insertShift(ctx context.Context, db querier, shift backoffice.Shift) error {
	query := `
		INSERT INTO shifts
		(id, day, branch_id, locked, cash, certificate, admin_cash, admin_certificate,
		 version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		shift.ID,
		shift.Date.String(),
		shift.BranchID,
		boolToInt(shift.Lock),
		shift.Balances.Cash.String(),
		shift.Balances.Certificate.String(),
		shift.Balances.AdminCash.String(),
		shift.Balances.AdminCertificate.String(),
		shift.Version,
		shift.CreatedAt.UTC().Format(time.RFC3339Nano),
		shift.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return &backoffice.DuplicateShiftError{BranchID: shift.BranchID, Day: shift.Date}
		}
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

func (s *Store) GetShift(ctx context.Context, id backoffice.ShiftID) (*backoffice.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getShift(ctx, s.db, id)
}

func getShift(ctx context.Context, db querier, id backoffice.ShiftID) (*backoffice.Shift, error) {
	query := shiftSelect + ` WHERE id = ?`
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	shift, err := scanShift(rows)
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) UpdateShift(ctx context.Context, shift backoffice.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateShift(ctx, s.db, shift)
}

func updateShift(ctx context.Context, db querier, shift backoffice.Shift) error {
	query := `
		UPDATE shifts
		SET locked = ?, cash = ?, certificate = ?, admin_cash = ?, admin_certificate = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		boolToInt(shift.Lock),
		shift.Balances.Cash.String(),
		shift.Balances.Certificate.String(),
		shift.Balances.AdminCash.String(),
		shift.Balances.AdminCertificate.String(),
		shift.UpdatedAt.UTC().Format(time.RFC3339Nano),
		shift.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return backoffice.ErrShiftNotFound
	}
	return nil
}

func (s *Store) ListShifts(ctx context.Context, filter backoffice.ShiftFilter) ([]backoffice.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listShifts(ctx, s.db, filter)
}

func listShifts(ctx context.Context, db querier, filter backoffice.ShiftFilter) ([]backoffice.Shift, error) {
	query := shiftSelect
	var args []any
	if filter.BranchID != nil {
		query += ` WHERE branch_id = ?`
		args = append(args, *filter.BranchID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return queryShifts(ctx, db, query, args...)
}

func (s *Store) ShiftsInRange(ctx context.Context, from, to backoffice.Day, branch *backoffice.BranchID) ([]backoffice.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return shiftsInRange(ctx, s.db, from, to, branch)
}

func shiftsInRange(ctx context.Context, db querier, from, to backoffice.Day, branch *backoffice.BranchID) ([]backoffice.Shift, error) {
	query := shiftSelect + ` WHERE day >= ? AND day <= ?`
	args := []any{from.String(), to.String()}
	if branch != nil {
		query += ` AND branch_id = ?`
		args = append(args, *branch)
	}
	query += ` ORDER BY day ASC, created_at ASC`

	return queryShifts(ctx, db, query, args...)
}

const shiftSelect = `
	SELECT id, day, branch_id, locked, cash, certificate, admin_cash, admin_certificate,
	       version, created_at, updated_at
	FROM shifts`

func queryShifts(ctx context.Context, db querier, query string, args ...any) ([]backoffice.Shift, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []backoffice.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func scanShift(rows *sql.Rows) (backoffice.Shift, error) {
	var (
		shift     backoffice.Shift
		day       string
		locked    int
		cash      string
		cert      string
		adminCash string
		adminCert string
		createdAt string
		updatedAt string
	)

	err := rows.Scan(
		&shift.ID, &day, &shift.BranchID, &locked,
		&cash, &cert, &adminCash, &adminCert,
		&shift.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return shift, fmt.Errorf("failed to scan shift: %w", err)
	}

	shift.Date, err = backoffice.ParseDay(day)
	if err != nil {
		return shift, fmt.Errorf("failed to parse shift day: %w", err)
	}
	shift.Lock = locked != 0
	shift.Balances = backoffice.Balances{
		Cash:             mustDecimal(cash),
		Certificate:      mustDecimal(cert),
		AdminCash:        mustDecimal(adminCash),
		AdminCertificate: mustDecimal(adminCert),
	}
	shift.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	shift.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return shift, nil
}

// =============================================================================
// LEDGER STORE (backoffice.LedgerStore interface)
// =============================================================================

func (s *Store) InsertLedger(ctx context.Context, ledger backoffice.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertLedger(ctx, s.db, ledger)
}

func insertLedger(ctx context.Context, db querier, ledger backoffice.Ledger) error {
	query := `
		INSERT INTO ledgers
		(id, shift_id, staff_id, created_by, amount, kind, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		ledger.ID,
		ledger.ShiftID,
		nullString(string(ledger.StaffID)),
		nullString(string(ledger.CreatedBy)),
		ledger.Amount.String(),
		nullString(ledger.Kind),
		nullString(ledger.Content),
		ledger.CreatedAt.UTC().Format(time.RFC3339Nano),
		ledger.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}
	return nil
}

func (s *Store) GetLedger(ctx context.Context, id backoffice.LedgerID) (*backoffice.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLedger(ctx, s.db, id)
}

func getLedger(ctx context.Context, db querier, id backoffice.LedgerID) (*backoffice.Ledger, error) {
	query := ledgerSelect + ` WHERE id = ?`
	rows, err := db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	ledger, err := scanLedger(rows)
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (s *Store) UpdateLedger(ctx context.Context, ledger backoffice.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateLedger(ctx, s.db, ledger)
}

func updateLedger(ctx context.Context, db querier, ledger backoffice.Ledger) error {
	query := `
		UPDATE ledgers
		SET staff_id = ?, amount = ?, kind = ?, content = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := db.ExecContext(ctx, query,
		nullString(string(ledger.StaffID)),
		ledger.Amount.String(),
		nullString(ledger.Kind),
		nullString(ledger.Content),
		ledger.UpdatedAt.UTC().Format(time.RFC3339Nano),
		ledger.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return backoffice.ErrLedgerNotFound
	}
	return nil
}

func (s *Store) DeleteLedger(ctx context.Context, id backoffice.LedgerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteLedger(ctx, s.db, id)
}

func deleteLedger(ctx context.Context, db querier, id backoffice.LedgerID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return backoffice.ErrLedgerNotFound
	}
	return nil
}

func (s *Store) ListLedgers(ctx context.Context, filter backoffice.LedgerFilter) ([]backoffice.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLedgers(ctx, s.db, filter)
}

func listLedgers(ctx context.Context, db querier, filter backoffice.LedgerFilter) ([]backoffice.Ledger, error) {
	query := ledgerSelect
	var conds []string
	var args []any
	if filter.ShiftID != nil {
		conds = append(conds, "shift_id = ?")
		args = append(args, *filter.ShiftID)
	}
	if filter.StaffID != nil {
		conds = append(conds, "staff_id = ?")
		args = append(args, *filter.StaffID)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return queryLedgers(ctx, db, query, args...)
}

func (s *Store) LedgersByShiftIDs(ctx context.Context, ids []backoffice.ShiftID) ([]backoffice.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledgersByShiftIDs(ctx, s.db, ids)
}

func ledgersByShiftIDs(ctx context.Context, db querier, ids []backoffice.ShiftID) ([]backoffice.Ledger, error) {
	if len(ids) == 0 {
		return []backoffice.Ledger{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := ledgerSelect + ` WHERE shift_id IN (` + placeholders + `) ORDER BY created_at ASC, id ASC`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return queryLedgers(ctx, db, query, args...)
}

const ledgerSelect = `
	SELECT id, shift_id, staff_id, created_by, amount, kind, content, created_at, updated_at
	FROM ledgers`

func queryLedgers(ctx context.Context, db querier, query string, args ...any) ([]backoffice.Ledger, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers: %w", err)
	}
	defer rows.Close()

	ledgers := []backoffice.Ledger{}
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, ledger)
	}
	return ledgers, rows.Err()
}

func scanLedger(rows *sql.Rows) (backoffice.Ledger, error) {
	var (
		ledger    backoffice.Ledger
		staffID   sql.NullString
		createdBy sql.NullString
		amount    string
		kind      sql.NullString
		content   sql.NullString
		createdAt string
		updatedAt string
	)

	err := rows.Scan(
		&ledger.ID, &ledger.ShiftID, &staffID, &createdBy,
		&amount, &kind, &content, &createdAt, &updatedAt,
	)
	if err != nil {
		return ledger, fmt.Errorf("failed to scan ledger: %w", err)
	}

	ledger.StaffID = backoffice.StaffID(staffID.String)
	ledger.CreatedBy = backoffice.UserID(createdBy.String)
	ledger.Amount = mustDecimal(amount)
	ledger.Kind = kind.String
	ledger.Content = content.String
	ledger.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	ledger.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return ledger, nil
}

// =============================================================================
// TRANSACTIONAL STORE (backoffice.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The guard's
// lock re-check happens through the txStore view, so it observes any
// lock flip committed before this transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store backoffice.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) InsertShift(ctx context.Context, shift backoffice.Shift) error {
	return insertShift(ctx, ts.tx, shift)
}

func (ts *txStore) GetShift(ctx context.Context, id backoffice.ShiftID) (*backoffice.Shift, error) {
	return getShift(ctx, ts.tx, id)
}

func (ts *txStore) UpdateShift(ctx context.Context, shift backoffice.Shift) error {
	return updateShift(ctx, ts.tx, shift)
}

func (ts *txStore) ListShifts(ctx context.Context, filter backoffice.ShiftFilter) ([]backoffice.Shift, error) {
	return listShifts(ctx, ts.tx, filter)
}

func (ts *txStore) ShiftsInRange(ctx context.Context, from, to backoffice.Day, branch *backoffice.BranchID) ([]backoffice.Shift, error) {
	return shiftsInRange(ctx, ts.tx, from, to, branch)
}

func (ts *txStore) InsertLedger(ctx context.Context, ledger backoffice.Ledger) error {
	return insertLedger(ctx, ts.tx, ledger)
}

func (ts *txStore) GetLedger(ctx context.Context, id backoffice.LedgerID) (*backoffice.Ledger, error) {
	return getLedger(ctx, ts.tx, id)
}

func (ts *txStore) UpdateLedger(ctx context.Context, ledger backoffice.Ledger) error {
	return updateLedger(ctx, ts.tx, ledger)
}

func (ts *txStore) DeleteLedger(ctx context.Context, id backoffice.LedgerID) error {
	return deleteLedger(ctx, ts.tx, id)
}

func (ts *txStore) ListLedgers(ctx context.Context, filter backoffice.LedgerFilter) ([]backoffice.Ledger, error) {
	return listLedgers(ctx, ts.tx, filter)
}

func (ts *txStore) LedgersByShiftIDs(ctx context.Context, ids []backoffice.ShiftID) ([]backoffice.Ledger, error) {
	return ledgersByShiftIDs(ctx, ts.tx, ids)
}

// =============================================================================
// DIRECTORIES (backoffice.BranchDirectory, backoffice.StaffDirectory)
// =============================================================================

// SaveBranch upserts a branch directory entry.
func (s *Store) SaveBranch(ctx context.Context, id backoffice.BranchID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, id, name)
	return err
}

// SaveStaff upserts a staff directory entry.
func (s *Store) SaveStaff(ctx context.Context, id backoffice.StaffID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, id, name)
	return err
}

// SaveUser upserts a user directory entry.
func (s *Store) SaveUser(ctx context.Context, id backoffice.UserID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username
	`, id, username)
	return err
}

func (s *Store) BranchName(ctx context.Context, id backoffice.BranchID) (string, error) {
	return s.lookupName(ctx, `SELECT name FROM branches WHERE id = ?`, string(id))
}

func (s *Store) StaffName(ctx context.Context, id backoffice.StaffID) (string, error) {
	return s.lookupName(ctx, `SELECT name FROM staff WHERE id = ?`, string(id))
}

func (s *Store) Username(ctx context.Context, id backoffice.UserID) (string, error) {
	return s.lookupName(ctx, `SELECT username FROM users WHERE id = ?`, string(id))
}

func (s *Store) lookupName(ctx context.Context, query, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&name)
	if err == sql.ErrNoRows {
		// Unknown id resolves to an empty name, not an error.
		return "", nil
	}
	return name, err
}

// =============================================================================
// AUDIT LOG (backoffice.AuditLog interface)
// =============================================================================

func (s *Store) Append(ctx context.Context, entry backoffice.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, at, actor_id, action, shift_id)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.At.UTC().Format(time.RFC3339Nano),
		nullString(entry.ActorID),
		entry.Action,
		entry.ShiftID,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, filter backoffice.AuditFilter) ([]backoffice.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, at, actor_id, action, shift_id FROM audit_log`
	var conds []string
	var args []any
	if filter.ShiftID != nil {
		conds = append(conds, "shift_id = ?")
		args = append(args, *filter.ShiftID)
	}
	if filter.ActorID != nil {
		conds = append(conds, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []backoffice.AuditEntry{}
	for rows.Next() {
		var (
			entry backoffice.AuditEntry
			at    string
			actor sql.NullString
		)
		if err := rows.Scan(&entry.ID, &at, &actor, &entry.Action, &entry.ShiftID); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.At, _ = time.Parse(time.RFC3339Nano, at)
		entry.ActorID = actor.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
