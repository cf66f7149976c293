package backoffice_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lolo266/spa-saigon/backoffice"
	"github.com/lolo266/spa-saigon/backoffice/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newShiftService(t *testing.T) (*backoffice.ShiftService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.AddBranch("b1", "District 1")
	mem.AddBranch("b2", "District 3")
	return backoffice.NewShiftService(mem, mem, mem), mem
}

func day(y int, m time.Month, d int) backoffice.Day {
	return backoffice.NewDay(y, m, d)
}

// =============================================================================
// UNIQUENESS INVARIANT TESTS
// =============================================================================

func TestShiftService_Create_DuplicateSameDay_Rejected(t *testing.T) {
	// GIVEN: A shift exists for branch b1 on 2024-01-05
	// WHEN: Creating a second shift for b1 on the same calendar day
	// THEN: The create fails with ErrDuplicateShift and exactly one
	//       record exists for (b1, 2024-01-05)

	shifts, mem := newShiftService(t)
	ctx := context.Background()

	_, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	_, err = shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	assert.ErrorIs(t, err, backoffice.ErrDuplicateShift)

	var dupErr *backoffice.DuplicateShiftError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, backoffice.BranchID("b1"), dupErr.BranchID)

	branch := backoffice.BranchID("b1")
	stored, err := mem.ShiftsInRange(ctx, day(2024, time.January, 5), day(2024, time.January, 5), &branch)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestShiftService_Create_SameDayDifferentInstant_Rejected(t *testing.T) {
	// Day bucketing: 2024-01-05T08:00 and 2024-01-05T23:30 are the same
	// civil day, so the second create must still collide.

	shifts, _ := newShiftService(t)
	ctx := context.Background()

	morning := backoffice.DayOf(time.Date(2024, time.January, 5, 8, 0, 0, 0, time.UTC))
	night := backoffice.DayOf(time.Date(2024, time.January, 5, 23, 30, 0, 0, time.UTC))

	_, err := shifts.Create(ctx, morning, "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	_, err = shifts.Create(ctx, night, "b1", backoffice.ZeroBalances(), "admin")
	assert.ErrorIs(t, err, backoffice.ErrDuplicateShift)
}

func TestShiftService_Create_DifferentBranchOrDay_Allowed(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	_, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	// Same day, different branch
	_, err = shifts.Create(ctx, day(2024, time.January, 5), "b2", backoffice.ZeroBalances(), "admin")
	assert.NoError(t, err)

	// Same branch, next day
	_, err = shifts.Create(ctx, day(2024, time.January, 6), "b1", backoffice.ZeroBalances(), "admin")
	assert.NoError(t, err)
}

func TestShiftService_Create_StoreConstraintClosesRace(t *testing.T) {
	// The service's pre-check is advisory; a direct insert that slips
	// past it must still be rejected by the store's constraint.

	_, mem := newShiftService(t)
	ctx := context.Background()

	shift := backoffice.Shift{ID: "s1", Date: day(2024, time.March, 1), BranchID: "b1"}
	require.NoError(t, mem.InsertShift(ctx, shift))

	rival := backoffice.Shift{ID: "s2", Date: day(2024, time.March, 1), BranchID: "b1"}
	err := mem.InsertShift(ctx, rival)
	assert.ErrorIs(t, err, backoffice.ErrDuplicateShift)
}

// =============================================================================
// LOCK LIFECYCLE TESTS
// =============================================================================

func TestShiftService_Lock_Idempotent(t *testing.T) {
	// lock(lock(S)) == lock(S): the second flip is a no-op, not an error.

	shifts, _ := newShiftService(t)
	ctx := context.Background()

	shift, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	locked, err := shifts.Lock(ctx, shift.ID, "admin")
	require.NoError(t, err)
	assert.True(t, locked.Lock)

	lockedAgain, err := shifts.Lock(ctx, shift.ID, "admin")
	require.NoError(t, err)
	assert.True(t, lockedAgain.Lock)
	assert.Equal(t, locked.Version, lockedAgain.Version, "no-op lock must not bump the version")

	unlocked, err := shifts.Unlock(ctx, shift.ID, "admin")
	require.NoError(t, err)
	assert.False(t, unlocked.Lock)

	unlockedAgain, err := shifts.Unlock(ctx, shift.ID, "admin")
	require.NoError(t, err)
	assert.False(t, unlockedAgain.Lock)
	assert.Equal(t, unlocked.Version, unlockedAgain.Version)
}

func TestShiftService_Lock_UnknownShift_NotFound(t *testing.T) {
	shifts, _ := newShiftService(t)

	_, err := shifts.Lock(context.Background(), "missing", "admin")
	assert.ErrorIs(t, err, backoffice.ErrShiftNotFound)
}

func TestShiftService_Get_BlankID_NotFound(t *testing.T) {
	shifts, _ := newShiftService(t)

	_, err := shifts.Get(context.Background(), "")
	assert.ErrorIs(t, err, backoffice.ErrShiftNotFound)
}

func TestShiftService_Get_PopulatesBranchName(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	created, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "District 1", created.BranchName)

	got, err := shifts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "District 1", got.BranchName)
}

func TestShiftService_UpdateBalances(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	shift, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	updated, err := shifts.UpdateBalances(ctx, shift.ID, backoffice.Balances{
		Cash:             decimal.NewFromInt(1500),
		Certificate:      decimal.NewFromInt(200),
		AdminCash:        decimal.NewFromInt(100),
		AdminCertificate: decimal.Zero,
	})
	require.NoError(t, err)
	assert.True(t, updated.Balances.Cash.Equal(decimal.NewFromInt(1500)))

	got, err := shifts.Get(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, got.Balances.Certificate.Equal(decimal.NewFromInt(200)))
}

// =============================================================================
// LIST AND RANGE TESTS
// =============================================================================

func TestShiftService_List_NewestFirst_BranchFilter(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	first, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	second, err := shifts.Create(ctx, day(2024, time.January, 6), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	_, err = shifts.Create(ctx, day(2024, time.January, 6), "b2", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	all, err := shifts.List(ctx, backoffice.ShiftFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	branch := backoffice.BranchID("b1")
	filtered, err := shifts.List(ctx, backoffice.ShiftFilter{BranchID: &branch})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, second.ID, filtered[0].ID, "descending creation order")
	assert.Equal(t, first.ID, filtered[1].ID)
}

func TestShiftService_ResolveRange_InclusiveBounds(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	before, err := shifts.Create(ctx, day(2024, time.January, 4), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	onFrom, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	onTo, err := shifts.Create(ctx, day(2024, time.January, 7), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	after, err := shifts.Create(ctx, day(2024, time.January, 8), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	ids, err := shifts.ResolveRange(ctx, day(2024, time.January, 5), day(2024, time.January, 7), nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []backoffice.ShiftID{onFrom.ID, onTo.ID}, ids)
	assert.NotContains(t, ids, before.ID)
	assert.NotContains(t, ids, after.ID)
}

func TestShiftService_ResolveRange_BranchScoped(t *testing.T) {
	shifts, _ := newShiftService(t)
	ctx := context.Background()

	b1Shift, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)
	_, err = shifts.Create(ctx, day(2024, time.January, 5), "b2", backoffice.ZeroBalances(), "admin")
	require.NoError(t, err)

	branch := backoffice.BranchID("b1")
	ids, err := shifts.ResolveRange(ctx, day(2024, time.January, 1), day(2024, time.January, 31), &branch)
	require.NoError(t, err)
	assert.Equal(t, []backoffice.ShiftID{b1Shift.ID}, ids)
}

// =============================================================================
// AUDIT TESTS
// =============================================================================

func TestShiftService_AuditTrail(t *testing.T) {
	// Create, lock, and unlock each leave an audit entry naming the actor.

	shifts, mem := newShiftService(t)
	ctx := context.Background()

	shift, err := shifts.Create(ctx, day(2024, time.January, 5), "b1", backoffice.ZeroBalances(), "alice")
	require.NoError(t, err)
	_, err = shifts.Lock(ctx, shift.ID, "alice")
	require.NoError(t, err)
	_, err = shifts.Unlock(ctx, shift.ID, "bob")
	require.NoError(t, err)

	entries, err := mem.Query(ctx, backoffice.AuditFilter{ShiftID: &shift.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, backoffice.AuditShiftCreated, entries[0].Action)
	assert.Equal(t, backoffice.AuditShiftLocked, entries[1].Action)
	assert.Equal(t, backoffice.AuditShiftUnlocked, entries[2].Action)
	assert.Equal(t, "bob", entries[2].ActorID)
}
