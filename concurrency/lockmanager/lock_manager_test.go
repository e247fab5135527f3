package lockmanager

import (
	"sync"
	"testing"
	"time"

	"coredb/storage/rid"
	"coredb/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockManager_SharedLock_MultipleReadersDoNotBlock(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)

	a := transaction.NewTransaction(transaction.RepeatableRead)
	b := transaction.NewTransaction(transaction.RepeatableRead)

	require.NoError(t, lm.LockShared(a, row))
	require.NoError(t, lm.LockShared(b, row))

	assert.True(t, a.HasSharedLock(row))
	assert.True(t, b.HasSharedLock(row))
}

func TestLockManager_LockShared_ReadUncommittedAborts(t *testing.T) {
	lm := NewLockManager()
	txn := transaction.NewTransaction(transaction.ReadUncommitted)

	err := lm.LockShared(txn, rid.New(1, 0))
	require.Error(t, err)
	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, LockSharedOnReadUncommitted, abortErr.Reason)
	assert.Equal(t, transaction.Aborted, txn.State())
}

func TestLockManager_Lock_OnShrinkingPhaseAborts(t *testing.T) {
	lm := NewLockManager()
	txn := transaction.NewTransaction(transaction.RepeatableRead)
	txn.SetState(transaction.Shrinking)

	err := lm.LockExclusive(txn, rid.New(1, 0))
	require.Error(t, err)
	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, LockOnShrinking, abortErr.Reason)
}

func TestLockManager_Unlock_RepeatableReadMovesToShrinking(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)
	txn := transaction.NewTransaction(transaction.RepeatableRead)

	require.NoError(t, lm.LockShared(txn, row))
	require.True(t, lm.Unlock(txn, row))
	assert.Equal(t, transaction.Shrinking, txn.State())
}

func TestLockManager_Unlock_ReadCommittedSharedDoesNotMoveToShrinking(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)
	txn := transaction.NewTransaction(transaction.ReadCommitted)

	require.NoError(t, lm.LockShared(txn, row))
	require.True(t, lm.Unlock(txn, row))
	assert.Equal(t, transaction.Growing, txn.State())
}

func TestLockManager_LockExclusive_ReentrantForSameTxn(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)
	txn := transaction.NewTransaction(transaction.RepeatableRead)

	require.NoError(t, lm.LockExclusive(txn, row))
	require.NoError(t, lm.LockExclusive(txn, row))
	assert.True(t, txn.HasExclusiveLock(row))
}

func TestLockManager_WoundWait_OlderExclusiveWaiterWoundsYoungerHolder(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)

	older := transaction.NewTransaction(transaction.RepeatableRead)
	younger := transaction.NewTransaction(transaction.RepeatableRead)
	require.Less(t, older.ID(), younger.ID())

	// younger acquires first so that older's request finds younger ahead
	// of it in the queue and wounds it.
	require.NoError(t, lm.LockExclusive(younger, row))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = lm.LockExclusive(older, row)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if younger.State() == transaction.Aborted {
			break
		}
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, transaction.Aborted, younger.State(), "older transaction must wound the younger lock holder")

	lm.Unlock(younger, row)
	wg.Wait()
	assert.True(t, older.HasExclusiveLock(row))
}

func TestLockManager_WoundWait_SurvivesPartialUnlockOfMultiRowHolder(t *testing.T) {
	lm := NewLockManager()
	r1, r2 := rid.New(1, 0), rid.New(2, 0)

	older := transaction.NewTransaction(transaction.RepeatableRead)
	younger := transaction.NewTransaction(transaction.RepeatableRead)
	require.Less(t, older.ID(), younger.ID())

	// younger holds locks on two rows, then gives up the first while still
	// holding the second — it must stay woundable through the second row.
	require.NoError(t, lm.LockExclusive(younger, r1))
	require.NoError(t, lm.LockExclusive(younger, r2))
	require.True(t, lm.Unlock(younger, r1))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = lm.LockExclusive(older, r2)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if younger.State() == transaction.Aborted {
			break
		}
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, transaction.Aborted, younger.State(), "older waiter must still be able to wound younger after it released an unrelated row")

	lm.Unlock(younger, r2)
	wg.Wait()
	assert.True(t, older.HasExclusiveLock(r2))
}

func TestLockManager_LockUpgrade_SharedToExclusive(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)
	txn := transaction.NewTransaction(transaction.RepeatableRead)

	require.NoError(t, lm.LockShared(txn, row))
	require.NoError(t, lm.LockUpgrade(txn, row))

	assert.False(t, txn.HasSharedLock(row))
	assert.True(t, txn.HasExclusiveLock(row))
}

func TestLockManager_LockUpgrade_SecondUpgraderConflicts(t *testing.T) {
	lm := NewLockManager()
	row := rid.New(1, 0)

	a := transaction.NewTransaction(transaction.RepeatableRead)
	b := transaction.NewTransaction(transaction.RepeatableRead)
	require.NoError(t, lm.LockShared(a, row))
	require.NoError(t, lm.LockShared(b, row))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = lm.LockUpgrade(a, row)
	}()

	// give goroutine a moment to register as the upgrader before b tries.
	time.Sleep(20 * time.Millisecond)

	err := lm.LockUpgrade(b, row)
	require.Error(t, err)
	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, UpgradeConflict, abortErr.Reason)

	lm.Unlock(b, row)
	wg.Wait()
}

func TestLockManager_Unlock_UnknownRowReturnsFalse(t *testing.T) {
	lm := NewLockManager()
	txn := transaction.NewTransaction(transaction.RepeatableRead)
	assert.False(t, lm.Unlock(txn, rid.New(9, 9)))
}

func TestLockManager_UnlockAll_ReleasesEveryHeldRow(t *testing.T) {
	lm := NewLockManager()
	txn := transaction.NewTransaction(transaction.RepeatableRead)
	r1, r2 := rid.New(1, 0), rid.New(2, 0)

	require.NoError(t, lm.LockShared(txn, r1))
	require.NoError(t, lm.LockExclusive(txn, r2))

	lm.UnlockAll(txn)
	assert.Empty(t, txn.HeldRows())
}
