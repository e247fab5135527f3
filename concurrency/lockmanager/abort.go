package lockmanager

import (
	"fmt"

	"coredb/transaction"
)

// AbortReason explains why the lock manager forced a transaction into the
// ABORTED state.
type AbortReason int

const (
	LockOnShrinking AbortReason = iota
	UpgradeConflict
	Deadlock
	LockSharedOnReadUncommitted
)

func (r AbortReason) String() string {
	switch r {
	case LockOnShrinking:
		return "transaction attempted to take a new lock while in the SHRINKING phase"
	case UpgradeConflict:
		return "another transaction is already upgrading its lock on this row"
	case Deadlock:
		return "transaction was wounded to prevent a deadlock"
	case LockSharedOnReadUncommitted:
		return "READ_UNCOMMITTED transactions may not take shared locks"
	default:
		return "unknown abort reason"
	}
}

// AbortError is returned by every lock manager operation that forces the
// calling transaction to abort. Callers must treat it as a signal to roll
// back, not a transient failure to retry.
type AbortError struct {
	TxnID  transaction.TxnID
	Reason AbortReason
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("transaction %d aborted: %s", e.TxnID, e.Reason)
}
