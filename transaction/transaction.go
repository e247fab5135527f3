// Package transaction holds the per-transaction state the lock manager and
// executors read and mutate: isolation level, 2PL phase, and the set of
// rows the transaction currently holds locks on.
package transaction

import (
	"sync"
	"sync/atomic"

	"coredb/storage/rid"
)

// TxnID is a monotonically increasing transaction identifier. Wound-wait
// uses the raw numeric ordering: a newer (higher-id) transaction always
// yields to an older one.
type TxnID int64

var nextTxnID int64 = -1 // first call to NewTransaction returns id 0

// State is the transaction's current phase under strict two-phase locking.
type State int

const (
	Growing State = iota
	Shrinking
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Growing:
		return "GROWING"
	case Shrinking:
		return "SHRINKING"
	case Committed:
		return "COMMITTED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsolationLevel controls which lock manager operations are legal. See
// LockManager for the exact per-level rules.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
)

// Transaction is one unit of work against the row-level lock manager. The
// zero value is not usable; build one with NewTransaction.
type Transaction struct {
	id        TxnID
	isolation IsolationLevel

	mu    sync.Mutex
	state State

	sharedLocks    map[rid.RID]struct{}
	exclusiveLocks map[rid.RID]struct{}
}

// NewTransaction allocates a fresh transaction id and starts it in the
// GROWING phase.
func NewTransaction(isolation IsolationLevel) *Transaction {
	id := atomic.AddInt64(&nextTxnID, 1)
	return &Transaction{
		id:             TxnID(id),
		isolation:      isolation,
		state:          Growing,
		sharedLocks:    make(map[rid.RID]struct{}),
		exclusiveLocks: make(map[rid.RID]struct{}),
	}
}

func (t *Transaction) ID() TxnID { return t.id }

func (t *Transaction) IsolationLevel() IsolationLevel { return t.isolation }

func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transaction) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// AddSharedLock and AddExclusiveLock record that the lock manager has
// granted t a lock on row. The lock manager calls these; nothing else
// should.
func (t *Transaction) AddSharedLock(row rid.RID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sharedLocks[row] = struct{}{}
}

func (t *Transaction) AddExclusiveLock(row rid.RID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exclusiveLocks[row] = struct{}{}
}

func (t *Transaction) RemoveSharedLock(row rid.RID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sharedLocks, row)
}

func (t *Transaction) RemoveExclusiveLock(row rid.RID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.exclusiveLocks, row)
}

// HeldRows returns every row this transaction currently holds any lock on,
// for Unlock-all-on-commit/abort cleanup.
func (t *Transaction) HeldRows() []rid.RID {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := make([]rid.RID, 0, len(t.sharedLocks)+len(t.exclusiveLocks))
	for r := range t.sharedLocks {
		rows = append(rows, r)
	}
	for r := range t.exclusiveLocks {
		rows = append(rows, r)
	}
	return rows
}

func (t *Transaction) HasSharedLock(row rid.RID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sharedLocks[row]
	return ok
}

func (t *Transaction) HasExclusiveLock(row rid.RID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.exclusiveLocks[row]
	return ok
}
