// Package execution implements a volcano-style executor layer (Init/Next
// operators) over the buffer pool, the extendible hash index, the lock
// manager and the in-memory catalog, adapted from execution/executor_context.go
// and the sibling executors/ package in the teacher.
package execution

import (
	"coredb/buffer"
	"coredb/catalog"
	"coredb/concurrency/lockmanager"
	"coredb/transaction"
)

// ExecutorContext bundles everything an Executor needs to run: the active
// transaction, the catalog it resolves tables and indexes through, the
// buffer pool backing both table heaps and indexes, and the lock manager
// every row-touching executor acquires locks through.
type ExecutorContext struct {
	Txn         *transaction.Transaction
	Catalog     *catalog.Catalog
	Pool        *buffer.BufferPool
	LockManager *lockmanager.LockManager
}

func NewExecutorContext(txn *transaction.Transaction, cat *catalog.Catalog, pool *buffer.BufferPool, lockMgr *lockmanager.LockManager) *ExecutorContext {
	return &ExecutorContext{Txn: txn, Catalog: cat, Pool: pool, LockManager: lockMgr}
}
