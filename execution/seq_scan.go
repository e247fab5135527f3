package execution

import (
	"fmt"

	"coredb/catalog"
	"coredb/storage/rid"
	"coredb/transaction"
)

// SeqScanExecutor walks a table's heap tuple by tuple, taking the row's
// shared lock first under READ_COMMITTED/REPEATABLE_READ (READ_UNCOMMITTED
// skips locking entirely, since the lock manager's LockShared aborts a
// READ_UNCOMMITTED transaction),
// grounded in executors/seq_scan.go.
type SeqScanExecutor struct {
	ctx       *ExecutorContext
	tableName string
	predicate Predicate

	schema *catalog.Schema
	iter   catalog.TableHeapIterator
}

func NewSeqScanExecutor(ctx *ExecutorContext, tableName string, predicate Predicate) *SeqScanExecutor {
	return &SeqScanExecutor{ctx: ctx, tableName: tableName, predicate: predicate}
}

func (e *SeqScanExecutor) Init() error {
	table := e.ctx.Catalog.GetTable(e.tableName)
	if table == nil {
		return fmt.Errorf("execution: no such table %q", e.tableName)
	}
	e.schema = table.Schema
	e.iter = table.Heap.Iterator()
	return nil
}

func (e *SeqScanExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	for {
		id, data, ok := e.iter.Next()
		if !ok {
			return nil, nil, ErrNoMoreTuples
		}

		if e.ctx.Txn.IsolationLevel() != transaction.ReadUncommitted {
			if err := e.ctx.LockManager.LockShared(e.ctx.Txn, id); err != nil {
				return nil, nil, err
			}
		}

		t := &catalog.Tuple{Data: data, RID: id}
		if e.predicate != nil && !e.predicate(t, e.schema) {
			continue
		}
		return t, &id, nil
	}
}
