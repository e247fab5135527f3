package execution

import (
	"fmt"

	"coredb/catalog"
	"coredb/storage/rid"
)

// DeleteExecutor takes the row's exclusive lock — upgrading from the
// shared lock a prior scan already holds when there is one, since the
// lock manager treats a bare LockExclusive call on a row the txn already
// holds shared as a no-op rather than an upgrade — removes its entry from
// every index on the table, then marks the tuple deleted in the heap.
// Grounded in original_source/src/execution/delete_executor.cpp.
type DeleteExecutor struct {
	ctx       *ExecutorContext
	tableName string
	child     Executor

	table *catalog.TableInfo
}

func NewDeleteExecutor(ctx *ExecutorContext, tableName string, child Executor) *DeleteExecutor {
	return &DeleteExecutor{ctx: ctx, tableName: tableName, child: child}
}

func (e *DeleteExecutor) Init() error {
	e.table = e.ctx.Catalog.GetTable(e.tableName)
	if e.table == nil {
		return fmt.Errorf("execution: no such table %q", e.tableName)
	}
	return e.child.Init()
}

func (e *DeleteExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	t, id, err := e.child.Next()
	if err != nil {
		return nil, nil, err
	}

	var lockErr error
	if e.ctx.Txn.HasSharedLock(*id) {
		lockErr = e.ctx.LockManager.LockUpgrade(e.ctx.Txn, *id)
	} else {
		lockErr = e.ctx.LockManager.LockExclusive(e.ctx.Txn, *id)
	}
	if lockErr != nil {
		return nil, nil, lockErr
	}

	for _, idx := range e.ctx.Catalog.GetTableIndexes(e.tableName) {
		key := t.GetValue(e.table.Schema, idx.ColumnIdx)
		idx.Index.Remove(catalog.ValueToIndexKey(key), *id)
	}

	if !e.table.Heap.DeleteTuple(*id) {
		return nil, nil, fmt.Errorf("execution: tuple %v already deleted from table %q", id, e.tableName)
	}
	return t, id, nil
}
