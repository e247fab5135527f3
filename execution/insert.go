package execution

import (
	"fmt"

	"coredb/catalog"
	"coredb/storage/rid"
)

// InsertExecutor inserts each child tuple into the table heap, takes the
// new row's exclusive lock, then inserts the new RID into every index
// defined on the table. Grounded in executors/insert_executor.go
// and original_source/src/execution/insert_executor.cpp.
type InsertExecutor struct {
	ctx       *ExecutorContext
	tableName string
	child     Executor

	table *catalog.TableInfo
}

func NewInsertExecutor(ctx *ExecutorContext, tableName string, child Executor) *InsertExecutor {
	return &InsertExecutor{ctx: ctx, tableName: tableName, child: child}
}

func (e *InsertExecutor) Init() error {
	e.table = e.ctx.Catalog.GetTable(e.tableName)
	if e.table == nil {
		return fmt.Errorf("execution: no such table %q", e.tableName)
	}
	return e.child.Init()
}

// Next inserts one child tuple per call and returns it back out, mirroring
// the teacher's insert executor surfacing each inserted tuple rather than
// a row count.
func (e *InsertExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	t, _, err := e.child.Next()
	if err != nil {
		return nil, nil, err
	}

	id, ok := e.table.Heap.InsertTuple(t.Data)
	if !ok {
		return nil, nil, fmt.Errorf("execution: failed to insert tuple into table %q", e.tableName)
	}

	if err := e.ctx.LockManager.LockExclusive(e.ctx.Txn, id); err != nil {
		return nil, nil, err
	}

	t.RID = id
	for _, idx := range e.ctx.Catalog.GetTableIndexes(e.tableName) {
		key := t.GetValue(e.table.Schema, idx.ColumnIdx)
		idx.Index.Insert(catalog.ValueToIndexKey(key), id)
	}

	return t, &id, nil
}
