// Command coredb demos the storage and transaction core end to end: a
// buffer pool backed by a real disk file, an extendible hash index, a
// catalog-backed table, and a couple of executors reading through the row
// lock manager. Adapted from the teacher's own main.go demo loop.
package main

import (
	"fmt"
	"log"
	"os"

	"coredb/buffer"
	"coredb/catalog"
	"coredb/concurrency/lockmanager"
	"coredb/execution"
	"coredb/storage/disk"
	"coredb/storage/rid"
	"coredb/transaction"
)

func main() {
	const path = "coredb_demo.db"
	defer os.Remove(path)

	diskManager, err := disk.NewManager(path)
	if err != nil {
		log.Fatal(err)
	}
	defer diskManager.Close()

	pool := buffer.NewBufferPool(32, diskManager)
	cat := catalog.NewCatalog(pool)

	schema := catalog.NewSchema([]catalog.Column{
		catalog.NewInt32Column("id"),
		catalog.NewVarcharColumn("name"),
	})
	cat.CreateTable("people", schema, execution.NewMemHeap())

	txn := transaction.NewTransaction(transaction.ReadCommitted)
	lockMgr := lockmanager.NewLockManager()
	ctx := execution.NewExecutorContext(txn, cat, pool, lockMgr)

	names := []string{"ada", "bob", "cora"}
	for i, name := range names {
		tuple, err := catalog.NewTuple([]catalog.Value{
			catalog.NewInt32Value(int32(i + 1)),
			catalog.NewVarcharValue(name),
		}, schema)
		if err != nil {
			log.Fatal(err)
		}
		ins := execution.NewInsertExecutor(ctx, "people", &oneShot{tuple: tuple})
		if err := ins.Init(); err != nil {
			log.Fatal(err)
		}
		if _, _, err := ins.Next(); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := cat.CreateIndex("by_id", "people", 0); err != nil {
		log.Fatal(err)
	}

	fmt.Println("full scan:")
	scan := execution.NewSeqScanExecutor(ctx, "people", nil)
	if err := scan.Init(); err != nil {
		log.Fatal(err)
	}
	for {
		tuple, id, err := scan.Next()
		if err != nil {
			break
		}
		fmt.Printf("  rid=%s id=%d name=%s\n", id, tuple.GetValue(schema, 0).AsInt32(), tuple.GetValue(schema, 1).AsString())
	}

	fmt.Println("index lookup id=2:")
	idxScan := execution.NewIndexScanExecutor(ctx, "people", "by_id", catalog.NewInt32Value(2))
	if err := idxScan.Init(); err != nil {
		log.Fatal(err)
	}
	if tuple, _, err := idxScan.Next(); err == nil {
		fmt.Printf("  found name=%s\n", tuple.GetValue(schema, 1).AsString())
	}

	fmt.Printf("indexes on people: %d\n", len(cat.GetTableIndexes("people")))
}

// oneShot yields a single fixed tuple once, used to feed InsertExecutor a
// pre-built row without a full scan child.
type oneShot struct {
	tuple  *catalog.Tuple
	served bool
}

func (o *oneShot) Init() error {
	o.served = false
	return nil
}

func (o *oneShot) Next() (*catalog.Tuple, *rid.RID, error) {
	if o.served {
		return nil, nil, execution.ErrNoMoreTuples
	}
	o.served = true
	return o.tuple, nil, nil
}
