package execution

import (
	"coredb/catalog"
	"coredb/indexhash"
	"coredb/storage/rid"

	"github.com/cespare/xxhash/v2"
)

// DistinctExecutor deduplicates its child's output using an
// ExtendibleHashTable keyed by a content hash of each tuple's inlined
// bytes — a second, distinct exerciser of the hash index from
// HashJoinExecutor's build side. Grounded in
// original_source/src/execution/distinct_executor.cpp.
type DistinctExecutor struct {
	ctx   *ExecutorContext
	child Executor

	seen *indexhash.ExtendibleHashTable
}

func NewDistinctExecutor(ctx *ExecutorContext, child Executor) *DistinctExecutor {
	return &DistinctExecutor{ctx: ctx, child: child}
}

func (e *DistinctExecutor) Init() error {
	e.seen = indexhash.NewExtendibleHashTable(e.ctx.Pool)
	return e.child.Init()
}

// contentKey folds a tuple's bytes down to the hash table's 8-byte key via
// xxhash, the same downcast-for-key trick the index itself uses internally.
func contentKey(data []byte) indexhash.Key {
	var k indexhash.Key
	digest := xxhash.Sum64(data)
	for i := 0; i < 8; i++ {
		k[i] = byte(digest >> (8 * i))
	}
	return k
}

func (e *DistinctExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	for {
		t, id, err := e.child.Next()
		if err != nil {
			return nil, nil, err
		}

		key := contentKey(t.Data)
		if len(e.seen.GetValue(key)) > 0 {
			continue
		}
		e.seen.Insert(key, rid.RID{})
		return t, id, nil
	}
}
