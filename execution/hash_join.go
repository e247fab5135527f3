package execution

import (
	"errors"

	"coredb/catalog"
	"coredb/indexhash"
	"coredb/storage/rid"
)

// HashJoinExecutor builds an ExtendibleHashTable over the outer child's
// join key during Init, then probes it once per inner tuple — the
// executor-layer component that most directly exercises the hash index,
// grounded in original_source/src/execution/hash_join_executor.cpp/.h.
type HashJoinExecutor struct {
	ctx         *ExecutorContext
	outer       Executor
	inner       Executor
	outerSchema *catalog.Schema
	innerSchema *catalog.Schema
	outerKeyIdx int
	innerKeyIdx int

	buildHeap *MemHeap
	index     *indexhash.ExtendibleHashTable

	innerTuple *catalog.Tuple
	matches    []rid.RID
	matchPos   int
}

func NewHashJoinExecutor(ctx *ExecutorContext, outer, inner Executor, outerSchema, innerSchema *catalog.Schema, outerKeyIdx, innerKeyIdx int) *HashJoinExecutor {
	return &HashJoinExecutor{
		ctx: ctx, outer: outer, inner: inner,
		outerSchema: outerSchema, innerSchema: innerSchema,
		outerKeyIdx: outerKeyIdx, innerKeyIdx: innerKeyIdx,
	}
}

func (e *HashJoinExecutor) Init() error {
	if err := e.outer.Init(); err != nil {
		return err
	}
	if err := e.inner.Init(); err != nil {
		return err
	}

	e.buildHeap = NewMemHeap()
	e.index = indexhash.NewExtendibleHashTable(e.ctx.Pool)

	for {
		t, _, err := e.outer.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreTuples) {
				break
			}
			return err
		}
		id, _ := e.buildHeap.InsertTuple(t.Data)
		key := t.GetValue(e.outerSchema, e.outerKeyIdx)
		e.index.Insert(catalog.ValueToIndexKey(key), id)
	}
	return nil
}

func (e *HashJoinExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	for {
		for e.matchPos < len(e.matches) {
			id := e.matches[e.matchPos]
			e.matchPos++

			data, ok := e.buildHeap.GetTuple(id)
			if !ok {
				continue
			}
			outerTuple := &catalog.Tuple{Data: data, RID: id}
			return ConcatTuples(outerTuple, e.innerTuple), nil, nil
		}

		t, _, err := e.inner.Next()
		if err != nil {
			return nil, nil, err
		}
		e.innerTuple = t
		key := t.GetValue(e.innerSchema, e.innerKeyIdx)
		e.matches = e.index.GetValue(catalog.ValueToIndexKey(key))
		e.matchPos = 0
	}
}
