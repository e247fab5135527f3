package execution

import (
	"errors"

	"coredb/catalog"
	"coredb/storage/rid"
)

// NestedLoopJoinExecutor is the naive double loop: for every left tuple,
// rescan the entire right child and emit every pair the predicate accepts.
// Grounded in executors/nested_loop_join.go and
// original_source/src/execution/nested_loop_join_executor.cpp.
type NestedLoopJoinExecutor struct {
	left, right Executor
	predicate   JoinPredicate
	leftSchema  *catalog.Schema
	rightSchema *catalog.Schema

	leftTuple *catalog.Tuple
	exhausted bool
}

func NewNestedLoopJoinExecutor(left, right Executor, leftSchema, rightSchema *catalog.Schema, predicate JoinPredicate) *NestedLoopJoinExecutor {
	return &NestedLoopJoinExecutor{left: left, right: right, leftSchema: leftSchema, rightSchema: rightSchema, predicate: predicate}
}

func (e *NestedLoopJoinExecutor) Init() error {
	if err := e.left.Init(); err != nil {
		return err
	}
	return e.right.Init()
}

func (e *NestedLoopJoinExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	if e.exhausted {
		return nil, nil, ErrNoMoreTuples
	}

	for {
		if e.leftTuple == nil {
			lt, _, err := e.left.Next()
			if err != nil {
				e.exhausted = true
				return nil, nil, ErrNoMoreTuples
			}
			e.leftTuple = lt
		}

		rt, _, err := e.right.Next()
		if err != nil {
			if !errors.Is(err, ErrNoMoreTuples) {
				return nil, nil, err
			}
			// Right side exhausted for this left tuple: reset it and
			// advance to the next left tuple.
			if err := e.right.Init(); err != nil {
				return nil, nil, err
			}
			e.leftTuple = nil
			continue
		}

		if !e.predicate(e.leftTuple, e.leftSchema, rt, e.rightSchema) {
			continue
		}
		return ConcatTuples(e.leftTuple, rt), nil, nil
	}
}
