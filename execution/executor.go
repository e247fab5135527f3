package execution

import (
	"errors"

	"coredb/catalog"
	"coredb/storage/rid"
)

// ErrNoMoreTuples is returned by Next once an executor is exhausted — the
// volcano model's usual sentinel, spelled as an error value rather than
// the teacher's ErrNoTuple{} struct since nothing here needs to carry
// extra fields on it.
var ErrNoMoreTuples = errors.New("execution: no more tuples")

// Executor is the volcano-style pull interface every operator in this
// package implements: Init resets iteration state, Next pulls one tuple at
// a time until it returns ErrNoMoreTuples.
type Executor interface {
	Init() error
	Next() (*catalog.Tuple, *rid.RID, error)
}

// Predicate filters or joins tuples. Kept as a plain closure instead of the
// teacher's IExpression tree: nothing in this engine builds, serializes or
// introspects expression trees, so a tree of node types would be
// machinery with no caller.
type Predicate func(t *catalog.Tuple, schema *catalog.Schema) bool

// JoinPredicate evaluates a candidate (left, right) pair.
type JoinPredicate func(left *catalog.Tuple, leftSchema *catalog.Schema, right *catalog.Tuple, rightSchema *catalog.Schema) bool

// ConcatSchemas builds the output schema of a join: every left column
// followed by every right column, offsets recomputed from scratch.
func ConcatSchemas(left, right *catalog.Schema) *catalog.Schema {
	cols := make([]catalog.Column, 0, len(left.GetColumns())+len(right.GetColumns()))
	cols = append(cols, left.GetColumns()...)
	cols = append(cols, right.GetColumns()...)
	return catalog.NewSchema(cols)
}

// ConcatTuples concatenates two tuples' inlined bytes into one, used by
// join executors to build their output tuple.
func ConcatTuples(left, right *catalog.Tuple) *catalog.Tuple {
	data := make([]byte, 0, len(left.Data)+len(right.Data))
	data = append(data, left.Data...)
	data = append(data, right.Data...)
	return &catalog.Tuple{Data: data}
}
