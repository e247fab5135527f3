package execution

import (
	"errors"
	"fmt"

	"coredb/catalog"
	"coredb/storage/rid"
)

// AggFunc is a group-by aggregate function.
type AggFunc int

const (
	CountAgg AggFunc = iota
	SumAgg
	MinAgg
	MaxAgg
)

// AggregationExecutor groups its child's output by one column and reduces
// another with a single aggregate function, using a plain Go map rather
// than the hash index: BusTub's own aggregation executor keeps its
// SimpleAggregationHashTable in memory too, never on the disk-backed
// index, so there is nothing here for ExtendibleHashTable to do. Grounded
// in original_source/src/execution/aggregation_executor.cpp.
type AggregationExecutor struct {
	child      Executor
	schema     *catalog.Schema
	groupByIdx int
	aggIdx     int
	aggFunc    AggFunc

	groups map[string]*aggGroup
	order  []string
	pos    int
}

type aggGroup struct {
	groupValue catalog.Value
	count      int32
	result     int32
	haveResult bool
}

func NewAggregationExecutor(child Executor, schema *catalog.Schema, groupByIdx, aggIdx int, fn AggFunc) *AggregationExecutor {
	return &AggregationExecutor{child: child, schema: schema, groupByIdx: groupByIdx, aggIdx: aggIdx, aggFunc: fn}
}

func (e *AggregationExecutor) Init() error {
	if err := e.child.Init(); err != nil {
		return err
	}
	e.groups = make(map[string]*aggGroup)
	e.order = nil
	e.pos = 0

	for {
		t, _, err := e.child.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreTuples) {
				break
			}
			return err
		}

		groupVal := t.GetValue(e.schema, e.groupByIdx)
		key := valueKey(groupVal)
		g, ok := e.groups[key]
		if !ok {
			g = &aggGroup{groupValue: groupVal}
			e.groups[key] = g
			e.order = append(e.order, key)
		}
		g.count++

		if e.aggFunc == CountAgg {
			continue
		}
		v := t.GetValue(e.schema, e.aggIdx).AsInt32()
		switch {
		case !g.haveResult:
			g.result = v
			g.haveResult = true
		case e.aggFunc == SumAgg:
			g.result += v
		case e.aggFunc == MinAgg && v < g.result:
			g.result = v
		case e.aggFunc == MaxAgg && v > g.result:
			g.result = v
		}
	}
	return nil
}

func valueKey(v catalog.Value) string {
	switch v.Kind {
	case catalog.Int32:
		return fmt.Sprintf("i:%d", v.AsInt32())
	case catalog.Varchar:
		return fmt.Sprintf("s:%s", v.AsString())
	default:
		panic("execution: value has no groupable kind")
	}
}

// Next returns one (groupValue, aggregateResult) pair per call, as a
// two-column tuple built fresh against an ad-hoc [groupBy, agg] schema.
func (e *AggregationExecutor) Next() (*catalog.Tuple, *rid.RID, error) {
	if e.pos >= len(e.order) {
		return nil, nil, ErrNoMoreTuples
	}
	g := e.groups[e.order[e.pos]]
	e.pos++

	result := g.result
	if e.aggFunc == CountAgg {
		result = g.count
	}

	outSchema := catalog.NewSchema([]catalog.Column{
		*e.schema.GetColumn(e.groupByIdx),
		catalog.NewInt32Column("agg"),
	})
	t, err := catalog.NewTuple([]catalog.Value{g.groupValue, catalog.NewInt32Value(result)}, outSchema)
	if err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}
