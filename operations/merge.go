package operations

import (
	"container/heap"
	"fmt"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	iutil "github.com/go-sif/sortagg/internal/util"
	"github.com/go-sif/sortagg/schema"
	"go.uber.org/zap"
)

// cursor is the position of the k-way merge within one input Block
type cursor struct {
	block   int
	row     int
	numRows int
	keyCols []sortagg.Column
	accCols []sortagg.Column
}

// cursorHeap orders cursors by the GroupKey of their current row, breaking ties
// by input position so that the merge is stable
type cursorHeap struct {
	key     sortagg.SortKey
	cursors []*cursor
	err     error
}

func (h *cursorHeap) Len() int { return len(h.cursors) }

func (h *cursorHeap) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]
	res, err := h.key.CompareRows(a.keyCols, a.row, b.keyCols, b.row)
	if err != nil {
		if h.err == nil {
			h.err = err
		}
		return false
	}
	if res != 0 {
		return res < 0
	}
	return a.block < b.block
}

func (h *cursorHeap) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *cursorHeap) Push(x interface{}) { h.cursors = append(h.cursors, x.(*cursor)) }

func (h *cursorHeap) Pop() interface{} {
	old := h.cursors
	n := len(old)
	c := old[n-1]
	h.cursors = old[:n-1]
	return c
}

// AggregateCombinedBlocks merges Blocks produced by Combine with the same key
// and aggs into one Block with a single row per GroupKey, in key order.
// Accumulators which share a GroupKey are merged, across any number of input
// Blocks. Accumulator columns are matched by position, following the key
// columns. If finalize is true, aggregate columns hold final results;
// otherwise they hold Accumulators which may be merged again.
func AggregateCombinedBlocks(env *sortagg.Env, blocks []sortagg.Block, key interface{}, aggs []sortagg.AggregateFn, finalize bool) (sortagg.Block, error) {
	k, err := sortagg.KeyOf(key)
	if err != nil {
		return nil, err
	}
	env, err = resolveEnv(env)
	if err != nil {
		return nil, err
	}
	names := ResolveAggregateNames(aggs)
	safeAggs := make([]sortagg.AggregateFn, len(aggs))
	for i, agg := range aggs {
		safeAggs[i] = iutil.SafeAggregateFn(agg)
	}
	keyNames := k.ColumnNames()
	h := &cursorHeap{key: k.SortKey()}
	var outSchema sortagg.Schema
	for i, b := range blocks {
		if b.NumRows() == 0 {
			continue
		}
		c, err := newCursor(i, b, len(keyNames), len(aggs))
		if err != nil {
			return nil, err
		}
		if outSchema == nil {
			if outSchema, err = mergedSchema(b.Schema(), keyNames, names); err != nil {
				return nil, err
			}
		}
		h.cursors = append(h.cursors, c)
	}
	if outSchema == nil {
		return env.Backend.EmptyBlock(), nil
	}
	heap.Init(h)
	if h.err != nil {
		return nil, h.err
	}
	builder := env.Backend.NewBuilder(outSchema)
	var runKey sortagg.GroupKey
	var accs []sortagg.Accumulator
	flush := func() error {
		row := make([]interface{}, len(keyNames)+len(accs))
		copy(row, runKey)
		for i, acc := range accs {
			if finalize {
				res, err := safeAggs[i].Finalize(acc)
				if err != nil {
					return err
				}
				acc = res
			}
			row[len(keyNames)+i] = acc
		}
		return builder.Append(row...)
	}
	for h.Len() > 0 {
		c := h.cursors[0]
		rowKey := k.Extract(c.keyCols, c.row)
		if accs != nil && !rowKey.Equals(runKey) {
			if err := flush(); err != nil {
				return nil, err
			}
			accs = nil
		}
		if accs == nil {
			// the first row of a run seeds its Accumulators
			runKey = rowKey
			accs = make([]sortagg.Accumulator, len(safeAggs))
			for i := range safeAggs {
				accs[i] = c.accCols[i].Value(c.row)
			}
		} else {
			for i, agg := range safeAggs {
				merged, err := agg.Merge(accs[i], c.accCols[i].Value(c.row))
				if err != nil {
					return nil, err
				}
				accs[i] = merged
			}
		}
		c.row++
		if c.row < c.numRows {
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
		if h.err != nil {
			return nil, h.err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	env.Log().Debug("merged combined blocks",
		zap.Int("blocks", len(blocks)),
		zap.Int("groups", builder.NumRows()),
		zap.Bool("finalize", finalize),
	)
	return builder.Build(), nil
}

// newCursor positions a cursor at the first row of a combined Block, whose
// first numKeys columns are key columns and next numAggs columns are Accumulators
func newCursor(idx int, b sortagg.Block, numKeys int, numAggs int) (*cursor, error) {
	s := b.Schema()
	if s.NumColumns() != numKeys+numAggs {
		return nil, errors.IncompatibleSchemaError{
			Reason: fmt.Sprintf("combined block %d has %d columns, expected %d key and %d aggregate columns", idx, s.NumColumns(), numKeys, numAggs),
		}
	}
	c := &cursor{block: idx, numRows: b.NumRows()}
	for i, name := range s.ColumnNames() {
		col, err := b.Column(name)
		if err != nil {
			return nil, err
		}
		if i < numKeys {
			c.keyCols = append(c.keyCols, col)
		} else {
			c.accCols = append(c.accCols, col)
		}
	}
	return c, nil
}

// mergedSchema produces the Schema of a merged Block: the key columns of a
// combined Block, followed by untyped aggregate columns
func mergedSchema(in sortagg.Schema, keyNames []string, aggNames []string) (sortagg.Schema, error) {
	out := schema.CreateSchema()
	types := in.ColumnTypes()
	for i, name := range keyNames {
		if _, err := out.CreateColumn(name, types[i]); err != nil {
			return nil, err
		}
	}
	for _, name := range aggNames {
		if _, err := out.CreateColumn(name, &sortagg.AnyColumnType{}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
