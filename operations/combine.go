package operations

import (
	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	iutil "github.com/go-sif/sortagg/internal/util"
	"github.com/go-sif/sortagg/schema"
	"go.uber.org/zap"
)

// Combine collapses a Block, which must be sorted by key, into one row per
// distinct GroupKey. key may be nil (a single global group), a column name, a
// list of column names, a sortagg.SortKey or a sortagg.Key. Each output row holds
// the key columns followed by one column per AggregateFn, containing its
// unfinalized Accumulator. Output rows retain the order of the input.
func Combine(env *sortagg.Env, b sortagg.Block, key interface{}, aggs []sortagg.AggregateFn) (sortagg.Block, error) {
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
	outSchema, err := combinedSchema(b.Schema(), k, names)
	if err != nil {
		return nil, err
	}
	it, err := newRunIterator(b, k)
	if err != nil {
		return nil, err
	}
	builder := env.Backend.NewBuilder(outSchema)
	numKeyCols := len(k.ColumnNames())
	for it.Next() {
		r := it.Run()
		group := b.Slice(r.start, r.end)
		row := make([]interface{}, numKeyCols+len(safeAggs))
		copy(row, r.key)
		for i, agg := range safeAggs {
			acc, err := agg.Init(r.key)
			if err != nil {
				return nil, err
			}
			acc, err = agg.AccumulateBlock(acc, group)
			if err != nil {
				return nil, err
			}
			row[numKeyCols+i] = acc
		}
		if err := builder.Append(row...); err != nil {
			return nil, err
		}
	}
	env.Log().Debug("combined block",
		zap.String("block", b.ID()),
		zap.Int("rows", b.NumRows()),
		zap.Int("groups", builder.NumRows()),
		zap.Strings("aggregates", names),
	)
	return builder.Build(), nil
}

// combinedSchema produces the Schema of a combined Block: the key columns,
// typed as in the input, followed by untyped aggregate columns. A Block with
// no columns at all yields untyped key columns.
func combinedSchema(in sortagg.Schema, k sortagg.Key, aggNames []string) (sortagg.Schema, error) {
	out := schema.CreateSchema()
	for _, name := range k.ColumnNames() {
		var colType sortagg.ColumnType = &sortagg.AnyColumnType{}
		if in.NumColumns() > 0 {
			t, err := in.GetType(name)
			if err != nil {
				return nil, err
			}
			colType = t
		}
		if _, err := out.CreateColumn(name, colType); err != nil {
			return nil, err
		}
	}
	for _, name := range aggNames {
		if out.HasColumn(name) {
			return nil, errors.IncompatibleSchemaError{Reason: "aggregate " + name + " has the same name as a key column"}
		}
		if _, err := out.CreateColumn(name, &sortagg.AnyColumnType{}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
