package accumulators

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/schema"
	"github.com/go-sif/sortagg/table"
	"github.com/stretchr/testify/require"
)

func buildBlock(t *testing.T, s sortagg.Schema, rows ...[]interface{}) sortagg.Block {
	b := table.NewBackend().NewBuilder(s)
	for _, r := range rows {
		require.Nil(t, b.Append(r...))
	}
	return b.Build()
}

func intBlock(t *testing.T, values ...interface{}) sortagg.Block {
	rows := make([][]interface{}, len(values))
	for i, v := range values {
		rows[i] = []interface{}{v}
	}
	return buildBlock(t, schema.Of("v", &sortagg.Int64ColumnType{}), rows...)
}

// runAggregate combines each block into its own Accumulator, merges them, and finalizes
func runAggregate(t *testing.T, fn sortagg.AggregateFn, blocks ...sortagg.Block) interface{} {
	var merged sortagg.Accumulator
	for i, b := range blocks {
		acc, err := fn.Init(nil)
		require.Nil(t, err)
		acc, err = fn.AccumulateBlock(acc, b)
		require.Nil(t, err)
		if i == 0 {
			merged = acc
		} else {
			merged, err = fn.Merge(merged, acc)
			require.Nil(t, err)
		}
	}
	res, err := fn.Finalize(merged)
	require.Nil(t, err)
	return res
}

func TestBlockHelpersEmptyBlock(t *testing.T) {
	empty := intBlock(t)
	n, err := BlockCount(empty, "v")
	require.Nil(t, err)
	require.EqualValues(t, 0, n)
	for _, fn := range []func(sortagg.Block, string) (interface{}, error){BlockSum, BlockMin, BlockMax, BlockMean} {
		v, err := fn(empty, "v")
		require.Nil(t, err)
		require.Nil(t, v)
	}
	v, err := BlockSumOfSquaredDiffsFromMean(empty, "v", nil)
	require.Nil(t, err)
	require.Nil(t, v)
}

func TestBlockHelpersAllNull(t *testing.T) {
	typed := intBlock(t, nil, nil)
	untyped := buildBlock(t, schema.Of("v", &sortagg.AnyColumnType{}), []interface{}{nil}, []interface{}{nil})
	for _, b := range []sortagg.Block{typed, untyped} {
		n, err := BlockCount(b, "v")
		require.Nil(t, err)
		require.EqualValues(t, 0, n)
		s, err := BlockSum(b, "v")
		require.Nil(t, err)
		require.Nil(t, s)
		m, err := BlockMean(b, "v")
		require.Nil(t, err)
		require.Nil(t, m)
		mn, err := BlockMin(b, "v")
		require.Nil(t, err)
		require.Nil(t, mn)
	}
}

func TestBlockHelpersNumericFailuresPropagate(t *testing.T) {
	strings := buildBlock(t, schema.Of("v", &sortagg.StringColumnType{}), []interface{}{"a"}, []interface{}{"b"})
	_, err := BlockMean(strings, "v")
	require.True(t, stderrors.As(err, &errors.NumericTypeError{}))
	_, err = BlockSum(strings, "v")
	require.True(t, stderrors.As(err, &errors.NumericTypeError{}))

	mixed := buildBlock(t, schema.Of("v", &sortagg.AnyColumnType{}), []interface{}{1}, []interface{}{"b"}, []interface{}{nil})
	_, err = BlockSum(mixed, "v")
	var numErr errors.NumericTypeError
	require.True(t, stderrors.As(err, &numErr))
	require.Equal(t, "b", numErr.Value)

	_, err = BlockSum(strings, "")
	require.True(t, stderrors.As(err, &errors.InvalidColumnNameError{}))
	_, err = BlockSum(strings, "missing")
	require.True(t, stderrors.As(err, &errors.MissingColumnError{}))

	// min and max only require comparable values
	mn, err := BlockMin(strings, "v")
	require.Nil(t, err)
	require.Equal(t, "a", mn)
}

func TestBlockHelpers(t *testing.T) {
	b := intBlock(t, 4, nil, 1, 7)
	n, err := BlockCount(b, "v")
	require.Nil(t, err)
	require.EqualValues(t, 3, n)
	n, err = BlockCount(b, "")
	require.Nil(t, err)
	require.EqualValues(t, 4, n)
	s, err := BlockSum(b, "v")
	require.Nil(t, err)
	require.Equal(t, int64(12), s)
	mn, err := BlockMin(b, "v")
	require.Nil(t, err)
	require.Equal(t, int64(1), mn)
	mx, err := BlockMax(b, "v")
	require.Nil(t, err)
	require.Equal(t, int64(7), mx)
	m, err := BlockMean(b, "v")
	require.Nil(t, err)
	require.Equal(t, 4.0, m)
	ssd, err := BlockSumOfSquaredDiffsFromMean(b, "v", nil)
	require.Nil(t, err)
	require.Equal(t, 18.0, ssd)

	floats := buildBlock(t, schema.Of("v", &sortagg.Float64ColumnType{}), []interface{}{1.5}, []interface{}{2})
	s, err = BlockSum(floats, "v")
	require.Nil(t, err)
	require.Equal(t, 3.5, s)
}

func TestSumNullSemantics(t *testing.T) {
	require.Nil(t, runAggregate(t, Sum("v"), intBlock(t, nil, nil)))
	require.EqualValues(t, 0, runAggregate(t, Count("v"), intBlock(t, nil, nil)))
	require.Equal(t, int64(5), runAggregate(t, Sum("v"), intBlock(t, nil, nil), intBlock(t, 2, 3)))
	require.Nil(t, runAggregate(t, Mean("v"), intBlock(t, nil)))
	require.Nil(t, runAggregate(t, Std("v", 1), intBlock(t, nil)))
}

func TestNaNIsSkipped(t *testing.T) {
	floatBlock := func(values ...interface{}) sortagg.Block {
		rows := make([][]interface{}, len(values))
		for i, v := range values {
			rows[i] = []interface{}{v}
		}
		return buildBlock(t, schema.Of("v", &sortagg.Float64ColumnType{}), rows...)
	}
	allNaN := floatBlock(math.NaN(), math.NaN())
	require.Nil(t, runAggregate(t, Sum("v"), allNaN))
	require.EqualValues(t, 0, runAggregate(t, Count("v"), allNaN))
	require.Nil(t, runAggregate(t, Mean("v"), allNaN))
	require.Nil(t, runAggregate(t, Max("v"), allNaN))

	mixed := floatBlock(1.0, math.NaN(), 3.0)
	require.Equal(t, 3.0, runAggregate(t, Max("v"), mixed))
	require.Equal(t, 1.0, runAggregate(t, Min("v"), mixed))
	require.Equal(t, 2.0, runAggregate(t, Mean("v"), mixed))
	require.EqualValues(t, 2, runAggregate(t, Count("v"), mixed))
	require.Equal(t, 2.0, runAggregate(t, Sum("v"), floatBlock(math.NaN()), floatBlock(2.0)))
}

func TestAggregatesAreSplitInsensitive(t *testing.T) {
	values := []interface{}{3, 1, nil, 4, 1, 5, 9, 2, 6, nil, 5}
	whole := intBlock(t, values...)
	splits := []sortagg.Block{intBlock(t, values[:2]...), intBlock(t, values[2:3]...), intBlock(t, values[3:7]...), intBlock(t, values[7:]...)}
	for _, fn := range []sortagg.AggregateFn{Count("v"), Count(""), Sum("v"), Min("v"), Max("v"), Mean("v"), Std("v", 0), Std("v", 1)} {
		expected := runAggregate(t, fn, whole)
		actual := runAggregate(t, fn, splits...)
		if f, ok := expected.(float64); ok {
			require.InDelta(t, f, actual, 1e-9, fn.Name())
		} else {
			require.Equal(t, expected, actual, fn.Name())
		}
	}
}

func TestStd(t *testing.T) {
	res := runAggregate(t, Std("v", 0), intBlock(t, 2, 4, 4, 4), intBlock(t, 5, 5, 7, 9))
	require.InDelta(t, 2.0, res, 1e-12)
	res = runAggregate(t, Std("v", 1), intBlock(t, 2))
	require.Equal(t, 0.0, res)
	res = runAggregate(t, Std("v", 1), intBlock(t, 1, 3))
	require.InDelta(t, math.Sqrt2, res, 1e-12)
}

func TestNames(t *testing.T) {
	require.Equal(t, "count", Count("").Name())
	require.Equal(t, "count(v)", Count("v").Name())
	require.Equal(t, "sum(v)", Sum("v").Name())
	require.Equal(t, "min(v)", Min("v").Name())
	require.Equal(t, "max(v)", Max("v").Name())
	require.Equal(t, "mean(v)", Mean("v").Name())
	require.Equal(t, "std(v)", Std("v", 1).Name())
}

func TestDefine(t *testing.T) {
	distinct, err := Define("distinct",
		func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return map[interface{}]bool{}, nil
		},
		func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			col, err := b.Column("v")
			if err != nil {
				return nil, err
			}
			res := map[interface{}]bool{}
			for k := range acc.(map[interface{}]bool) {
				res[k] = true
			}
			for _, v := range col.Values() {
				res[v] = true
			}
			return res, nil
		},
		func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
			res := map[interface{}]bool{}
			for k := range a.(map[interface{}]bool) {
				res[k] = true
			}
			for k := range b.(map[interface{}]bool) {
				res[k] = true
			}
			return res, nil
		},
		func(acc sortagg.Accumulator) (interface{}, error) {
			return len(acc.(map[interface{}]bool)), nil
		},
	)
	require.Nil(t, err)
	require.Equal(t, 3, runAggregate(t, distinct, intBlock(t, 1, 2), intBlock(t, 2, nil)))

	_, err = Define("", nil, nil, nil, nil)
	require.NotNil(t, err)
	_, err = Define("x", nil, nil, nil, nil)
	require.NotNil(t, err)
}

func TestCompose(t *testing.T) {
	fn := Compose("stats", Count("v"), Sum("v"), Mean("v"))
	require.Equal(t, "stats", fn.Name())
	res := runAggregate(t, fn, intBlock(t, 1, 2), intBlock(t, nil, 3))
	require.Equal(t, []interface{}{int64(3), int64(6), 2.0}, res)

	_, err := fn.Merge(1, 2)
	require.NotNil(t, err)
}
