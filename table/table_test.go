package table

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/schema"
	"github.com/stretchr/testify/require"
)

func buildBlock(t *testing.T, s sortagg.Schema, rows ...[]interface{}) sortagg.Block {
	b := NewBackend().NewBuilder(s)
	for _, r := range rows {
		require.Nil(t, b.Append(r...))
	}
	return b.Build()
}

func columnValues(t *testing.T, b sortagg.Block, name string) []interface{} {
	col, err := b.Column(name)
	require.Nil(t, err)
	return col.Values()
}

func TestBackendRegistered(t *testing.T) {
	backend, err := sortagg.OpenBackend(sortagg.DefaultBackendName)
	require.Nil(t, err)
	require.Equal(t, sortagg.DefaultBackendName, backend.Name())

	_, err = sortagg.OpenBackend("arrow")
	var missing errors.MissingBackendError
	require.True(t, stderrors.As(err, &missing))
	require.Equal(t, "native", missing.Fallback)
	require.Contains(t, err.Error(), "backend: native")
}

func TestBuilderNormalizesValues(t *testing.T) {
	s := schema.Of("i", &sortagg.Int64ColumnType{}, "f", &sortagg.Float64ColumnType{}, "s", &sortagg.StringColumnType{})
	b := buildBlock(t, s, []interface{}{1, int32(2), "x"}, []interface{}{nil, nil, nil})
	require.Equal(t, 2, b.NumRows())
	require.Equal(t, []interface{}{int64(1), nil}, columnValues(t, b, "i"))
	require.Equal(t, []interface{}{float64(2), nil}, columnValues(t, b, "f"))

	col, err := b.Column("s")
	require.Nil(t, err)
	require.Equal(t, 1, col.NullCount())
	require.False(t, sortagg.AllNull(col))
}

func TestBuilderRejectsBadRows(t *testing.T) {
	s := schema.Of("i", &sortagg.Int64ColumnType{})
	b := NewBackend().NewBuilder(s)
	err := b.Append(1, 2)
	require.True(t, stderrors.As(err, &errors.IncompatibleRowError{}))
	err = b.Append("one")
	var incompatible errors.IncompatibleValueError
	require.True(t, stderrors.As(err, &incompatible))
	require.Equal(t, "i", incompatible.Column)
	require.Equal(t, 0, b.NumRows())
}

func TestRowAccessors(t *testing.T) {
	s := schema.Of("i", &sortagg.Int64ColumnType{}, "f", &sortagg.Float64ColumnType{}, "s", &sortagg.StringColumnType{}, "b", &sortagg.BoolColumnType{})
	b := buildBlock(t, s, []interface{}{7, 1.5, "x", true}, []interface{}{nil, nil, nil, nil})
	r := b.Row(0)
	i, ok, err := r.GetInt64("i")
	require.Nil(t, err)
	require.True(t, ok)
	require.EqualValues(t, 7, i)
	f, ok, err := r.GetFloat64("i")
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, 7.0, f)
	str, ok, err := r.GetString("s")
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, "x", str)
	bv, ok, err := r.GetBool("b")
	require.Nil(t, err)
	require.True(t, ok)
	require.True(t, bv)
	_, _, err = r.GetInt64("s")
	var numErr errors.NumericTypeError
	require.True(t, stderrors.As(err, &numErr))
	require.Equal(t, "s", numErr.Column)
	_, err = r.Get("missing")
	require.True(t, stderrors.As(err, &errors.MissingColumnError{}))
	require.Equal(t, `[7, 1.5, "x", true]`, r.ToString())

	null := b.Row(1)
	isNil, err := null.IsNil("f")
	require.Nil(t, err)
	require.True(t, isNil)
	_, ok, err = null.GetFloat64("f")
	require.Nil(t, err)
	require.False(t, ok)
	require.Equal(t, "[nil, nil, nil, nil]", null.ToString())
}

func TestSliceAndSelect(t *testing.T) {
	s := schema.Of("k", &sortagg.StringColumnType{}, "v", &sortagg.Int64ColumnType{})
	b := buildBlock(t, s, []interface{}{"a", 1}, []interface{}{"b", 2}, []interface{}{"c", nil})
	sliced := b.Slice(1, 3)
	require.Equal(t, 2, sliced.NumRows())
	require.Equal(t, []interface{}{"b", "c"}, columnValues(t, sliced, "k"))
	col, _ := sliced.Column("v")
	require.Equal(t, 1, col.NullCount())
	require.Equal(t, 0, b.Slice(5, 9).NumRows())

	selected, err := b.Select([]string{"v"})
	require.Nil(t, err)
	require.Equal(t, []string{"v"}, selected.Schema().ColumnNames())
	require.Equal(t, 3, selected.NumRows())
	_, err = b.Select([]string{"nope"})
	require.NotNil(t, err)
}

func TestSortCompoundMixedDirections(t *testing.T) {
	s := schema.Of("x", &sortagg.Int64ColumnType{}, "y", &sortagg.StringColumnType{}, "id", &sortagg.Int64ColumnType{})
	b := buildBlock(t, s,
		[]interface{}{2, "a", 0},
		[]interface{}{1, "a", 1},
		[]interface{}{2, "c", 2},
		[]interface{}{nil, "z", 3},
		[]interface{}{1, "b", 4},
		[]interface{}{2, "c", 5},
	)
	sorted, err := NewBackend().Sort(b, sortagg.SortKey{sortagg.Asc("x"), sortagg.Desc("y")})
	require.Nil(t, err)
	// stable within equal keys, nulls last
	require.Equal(t, []interface{}{int64(4), int64(1), int64(2), int64(5), int64(0), int64(3)}, columnValues(t, sorted, "id"))
	// input is untouched
	require.Equal(t, int64(0), columnValues(t, b, "id")[0])

	_, err = NewBackend().Sort(b, sortagg.SortKey{sortagg.Asc("nope")})
	require.NotNil(t, err)
}

func TestSortNaNIsNull(t *testing.T) {
	s := schema.Of("x", &sortagg.Float64ColumnType{}, "id", &sortagg.Int64ColumnType{})
	b := buildBlock(t, s,
		[]interface{}{math.NaN(), 0},
		[]interface{}{1.5, 1},
		[]interface{}{float32(math.NaN()), 2},
		[]interface{}{3.0, 3},
	)
	col, err := b.Column("x")
	require.Nil(t, err)
	require.Equal(t, 2, col.NullCount())
	for _, dir := range []sortagg.Direction{sortagg.Ascending, sortagg.Descending} {
		sorted, err := NewBackend().Sort(b, sortagg.SortKey{{Name: "x", Direction: dir}})
		require.Nil(t, err)
		xs := columnValues(t, sorted, "x")
		require.Nil(t, xs[2], dir.String())
		require.Nil(t, xs[3], dir.String())
	}
	sorted, err := NewBackend().Sort(b, sortagg.SortKey{sortagg.Desc("x")})
	require.Nil(t, err)
	require.Equal(t, []interface{}{int64(3), int64(1), int64(0), int64(2)}, columnValues(t, sorted, "id"))
}

func TestColumnValuesCannotGrowIntoParent(t *testing.T) {
	s := schema.Of("v", &sortagg.Int64ColumnType{})
	b := buildBlock(t, s, []interface{}{1}, []interface{}{2}, []interface{}{3})
	first := columnValues(t, b.Slice(0, 1), "v")
	_ = append(first, int64(99))
	require.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, columnValues(t, b, "v"))

	whole := columnValues(t, b, "v")
	require.Equal(t, len(whole), cap(whole))
}

func TestSortIncomparable(t *testing.T) {
	s := schema.Of("x", &sortagg.AnyColumnType{})
	b := buildBlock(t, s, []interface{}{1}, []interface{}{"a"})
	_, err := NewBackend().Sort(b, sortagg.SortKey{sortagg.Asc("x")})
	require.True(t, stderrors.As(err, &errors.IncomparableValuesError{}))
}

func TestConcat(t *testing.T) {
	backend := NewBackend()
	s1 := schema.Of("k", &sortagg.StringColumnType{}, "v", &sortagg.Int64ColumnType{})
	s2 := schema.Of("k", &sortagg.StringColumnType{}, "v", &sortagg.AnyColumnType{})
	b1 := buildBlock(t, s1, []interface{}{"a", 1})
	b2 := buildBlock(t, s2, []interface{}{"b", 2}, []interface{}{"c", 3})
	res, err := backend.Concat([]sortagg.Block{backend.EmptyBlock(), b1, b2})
	require.Nil(t, err)
	require.Equal(t, 3, res.NumRows())
	require.Equal(t, []interface{}{"a", "b", "c"}, columnValues(t, res, "k"))
	vType, _ := res.Schema().GetType("v")
	require.True(t, sortagg.IsUntyped(vType))

	res, err = backend.Concat(nil)
	require.Nil(t, err)
	require.Equal(t, 0, res.NumRows())

	s3 := schema.Of("other", &sortagg.StringColumnType{})
	_, err = backend.Concat([]sortagg.Block{b1, buildBlock(t, s3, []interface{}{"x"})})
	require.True(t, stderrors.As(err, &errors.IncompatibleSchemaError{}))
}
