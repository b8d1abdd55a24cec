package accumulators

import (
	stderrors "errors"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"golang.org/x/exp/constraints"
)

// applyAgg provides null handling around applying an aggregation to a column.
// An empty Block has no value. A numeric failure on an untyped, entirely null
// column also has no value; every other failure is returned unchanged.
func applyAgg(b sortagg.Block, on string, fn func(col sortagg.Column) (interface{}, error)) (interface{}, error) {
	if len(on) == 0 {
		return nil, errors.InvalidColumnNameError{Name: on}
	}
	if b.NumRows() == 0 {
		return nil, nil
	}
	col, err := b.Column(on)
	if err != nil {
		return nil, err
	}
	val, err := fn(col)
	if err != nil {
		var numErr errors.NumericTypeError
		if stderrors.As(err, &numErr) && sortagg.IsUntyped(col.Type()) && sortagg.AllNull(col) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

// nativeNumeric converts the non-null values of a column into native numbers.
// isInt is true iff every value is an int64, in which case ints is populated
// alongside floats.
func nativeNumeric(col sortagg.Column) (ints []int64, floats []float64, isInt bool, err error) {
	colType := col.Type()
	switch colType.(type) {
	case *sortagg.Int64ColumnType, *sortagg.Float64ColumnType:
	case *sortagg.AnyColumnType:
		if sortagg.AllNull(col) {
			return nil, nil, false, errors.NumericTypeError{Column: col.Name(), Type: colType.Name()}
		}
	default:
		return nil, nil, false, errors.NumericTypeError{Column: col.Name(), Type: colType.Name()}
	}
	isInt = true
	ints = make([]int64, 0, col.Len()-col.NullCount())
	floats = make([]float64, 0, col.Len()-col.NullCount())
	for _, v := range col.Values() {
		switch tv := v.(type) {
		case nil:
		case int64:
			ints = append(ints, tv)
			floats = append(floats, float64(tv))
		case float64:
			isInt = false
			floats = append(floats, tv)
		default:
			return nil, nil, false, errors.NumericTypeError{Column: col.Name(), Type: colType.Name(), Value: v}
		}
	}
	if !isInt {
		ints = nil
	}
	return
}

func sumOf[T constraints.Integer | constraints.Float](vals []T) T {
	var total T
	for _, v := range vals {
		total += v
	}
	return total
}

// BlockCount counts the non-null values of column on within a Block. If on
// is empty, all rows are counted.
func BlockCount(b sortagg.Block, on string) (int64, error) {
	if len(on) == 0 {
		return int64(b.NumRows()), nil
	}
	res, err := applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		return int64(col.Len() - col.NullCount()), nil
	})
	if err != nil || res == nil {
		return 0, err
	}
	return res.(int64), nil
}

// BlockSum sums the non-null values of column on within a Block, producing
// an int64 for integer data and a float64 otherwise. An entirely null column
// has no value, rather than a sum of zero.
func BlockSum(b sortagg.Block, on string) (interface{}, error) {
	return applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		if sortagg.AllNull(col) {
			return nil, nil
		}
		ints, floats, isInt, err := nativeNumeric(col)
		if err != nil {
			return nil, err
		}
		if isInt {
			return sumOf(ints), nil
		}
		return sumOf(floats), nil
	})
}

// BlockMin finds the smallest non-null value of column on within a Block
func BlockMin(b sortagg.Block, on string) (interface{}, error) {
	return applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		return extreme(col, -1)
	})
}

// BlockMax finds the largest non-null value of column on within a Block
func BlockMax(b sortagg.Block, on string) (interface{}, error) {
	return applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		return extreme(col, 1)
	})
}

// extreme finds the smallest (sign = -1) or largest (sign = 1) non-null value of a column
func extreme(col sortagg.Column, sign int) (interface{}, error) {
	var best interface{}
	for _, v := range col.Values() {
		if v == nil {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		res, err := sortagg.CompareValues(v, best)
		if err != nil {
			return nil, err
		}
		if res*sign > 0 {
			best = v
		}
	}
	return best, nil
}

// BlockMean averages the non-null values of column on within a Block
func BlockMean(b sortagg.Block, on string) (interface{}, error) {
	return applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		_, floats, _, err := nativeNumeric(col)
		if err != nil {
			return nil, err
		}
		if len(floats) == 0 {
			return nil, nil
		}
		return sumOf(floats) / float64(len(floats)), nil
	})
}

// BlockSumOfSquaredDiffsFromMean computes the sum of squared differences of
// the non-null values of column on from their mean. If mean is nil, it is
// computed with BlockMean.
func BlockSumOfSquaredDiffsFromMean(b sortagg.Block, on string, mean interface{}) (interface{}, error) {
	if mean == nil {
		var err error
		mean, err = BlockMean(b, on)
		if err != nil || mean == nil {
			return nil, err
		}
	}
	m, _, err := sortagg.AsFloat64(mean)
	if err != nil {
		return nil, err
	}
	return applyAgg(b, on, func(col sortagg.Column) (interface{}, error) {
		_, floats, _, err := nativeNumeric(col)
		if err != nil {
			return nil, err
		}
		if len(floats) == 0 {
			return nil, nil
		}
		var total float64
		for _, v := range floats {
			total += (v - m) * (v - m)
		}
		return total, nil
	})
}
