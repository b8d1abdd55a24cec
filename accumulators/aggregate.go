package accumulators

import (
	"encoding/gob"
	"fmt"
	"math"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
)

func init() {
	// Accumulators travel inside untyped Block columns, which are gob-encoded
	// by the serialization package
	gob.Register(MeanState{})
	gob.Register(StdState{})
	gob.Register([]interface{}{})
}

// Count counts the non-null values of a column. If on is empty, it counts rows
// and is named "count".
func Count(on string) sortagg.AggregateFn {
	name := "count"
	if len(on) > 0 {
		name = fmt.Sprintf("count(%s)", on)
	}
	return &Aggregate{
		name: name,
		init: func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return int64(0), nil
		},
		accumulateBlock: func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			n, err := BlockCount(b, on)
			if err != nil {
				return nil, err
			}
			return acc.(int64) + n, nil
		},
		merge: func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
			return a.(int64) + b.(int64), nil
		},
	}
}

// Sum sums the non-null values of a numeric column. Groups without any
// non-null values sum to nil.
func Sum(on string) sortagg.AggregateFn {
	return &Aggregate{
		name: fmt.Sprintf("sum(%s)", on),
		init: func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return nil, nil
		},
		accumulateBlock: func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			s, err := BlockSum(b, on)
			if err != nil {
				return nil, err
			}
			return nullableAdd(acc, s)
		},
		merge: nullableAdd,
	}
}

// Min finds the smallest non-null value of a column
func Min(on string) sortagg.AggregateFn {
	return extremeAggregate(fmt.Sprintf("min(%s)", on), on, BlockMin, -1)
}

// Max finds the largest non-null value of a column
func Max(on string) sortagg.AggregateFn {
	return extremeAggregate(fmt.Sprintf("max(%s)", on), on, BlockMax, 1)
}

func extremeAggregate(name string, on string, blockFn func(sortagg.Block, string) (interface{}, error), sign int) sortagg.AggregateFn {
	pick := func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
		if a == nil {
			return b, nil
		} else if b == nil {
			return a, nil
		}
		res, err := sortagg.CompareValues(b, a)
		if err != nil {
			return nil, err
		}
		if res*sign > 0 {
			return b, nil
		}
		return a, nil
	}
	return &Aggregate{
		name: name,
		init: func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return nil, nil
		},
		accumulateBlock: func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			v, err := blockFn(b, on)
			if err != nil {
				return nil, err
			}
			return pick(acc, v)
		},
		merge: pick,
	}
}

// MeanState is the Accumulator of Mean
type MeanState struct {
	Sum   float64
	Count int64
}

// Mean averages the non-null values of a numeric column. Groups without any
// non-null values have a nil mean.
func Mean(on string) sortagg.AggregateFn {
	return &Aggregate{
		name: fmt.Sprintf("mean(%s)", on),
		init: func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return MeanState{}, nil
		},
		accumulateBlock: func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			count, err := BlockCount(b, on)
			if err != nil || count == 0 {
				return acc, err
			}
			s, err := BlockSum(b, on)
			if err != nil {
				return nil, err
			}
			sum, ok, err := sortagg.AsFloat64(s)
			if err != nil {
				return nil, err
			} else if !ok {
				// an untyped, entirely null column
				return acc, nil
			}
			state := acc.(MeanState)
			return MeanState{Sum: state.Sum + sum, Count: state.Count + count}, nil
		},
		merge: func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
			sa, sb := a.(MeanState), b.(MeanState)
			return MeanState{Sum: sa.Sum + sb.Sum, Count: sa.Count + sb.Count}, nil
		},
		finalize: func(acc sortagg.Accumulator) (interface{}, error) {
			state := acc.(MeanState)
			if state.Count == 0 {
				return nil, nil
			}
			return state.Sum / float64(state.Count), nil
		},
	}
}

// StdState is the Accumulator of Std: the running mean and sum of squared
// differences from it (M2) over Count values
type StdState struct {
	M2    float64
	Mean  float64
	Count int64
}

// combine merges two StdStates using the parallel algorithm of Chan et al.
func (s StdState) combine(o StdState) StdState {
	if s.Count == 0 {
		return o
	} else if o.Count == 0 {
		return s
	}
	n := s.Count + o.Count
	delta := o.Mean - s.Mean
	return StdState{
		M2:    s.M2 + o.M2 + delta*delta*float64(s.Count)*float64(o.Count)/float64(n),
		Mean:  s.Mean + delta*float64(o.Count)/float64(n),
		Count: n,
	}
}

// Std computes the standard deviation of the non-null values of a numeric column,
// with ddof delta degrees of freedom. Groups without any non-null values have
// a nil deviation; groups with no more than ddof values have a deviation of 0.
func Std(on string, ddof int) sortagg.AggregateFn {
	return &Aggregate{
		name: fmt.Sprintf("std(%s)", on),
		init: func(key sortagg.GroupKey) (sortagg.Accumulator, error) {
			return StdState{}, nil
		},
		accumulateBlock: func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
			count, err := BlockCount(b, on)
			if err != nil || count == 0 {
				return acc, err
			}
			mean, err := BlockMean(b, on)
			if err != nil || mean == nil {
				return acc, err
			}
			m2, err := BlockSumOfSquaredDiffsFromMean(b, on, mean)
			if err != nil {
				return nil, err
			}
			return acc.(StdState).combine(StdState{M2: m2.(float64), Mean: mean.(float64), Count: count}), nil
		},
		merge: func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
			return a.(StdState).combine(b.(StdState)), nil
		},
		finalize: func(acc sortagg.Accumulator) (interface{}, error) {
			state := acc.(StdState)
			if state.Count == 0 {
				return nil, nil
			}
			if state.Count-int64(ddof) <= 0 {
				return 0.0, nil
			}
			return math.Sqrt(state.M2 / float64(state.Count-int64(ddof))), nil
		},
	}
}

// nullableAdd sums two possibly-nil numbers, preserving int64 when both are int64
func nullableAdd(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
	if a == nil {
		return b, nil
	} else if b == nil {
		return a, nil
	}
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		return ai + bi, nil
	}
	af, _, err := sortagg.AsFloat64(a)
	if err != nil {
		return nil, err
	}
	bf, _, err := sortagg.AsFloat64(b)
	if err != nil {
		return nil, err
	}
	return af + bf, nil
}

// Aggregate is an AggregateFn assembled from functions
type Aggregate struct {
	name            string
	init            func(key sortagg.GroupKey) (sortagg.Accumulator, error)
	accumulateBlock func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error)
	merge           func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error)
	finalize        func(acc sortagg.Accumulator) (interface{}, error)
}

// Define assembles a custom AggregateFn. finalize may be nil, in which case
// the merged Accumulator is the result.
func Define(
	name string,
	init func(key sortagg.GroupKey) (sortagg.Accumulator, error),
	accumulateBlock func(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error),
	merge func(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error),
	finalize func(acc sortagg.Accumulator) (interface{}, error),
) (sortagg.AggregateFn, error) {
	if len(name) == 0 {
		return nil, errors.InvalidColumnNameError{Name: name}
	}
	if init == nil || accumulateBlock == nil || merge == nil {
		return nil, fmt.Errorf("Aggregate %s requires init, accumulateBlock and merge functions", name)
	}
	return &Aggregate{name: name, init: init, accumulateBlock: accumulateBlock, merge: merge, finalize: finalize}, nil
}

// Name returns the output column label of this Aggregate
func (a *Aggregate) Name() string {
	return a.name
}

// Init produces a fresh Accumulator for a group
func (a *Aggregate) Init(key sortagg.GroupKey) (sortagg.Accumulator, error) {
	return a.init(key)
}

// AccumulateBlock folds every row of a Block into an Accumulator
func (a *Aggregate) AccumulateBlock(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
	return a.accumulateBlock(acc, b)
}

// Merge combines two Accumulators
func (a *Aggregate) Merge(l sortagg.Accumulator, r sortagg.Accumulator) (sortagg.Accumulator, error) {
	return a.merge(l, r)
}

// Finalize converts an Accumulator into a result
func (a *Aggregate) Finalize(acc sortagg.Accumulator) (interface{}, error) {
	if a.finalize == nil {
		return acc, nil
	}
	return a.finalize(acc)
}
