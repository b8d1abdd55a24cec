package util

import (
	"context"
	"fmt"

	"github.com/go-sif/sortagg"
)

// recoverError converts a recovered panic into an error carrying a stack trace
func recoverError(kind string, r interface{}, detail string) error {
	if anErr, ok := r.(error); ok {
		return fmt.Errorf("%s Panic: %w\n%s\n%s", kind, anErr, detail, GetTrace())
	}
	return fmt.Errorf("%s Panic: %v\n%s\n%s", kind, r, detail, GetTrace())
}

// safeAggregateFn wraps an AggregateFn such that panics are recovered and nice error messages are constructed
type safeAggregateFn struct {
	fn sortagg.AggregateFn
}

// SafeAggregateFn wraps an AggregateFn such that panics are recovered and nice error messages are constructed
func SafeAggregateFn(fn sortagg.AggregateFn) sortagg.AggregateFn {
	if _, ok := fn.(*safeAggregateFn); ok {
		return fn
	}
	return &safeAggregateFn{fn}
}

func (s *safeAggregateFn) Name() string {
	return s.fn.Name()
}

func (s *safeAggregateFn) Init(key sortagg.GroupKey) (acc sortagg.Accumulator, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError("Init", r, fmt.Sprintf("Aggregate: %s\nKey: %s", s.fn.Name(), key))
		} else if err != nil {
			err = fmt.Errorf("Init Error: %w\nAggregate: %s\nKey: %s", err, s.fn.Name(), key)
		}
	}()
	acc, err = s.fn.Init(key)
	return
}

func (s *safeAggregateFn) AccumulateBlock(acc sortagg.Accumulator, b sortagg.Block) (res sortagg.Accumulator, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows := 0
			if b != nil {
				rows = b.NumRows()
			}
			err = recoverError("Accumulate", r, fmt.Sprintf("Aggregate: %s\nRows: %d", s.fn.Name(), rows))
		} else if err != nil {
			err = fmt.Errorf("Accumulate Error: %w\nAggregate: %s", err, s.fn.Name())
		}
	}()
	res, err = s.fn.AccumulateBlock(acc, b)
	return
}

func (s *safeAggregateFn) Merge(a sortagg.Accumulator, b sortagg.Accumulator) (res sortagg.Accumulator, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError("Merge", r, fmt.Sprintf("Aggregate: %s\nLeft: %v\nRight: %v", s.fn.Name(), a, b))
		} else if err != nil {
			err = fmt.Errorf("Merge Error: %w\nAggregate: %s", err, s.fn.Name())
		}
	}()
	res, err = s.fn.Merge(a, b)
	return
}

func (s *safeAggregateFn) Finalize(acc sortagg.Accumulator) (res interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError("Finalize", r, fmt.Sprintf("Aggregate: %s\nAccumulator: %v", s.fn.Name(), acc))
		} else if err != nil {
			err = fmt.Errorf("Finalize Error: %w\nAggregate: %s", err, s.fn.Name())
		}
	}()
	res, err = s.fn.Finalize(acc)
	return
}

// SafeRunUnit runs a Unit such that panics are recovered and nice error messages are constructed
func SafeRunUnit(ctx context.Context, u sortagg.Unit) (res interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError("Unit", r, fmt.Sprintf("Unit: %s", u.ID()))
		}
	}()
	res, err = u.Run(ctx)
	return
}
