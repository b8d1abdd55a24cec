package accumulators

import (
	"fmt"

	"github.com/go-sif/sortagg"
)

// Compose returns an AggregateFn which runs several AggregateFns over the same
// rows, producing a single column. Its Accumulator and result are slices, with
// one entry per composed AggregateFn.
func Compose(name string, fns ...sortagg.AggregateFn) sortagg.AggregateFn {
	return &Composed{name: name, fns: fns}
}

// Composed composes other AggregateFns
type Composed struct {
	name string
	fns  []sortagg.AggregateFn
}

// Name returns the output column label of this Composed AggregateFn
func (c *Composed) Name() string {
	return c.name
}

// Init produces an Accumulator for every composed AggregateFn
func (c *Composed) Init(key sortagg.GroupKey) (sortagg.Accumulator, error) {
	accs := make([]interface{}, len(c.fns))
	for i, fn := range c.fns {
		acc, err := fn.Init(key)
		if err != nil {
			return nil, err
		}
		accs[i] = acc
	}
	return accs, nil
}

// AccumulateBlock folds a Block into all contained Accumulators
func (c *Composed) AccumulateBlock(acc sortagg.Accumulator, b sortagg.Block) (sortagg.Accumulator, error) {
	accs, err := c.unpack(acc)
	if err != nil {
		return nil, err
	}
	res := make([]interface{}, len(c.fns))
	for i, fn := range c.fns {
		if res[i], err = fn.AccumulateBlock(accs[i], b); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Merge merges another Composed Accumulator into this one, merging all contained Accumulators
func (c *Composed) Merge(a sortagg.Accumulator, b sortagg.Accumulator) (sortagg.Accumulator, error) {
	left, err := c.unpack(a)
	if err != nil {
		return nil, err
	}
	right, err := c.unpack(b)
	if err != nil {
		return nil, err
	}
	res := make([]interface{}, len(c.fns))
	for i, fn := range c.fns {
		if res[i], err = fn.Merge(left[i], right[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Finalize finalizes all contained Accumulators
func (c *Composed) Finalize(acc sortagg.Accumulator) (interface{}, error) {
	accs, err := c.unpack(acc)
	if err != nil {
		return nil, err
	}
	res := make([]interface{}, len(c.fns))
	for i, fn := range c.fns {
		if res[i], err = fn.Finalize(accs[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *Composed) unpack(acc sortagg.Accumulator) ([]interface{}, error) {
	accs, ok := acc.([]interface{})
	if !ok || len(accs) != len(c.fns) {
		return nil, fmt.Errorf("Incoming accumulator is not a Composed Accumulator")
	}
	return accs, nil
}
