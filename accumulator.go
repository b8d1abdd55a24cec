package sortagg

// Accumulator is the intermediate state of an aggregation for a single group.
// Its representation is opaque to everything except the AggregateFn which
// produced it.
type Accumulator = interface{}

// An AggregateFn is a pluggable aggregation. Aggregation happens in two phases:
// blocks are combined into one Accumulator per group, and then Accumulators for
// the same group are merged across blocks and finalized. Since the engine decides
// how rows are split across blocks, Merge must be associative and commutative.
type AggregateFn interface {
	Name() string                                                  // Name returns the output column label, before collision resolution
	Init(key GroupKey) (Accumulator, error)                        // Init produces a fresh Accumulator for a group (nil key for the global group)
	AccumulateBlock(acc Accumulator, b Block) (Accumulator, error) // AccumulateBlock folds every row of a contiguous Block slice into an Accumulator
	Merge(a Accumulator, b Accumulator) (Accumulator, error)       // Merge combines Accumulators representing disjoint sets of rows
	Finalize(acc Accumulator) (interface{}, error)                 // Finalize converts an Accumulator into the user-visible result
}
