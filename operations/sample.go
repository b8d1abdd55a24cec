package operations

import (
	"fmt"
	"math/rand"

	"github.com/go-sif/sortagg"
)

// Sample draws up to n rows of the key columns of a Block, uniformly at random
// and without replacement. Samples from many Blocks feed SampleBoundaries.
func Sample(env *sortagg.Env, b sortagg.Block, n int, key sortagg.SortKey, seed int64) (sortagg.Block, error) {
	env, err := resolveEnv(env)
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if b.NumRows() == 0 || n <= 0 {
		return env.Backend.EmptyBlock(), nil
	}
	keyBlock, err := b.Select(key.ColumnNames())
	if err != nil {
		return nil, err
	}
	if n > b.NumRows() {
		n = b.NumRows()
	}
	cols, err := sortagg.KeyColumns(keyBlock, key)
	if err != nil {
		return nil, err
	}
	builder := env.Backend.NewBuilder(keyBlock.Schema())
	rng := rand.New(rand.NewSource(seed))
	for _, i := range rng.Perm(b.NumRows())[:n] {
		row := make([]interface{}, len(cols))
		for c, col := range cols {
			row[c] = col.Value(i)
		}
		if err := builder.Append(row...); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

// SampleBoundaries sorts sampled key rows and picks numPartitions-1 evenly
// spaced boundary tuples from them, suitable for SortAndPartition. Without
// any sampled rows, no boundaries are produced.
func SampleBoundaries(env *sortagg.Env, samples []sortagg.Block, key sortagg.SortKey, numPartitions int) ([][]interface{}, error) {
	if numPartitions < 1 {
		return nil, fmt.Errorf("Number of partitions must be at least 1, got %d", numPartitions)
	}
	sorted, err := MergeSortedBlocks(env, samples, key)
	if err != nil {
		return nil, err
	}
	n := sorted.NumRows()
	if n == 0 {
		return [][]interface{}{}, nil
	}
	cols, err := sortagg.KeyColumns(sorted, key)
	if err != nil {
		return nil, err
	}
	boundaries := make([][]interface{}, 0, numPartitions-1)
	for i := 1; i < numPartitions; i++ {
		idx := i * n / numPartitions
		boundary := make([]interface{}, len(cols))
		for c, col := range cols {
			boundary[c] = col.Value(idx)
		}
		boundaries = append(boundaries, boundary)
	}
	return boundaries, nil
}
