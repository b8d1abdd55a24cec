package operations

import (
	"context"
	"fmt"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/errors"
	"go.uber.org/zap"
)

// PartitionOptions configure SortAndPartition
type PartitionOptions struct {
	// Side selects where rows equal to a boundary are placed. With SideRight
	// (the default), they end the partition before the boundary; with SideLeft,
	// they begin the partition after it.
	Side Side
}

// SortAndPartition sorts a Block by key and splits it at each boundary, producing
// len(boundaries)+1 contiguous partitions whose concatenation is the sorted Block.
// boundaries must themselves be sorted by key. Each boundary is located by a
// separate BoundarySearch Unit, executed by the Env's Dispatcher; if any of them
// fails, no partitions are returned. opts may be nil.
func SortAndPartition(ctx context.Context, env *sortagg.Env, b sortagg.Block, boundaries [][]interface{}, key sortagg.SortKey, opts *PartitionOptions) ([]sortagg.Block, error) {
	if opts == nil {
		opts = &PartitionOptions{}
	}
	env, err := resolveEnv(env)
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if b.NumRows() == 0 {
		// an empty Block may have no Schema to sort or search
		partitions := make([]sortagg.Block, len(boundaries)+1)
		for i := range partitions {
			partitions[i] = env.Backend.EmptyBlock()
		}
		return partitions, nil
	}
	sorted, err := env.Backend.Sort(b, key)
	if err != nil {
		return nil, err
	}
	keyBlock, err := sorted.Select(key.ColumnNames())
	if err != nil {
		return nil, err
	}
	handles := make([]sortagg.Handle, len(boundaries))
	for i, boundary := range boundaries {
		h, err := env.Dispatcher.Submit(ctx, NewBoundarySearch(keyBlock, key, boundary, opts.Side))
		if err != nil {
			// wait out the searches already in flight, discarding their results
			if _, gerr := env.Dispatcher.Gather(ctx, handles[:i]); gerr != nil {
				env.Log().Debug("abandoned boundary searches failed", zap.Error(gerr))
			}
			return nil, errors.DispatchError{Operation: "boundary search", Err: err}
		}
		handles[i] = h
	}
	results, err := env.Dispatcher.Gather(ctx, handles)
	if err != nil {
		return nil, errors.DispatchError{Operation: "boundary search", Err: err}
	}
	partitions := make([]sortagg.Block, 0, len(boundaries)+1)
	prev := 0
	for i, res := range results {
		idx, ok := res.(int)
		if !ok {
			return nil, errors.DispatchError{
				Operation: "boundary search",
				Err:       fmt.Errorf("Unit %s produced %T, not a row index", handles[i].ID(), res),
			}
		}
		if idx < prev {
			return nil, errors.UnsortedBoundariesError{Position: i, Index: idx, Previous: prev}
		}
		partitions = append(partitions, sorted.Slice(prev, idx))
		prev = idx
	}
	partitions = append(partitions, sorted.Slice(prev, sorted.NumRows()))
	env.Log().Debug("partitioned block",
		zap.String("block", b.ID()),
		zap.Int("rows", b.NumRows()),
		zap.Int("partitions", len(partitions)),
		zap.Stringer("key", key),
	)
	return partitions, nil
}
