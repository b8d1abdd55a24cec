package operations

import (
	"github.com/go-sif/sortagg"
	"go.uber.org/zap"
)

// MergeSortedBlocks concatenates Blocks and sorts the result by key. Empty
// Blocks are ignored; if every Block is empty, the result is an empty Block.
func MergeSortedBlocks(env *sortagg.Env, blocks []sortagg.Block, key sortagg.SortKey) (sortagg.Block, error) {
	env, err := resolveEnv(env)
	if err != nil {
		return nil, err
	}
	nonEmpty := make([]sortagg.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.NumRows() > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(nonEmpty) == 0 {
		return env.Backend.EmptyBlock(), nil
	}
	concatenated, err := env.Backend.Concat(nonEmpty)
	if err != nil {
		return nil, err
	}
	sorted, err := env.Backend.Sort(concatenated, key)
	if err != nil {
		return nil, err
	}
	env.Log().Debug("merge-sorted blocks", zap.Int("blocks", len(nonEmpty)), zap.Int("rows", sorted.NumRows()))
	return sorted, nil
}
