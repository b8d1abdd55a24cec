package dispatch

import (
	"context"
	"runtime"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/internal/stats"
	"github.com/go-sif/sortagg/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// PoolOptions configure a Pool
type PoolOptions struct {
	Parallelism int                // Parallelism is the maximum number of Units which run at once. Defaults to runtime.NumCPU()
	Logger      *zap.Logger        // Logger receives debug output about dispatched Units
	Progress    sortagg.ProgressFn // Progress is notified as Units are gathered
}

func ensureDefaultPoolOptionsValues(opts *PoolOptions) {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
}

// Pool is a local Dispatcher, running each Unit on its own goroutine while
// bounding the number of Units which run at once
type Pool struct {
	opts  *PoolOptions
	sem   *semaphore.Weighted
	stats *stats.RunStatistics
}

// NewPool creates a new Pool. opts may be nil.
func NewPool(opts *PoolOptions) *Pool {
	if opts == nil {
		opts = &PoolOptions{}
	}
	ensureDefaultPoolOptionsValues(opts)
	return &Pool{
		opts:  opts,
		sem:   semaphore.NewWeighted(int64(opts.Parallelism)),
		stats: &stats.RunStatistics{},
	}
}

// Submit schedules a Unit on this Pool
func (p *Pool) Submit(ctx context.Context, u sortagg.Unit) (sortagg.Handle, error) {
	h := NewHandle(u.ID())
	start := p.stats.SubmitUnit()
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			p.stats.EndUnit(start, true)
			h.Complete(nil, err)
			return
		}
		defer p.sem.Release(1)
		res, err := util.SafeRunUnit(ctx, u)
		p.stats.EndUnit(start, err != nil)
		h.Complete(res, err)
	}()
	return h, nil
}

// Gather waits for all Handles, returning results in Handle order
func (p *Pool) Gather(ctx context.Context, handles []sortagg.Handle) ([]interface{}, error) {
	res, err := GatherHandles(ctx, handles, p.opts.Progress, p.opts.Logger)
	p.opts.Logger.Debug("gather complete",
		zap.Int64("submitted", p.stats.GetNumUnitsSubmitted()),
		zap.Int64("completed", p.stats.GetNumUnitsCompleted()),
		zap.Int64("failed", p.stats.GetNumUnitsFailed()),
		zap.Duration("avgUnitTime", p.stats.GetCurrentUnitProcessingTime()),
	)
	return res, err
}

// Statistics returns the statistics of Units dispatched by this Pool
func (p *Pool) Statistics() *stats.RunStatistics {
	return p.stats
}
