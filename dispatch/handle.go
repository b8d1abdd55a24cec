package dispatch

import (
	"context"
	"fmt"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/internal/util"
	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Handle is a sortagg.Handle which is completed exactly once, by whichever
// goroutine executes its Unit
type Handle struct {
	id     string
	done   chan struct{}
	result interface{}
	err    error
}

// NewHandle produces an incomplete Handle for the Unit with the given ID
func NewHandle(id string) *Handle {
	return &Handle{id: id, done: make(chan struct{})}
}

// ID returns the ID of the submitted Unit
func (h *Handle) ID() string {
	return h.id
}

// Complete records the outcome of the Unit, releasing any waiters
func (h *Handle) Complete(result interface{}, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

// Wait blocks until the Unit completes or ctx is done
func (h *Handle) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GatherHandles waits for every Handle in order, returning results in Handle
// order. All Handles are waited upon even after a failure; failures are
// aggregated into a single error.
func GatherHandles(ctx context.Context, handles []sortagg.Handle, progress sortagg.ProgressFn, logger *zap.Logger) ([]interface{}, error) {
	results := make([]interface{}, len(handles))
	var errs *multierror.Error
	for i, h := range handles {
		res, err := h.Wait(ctx)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("Unit %s: %w", h.ID(), err))
		}
		results[i] = res
		if progress != nil {
			progress(i+1, len(handles))
		}
		logger.Debug("gathered unit", zap.String("unit", h.ID()), zap.Int("done", i+1), zap.Int("total", len(handles)), zap.Bool("failed", err != nil))
	}
	if errs != nil {
		errs.ErrorFormat = func(es []error) string {
			return fmt.Sprintf("%d of %d units failed:\n%s", len(es), len(handles), util.FormatMultiError(es))
		}
		return nil, errs
	}
	return results, nil
}
