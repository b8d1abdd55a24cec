package cluster

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/dispatch"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/internal/pcache"
	"github.com/go-sif/sortagg/internal/stats"
	"github.com/go-sif/sortagg/operations"
	"github.com/go-sif/sortagg/serialization"
	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// RemoteDispatcher is a sortagg.Dispatcher which runs boundary searches on
// remote Workers, distributing units round-robin
type RemoteDispatcher struct {
	opts       *NodeOptions
	conns      []*grpc.ClientConn
	owned      bool
	next       uint32
	serializer serialization.BlockSerializer
	stats      *stats.RunStatistics
	encoded    pcache.BlockCache
}

// Dial connects to every Worker address, producing a RemoteDispatcher which
// closes those connections when it is closed
func Dial(addrs []string, opts *NodeOptions) (*RemoteDispatcher, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("At least one worker address is required")
	}
	conns := make([]*grpc.ClientConn, 0, len(addrs))
	for _, addr := range addrs {
		conn, err := grpc.Dial(addr, grpc.WithInsecure())
		if err != nil {
			for _, c := range conns {
				c.Close()
			}
			return nil, fmt.Errorf("Failed to dial %s: %v", addr, err)
		}
		conns = append(conns, conn)
	}
	d, err := NewRemoteDispatcher(conns, opts)
	if err != nil {
		for _, c := range conns {
			c.Close()
		}
		return nil, err
	}
	d.owned = true
	return d, nil
}

// NewRemoteDispatcher creates a RemoteDispatcher over existing connections,
// which remain owned by the caller. opts may be nil.
func NewRemoteDispatcher(conns []*grpc.ClientConn, opts *NodeOptions) (*RemoteDispatcher, error) {
	if len(conns) == 0 {
		return nil, fmt.Errorf("At least one worker connection is required")
	}
	if opts == nil {
		opts = &NodeOptions{}
	} else {
		opts = CloneNodeOptions(opts)
	}
	if err := ensureDefaultNodeOptionsValues(opts); err != nil {
		return nil, err
	}
	serializer, err := serialization.ByName(opts.Compression)
	if err != nil {
		return nil, err
	}
	encoded, err := pcache.NewLRU(&pcache.LRUConfig{InitialSize: opts.CachedBlocks})
	if err != nil {
		return nil, err
	}
	return &RemoteDispatcher{
		opts:       opts,
		conns:      conns,
		serializer: serializer,
		stats:      &stats.RunStatistics{},
		encoded:    encoded,
	}, nil
}

// Submit sends a *operations.BoundarySearch to the next Worker
func (d *RemoteDispatcher) Submit(ctx context.Context, u sortagg.Unit) (sortagg.Handle, error) {
	search, ok := u.(*operations.BoundarySearch)
	if !ok {
		return nil, errors.UnsupportedUnitError{Unit: u}
	}
	data, err := d.serialize(search.Block)
	if err != nil {
		return nil, err
	}
	req := &LocateRequest{
		UnitID:   search.ID(),
		Block:    data,
		Checksum: xxhash.Sum64(data),
		Key:      search.Key,
		Boundary: search.Boundary,
		Side:     search.Side,
	}
	conn := d.conns[int(atomic.AddUint32(&d.next, 1)-1)%len(d.conns)]
	h := dispatch.NewHandle(search.ID())
	start := d.stats.SubmitUnit()
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, d.opts.RPCTimeout)
		defer cancel()
		resp, err := locate(callCtx, conn, req)
		d.stats.EndUnit(start, err != nil)
		if err != nil {
			h.Complete(nil, fmt.Errorf("Remote boundary search on %s: %w", conn.Target(), err))
			return
		}
		h.Complete(resp.Index, nil)
	}()
	return h, nil
}

// serialize encodes b, reusing the encoding of recently submitted Blocks
func (d *RemoteDispatcher) serialize(b sortagg.Block) ([]byte, error) {
	return d.encoded.GetOrAdd(b.ID(), func() ([]byte, error) {
		var buf bytes.Buffer
		if err := d.serializer.Serialize(&buf, b); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// Gather waits for all Handles, returning results in Handle order
func (d *RemoteDispatcher) Gather(ctx context.Context, handles []sortagg.Handle) ([]interface{}, error) {
	res, err := dispatch.GatherHandles(ctx, handles, d.opts.Progress, d.opts.Logger)
	d.opts.Logger.Debug("remote gather complete",
		zap.Int("workers", len(d.conns)),
		zap.Int64("submitted", d.stats.GetNumUnitsSubmitted()),
		zap.Int64("completed", d.stats.GetNumUnitsCompleted()),
		zap.Int64("failed", d.stats.GetNumUnitsFailed()),
		zap.Duration("avgUnitTime", d.stats.GetCurrentUnitProcessingTime()),
	)
	return res, err
}

// Statistics returns the statistics of units dispatched by this RemoteDispatcher
func (d *RemoteDispatcher) Statistics() *stats.RunStatistics {
	return d.stats
}

// Close closes the Worker connections, if this RemoteDispatcher dialed them
func (d *RemoteDispatcher) Close() error {
	d.encoded.Destroy()
	if !d.owned {
		return nil
	}
	var errs *multierror.Error
	for _, conn := range d.conns {
		if err := conn.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
