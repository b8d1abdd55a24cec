package cluster

import (
	"fmt"
	"time"

	"github.com/go-sif/sortagg"
	"go.uber.org/zap"
)

// NodeOptions are options for a Worker node or a RemoteDispatcher
type NodeOptions struct {
	Port         int             // port for a Worker to bind to
	Host         string          // hostname for a Worker to bind to
	RPCTimeout   time.Duration   // timeout for each Locate call made by a RemoteDispatcher
	Compression  string          // block compression used on the wire: "none", "lz4" or "zstd". Must match on both ends
	Backend      sortagg.Backend // Backend builds Blocks received by a Worker. Defaults to the native backend
	CachedBlocks int             // the number of encoded Blocks a RemoteDispatcher retains for reuse. Defaults to 8
	Logger       *zap.Logger
	Progress     sortagg.ProgressFn // Progress is notified as a RemoteDispatcher gathers results
}

// CloneNodeOptions makes a copy of a NodeOptions
func CloneNodeOptions(opts *NodeOptions) *NodeOptions {
	clone := *opts
	return &clone
}

func ensureDefaultNodeOptionsValues(opts *NodeOptions) error {
	if opts.Port == 0 {
		opts.Port = 1643
	}
	if len(opts.Host) == 0 {
		opts.Host = "0.0.0.0"
	}
	if opts.RPCTimeout == 0 {
		opts.RPCTimeout = time.Duration(5) * time.Second
	}
	if len(opts.Compression) == 0 {
		opts.Compression = "lz4"
	}
	if opts.CachedBlocks <= 0 {
		opts.CachedBlocks = 8
	}
	if opts.Backend == nil {
		backend, err := sortagg.OpenBackend(sortagg.DefaultBackendName)
		if err != nil {
			return err
		}
		opts.Backend = backend
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return nil
}

// connectionString returns the connection string for this node
func (o *NodeOptions) connectionString() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}
