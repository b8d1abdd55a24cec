package cluster

import (
	"fmt"
	"net"
	"sync"

	"github.com/go-sif/sortagg/internal/stats"
	"github.com/go-sif/sortagg/serialization"
	uuid "github.com/gofrs/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Worker is a node which serves remote boundary searches
type Worker struct {
	id            string
	opts          *NodeOptions
	server        *grpc.Server
	lifecycleLock sync.Mutex
	serializer    serialization.BlockSerializer
	statsTracker  *stats.RunStatistics
}

// CreateWorker is a factory for Workers. opts may be nil.
func CreateWorker(opts *NodeOptions) (*Worker, error) {
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
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("Failed to generate UUID: %v", err)
	}
	w := &Worker{id: id.String(), opts: opts, serializer: serializer, statsTracker: &stats.RunStatistics{}}
	w.server = grpc.NewServer()
	registerLocatorServer(w.server, createLocatorServer(opts.Backend, serializer, opts.Logger, w.statsTracker))
	w.server.RegisterService(&statsServiceDesc, createStatsSource(w.id, w.statsTracker, opts.Logger))
	return w, nil
}

// ID returns the ID of this Worker
func (w *Worker) ID() string {
	return w.id
}

// Statistics returns the statistics of boundary searches served by this Worker
func (w *Worker) Statistics() *stats.RunStatistics {
	return w.statsTracker
}

// Start listens on the configured host and port and serves until stopped.
// Blocks the current goroutine.
func (w *Worker) Start() error {
	lis, err := net.Listen("tcp", w.opts.connectionString())
	if err != nil {
		return fmt.Errorf("Failed to listen: %v", err)
	}
	return w.Serve(lis)
}

// Serve accepts connections on lis until stopped. Blocks the current goroutine.
// Serving a stopped Worker returns immediately.
func (w *Worker) Serve(lis net.Listener) error {
	w.lifecycleLock.Lock()
	server := w.server
	w.lifecycleLock.Unlock()
	if server == nil {
		return lis.Close()
	}
	w.opts.Logger.Info("worker serving", zap.String("id", w.id), zap.String("addr", lis.Addr().String()), zap.String("compression", w.serializer.Name()))
	if err := server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("Failed to serve: %v", err)
	}
	return nil
}

// GracefulStop the worker, waiting for RPCs to finish
func (w *Worker) GracefulStop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	if w.server != nil {
		w.server.GracefulStop()
		w.server = nil
	}
	return nil
}

// Stop the worker immediately
func (w *Worker) Stop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	if w.server != nil {
		w.server.Stop()
		w.server = nil
	}
	return nil
}
