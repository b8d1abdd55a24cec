// Package testing provides helpers for running sortagg operations on a
// localhost test cluster.
package testing

import (
	"fmt"
	"net"

	"github.com/go-sif/sortagg/cluster"
	multierror "github.com/hashicorp/go-multierror"
)

// LocalCluster is a set of Workers serving on localhost, and a RemoteDispatcher connected to them
type LocalCluster struct {
	Dispatcher *cluster.RemoteDispatcher
	workers    []*cluster.Worker
	served     []chan error
}

// StartLocalCluster starts numWorkers Workers on ephemeral localhost ports,
// and dials them with a RemoteDispatcher. opts configures both ends and may be nil.
func StartLocalCluster(opts *cluster.NodeOptions, numWorkers int) (lc *LocalCluster, err error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("Number of workers must be at least 1, got %d", numWorkers)
	}
	if opts == nil {
		opts = &cluster.NodeOptions{}
	}
	lc = &LocalCluster{}
	defer func() {
		if err != nil {
			lc.Stop()
		}
	}()
	addrs := make([]string, 0, numWorkers)
	for i := 0; i < numWorkers; i++ {
		wopts := cluster.CloneNodeOptions(opts)
		wopts.Host = "127.0.0.1"
		worker, err := cluster.CreateWorker(wopts)
		if err != nil {
			return nil, err
		}
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("Failed to listen: %v", err)
		}
		served := make(chan error, 1)
		go func() {
			served <- worker.Serve(lis)
		}()
		lc.workers = append(lc.workers, worker)
		lc.served = append(lc.served, served)
		addrs = append(addrs, lis.Addr().String())
	}
	lc.Dispatcher, err = cluster.Dial(addrs, opts)
	if err != nil {
		return nil, err
	}
	return lc, nil
}

// Stop closes the RemoteDispatcher and stops every Worker, waiting for them to exit
func (lc *LocalCluster) Stop() error {
	var errs *multierror.Error
	if lc.Dispatcher != nil {
		if err := lc.Dispatcher.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	for i, w := range lc.workers {
		if err := w.GracefulStop(); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := <-lc.served[i]; err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	lc.workers, lc.served = nil, nil
	return errs.ErrorOrNil()
}
