package cluster

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/internal/stats"
	"github.com/go-sif/sortagg/operations"
	"github.com/go-sif/sortagg/serialization"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const locateMethod = "/sortagg.Locator/Locate"

// LocateRequest asks a Worker to run a boundary search
type LocateRequest struct {
	UnitID   string
	Block    []byte // Block is a serialized Block holding the key columns of a sorted Block
	Checksum uint64 // Checksum is the xxhash of Block
	Key      sortagg.SortKey
	Boundary []interface{}
	Side     operations.Side
}

// LocateResponse carries the located row index
type LocateResponse struct {
	Index int
}

// LocatorServer is the server API for the Locator service
type LocatorServer interface {
	Locate(ctx context.Context, req *LocateRequest) (*LocateResponse, error)
}

var locatorServiceDesc = grpc.ServiceDesc{
	ServiceName: "sortagg.Locator",
	HandlerType: (*LocatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Locate",
			Handler:    locateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sortagg/cluster/s_locator.go",
}

// registerLocatorServer registers a LocatorServer with a grpc.Server
func registerLocatorServer(s *grpc.Server, srv LocatorServer) {
	s.RegisterService(&locatorServiceDesc, srv)
}

func locateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LocateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocatorServer).Locate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: locateMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LocatorServer).Locate(ctx, req.(*LocateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// locate invokes the Locate method of a remote LocatorServer
func locate(ctx context.Context, conn *grpc.ClientConn, req *LocateRequest) (*LocateResponse, error) {
	resp := new(LocateResponse)
	if err := conn.Invoke(ctx, locateMethod, req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return resp, nil
}

type locatorServer struct {
	backend      sortagg.Backend
	serializer   serialization.BlockSerializer
	logger       *zap.Logger
	statsTracker *stats.RunStatistics
}

// createLocatorServer creates a new locator server
func createLocatorServer(backend sortagg.Backend, serializer serialization.BlockSerializer, logger *zap.Logger, statsTracker *stats.RunStatistics) *locatorServer {
	return &locatorServer{backend: backend, serializer: serializer, logger: logger, statsTracker: statsTracker}
}

// Locate deserializes the key columns of a sorted Block and locates a boundary within them
func (s *locatorServer) Locate(ctx context.Context, req *LocateRequest) (resp *LocateResponse, err error) {
	start := s.statsTracker.SubmitUnit()
	defer func() {
		s.statsTracker.EndUnit(start, err != nil)
	}()
	if sum := xxhash.Sum64(req.Block); sum != req.Checksum {
		return nil, fmt.Errorf("Block for unit %s is corrupt: checksum %x, expected %x", req.UnitID, sum, req.Checksum)
	}
	b, err := s.serializer.Deserialize(bytes.NewReader(req.Block), s.backend)
	if err != nil {
		return nil, err
	}
	idx, err := operations.FindBoundaryIndex(b, req.Key, req.Boundary, req.Side)
	if err != nil {
		s.logger.Debug("boundary search failed", zap.String("unit", req.UnitID), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("located boundary", zap.String("unit", req.UnitID), zap.Int("rows", b.NumRows()), zap.Int("index", idx))
	return &LocateResponse{Index: idx}, nil
}
