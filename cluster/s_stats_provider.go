package cluster

import (
	"context"
	"time"

	"github.com/go-sif/sortagg/internal/stats"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const provideStatisticsMethod = "/sortagg.Stats/ProvideStatistics"

// StatisticsRequest asks a Worker for its runtime statistics
type StatisticsRequest struct {
	Caller string // Caller identifies the requester in the Worker's logs
}

// StatisticsResponse describes the boundary searches served by a Worker
type StatisticsResponse struct {
	WorkerID          string
	StartTime         time.Time
	UnitsSubmitted    int64
	UnitsCompleted    int64
	UnitsFailed       int64
	AvgUnitProcessing time.Duration
}

// StatsSourceServer is the server API for the Stats service
type StatsSourceServer interface {
	ProvideStatistics(ctx context.Context, req *StatisticsRequest) (*StatisticsResponse, error)
}

var statsServiceDesc = grpc.ServiceDesc{
	ServiceName: "sortagg.Stats",
	HandlerType: (*StatsSourceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProvideStatistics",
			Handler:    provideStatisticsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sortagg/cluster/s_stats_provider.go",
}

func provideStatisticsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StatisticsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsSourceServer).ProvideStatistics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: provideStatisticsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatsSourceServer).ProvideStatistics(ctx, req.(*StatisticsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FetchStatistics retrieves the runtime statistics of the Worker at the other end of conn
func FetchStatistics(ctx context.Context, conn *grpc.ClientConn, caller string) (*StatisticsResponse, error) {
	resp := new(StatisticsResponse)
	if err := conn.Invoke(ctx, provideStatisticsMethod, &StatisticsRequest{Caller: caller}, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return resp, nil
}

type statsSourceServer struct {
	workerID     string
	statsTracker *stats.RunStatistics
	logger       *zap.Logger
}

// createStatsSource creates a new stats Source server
func createStatsSource(workerID string, statsTracker *stats.RunStatistics, logger *zap.Logger) *statsSourceServer {
	return &statsSourceServer{workerID: workerID, statsTracker: statsTracker, logger: logger}
}

func (s *statsSourceServer) ProvideStatistics(ctx context.Context, req *StatisticsRequest) (*StatisticsResponse, error) {
	s.logger.Debug("providing statistics", zap.String("caller", req.Caller))
	return &StatisticsResponse{
		WorkerID:          s.workerID,
		StartTime:         s.statsTracker.GetStartTime(),
		UnitsSubmitted:    s.statsTracker.GetNumUnitsSubmitted(),
		UnitsCompleted:    s.statsTracker.GetNumUnitsCompleted(),
		UnitsFailed:       s.statsTracker.GetNumUnitsFailed(),
		AvgUnitProcessing: s.statsTracker.GetCurrentUnitProcessingTime(),
	}, nil
}
