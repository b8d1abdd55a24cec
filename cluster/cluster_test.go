package cluster

import (
	"context"
	stderrors "errors"
	"net"
	"testing"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/dispatch"
	"github.com/go-sif/sortagg/errors"
	"github.com/go-sif/sortagg/operations"
	"github.com/go-sif/sortagg/schema"
	"github.com/go-sif/sortagg/table"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startWorkers serves n Workers over in-memory listeners, returning client
// connections to them. Everything is torn down when the test ends.
func startWorkers(t *testing.T, n int) []*grpc.ClientConn {
	conns := make([]*grpc.ClientConn, n)
	for i := 0; i < n; i++ {
		w, err := CreateWorker(&NodeOptions{Logger: zaptest.NewLogger(t)})
		require.Nil(t, err)
		lis := bufconn.Listen(1024 * 1024)
		served := make(chan error, 1)
		go func() {
			served <- w.Serve(lis)
		}()
		conn, err := grpc.DialContext(context.Background(), "bufnet",
			grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
				return lis.Dial()
			}),
			grpc.WithInsecure(),
		)
		require.Nil(t, err)
		conns[i] = conn
		t.Cleanup(func() {
			conn.Close()
			w.Stop()
			require.Nil(t, <-served)
		})
	}
	return conns
}

func testBlock(t *testing.T) sortagg.Block {
	s := schema.Of("g", &sortagg.StringColumnType{}, "x", &sortagg.Int64ColumnType{})
	b := table.NewBackend().NewBuilder(s)
	rows := [][]interface{}{
		{"b", 3}, {"a", 5}, {"b", 1}, {"a", nil}, {"c", 2}, {"a", 1}, {"b", 3}, {"c", 9},
	}
	for _, r := range rows {
		require.Nil(t, b.Append(r...))
	}
	return b.Build()
}

func rowsOf(b sortagg.Block) [][]interface{} {
	rows := make([][]interface{}, b.NumRows())
	for i := range rows {
		rows[i] = b.Row(i).Values()
	}
	return rows
}

func TestRemoteSortAndPartitionMatchesLocal(t *testing.T) {
	conns := startWorkers(t, 2)
	remote, err := NewRemoteDispatcher(conns, &NodeOptions{Logger: zaptest.NewLogger(t)})
	require.Nil(t, err)
	defer remote.Close()

	key := sortagg.SortKey{sortagg.Asc("g"), sortagg.Desc("x")}
	boundaries := [][]interface{}{{"a"}, {"b", 3}, {"b", 1}, {"c"}}
	b := testBlock(t)

	localEnv := &sortagg.Env{Backend: table.NewBackend(), Dispatcher: dispatch.NewPool(nil), Logger: zaptest.NewLogger(t)}
	remoteEnv := &sortagg.Env{Backend: table.NewBackend(), Dispatcher: remote, Logger: zaptest.NewLogger(t)}
	for _, side := range []operations.Side{operations.SideLeft, operations.SideRight} {
		opts := &operations.PartitionOptions{Side: side}
		local, err := operations.SortAndPartition(context.Background(), localEnv, b, boundaries, key, opts)
		require.Nil(t, err)
		parts, err := operations.SortAndPartition(context.Background(), remoteEnv, b, boundaries, key, opts)
		require.Nil(t, err)
		require.Len(t, parts, len(boundaries)+1)
		for i := range parts {
			require.Equal(t, rowsOf(local[i]), rowsOf(parts[i]), "partition %d on side %s", i, side)
		}
	}
	require.Equal(t, int64(2*len(boundaries)), remote.Statistics().GetNumUnitsCompleted())
	require.Equal(t, int64(0), remote.Statistics().GetNumUnitsFailed())
	served := int64(0)
	for _, conn := range conns {
		workerStats, err := FetchStatistics(context.Background(), conn, "test")
		require.Nil(t, err)
		require.NotEmpty(t, workerStats.WorkerID)
		require.Equal(t, int64(0), workerStats.UnitsFailed)
		require.Equal(t, workerStats.UnitsSubmitted, workerStats.UnitsCompleted)
		served += workerStats.UnitsCompleted
	}
	require.Equal(t, int64(2*len(boundaries)), served)
}

func TestRemoteDispatcherRejectsOtherUnits(t *testing.T) {
	conns := startWorkers(t, 1)
	remote, err := NewRemoteDispatcher(conns, nil)
	require.Nil(t, err)
	_, err = remote.Submit(context.Background(), &otherUnit{})
	require.NotNil(t, err)
	var unsupported errors.UnsupportedUnitError
	require.True(t, stderrors.As(err, &unsupported))
}

type otherUnit struct{}

func (u *otherUnit) ID() string {
	return "other"
}

func (u *otherUnit) Run(ctx context.Context) (interface{}, error) {
	return nil, nil
}

func TestRemoteSearchFailureAbortsPartition(t *testing.T) {
	conns := startWorkers(t, 1)
	remote, err := NewRemoteDispatcher(conns, &NodeOptions{Compression: "none"})
	require.Nil(t, err)
	env := &sortagg.Env{Backend: table.NewBackend(), Dispatcher: remote, Logger: zaptest.NewLogger(t)}
	key := sortagg.SortKey{sortagg.Asc("x")}
	_, err = operations.SortAndPartition(context.Background(), env, testBlock(t), [][]interface{}{{"not a number"}}, key, nil)
	require.NotNil(t, err)
	var dispatchErr errors.DispatchError
	require.True(t, stderrors.As(err, &dispatchErr))
	require.Equal(t, int64(1), remote.Statistics().GetNumUnitsFailed())
}

func TestSerializationCacheReusesEncoding(t *testing.T) {
	conns := startWorkers(t, 1)
	remote, err := NewRemoteDispatcher(conns, nil)
	require.Nil(t, err)
	b := testBlock(t)
	first, err := remote.serialize(b)
	require.Nil(t, err)
	second, err := remote.serialize(b)
	require.Nil(t, err)
	require.Same(t, &first[0], &second[0])
	other, err := remote.serialize(testBlock(t))
	require.Nil(t, err)
	require.NotSame(t, &first[0], &other[0])
}

func TestDispatcherConstruction(t *testing.T) {
	_, err := Dial(nil, nil)
	require.EqualError(t, err, "At least one worker address is required")
	_, err = NewRemoteDispatcher(nil, nil)
	require.EqualError(t, err, "At least one worker connection is required")
	_, err = Dial([]string{"localhost:1643"}, &NodeOptions{Compression: "snappy"})
	require.NotNil(t, err)
	d, err := Dial([]string{"localhost:1643"}, nil)
	require.Nil(t, err)
	require.Nil(t, d.Close())
}

func TestNodeOptionsDefaults(t *testing.T) {
	opts := &NodeOptions{}
	require.Nil(t, ensureDefaultNodeOptionsValues(opts))
	require.Equal(t, "0.0.0.0:1643", opts.connectionString())
	require.Equal(t, "lz4", opts.Compression)
	require.Equal(t, sortagg.DefaultBackendName, opts.Backend.Name())
	clone := CloneNodeOptions(opts)
	clone.Port = 9000
	require.Equal(t, 1643, opts.Port)
}

func TestGobCodec(t *testing.T) {
	codec := gobCodec{}
	require.Equal(t, "gob", codec.Name())
	req := &LocateRequest{
		UnitID:   "u",
		Key:      sortagg.SortKey{sortagg.Desc("x")},
		Boundary: []interface{}{int64(3), "a", nil},
		Side:     operations.SideLeft,
	}
	data, err := codec.Marshal(req)
	require.Nil(t, err)
	decoded := &LocateRequest{}
	require.Nil(t, codec.Unmarshal(data, decoded))
	require.Equal(t, req.Key, decoded.Key)
	require.Equal(t, req.Boundary, decoded.Boundary)
	require.Equal(t, operations.SideLeft, decoded.Side)
}

func TestCorruptBlockIsRejected(t *testing.T) {
	w, err := CreateWorker(&NodeOptions{Logger: zaptest.NewLogger(t)})
	require.Nil(t, err)
	defer w.Stop()
	server := createLocatorServer(w.opts.Backend, w.serializer, w.opts.Logger, w.Statistics())
	_, err = server.Locate(context.Background(), &LocateRequest{
		UnitID:   "u",
		Block:    []byte("garbage"),
		Checksum: 1,
		Key:      sortagg.SortKey{sortagg.Asc("x")},
		Boundary: []interface{}{int64(1)},
	})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "corrupt")
	require.Equal(t, int64(1), w.Statistics().GetNumUnitsFailed())
}

func TestServeAfterStop(t *testing.T) {
	w, err := CreateWorker(nil)
	require.Nil(t, err)
	require.Nil(t, w.Stop())
	require.Nil(t, w.Serve(bufconn.Listen(1024)))
}
