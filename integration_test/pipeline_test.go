package integration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-sif/sortagg"
	"github.com/go-sif/sortagg/accumulators"
	"github.com/go-sif/sortagg/cluster"
	"github.com/go-sif/sortagg/datasource/memory"
	"github.com/go-sif/sortagg/datasource/parser/jsonl"
	"github.com/go-sif/sortagg/operations"
	"github.com/go-sif/sortagg/schema"
	"github.com/go-sif/sortagg/table"
	sortaggtesting "github.com/go-sif/sortagg/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type storeKey struct {
	region string
	store  int64
}

type storeTotals struct {
	sum   int64
	count int64
}

// salesData produces numBuffers buffers of JSONL sales records, along with the
// expected totals per (region, store)
func salesData(numBuffers int, rowsPerBuffer int) ([][]byte, map[storeKey]*storeTotals) {
	regions := []string{"north", "south", "east", "west"}
	expected := make(map[storeKey]*storeTotals)
	data := make([][]byte, numBuffers)
	n := 0
	for b := range data {
		buf := []byte{}
		for i := 0; i < rowsPerBuffer; i++ {
			k := storeKey{region: regions[(n*7)%len(regions)], store: int64((n * 13) % 5)}
			sales := int64((n * 31) % 97)
			if n%11 == 0 {
				buf = append(buf, []byte(fmt.Sprintf("{\"region\": %q, \"store\": %d, \"sales\": null}\n", k.region, k.store))...)
			} else {
				buf = append(buf, []byte(fmt.Sprintf("{\"region\": %q, \"store\": %d, \"sales\": %d}\n", k.region, k.store, sales))...)
			}
			totals, ok := expected[k]
			if !ok {
				totals = &storeTotals{}
				expected[k] = totals
			}
			if n%11 != 0 {
				totals.sum += sales
				totals.count++
			}
			n++
		}
		data[b] = buf
	}
	return data, expected
}

func TestDistributedSortAggregate(t *testing.T) {
	data, expected := salesData(4, 60)
	s := schema.Of(
		"region", &sortagg.StringColumnType{},
		"store", &sortagg.Int64ColumnType{},
		"sales", &sortagg.Int64ColumnType{},
	)
	backend := table.NewBackend()
	blocks, err := memory.CreateDataSource(data, jsonl.CreateParser(&jsonl.ParserConf{BlockSize: 45}), s).Load(backend)
	require.Nil(t, err)
	require.Len(t, blocks, 8)

	lc, err := sortaggtesting.StartLocalCluster(&cluster.NodeOptions{Logger: zaptest.NewLogger(t)}, 3)
	require.Nil(t, err)
	defer func() {
		require.Nil(t, lc.Stop())
	}()
	env := &sortagg.Env{Backend: backend, Dispatcher: lc.Dispatcher, Logger: zaptest.NewLogger(t)}

	key := sortagg.SortKey{sortagg.Asc("region"), sortagg.Desc("store")}
	samples := make([]sortagg.Block, len(blocks))
	for i, b := range blocks {
		samples[i], err = operations.Sample(env, b, 10, key, int64(i))
		require.Nil(t, err)
	}
	numPartitions := 4
	boundaries, err := operations.SampleBoundaries(env, samples, key, numPartitions)
	require.Nil(t, err)
	require.Len(t, boundaries, numPartitions-1)

	// map: partition every input Block, then combine each partition
	aggs := []sortagg.AggregateFn{accumulators.Sum("sales"), accumulators.Count("sales"), accumulators.Mean("sales")}
	combined := make([][]sortagg.Block, numPartitions)
	for _, b := range blocks {
		parts, err := operations.SortAndPartition(context.Background(), env, b, boundaries, key, nil)
		require.Nil(t, err)
		require.Len(t, parts, numPartitions)
		for p, part := range parts {
			c, err := operations.Combine(env, part, key, aggs)
			require.Nil(t, err)
			combined[p] = append(combined[p], c)
		}
	}

	// reduce: merge the combined Blocks of each partition, then concatenate the partitions
	reduced := make([]sortagg.Block, numPartitions)
	for p := range combined {
		reduced[p], err = operations.AggregateCombinedBlocks(env, combined[p], key, aggs, true)
		require.Nil(t, err)
	}
	result, err := operations.MergeSortedBlocks(env, reduced, key)
	require.Nil(t, err)

	require.Equal(t, []string{"region", "store", "sum(sales)", "count(sales)", "mean(sales)"}, result.Schema().ColumnNames())
	require.Equal(t, len(expected), result.NumRows())
	seen := make(map[storeKey]bool)
	for i := 0; i < result.NumRows(); i++ {
		row := result.Row(i)
		region, _, err := row.GetString("region")
		require.Nil(t, err)
		store, _, err := row.GetInt64("store")
		require.Nil(t, err)
		k := storeKey{region: region, store: store}
		require.False(t, seen[k], "group %v appears in more than one partition", k)
		seen[k] = true
		want := expected[k]
		require.NotNil(t, want, "unexpected group %v", k)
		values := row.Values()
		require.Equal(t, want.sum, values[2], "sum for %v", k)
		require.Equal(t, want.count, values[3], "count for %v", k)
		require.InDelta(t, float64(want.sum)/float64(want.count), values[4], 1e-9, "mean for %v", k)
		if i > 0 {
			cmp, err := key.CompareRows(keyColumns(t, result, key), i-1, keyColumns(t, result, key), i)
			require.Nil(t, err)
			require.Less(t, cmp, 0)
		}
	}
	require.Equal(t, int64(0), lc.Dispatcher.Statistics().GetNumUnitsFailed())
	require.Equal(t, int64(len(blocks)*len(boundaries)), lc.Dispatcher.Statistics().GetNumUnitsCompleted())
}

func keyColumns(t *testing.T, b sortagg.Block, key sortagg.SortKey) []sortagg.Column {
	cols, err := sortagg.KeyColumns(b, key)
	require.Nil(t, err)
	return cols
}
