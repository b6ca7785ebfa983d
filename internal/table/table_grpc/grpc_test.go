package table_grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/partition"
	"distributed-kmer-table/internal/segment"
	"distributed-kmer-table/internal/table"
)

// 在回环地址上启动一个 rank 的段内存服务
func startSegmentServer(t *testing.T, store *segment.Store) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := grpc.NewServer()
	RegisterSegmentServiceServer(s, NewSegmentGRPCServer(store))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	return lis.Addr().String()
}

// 搭建一个真实走 gRPC 的双 rank 环境
func newTwoRankCluster(t *testing.T, capacity uint64) ([]*table.Table, []*segment.Store) {
	t.Helper()

	plan, err := partition.NewPlan(capacity, 2)
	require.NoError(t, err)

	stores := make([]*segment.Store, 2)
	addrs := make([]string, 2)
	for r := 0; r < 2; r++ {
		stores[r], err = segment.NewStore(plan, r)
		require.NoError(t, err)
		addrs[r] = startSegmentServer(t, stores[r])
	}

	tables := make([]*table.Table, 2)
	for r := 0; r < 2; r++ {
		peer := 1 - r
		transport, err := NewGRPCTransport([]configs.ClusterNode{
			{ID: "peer", Rank: peer, GRPCAddress: addrs[peer]},
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = transport.Close() })

		tables[r], err = table.New(plan, r, stores[r], transport)
		require.NoError(t, err)
	}
	return tables, stores
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRemoteMemoryPrimitives(t *testing.T) {
	plan, err := partition.NewPlan(8, 2)
	require.NoError(t, err)
	store, err := segment.NewStore(plan, 1)
	require.NoError(t, err)
	addr := startSegmentServer(t, store)

	transport, err := NewGRPCTransport([]configs.ClusterNode{{ID: "n1", Rank: 1, GRPCAddress: addr}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	ctx := testCtx(t)

	// 初始为空
	flag, err := transport.ReadFlag(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(0), flag)

	// 远程 CAS：第一次赢，第二次输
	won, err := transport.Reserve(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = transport.Reserve(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, won)

	flag, err = transport.ReadFlag(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), flag)

	// 远程写入后远程读回
	rec, err := kmer.NewRecord("GATTACA", 'T', 'F')
	require.NoError(t, err)
	require.NoError(t, transport.WriteRecord(ctx, 1, 2, rec))

	got, err := transport.ReadRecord(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// 未知 rank
	_, err = transport.ReadFlag(ctx, 5, 0)
	assert.ErrorIs(t, err, errors.ErrClientNotExist)
}

func TestRemoteIndexOutOfRange(t *testing.T) {
	plan, err := partition.NewPlan(8, 2)
	require.NoError(t, err)
	store, err := segment.NewStore(plan, 1)
	require.NoError(t, err)
	addr := startSegmentServer(t, store)

	transport, err := NewGRPCTransport([]configs.ClusterNode{{ID: "n1", Rank: 1, GRPCAddress: addr}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	// 越界索引由对端拒绝，经 gRPC 返回错误
	_, err = transport.ReadFlag(testCtx(t), 1, 100)
	assert.Error(t, err)
}

func TestTwoRankInsertFindOverGRPC(t *testing.T) {
	tables, stores := newTwoRankCluster(t, 64)
	ctx := testCtx(t)

	records := make([]kmer.Record, 0, 20)
	seqs := []string{
		"ACGTACG", "CGTACGT", "GTACGTA", "TACGTAC", "AAAACCC",
		"CCCCGGG", "GGGGTTT", "TTTTAAA", "ACACACA", "GTGTGTG",
		"AGAGAGA", "CTCTCTC", "ATATATA", "GCGCGCG", "AACCGGT",
		"TTGGCCA", "GATTACA", "CATCATC", "TAGTAGT", "CGATCGA",
	}
	for i, seq := range seqs {
		rec, err := kmer.NewRecord(seq, 'A', 'F')
		require.NoError(t, err)
		records = append(records, rec)

		// 轮流从两个 rank 插入，覆盖本地快通道与远程路径
		ok, err := tables[i%2].Insert(ctx, rec)
		require.NoError(t, err)
		assert.True(t, ok, "seq %s", seq)
	}

	var used int64
	for _, s := range stores {
		used += s.Used()
	}
	assert.Equal(t, int64(len(records)), used)

	// 两个 rank 都能命中全部记录
	for _, tbl := range tables {
		for _, rec := range records {
			got, found, err := tbl.Find(ctx, rec.Key(), rec.K)
			require.NoError(t, err)
			require.True(t, found, "rank %d seq %s", tbl.Rank(), rec.Seq())
			assert.Equal(t, rec, got)
		}
	}

	// 未插入的键在两个 rank 上都未命中
	missing, err := kmer.Pack("AAAAAAA")
	require.NoError(t, err)
	for _, tbl := range tables {
		_, found, err := tbl.Find(ctx, missing, 7)
		require.NoError(t, err)
		assert.False(t, found)
	}
}
