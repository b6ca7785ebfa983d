package table_grpc

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/codec"
	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
)

// table.Memory 的 gRPC 实现：对其他 rank 的段存储发起读 / 写 / CAS。
// 每个远程操作对调用方都是同步的，RPC 返回即操作完成。
type GRPCTransport struct {
	mu    sync.RWMutex
	conns map[int]*grpc.ClientConn     // rank -> conn
	cli   map[int]SegmentServiceClient // rank -> client
}

// 返回新的 Segment GRPCTransport 实例
func NewGRPCTransport(peers []configs.ClusterNode) (*GRPCTransport, error) {
	t := &GRPCTransport{
		conns: make(map[int]*grpc.ClientConn),
		cli:   make(map[int]SegmentServiceClient),
	}

	options := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codec.Name)),
	}
	for _, p := range peers {
		conn, err := grpc.NewClient(p.GRPCAddress, options...)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("dial %s: %w", p.GRPCAddress, err)
		}
		t.conns[p.Rank] = conn
		t.cli[p.Rank] = NewSegmentServiceClient(conn)
	}

	return t, nil
}

func (t *GRPCTransport) client(rank int) (SegmentServiceClient, error) {
	t.mu.RLock()
	client, ok := t.cli[rank]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.ErrClientNotExist
	}
	return client, nil
}

// 原子读取远端槽位占用标志
func (t *GRPCTransport) ReadFlag(ctx context.Context, rank int, index uint64) (int32, error) {
	client, err := t.client(rank)
	if err != nil {
		return 0, err
	}

	resp, err := client.ReadFlag(ctx, &ReadFlagRequest{Index: index})
	if err != nil {
		return 0, err
	}
	return resp.Flag, nil
}

// 读取远端槽位记录
func (t *GRPCTransport) ReadRecord(ctx context.Context, rank int, index uint64) (kmer.Record, error) {
	client, err := t.client(rank)
	if err != nil {
		return kmer.Record{}, err
	}

	resp, err := client.ReadRecord(ctx, &ReadRecordRequest{Index: index})
	if err != nil {
		return kmer.Record{}, err
	}
	return fromPBRecord(resp.Record), nil
}

// 写入远端槽位记录
func (t *GRPCTransport) WriteRecord(ctx context.Context, rank int, index uint64, rec kmer.Record) error {
	client, err := t.client(rank)
	if err != nil {
		return err
	}

	_, err = client.WriteRecord(ctx, &WriteRecordRequest{Index: index, Record: toPBRecord(rec)})
	return err
}

// 原子抢占远端槽位
func (t *GRPCTransport) Reserve(ctx context.Context, rank int, index uint64) (bool, error) {
	client, err := t.client(rank)
	if err != nil {
		return false, err
	}

	resp, err := client.Reserve(ctx, &ReserveRequest{Index: index})
	if err != nil {
		return false, err
	}
	return resp.Won, nil
}

func (t *GRPCTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		_ = c.Close()
	}
	return nil
}

// 记录转换辅助函数
func toPBRecord(r kmer.Record) Record {
	return Record{
		Kmer: uint64(r.Kmer),
		K:    uint32(r.K),
		ExtF: r.ExtF,
		ExtB: r.ExtB,
	}
}

// 记录转换辅助函数
func fromPBRecord(r Record) kmer.Record {
	return kmer.Record{
		Kmer: kmer.Key(r.Kmer),
		K:    uint8(r.K),
		ExtF: r.ExtF,
		ExtB: r.ExtB,
	}
}
