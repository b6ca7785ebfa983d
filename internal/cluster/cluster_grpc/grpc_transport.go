package cluster_grpc

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/cluster"
	"distributed-kmer-table/internal/codec"
	"distributed-kmer-table/internal/errors"
)

// 节点间握手消息的 gRPC 传输实现。
type GRPCTransport struct {
	mu    sync.RWMutex
	conns map[int]*grpc.ClientConn     // rank -> conn
	cli   map[int]ClusterServiceClient // rank -> client
}

// 返回新的 Cluster GRPCTransport 实例
func NewGRPCTransport(peers []configs.ClusterNode) (*GRPCTransport, error) {
	t := &GRPCTransport{
		conns: make(map[int]*grpc.ClientConn),
		cli:   make(map[int]ClusterServiceClient),
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
		t.cli[p.Rank] = NewClusterServiceClient(conn)
	}

	return t, nil
}

// 发送 Announce 消息
func (t *GRPCTransport) Announce(ctx context.Context, to int, req *cluster.AnnounceRequest) (*cluster.AnnounceResponse, error) {
	t.mu.RLock()
	client, ok := t.cli[to]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.ErrClientNotExist
	}

	pbReq := &AnnounceRequest{
		FromId:   req.FromID,
		FromRank: int64(req.FromRank),
		Params:   toPBParams(req.Params),
	}

	pbResp, err := client.Announce(ctx, pbReq)
	if err != nil {
		return nil, err
	}

	return &cluster.AnnounceResponse{OK: pbResp.Ok, Params: fromPBParams(pbResp.Params)}, nil
}

// 查询握手状态
func (t *GRPCTransport) Status(ctx context.Context, to int, req *cluster.StatusRequest) (*cluster.StatusResponse, error) {
	t.mu.RLock()
	client, ok := t.cli[to]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.ErrClientNotExist
	}

	pbResp, err := client.Status(ctx, &StatusRequest{FromRank: int64(req.FromRank)})
	if err != nil {
		return nil, err
	}

	return &cluster.StatusResponse{Rank: int(pbResp.Rank), Ready: pbResp.Ready}, nil
}

func (t *GRPCTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		_ = c.Close()
	}
	return nil
}

// 参数转换辅助函数
func toPBParams(p cluster.Params) Params {
	return Params{
		Capacity: p.Capacity,
		Ranks:    int64(p.Ranks),
		K:        int64(p.K),
		Epoch:    p.Epoch,
	}
}

// 参数转换辅助函数
func fromPBParams(p Params) cluster.Params {
	return cluster.Params{
		Capacity: p.Capacity,
		Ranks:    int(p.Ranks),
		K:        int(p.K),
		Epoch:    p.Epoch,
	}
}
