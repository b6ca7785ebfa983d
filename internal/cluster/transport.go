package cluster

import (
	"context"
	"time"
)

type Transport interface {
	// 向指定 rank 发送 Announce 消息
	Announce(ctx context.Context, to int, req *AnnounceRequest) (*AnnounceResponse, error)
	// 查询指定 rank 的握手状态
	Status(ctx context.Context, to int, req *StatusRequest) (*StatusResponse, error)
	// 关闭全部连接
	Close() error
}

// Announce 请求与响应

type AnnounceRequest struct {
	FromID   string
	FromRank int
	Params   Params
}

type AnnounceResponse struct {
	OK     bool
	Params Params // 响应方自己的参数，便于调用方定位不一致项
}

// Status 请求与响应

type StatusRequest struct {
	FromRank int
}

type StatusResponse struct {
	Rank  int
	Ready bool
}

// 处理来自其他 rank 的 Announce（由 RPC 层调用）。
// 参数不一致时返回 OK=false，调用方应立即放弃构造而不是重试。
func (n *Node) HandleAnnounce(ctx context.Context, req *AnnounceRequest) (*AnnounceResponse, error) {
	if req == nil || req.FromRank < 0 || req.FromRank >= n.params.Ranks || req.FromRank == n.self.Rank {
		return &AnnounceResponse{OK: false, Params: n.params}, nil
	}
	if req.Params != n.params {
		return &AnnounceResponse{OK: false, Params: n.params}, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if m, ok := n.members[req.FromRank]; ok {
		m.ID = req.FromID
		m.GRPCAddress = n.peerAddress(req.FromRank)
		m.State = StateReady
		m.AnnouncedAt = time.Now().UnixNano()
	} else {
		n.members[req.FromRank] = &Member{
			ID:          req.FromID,
			Rank:        req.FromRank,
			GRPCAddress: n.peerAddress(req.FromRank),
			State:       StateReady,
			AnnouncedAt: time.Now().UnixNano(),
		}
	}

	n.signalIfComplete()
	return &AnnounceResponse{OK: true, Params: n.params}, nil
}

// 处理来自其他 rank 的 Status 查询（由 RPC 层调用）
func (n *Node) HandleStatus(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	return &StatusResponse{Rank: n.self.Rank, Ready: n.Ready()}, nil
}
