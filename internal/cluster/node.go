package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"distributed-kmer-table/configs"
	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/util"
)

// 构造屏障：
// 每个 rank 启动后向所有其他 rank 广播 Announce，并等待所有其他 rank 向自己完成 Announce。
// Join 返回即意味着全部段存储已暴露、全部节点参数一致，insert/find 流量可以开始。
// 屏障完成后成员集不再变化。

const announceRetryInterval = 200 * time.Millisecond

type Node struct {
	mu   sync.Mutex
	self Member

	params  Params
	peers   []configs.ClusterNode // 除自身外的所有节点
	members map[int]*Member       // rank -> 已向本节点握手的成员

	transport Transport

	allAnnounced chan struct{} // 所有 peer 都已向本节点握手时关闭
	ready        bool
}

// 创建新的集群节点实例
func NewNode(cfg *configs.AppConfig, transport Transport) *Node {
	n := &Node{
		self: Member{
			ID:          cfg.Self.ID,
			Rank:        cfg.Self.Rank,
			GRPCAddress: cfg.Self.GRPCAddress,
			State:       StateJoining,
		},
		params: Params{
			Capacity: cfg.Cluster.Capacity,
			Ranks:    len(cfg.Cluster.Nodes),
			K:        cfg.Cluster.K,
			Epoch:    cfg.Cluster.Epoch,
		},
		peers:        cfg.Peers(),
		members:      make(map[int]*Member),
		transport:    transport,
		allAnnounced: make(chan struct{}),
	}
	// 单节点集群没有 peer，屏障直接视为完成
	if len(n.peers) == 0 {
		close(n.allAnnounced)
	}
	return n
}

// Self 返回自身成员信息；State 会在 Join 完成时变化，读取须持锁
func (n *Node) Self() Member {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.self
}

func (n *Node) Params() Params { return n.params }

// Ready 报告握手屏障是否已完成
func (n *Node) Ready() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ready
}

// Join 执行集体握手：向全部 peer 广播自身参数并等待全部 peer 握手完成。
// 任一节点参数不一致即失败；对端未就绪时重试，直到 ctx 被取消。
func (n *Node) Join(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range n.peers {
		g.Go(func() error {
			return n.announceTo(gctx, p)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("announce: %w", err)
	}

	// 等待所有 peer 向本节点完成 Announce
	select {
	case <-n.allAnnounced:
	case <-ctx.Done():
		return fmt.Errorf("await peers: %w", ctx.Err())
	}

	n.mu.Lock()
	n.ready = true
	n.self.State = StateReady
	n.mu.Unlock()

	util.L().Infof("cluster barrier complete: rank=%d ranks=%d capacity=%d",
		n.self.Rank, n.params.Ranks, n.params.Capacity)
	return nil
}

// 向单个 peer 重试发送 Announce，直到成功或 ctx 取消
func (n *Node) announceTo(ctx context.Context, peer configs.ClusterNode) error {
	req := &AnnounceRequest{
		FromID:   n.self.ID,
		FromRank: n.self.Rank,
		Params:   n.params,
	}

	for {
		resp, err := n.transport.Announce(ctx, peer.Rank, req)
		if err == nil {
			if !resp.OK {
				return fmt.Errorf("%w: rank %d reports %+v, local %+v",
					errors.ErrClusterMismatch, peer.Rank, resp.Params, n.params)
			}
			return nil
		}

		// 对端可能尚未监听；退避后重试
		util.L().Debugf("announce to rank %d failed, retrying: %v", peer.Rank, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("announce to rank %d: %w", peer.Rank, ctx.Err())
		case <-time.After(announceRetryInterval):
		}
	}
}

// Snapshot 返回当前成员视图（含自身）
func (n *Node) Snapshot() []Member {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Member, 0, len(n.members)+1)
	out = append(out, n.self)
	for _, m := range n.members {
		out = append(out, *m)
	}
	return out
}

// 从配置的节点列表取 rank 对应的 gRPC 地址
func (n *Node) peerAddress(rank int) string {
	for _, p := range n.peers {
		if p.Rank == rank {
			return p.GRPCAddress
		}
	}
	return ""
}

// 持锁调用：全部 peer 握手完成时关闭通知通道
func (n *Node) signalIfComplete() {
	if len(n.members) < len(n.peers) {
		return
	}
	select {
	case <-n.allAnnounced:
	default:
		close(n.allAnnounced)
	}
}
