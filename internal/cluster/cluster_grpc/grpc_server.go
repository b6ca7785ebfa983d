package cluster_grpc

import (
	context "context"

	"google.golang.org/grpc"

	"distributed-kmer-table/internal/cluster"
)

// ClusterServiceServer 的实现，内部持有 *cluster.Node。
// 握手合并/校验逻辑放在 cluster 包内实现。
type ClusterGRPCServer struct {
	node *cluster.Node
}

func NewClusterGRPCServer(node *cluster.Node) *ClusterGRPCServer {
	return &ClusterGRPCServer{node: node}
}

// 生成一个标准 grpc.Server，供外部统一创建
func NewGRPCServerWrapper() *grpc.Server {
	return grpc.NewServer()
}

// 处理 Announce RPC 调用
func (s *ClusterGRPCServer) Announce(ctx context.Context, req *AnnounceRequest) (*AnnounceResponse, error) {
	internalReq := &cluster.AnnounceRequest{
		FromID:   req.FromId,
		FromRank: int(req.FromRank),
		Params:   fromPBParams(req.Params),
	}

	resp, err := s.node.HandleAnnounce(ctx, internalReq)
	if err != nil {
		return nil, err
	}
	return &AnnounceResponse{Ok: resp.OK, Params: toPBParams(resp.Params)}, nil
}

// 处理 Status RPC 调用
func (s *ClusterGRPCServer) Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	resp, err := s.node.HandleStatus(ctx, &cluster.StatusRequest{FromRank: int(req.FromRank)})
	if err != nil {
		return nil, err
	}
	return &StatusResponse{Rank: int64(resp.Rank), Ready: resp.Ready}, nil
}
