package cluster_grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ClusterService 的服务定义。
// 消息结构体由 codec 包以 gob 编码，ServiceDesc 手工维护。

const serviceName = "kmertable.ClusterService"

// 线上传输的消息结构

type Params struct {
	Capacity uint64
	Ranks    int64
	K        int64
	Epoch    uint64
}

type AnnounceRequest struct {
	FromId   string
	FromRank int64
	Params   Params
}

type AnnounceResponse struct {
	Ok     bool
	Params Params
}

type StatusRequest struct {
	FromRank int64
}

type StatusResponse struct {
	Rank  int64
	Ready bool
}

// 客户端

type ClusterServiceClient interface {
	Announce(ctx context.Context, in *AnnounceRequest, opts ...grpc.CallOption) (*AnnounceResponse, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
}

type clusterServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewClusterServiceClient(cc grpc.ClientConnInterface) ClusterServiceClient {
	return &clusterServiceClient{cc: cc}
}

func (c *clusterServiceClient) Announce(ctx context.Context, in *AnnounceRequest, opts ...grpc.CallOption) (*AnnounceResponse, error) {
	out := new(AnnounceResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Announce", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Status", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// 服务端

type ClusterServiceServer interface {
	Announce(ctx context.Context, req *AnnounceRequest) (*AnnounceResponse, error)
	Status(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
}

func RegisterClusterServiceServer(s grpc.ServiceRegistrar, srv ClusterServiceServer) {
	s.RegisterService(&clusterServiceDesc, srv)
}

func announceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AnnounceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Announce(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Announce"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClusterServiceServer).Announce(ctx, req.(*AnnounceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Status"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ClusterServiceServer).Status(ctx, req.(*StatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var clusterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ClusterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Announce", Handler: announceHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams: []grpc.StreamDesc{},
}
