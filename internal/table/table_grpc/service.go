package table_grpc

import (
	"context"

	"google.golang.org/grpc"
)

// SegmentService 的服务定义：对单个 rank 的段存储按索引做读 / 写 / CAS。
// 消息结构体由 codec 包以 gob 编码，ServiceDesc 手工维护。

const serviceName = "kmertable.SegmentService"

// 线上传输的消息结构

type Record struct {
	Kmer uint64
	K    uint32
	ExtF byte
	ExtB byte
}

type ReadFlagRequest struct {
	Index uint64
}

type ReadFlagResponse struct {
	Flag int32
}

type ReadRecordRequest struct {
	Index uint64
}

type ReadRecordResponse struct {
	Record Record
}

type WriteRecordRequest struct {
	Index  uint64
	Record Record
}

// gob 拒绝编码没有导出字段的结构体，响应里保留一个确认位
type WriteRecordResponse struct {
	Ok bool
}

type ReserveRequest struct {
	Index uint64
}

type ReserveResponse struct {
	Won bool
}

// 客户端

type SegmentServiceClient interface {
	ReadFlag(ctx context.Context, in *ReadFlagRequest, opts ...grpc.CallOption) (*ReadFlagResponse, error)
	ReadRecord(ctx context.Context, in *ReadRecordRequest, opts ...grpc.CallOption) (*ReadRecordResponse, error)
	WriteRecord(ctx context.Context, in *WriteRecordRequest, opts ...grpc.CallOption) (*WriteRecordResponse, error)
	Reserve(ctx context.Context, in *ReserveRequest, opts ...grpc.CallOption) (*ReserveResponse, error)
}

type segmentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSegmentServiceClient(cc grpc.ClientConnInterface) SegmentServiceClient {
	return &segmentServiceClient{cc: cc}
}

func (c *segmentServiceClient) ReadFlag(ctx context.Context, in *ReadFlagRequest, opts ...grpc.CallOption) (*ReadFlagResponse, error) {
	out := new(ReadFlagResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ReadFlag", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *segmentServiceClient) ReadRecord(ctx context.Context, in *ReadRecordRequest, opts ...grpc.CallOption) (*ReadRecordResponse, error) {
	out := new(ReadRecordResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ReadRecord", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *segmentServiceClient) WriteRecord(ctx context.Context, in *WriteRecordRequest, opts ...grpc.CallOption) (*WriteRecordResponse, error) {
	out := new(WriteRecordResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/WriteRecord", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *segmentServiceClient) Reserve(ctx context.Context, in *ReserveRequest, opts ...grpc.CallOption) (*ReserveResponse, error) {
	out := new(ReserveResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Reserve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// 服务端

type SegmentServiceServer interface {
	ReadFlag(ctx context.Context, req *ReadFlagRequest) (*ReadFlagResponse, error)
	ReadRecord(ctx context.Context, req *ReadRecordRequest) (*ReadRecordResponse, error)
	WriteRecord(ctx context.Context, req *WriteRecordRequest) (*WriteRecordResponse, error)
	Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error)
}

func RegisterSegmentServiceServer(s grpc.ServiceRegistrar, srv SegmentServiceServer) {
	s.RegisterService(&segmentServiceDesc, srv)
}

func readFlagHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadFlagRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmentServiceServer).ReadFlag(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReadFlag"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SegmentServiceServer).ReadFlag(ctx, req.(*ReadFlagRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func readRecordHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadRecordRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmentServiceServer).ReadRecord(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReadRecord"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SegmentServiceServer).ReadRecord(ctx, req.(*ReadRecordRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func writeRecordHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WriteRecordRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmentServiceServer).WriteRecord(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/WriteRecord"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SegmentServiceServer).WriteRecord(ctx, req.(*WriteRecordRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func reserveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReserveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SegmentServiceServer).Reserve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Reserve"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SegmentServiceServer).Reserve(ctx, req.(*ReserveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var segmentServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SegmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReadFlag", Handler: readFlagHandler},
		{MethodName: "ReadRecord", Handler: readRecordHandler},
		{MethodName: "WriteRecord", Handler: writeRecordHandler},
		{MethodName: "Reserve", Handler: reserveHandler},
	},
	Streams: []grpc.StreamDesc{},
}
