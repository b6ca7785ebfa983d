package table_grpc

import (
	context "context"

	"distributed-kmer-table/internal/segment"
)

// SegmentServiceServer 的实现，内部持有本 rank 的 *segment.Store。
// 探测逻辑不在这里：server 只是把本段内存按索引暴露出去。
type SegmentGRPCServer struct {
	store *segment.Store
}

func NewSegmentGRPCServer(store *segment.Store) *SegmentGRPCServer {
	return &SegmentGRPCServer{store: store}
}

// 处理 ReadFlag RPC 调用
func (s *SegmentGRPCServer) ReadFlag(ctx context.Context, req *ReadFlagRequest) (*ReadFlagResponse, error) {
	flag, err := s.store.Flag(req.Index)
	if err != nil {
		return nil, err
	}
	return &ReadFlagResponse{Flag: flag}, nil
}

// 处理 ReadRecord RPC 调用
func (s *SegmentGRPCServer) ReadRecord(ctx context.Context, req *ReadRecordRequest) (*ReadRecordResponse, error) {
	rec, err := s.store.ReadRecord(req.Index)
	if err != nil {
		return nil, err
	}
	return &ReadRecordResponse{Record: toPBRecord(rec)}, nil
}

// 处理 WriteRecord RPC 调用
func (s *SegmentGRPCServer) WriteRecord(ctx context.Context, req *WriteRecordRequest) (*WriteRecordResponse, error) {
	if err := s.store.WriteRecord(req.Index, fromPBRecord(req.Record)); err != nil {
		return nil, err
	}
	return &WriteRecordResponse{Ok: true}, nil
}

// 处理 Reserve RPC 调用
func (s *SegmentGRPCServer) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error) {
	won, err := s.store.Reserve(req.Index)
	if err != nil {
		return nil, err
	}
	return &ReserveResponse{Won: won}, nil
}
