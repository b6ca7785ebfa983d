package services

import (
	"context"

	"distributed-kmer-table/internal/cluster"
	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/table"
)

// 集群模式下的 TableService 实现。
// 在握手屏障完成前拒绝 insert/find，避免对尚未暴露的段发起远程操作。
type ClusterTableService struct {
	tbl  *table.Table
	node *cluster.Node
}

func NewClusterTableService(tbl *table.Table, node *cluster.Node) TableService {
	return &ClusterTableService{tbl: tbl, node: node}
}

func (s *ClusterTableService) Insert(ctx context.Context, rec kmer.Record) (bool, error) {
	if !s.node.Ready() {
		return false, errors.ErrNotReady
	}
	return s.tbl.Insert(ctx, rec)
}

func (s *ClusterTableService) Find(ctx context.Context, key kmer.Key, k uint8) (kmer.Record, bool, error) {
	if !s.node.Ready() {
		return kmer.Record{}, false, errors.ErrNotReady
	}
	return s.tbl.Find(ctx, key, k)
}

func (s *ClusterTableService) Stats(ctx context.Context) (Stats, error) {
	plan := s.tbl.Plan()
	return Stats{
		Capacity:    plan.Capacity,
		Ranks:       plan.Ranks,
		Rank:        s.tbl.Rank(),
		SegmentSize: plan.SegmentSize,
		LocalUsed:   s.tbl.LocalUsed(),
		Ready:       s.node.Ready(),
	}, nil
}
