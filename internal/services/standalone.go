package services

import (
	"context"

	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/table"
)

// 单机模式下的 TableService 实现。
// 整张表只有一个 rank，全部槽位都在本地段内，不经过任何远程传输。
type StandaloneTableService struct {
	tbl *table.Table
}

func NewStandaloneTableService(tbl *table.Table) TableService {
	return &StandaloneTableService{tbl: tbl}
}

func (s *StandaloneTableService) Insert(ctx context.Context, rec kmer.Record) (bool, error) {
	return s.tbl.Insert(ctx, rec)
}

func (s *StandaloneTableService) Find(ctx context.Context, key kmer.Key, k uint8) (kmer.Record, bool, error) {
	return s.tbl.Find(ctx, key, k)
}

func (s *StandaloneTableService) Stats(ctx context.Context) (Stats, error) {
	plan := s.tbl.Plan()
	return Stats{
		Capacity:    plan.Capacity,
		Ranks:       plan.Ranks,
		Rank:        s.tbl.Rank(),
		SegmentSize: plan.SegmentSize,
		LocalUsed:   s.tbl.LocalUsed(),
		Ready:       true,
	}, nil
}
