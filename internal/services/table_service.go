package services

import (
	"context"

	"distributed-kmer-table/internal/kmer"
)

// 定义对外提供的 k-mer 表服务接口,
// 不关心底层实现细节
type TableService interface {
	// Insert 返回 false 表示该键的探测序列已饱和（非故障）
	Insert(ctx context.Context, rec kmer.Record) (bool, error)
	// Find 返回键与长度都匹配的记录；未命中时第二个返回值为 false
	Find(ctx context.Context, key kmer.Key, k uint8) (kmer.Record, bool, error)
	// Stats 返回本节点视角的表状态
	Stats(ctx context.Context) (Stats, error)
}

// 本节点视角的表状态
type Stats struct {
	Capacity    uint64
	Ranks       int
	Rank        int
	SegmentSize uint64
	LocalUsed   int64 // 本 rank 段内已占用槽位数
	Ready       bool
}
