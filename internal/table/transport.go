package table

import (
	"context"

	"distributed-kmer-table/internal/kmer"
)

// 远程内存访问接口：按（rank, 段内索引）对任意 rank 的段存储做
// 读 / 写 / 原子 compare-and-swap。表算法只面向该接口，不绑定具体传输。
type Memory interface {
	// 原子读取槽位占用标志
	ReadFlag(ctx context.Context, rank int, index uint64) (int32, error)
	// 读取槽位记录
	ReadRecord(ctx context.Context, rank int, index uint64) (kmer.Record, error)
	// 写入槽位记录（仅限 Reserve 的赢家调用）
	WriteRecord(ctx context.Context, rank int, index uint64, rec kmer.Record) error
	// 原子将槽位占用标志从 0 置为 1，返回是否赢得该槽位
	Reserve(ctx context.Context, rank int, index uint64) (bool, error)
	// 关闭全部连接
	Close() error
}
