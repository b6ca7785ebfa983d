package partition

import (
	"distributed-kmer-table/internal/errors"
)

// 逻辑槽位空间到各 rank 的静态划分。
// 纯函数计算，无任何共享状态；所有节点对同一参数得到完全一致的划分。

// 一次划分方案：容量 + 参与 rank 数
type Plan struct {
	Capacity    uint64 // 逻辑槽位总数，构造后不变
	Ranks       int    // 参与进程数
	SegmentSize uint64 // ceil(Capacity / Ranks)
}

// NewPlan 构造划分方案；容量与 rank 数必须为正
func NewPlan(capacity uint64, ranks int) (Plan, error) {
	if capacity == 0 {
		return Plan{}, errors.ErrBadCapacity
	}
	if ranks <= 0 {
		return Plan{}, errors.ErrBadRankCount
	}

	segmentSize := (capacity + uint64(ranks) - 1) / uint64(ranks)
	return Plan{Capacity: capacity, Ranks: ranks, SegmentSize: segmentSize}, nil
}

// Range 返回 rank 拥有的槽位区间 [start, end)；最后一段可能较短
func (p Plan) Range(rank int) (start, end uint64, err error) {
	if rank < 0 || rank >= p.Ranks {
		return 0, 0, errors.ErrBadRank
	}

	start = uint64(rank) * p.SegmentSize
	end = start + p.SegmentSize
	if end > p.Capacity {
		end = p.Capacity
	}
	if start > end {
		start = end
	}
	return start, end, nil
}

// SegmentLen 返回 rank 拥有的槽位数量
func (p Plan) SegmentLen(rank int) (uint64, error) {
	start, end, err := p.Range(rank)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// Locate 将逻辑槽位号解析为（所属 rank, 段内索引）。
// 调用方保证 slot < Capacity（探测序列对容量取模后不会越界）。
func (p Plan) Locate(slot uint64) (rank int, localIndex uint64) {
	return int(slot / p.SegmentSize), slot % p.SegmentSize
}
