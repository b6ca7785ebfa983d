package table

import (
	"context"

	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/partition"
	"distributed-kmer-table/internal/segment"
)

// 固定容量的分布式开放寻址哈希表。
// 所有 rank 共享同一个逻辑槽位空间，线性探测覆盖全局容量；
// 槽位归属由 partition.Plan 决定，落在本 rank 的槽位直接走本地段存储，
// 其余槽位经 Memory 接口远程访问。表不扩容、不再哈希、不删除。

type Table struct {
	plan     partition.Plan
	selfRank int
	local    *segment.Store // 本 rank 的段
	mem      Memory         // 访问其他 rank 的段；单 rank 时可为 nil
}

// New 构造表的本地视图。
// 集群模式下必须在握手屏障完成后调用；local 的划分必须与 plan 一致。
func New(plan partition.Plan, selfRank int, local *segment.Store, mem Memory) (*Table, error) {
	if selfRank < 0 || selfRank >= plan.Ranks {
		return nil, errors.ErrBadRank
	}
	if mem == nil && plan.Ranks > 1 {
		return nil, errors.ErrNoTransport
	}

	wantLen, err := plan.SegmentLen(selfRank)
	if err != nil {
		return nil, err
	}
	if local == nil || local.Len() != wantLen {
		return nil, errors.ErrSlotOutOfRange
	}

	return &Table{plan: plan, selfRank: selfRank, local: local, mem: mem}, nil
}

func (t *Table) Capacity() uint64     { return t.plan.Capacity }
func (t *Table) Plan() partition.Plan { return t.plan }
func (t *Table) Rank() int            { return t.selfRank }

// LocalUsed 返回本 rank 段内已占用的槽位数
func (t *Table) LocalUsed() int64 { return t.local.Used() }

// Insert 沿键的探测序列插入记录。
// 每个探测位置用一次原子 CAS 抢占占用标志，抢到即写入记录并返回 true；
// 探测完全部容量仍无空位时返回 false（该键的探测序列已饱和，非故障）。
func (t *Table) Insert(ctx context.Context, rec kmer.Record) (bool, error) {
	hash := rec.Key().Hash()

	for probe := uint64(0); probe < t.plan.Capacity; probe++ {
		slot := (hash + probe) % t.plan.Capacity
		rank, index := t.plan.Locate(slot)

		won, err := t.reserve(ctx, rank, index)
		if err != nil {
			return false, err
		}
		if !won {
			continue
		}

		if err := t.writeRecord(ctx, rank, index, rec); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Find 沿键的探测序列查找长度为 k 的记录。
// 2-bit 打包不携带长度（"AAC" 与 "C" 打包结果相同），
// 命中要求键与长度同时相等，否则不同长度的序列会互相误中。
// 探测位置为空即终止：表不支持删除，空槽证明该键不会出现在序列更后方，
// 提前返回不会产生假阴性，并把未命中的开销压到 O(探测长度)。
func (t *Table) Find(ctx context.Context, key kmer.Key, k uint8) (kmer.Record, bool, error) {
	hash := key.Hash()

	for probe := uint64(0); probe < t.plan.Capacity; probe++ {
		slot := (hash + probe) % t.plan.Capacity
		rank, index := t.plan.Locate(slot)

		flag, err := t.readFlag(ctx, rank, index)
		if err != nil {
			return kmer.Record{}, false, err
		}
		if flag == 0 {
			return kmer.Record{}, false, nil
		}

		rec, err := t.readRecord(ctx, rank, index)
		if err != nil {
			return kmer.Record{}, false, err
		}
		if rec.Kmer == key && rec.K == k {
			return rec, true, nil
		}
	}
	return kmer.Record{}, false, nil
}

// region
// 本地快通道 + 远程委托

func (t *Table) reserve(ctx context.Context, rank int, index uint64) (bool, error) {
	if rank == t.selfRank {
		return t.local.Reserve(index)
	}
	return t.mem.Reserve(ctx, rank, index)
}

func (t *Table) readFlag(ctx context.Context, rank int, index uint64) (int32, error) {
	if rank == t.selfRank {
		return t.local.Flag(index)
	}
	return t.mem.ReadFlag(ctx, rank, index)
}

func (t *Table) readRecord(ctx context.Context, rank int, index uint64) (kmer.Record, error) {
	if rank == t.selfRank {
		return t.local.ReadRecord(index)
	}
	return t.mem.ReadRecord(ctx, rank, index)
}

func (t *Table) writeRecord(ctx context.Context, rank int, index uint64, rec kmer.Record) error {
	if rank == t.selfRank {
		return t.local.WriteRecord(index, rec)
	}
	return t.mem.WriteRecord(ctx, rank, index, rec)
}

// endregion

// Close 释放远程连接；须在所有 rank 均不再发起远程操作后调用
func (t *Table) Close() error {
	if t.mem == nil {
		return nil
	}
	return t.mem.Close()
}
