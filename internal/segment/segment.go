package segment

import (
	"sync"
	"sync/atomic"

	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/partition"
)

// 本 rank 物理持有的那一段槽位存储：记录数组 + 占用标志数组。
// 占用标志是唯一的同步单元，0 = 空闲，1 = 已占用，只会发生一次 0→1 转换。
// 本地调用与 gRPC server 的远程调用会并发访问同一个 Store。

type Store struct {
	rank   int
	start  uint64 // 本段对应的全局槽位起点
	length uint64

	mu      sync.RWMutex // 保护 records；flags 走原子操作
	records []kmer.Record
	flags   []int32

	used atomic.Int64 // 本段已占用槽位数
}

// NewStore 按划分方案为 rank 分配本段存储；占用标志整体清零
func NewStore(plan partition.Plan, rank int) (*Store, error) {
	start, end, err := plan.Range(rank)
	if err != nil {
		return nil, err
	}

	length := end - start
	return &Store{
		rank:    rank,
		start:   start,
		length:  length,
		records: make([]kmer.Record, length),
		flags:   make([]int32, length),
	}, nil
}

func (s *Store) Rank() int   { return s.rank }
func (s *Store) Len() uint64 { return s.length }

// Range 返回本段覆盖的全局槽位区间 [start, end)
func (s *Store) Range() (start, end uint64) {
	return s.start, s.start + s.length
}

// Used 返回本段已占用的槽位数
func (s *Store) Used() int64 { return s.used.Load() }

func (s *Store) checkIndex(index uint64) error {
	if index >= s.length {
		return errors.ErrSlotOutOfRange
	}
	return nil
}

// Reserve 尝试将槽位占用标志从 0 原子置为 1。
// 返回 true 表示本次调用赢得该槽位；全局范围内每个槽位至多一个赢家。
func (s *Store) Reserve(index uint64) (bool, error) {
	if err := s.checkIndex(index); err != nil {
		return false, err
	}

	won := atomic.CompareAndSwapInt32(&s.flags[index], 0, 1)
	if won {
		s.used.Add(1)
	}
	return won, nil
}

// Flag 原子读取槽位占用标志
func (s *Store) Flag(index uint64) (int32, error) {
	if err := s.checkIndex(index); err != nil {
		return 0, err
	}
	return atomic.LoadInt32(&s.flags[index]), nil
}

// WriteRecord 写入槽位记录；调用方必须已通过 Reserve 赢得该槽位
func (s *Store) WriteRecord(index uint64, rec kmer.Record) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[index] = rec
	s.mu.Unlock()
	return nil
}

// ReadRecord 读取槽位记录
func (s *Store) ReadRecord(index uint64) (kmer.Record, error) {
	if err := s.checkIndex(index); err != nil {
		return kmer.Record{}, err
	}

	s.mu.RLock()
	rec := s.records[index]
	s.mu.RUnlock()
	return rec, nil
}
