package segment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distributed-kmer-table/internal/errors"
	"distributed-kmer-table/internal/kmer"
	"distributed-kmer-table/internal/partition"
)

func newTestStore(t *testing.T, capacity uint64, ranks, rank int) *Store {
	t.Helper()
	plan, err := partition.NewPlan(capacity, ranks)
	require.NoError(t, err)
	store, err := NewStore(plan, rank)
	require.NoError(t, err)
	return store
}

func TestNewStoreZeroFilled(t *testing.T) {
	store := newTestStore(t, 16, 4, 2)
	assert.Equal(t, uint64(4), store.Len())
	assert.Equal(t, int64(0), store.Used())

	start, end := store.Range()
	assert.Equal(t, uint64(8), start)
	assert.Equal(t, uint64(12), end)

	for i := uint64(0); i < store.Len(); i++ {
		flag, err := store.Flag(i)
		require.NoError(t, err)
		assert.Equal(t, int32(0), flag)
	}
}

func TestReserveFlagTransition(t *testing.T) {
	store := newTestStore(t, 8, 1, 0)

	won, err := store.Reserve(3)
	require.NoError(t, err)
	assert.True(t, won)

	flag, err := store.Flag(3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), flag)
	assert.Equal(t, int64(1), store.Used())

	// 同一槽位的第二次抢占必须失败
	won, err = store.Reserve(3)
	require.NoError(t, err)
	assert.False(t, won)
	assert.Equal(t, int64(1), store.Used())
}

// 至多一个赢家：并发抢占同一槽位时恰好一次成功
func TestReserveAtMostOneWinner(t *testing.T) {
	store := newTestStore(t, 4, 1, 0)

	const contenders = 64
	var wg sync.WaitGroup
	wins := make(chan int, contenders)

	for g := 0; g < contenders; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			won, err := store.Reserve(1)
			assert.NoError(t, err)
			if won {
				wins <- id
			}
		}(g)
	}
	wg.Wait()
	close(wins)

	winners := 0
	for range wins {
		winners++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, int64(1), store.Used())
}

func TestWriteReadRecord(t *testing.T) {
	store := newTestStore(t, 8, 2, 0)

	rec, err := kmer.NewRecord("ACGT", 'A', 'F')
	require.NoError(t, err)

	won, err := store.Reserve(2)
	require.NoError(t, err)
	require.True(t, won)
	require.NoError(t, store.WriteRecord(2, rec))

	got, err := store.ReadRecord(2)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestIndexBounds(t *testing.T) {
	store := newTestStore(t, 8, 2, 1)
	require.Equal(t, uint64(4), store.Len())

	_, err := store.Flag(4)
	assert.ErrorIs(t, err, errors.ErrSlotOutOfRange)
	_, err = store.Reserve(100)
	assert.ErrorIs(t, err, errors.ErrSlotOutOfRange)
	err = store.WriteRecord(4, kmer.Record{})
	assert.ErrorIs(t, err, errors.ErrSlotOutOfRange)
	_, err = store.ReadRecord(4)
	assert.ErrorIs(t, err, errors.ErrSlotOutOfRange)
}

func TestEmptyTailSegment(t *testing.T) {
	// 5 个槽位 8 个 rank：靠后的 rank 没有槽位
	store := newTestStore(t, 5, 8, 7)
	assert.Equal(t, uint64(0), store.Len())

	_, err := store.Flag(0)
	assert.ErrorIs(t, err, errors.ErrSlotOutOfRange)
}
