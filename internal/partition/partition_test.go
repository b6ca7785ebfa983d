package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distributed-kmer-table/internal/errors"
)

func TestNewPlanValidation(t *testing.T) {
	_, err := NewPlan(0, 4)
	assert.ErrorIs(t, err, errors.ErrBadCapacity)

	_, err = NewPlan(16, 0)
	assert.ErrorIs(t, err, errors.ErrBadRankCount)

	_, err = NewPlan(16, -1)
	assert.ErrorIs(t, err, errors.ErrBadRankCount)
}

func TestScenarioSixteenSlotsFourRanks(t *testing.T) {
	plan, err := NewPlan(16, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), plan.SegmentSize)

	start, end, err := plan.Range(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), start)
	assert.Equal(t, uint64(12), end)

	rank, local := plan.Locate(9)
	assert.Equal(t, 2, rank)
	assert.Equal(t, uint64(1), local)
}

func TestRangeOutOfBounds(t *testing.T) {
	plan, err := NewPlan(16, 4)
	require.NoError(t, err)

	_, _, err = plan.Range(-1)
	assert.ErrorIs(t, err, errors.ErrBadRank)
	_, _, err = plan.Range(4)
	assert.ErrorIs(t, err, errors.ErrBadRank)
}

func TestUnevenLastSegmentShorter(t *testing.T) {
	plan, err := NewPlan(10, 4)
	require.NoError(t, err)
	// ceil(10/4) = 3，最后一段只有 1 个槽位
	assert.Equal(t, uint64(3), plan.SegmentSize)

	lens := make([]uint64, 4)
	for r := 0; r < 4; r++ {
		n, err := plan.SegmentLen(r)
		require.NoError(t, err)
		lens[r] = n
	}
	assert.Equal(t, []uint64{3, 3, 3, 1}, lens)
}

// 覆盖性：所有 rank 的区间恰好拼成 [0, capacity)，无缝隙无重叠，
// 且 Locate 与 Range 对每个槽位给出一致的答案
func TestPartitionCoverage(t *testing.T) {
	cases := []struct {
		capacity uint64
		ranks    int
	}{
		{1, 1},
		{7, 1},
		{16, 4},
		{10, 4},
		{10, 3},
		{100, 7},
		{5, 8}, // rank 数多于槽位数，后面的段为空
	}

	for _, tc := range cases {
		plan, err := NewPlan(tc.capacity, tc.ranks)
		require.NoError(t, err)

		var next uint64
		for r := 0; r < tc.ranks; r++ {
			start, end, err := plan.Range(r)
			require.NoError(t, err)
			assert.Equal(t, next, start, "capacity=%d ranks=%d rank=%d", tc.capacity, tc.ranks, r)
			assert.LessOrEqual(t, start, end)
			next = end
		}
		assert.Equal(t, tc.capacity, next, "capacity=%d ranks=%d", tc.capacity, tc.ranks)

		for slot := uint64(0); slot < tc.capacity; slot++ {
			rank, local := plan.Locate(slot)
			start, end, err := plan.Range(rank)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, slot, start)
			assert.Less(t, slot, end)
			assert.Equal(t, slot-start, local)
		}
	}
}
