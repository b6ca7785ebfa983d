package kmer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distributed-kmer-table/internal/errors"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, seq := range []string{"A", "ACGT", "TTTT", "GATTACA", "ACGTACGTACGTACGTACGTACGTACGTACGT"} {
		key, err := Pack(seq)
		require.NoError(t, err)
		assert.Equal(t, seq, key.Unpack(len(seq)))
	}
}

func TestPackLowercase(t *testing.T) {
	upper, err := Pack("ACGT")
	require.NoError(t, err)
	lower, err := Pack("acgt")
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestPackRejectsBadInput(t *testing.T) {
	_, err := Pack("")
	assert.ErrorIs(t, err, errors.ErrBadKmerLen)

	_, err = Pack("ACGTACGTACGTACGTACGTACGTACGTACGTA") // 33 个碱基
	assert.ErrorIs(t, err, errors.ErrBadKmerLen)

	_, err = Pack("ACGN")
	assert.ErrorIs(t, err, errors.ErrBadBase)
}

func TestHashDeterministic(t *testing.T) {
	key, err := Pack("GATTACA")
	require.NoError(t, err)

	h := key.Hash()
	for i := 0; i < 10; i++ {
		assert.Equal(t, h, key.Hash())
	}

	other, err := Pack("GATTACC")
	require.NoError(t, err)
	assert.NotEqual(t, h, other.Hash())
}

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord("GATTACA", 'T', Terminator)
	require.NoError(t, err)
	assert.Equal(t, "GATTACA", rec.Seq())
	assert.Equal(t, uint8(7), rec.K)
	assert.Equal(t, byte('T'), rec.ExtF)
	assert.Equal(t, byte(Terminator), rec.ExtB)
	assert.Equal(t, rec.Kmer, rec.Key())

	_, err = NewRecord("GATTACA", 'X', 'A')
	assert.ErrorIs(t, err, errors.ErrBadBase)

	_, err = NewRecord("GATTACA", 'A', 'Z')
	assert.ErrorIs(t, err, errors.ErrBadBase)
}

func TestDistinctKeysDistinctPacking(t *testing.T) {
	a, err := Pack("AAAC")
	require.NoError(t, err)
	b, err := Pack("ACAA")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
