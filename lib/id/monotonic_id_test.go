package id

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		n := gen.Number()
		require.Greater(t, n, prev)
		prev = n
	}
	require.Equal(t, strconv.FormatUint(prev+1, 10), gen.Str())
}

func TestMonotonicRandomStepID(t *testing.T) {
	_, err := MonotonicRandomStepID(0)
	require.Error(t, err)

	gen, err := MonotonicRandomStepID(100)
	require.NoError(t, err)
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		n := gen.Number()
		require.Greater(t, n, prev)
		require.LessOrEqual(t, n-prev, uint64(100))
		prev = n
	}
}

func TestMonotonicNonZeroID_Overflow(t *testing.T) {
	src := &monotonicNonZeroID{val: ^uint64(0)}
	require.Equal(t, uint64(1), src.next(1))
}
