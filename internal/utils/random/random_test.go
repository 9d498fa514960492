package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRejectsEmptyRange(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := Index(n)
		assert.Error(t, err, "n=%d", n)
	}
}

func TestIndexStaysInRange(t *testing.T) {
	v, err := Index(1)
	require.NoError(t, err)
	assert.Zero(t, v)

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		v, err := Index(5)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 5)
}
