package poisson

import (
	"testing"

	"github.com/notargets/gopoisson/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitReverseTable(t *testing.T) {
	table := BitReverseTable(8)
	require.Equal(t, utils.Index{0, 4, 2, 6, 1, 5, 3, 7}, table)

	for _, n := range []int{1, 2, 4, 8, 16, 64, 1024} {
		table = BitReverseTable(n)
		for i := 0; i < n; i++ {
			assert.Equal(t, i, table[table[i]], "involution fails at %d for n=%d", i, n)
		}
	}
}
