package poisson

import "github.com/notargets/gopoisson/utils"

// BitReverseTable returns the permutation of [0, n) that reverses the
// log₂(n)-bit binary representation of each index. The table is an
// involution. The FFT leaves its output in this order: the spectral
// content of global phi slot n is the wavenumber table[n], so local slot
// kk of a rank starting at OS holds table[OS+kk].
func BitReverseTable(n int) (table utils.Index) {
	var (
		l = utils.Log2(n)
	)
	table = utils.NewIndex(n)
	for i := 0; i < n; i++ {
		rev := 0
		for b := 0; b < l; b++ {
			rev = rev<<1 | (i >> b & 1)
		}
		table[i] = rev
	}
	return
}
