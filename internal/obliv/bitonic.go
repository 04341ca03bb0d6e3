package obliv

import "github.com/rawblock/oblivrel/internal/mpc"

// Sortable is anything bitonic machinery can sort obliviously: a secret
// comparator between two positions, and a swap that moves every column of
// the underlying row (not just the key) when the caller decides to.
// internal/relation adapts a Relation to this once per sort key.
type Sortable interface {
	Len() int
	// Greater returns the secret bit (key[i] > key[j]).
	Greater(i, j int) mpc.Bit
	// Swap exchanges rows i and j iff cond, touching every column.
	Swap(i, j int, cond mpc.Bit)
}

// BitonicSort sorts s in place by the standard power-of-two recursion. Len
// MUST be a power of two — non-power-of-two relations are padded by the
// caller (internal/relation) with maximum-key, non-live rows before
// sorting, then truncated back afterward.
func BitonicSort(s Sortable, ascending bool) {
	n := s.Len()
	if n&(n-1) != 0 {
		panic("obliv: BitonicSort requires a power-of-two length; caller must pad")
	}
	bitonicSort(s, 0, n, ascending)
}

func bitonicSort(s Sortable, low, n int, ascending bool) {
	if n <= 1 {
		return
	}
	mid := n / 2
	bitonicSort(s, low, mid, true)
	bitonicSort(s, low+mid, mid, false)
	bitonicMerge(s, low, n, ascending)
}

func bitonicMerge(s Sortable, low, n int, ascending bool) {
	if n <= 1 {
		return
	}
	mid := n / 2
	for i := low; i < low+mid; i++ {
		j := i + mid
		s.Swap(i, j, orderCond(s.Greater(i, j), ascending))
	}
	bitonicMerge(s, low, mid, ascending)
	bitonicMerge(s, low+mid, mid, ascending)
}

// orderCond mirrors "(key[i] > key[j]) == ascending": the comparator only
// ever observes the key columns, never the payload.
func orderCond(greater mpc.Bit, ascending bool) mpc.Bit {
	if ascending {
		return greater
	}
	return greater.Not()
}
