package obliv

// CompactByFlag moves every row that Greater ranks lower (the live rows, for
// a flag key) ahead of every row it ranks higher. Relative order within the
// live rows and within the dead rows is not preserved. It is a bitonic
// network for arbitrary lengths keyed on the flag: each half is sorted in
// the opposite direction to the other and the resulting bitonic sequence is
// merged, for O(N log² N) gates.
//
// A naive implementation locates the live/dead boundary by revealing flags
// mid-recursion, which leaks the partition structure to both parties. That
// approach is rejected here: this implementation is a fully oblivious
// bitonic merge-by-flag network, where every comparison is a secret
// Greater call and every data movement is an unconditional Swap at a
// public index, so the access pattern depends only on Len.
func CompactByFlag(s Sortable) {
	compaction(s, 0, s.Len(), true)
}

func compaction(s Sortable, low, n int, liveFirst bool) {
	if n <= 1 {
		return
	}
	mid := n / 2
	compaction(s, low, mid, !liveFirst)
	compaction(s, low+mid, n-mid, liveFirst)
	mergeByFlag(s, low, n, liveFirst)
}

func mergeByFlag(s Sortable, low, n int, liveFirst bool) {
	if n <= 1 {
		return
	}
	m := greatestPowerOfTwoLessThan(n)
	for i := low; i < low+n-m; i++ {
		if liveFirst {
			s.Swap(i, i+m, s.Greater(i, i+m))
		} else {
			s.Swap(i, i+m, s.Greater(i+m, i))
		}
	}
	mergeByFlag(s, low, m, liveFirst)
	mergeByFlag(s, low+m, n-m, liveFirst)
}

func greatestPowerOfTwoLessThan(n int) int {
	k := 1
	for k < n {
		k <<= 1
	}
	return k >> 1
}
