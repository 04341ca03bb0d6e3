package obliv

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
)

// intSlice is a minimal Sortable over a single []mpc.Int, for exercising
// the bitonic network without pulling in internal/relation.
type intSlice []mpc.Int

func (s intSlice) Len() int                 { return len(s) }
func (s intSlice) Greater(i, j int) mpc.Bit { return s[i].Gt(s[j]) }
func (s intSlice) Swap(i, j int, cond mpc.Bit) {
	s[i], s[j] = mpc.MuxInt(cond, s[j], s[i]), mpc.MuxInt(cond, s[i], s[j])
}

func ints(vs ...int64) intSlice {
	out := make(intSlice, len(vs))
	for i, v := range vs {
		out[i] = mpc.NewInt(32, v, mpc.Public)
	}
	return out
}

func reveal(s intSlice) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = v.Reveal()
	}
	return out
}

func TestBitonicSortAscending(t *testing.T) {
	s := ints(5, 1, 4, 2, 8, 3, 7, 6)
	BitonicSort(s, true)
	got := reveal(s)
	want := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", got, want)
		}
	}
}

func TestBitonicSortDescending(t *testing.T) {
	s := ints(1, 2, 3, 4)
	BitonicSort(s, false)
	got := reveal(s)
	want := []int64{4, 3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", got, want)
		}
	}
}

func TestBitonicSortRequiresPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two length")
		}
	}()
	BitonicSort(ints(1, 2, 3), true)
}
