package obliv

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
)

// flagRow is a Sortable pairing a flag with an opaque payload, so tests can
// check that CompactByFlag carries the payload along with the flag instead
// of just permuting flags in isolation.
type flagRow struct {
	flags   []mpc.Bit
	payload []int64
}

func (f flagRow) Len() int { return len(f.flags) }
func (f flagRow) Greater(i, j int) mpc.Bit { return f.flags[j].GreaterThan(f.flags[i]) }
func (f flagRow) Swap(i, j int, cond mpc.Bit) {
	f.flags[i], f.flags[j] = mpc.MuxBit(cond, f.flags[j], f.flags[i]), mpc.MuxBit(cond, f.flags[i], f.flags[j])
	pi, pj := f.payload[i], f.payload[j]
	if cond.Reveal() {
		f.payload[i], f.payload[j] = pj, pi
	}
}

func newFlagRow(flags ...bool) flagRow {
	f := flagRow{flags: make([]mpc.Bit, len(flags)), payload: make([]int64, len(flags))}
	for i, v := range flags {
		f.flags[i] = mpc.NewBit(v)
		f.payload[i] = int64(i)
	}
	return f
}

func revealFlags(f flagRow) []bool {
	out := make([]bool, len(f.flags))
	for i, b := range f.flags {
		out[i] = b.Reveal()
	}
	return out
}

func TestCompactByFlagLivePrecedesDead(t *testing.T) {
	f := newFlagRow(false, true, false, true, true, false)
	CompactByFlag(f)
	flags := revealFlags(f)
	liveCount := 0
	for _, b := range flags {
		if b {
			liveCount++
		}
	}
	if liveCount != 3 {
		t.Fatalf("expected 3 live rows, got %d (%v)", liveCount, flags)
	}
	for i := 0; i < liveCount; i++ {
		if !flags[i] {
			t.Fatalf("flags[%d] should be live, got %v", i, flags)
		}
	}
	for i := liveCount; i < len(flags); i++ {
		if flags[i] {
			t.Fatalf("flags[%d] should be dead, got %v", i, flags)
		}
	}
}

func TestCompactByFlagAllLive(t *testing.T) {
	f := newFlagRow(true, true, true)
	CompactByFlag(f)
	for i, b := range revealFlags(f) {
		if !b {
			t.Fatalf("flags[%d] should remain live", i)
		}
	}
}

func TestCompactByFlagAllDead(t *testing.T) {
	f := newFlagRow(false, false, false, false)
	CompactByFlag(f)
	for i, b := range revealFlags(f) {
		if b {
			t.Fatalf("flags[%d] should remain dead", i)
		}
	}
}

func TestCompactByFlagSingleRow(t *testing.T) {
	f := newFlagRow(true)
	CompactByFlag(f)
	if !f.flags[0].Reveal() {
		t.Fatal("single live row must stay live")
	}
}
