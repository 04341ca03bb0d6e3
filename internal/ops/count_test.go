package ops

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
)

func TestCountSumsLiveFlags(t *testing.T) {
	r := relation.New(1, 5)
	r.Flags[0] = mpc.NewBit(true)
	r.Flags[1] = mpc.NewBit(false)
	r.Flags[2] = mpc.NewBit(true)
	r.Flags[3] = mpc.NewBit(true)
	r.Flags[4] = mpc.NewBit(false)

	out := Count(r)
	if out.NumRows() != 1 || out.NumCols() != 1 {
		t.Fatalf("shape = %dx%d, want 1x1", out.NumCols(), out.NumRows())
	}
	if got := out.Columns[0][0].Reveal(); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
	if !out.Flags[0].Reveal() {
		t.Fatal("count output row must be live")
	}
}

func TestCountOfEmptyRelation(t *testing.T) {
	r := relation.New(1, 0)
	out := Count(r)
	if got := out.Columns[0][0].Reveal(); got != 0 {
		t.Fatalf("count of empty relation = %d, want 0", got)
	}
}
