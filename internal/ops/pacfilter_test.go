package ops

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

func TestPACFilterPacksMatchesToFront(t *testing.T) {
	r := relation.New(1, 5)
	setCol(r, 0, 1, 9, 2, 9, 9)

	out, err := PACFilter(r, 0, mpc.NewInt(relation.DefaultWidth, 9, mpc.Public), secrel.Eq, 4)
	if err != nil {
		t.Fatalf("PACFilter: %v", err)
	}
	if out.NumRows() != 4 {
		t.Fatalf("output rows = %d, want 4 (truncTo)", out.NumRows())
	}
	flags := revealFlags(out)
	vals := revealCol(out, 0)
	for i := 0; i < 3; i++ {
		if !flags[i] {
			t.Fatalf("slot %d should be live, got flags=%v", i, flags)
		}
		if vals[i] != 9 {
			t.Fatalf("slot %d = %d, want 9", i, vals[i])
		}
	}
	if flags[3] {
		t.Fatalf("slot 3 should be empty (only 3 matches), got flags=%v", flags)
	}
}

func TestPACFilterDropsExcessSilently(t *testing.T) {
	r := relation.New(1, 5)
	setCol(r, 0, 9, 9, 9, 9, 9)

	out, err := PACFilter(r, 0, mpc.NewInt(relation.DefaultWidth, 9, mpc.Public), secrel.Eq, 2)
	if err != nil {
		t.Fatalf("PACFilter: %v", err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("output rows = %d, want 2", out.NumRows())
	}
	for i, f := range revealFlags(out) {
		if !f {
			t.Fatalf("slot %d should be live, output is exactly full", i)
		}
	}
}

func TestPACFilterNegativeTruncIsError(t *testing.T) {
	r := relation.New(1, 1)
	_, err := PACFilter(r, 0, mpc.NewInt(32, 0, mpc.Public), secrel.Eq, -1)
	if err == nil {
		t.Fatal("expected error for negative truncTo")
	}
}

func TestPACFilterZeroTrunc(t *testing.T) {
	r := relation.New(1, 3)
	setCol(r, 0, 9, 9, 9)
	out, err := PACFilter(r, 0, mpc.NewInt(32, 9, mpc.Public), secrel.Eq, 0)
	if err != nil {
		t.Fatalf("PACFilter: %v", err)
	}
	if out.NumRows() != 0 {
		t.Fatalf("output rows = %d, want 0", out.NumRows())
	}
}
