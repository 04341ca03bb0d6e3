package ops

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
)

func TestEquiJoinCartesianShape(t *testing.T) {
	l := relation.New(1, 2)
	setCol(l, 0, 1, 2)
	r := relation.New(1, 3)
	setCol(r, 0, 2, 2, 5)

	out, err := EquiJoin(l, r, 0, 0)
	if err != nil {
		t.Fatalf("EquiJoin: %v", err)
	}
	if out.NumRows() != 6 {
		t.Fatalf("rows = %d, want 6 (m*n)", out.NumRows())
	}
	if out.NumCols() != 2 {
		t.Fatalf("cols = %d, want 2 (1+1)", out.NumCols())
	}

	flags := revealFlags(out)
	// row i*n+j: l[i]==r[j]. l=[1,2], r=[2,2,5].
	want := []bool{false, false, false, true, true, false}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("flags = %v, want %v", flags, want)
		}
	}
}

func TestEquiJoinANDsBothInputFlags(t *testing.T) {
	l := relation.New(1, 1)
	setCol(l, 0, 7)
	r := relation.New(1, 1)
	setCol(r, 0, 7)
	r.Flags[0] = mpc.NewBit(false)

	out, err := EquiJoin(l, r, 0, 0)
	if err != nil {
		t.Fatalf("EquiJoin: %v", err)
	}
	if out.Flags[0].Reveal() {
		t.Fatal("joined row must be dead when either input row is dead")
	}
}

func TestEquiJoinInvalidColumn(t *testing.T) {
	l := relation.New(1, 1)
	r := relation.New(1, 1)
	if _, err := EquiJoin(l, r, 3, 0); err == nil {
		t.Fatal("expected error for invalid left column index")
	}
	if _, err := EquiJoin(l, r, 0, 3); err == nil {
		t.Fatal("expected error for invalid right column index")
	}
}
