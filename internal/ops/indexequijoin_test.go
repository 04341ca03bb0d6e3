package ops

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

func TestCompactSizeModes(t *testing.T) {
	cases := []struct {
		mode         secrel.CompactionMode
		bl, br       int
		fixed, l, r  int
		want         int
	}{
		{secrel.None, 3, 4, 0, 0, 0, 12},
		{secrel.SmallerRel, 3, 4, 0, 0, 0, 3},
		{secrel.LargerRel, 3, 4, 0, 0, 0, 4},
		{secrel.FixedSize, 3, 4, 7, 0, 0, 7},
		{secrel.MF, 3, 4, 0, 2, 5, 8}, // min(3*5, 4*2, 12) = min(15,8,12) = 8
	}
	for _, c := range cases {
		got := compactSize(c.mode, c.bl, c.br, c.fixed, c.l, c.r)
		if got != c.want {
			t.Errorf("compactSize(%v, %d, %d, fixed=%d, mf=%d,%d) = %d, want %d",
				c.mode, c.bl, c.br, c.fixed, c.l, c.r, got, c.want)
		}
	}
}

// buildBucketed constructs two relations each with two buckets of two rows.
// Bucket 0 is an all-matching 2x2 join key; bucket 1 is a non-matching key.
func buildBucketed() (l, r *relation.Relation, indexL, indexR []secrel.BucketRange) {
	l = relation.New(1, 4)
	setCol(l, 0, 1, 1, 2, 2)
	r = relation.New(1, 4)
	setCol(r, 0, 1, 1, 3, 3)
	indexL = []secrel.BucketRange{{Start: 0, End: 1}, {Start: 2, End: 3}}
	indexR = []secrel.BucketRange{{Start: 0, End: 1}, {Start: 2, End: 3}}
	return
}

func TestIndexEquiJoinNoCompaction(t *testing.T) {
	l, r, indexL, indexR := buildBucketed()
	out, err := IndexEquiJoin(l, r, indexL, indexR, IndexEquiJoinParams{ColL: 0, ColR: 0, Mode: secrel.None})
	if err != nil {
		t.Fatalf("IndexEquiJoin: %v", err)
	}
	// two buckets of 2x2 -> 4 rows each -> 8 rows total.
	if out.NumRows() != 8 {
		t.Fatalf("rows = %d, want 8", out.NumRows())
	}
	liveCount := out.LiveCount()
	if liveCount != 4 {
		t.Fatalf("live rows = %d, want 4 (bucket 0's full 2x2 match)", liveCount)
	}
}

func TestIndexEquiJoinSmallerRelCompaction(t *testing.T) {
	l, r, indexL, indexR := buildBucketed()
	out, err := IndexEquiJoin(l, r, indexL, indexR, IndexEquiJoinParams{ColL: 0, ColR: 0, Mode: secrel.SmallerRel})
	if err != nil {
		t.Fatalf("IndexEquiJoin: %v", err)
	}
	// SMALLER_REL: min(2,2)=2 per bucket -> 4 rows total. Bucket 0's two
	// slots hold two of its four matches; bucket 1 has no matches.
	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", out.NumRows())
	}
	liveCount := out.LiveCount()
	if liveCount != 2 {
		t.Fatalf("live rows = %d, want 2 (SortByFlag must keep the matches, not the non-matches)", liveCount)
	}
}

func TestIndexEquiJoinBucketCountMismatch(t *testing.T) {
	l, r, indexL, _ := buildBucketed()
	_, err := IndexEquiJoin(l, r, indexL, indexL[:1], IndexEquiJoinParams{ColL: 0, ColR: 0, Mode: secrel.None})
	if err == nil {
		t.Fatal("expected error for mismatched bucket counts")
	}
}

func TestIndexEquiJoinBucketOutOfRange(t *testing.T) {
	l, r, _, indexR := buildBucketed()
	bad := []secrel.BucketRange{{Start: 0, End: 99}, {Start: 2, End: 3}}
	_, err := IndexEquiJoin(l, r, bad, indexR, IndexEquiJoinParams{ColL: 0, ColR: 0, Mode: secrel.None})
	if err == nil {
		t.Fatal("expected error for bucket range exceeding relation size")
	}
}

func TestRebuildIndexProducesContiguousRanges(t *testing.T) {
	indexL := []secrel.BucketRange{{Start: 0, End: 1}, {Start: 2, End: 4}}
	indexR := []secrel.BucketRange{{Start: 0, End: 2}, {Start: 3, End: 3}}
	out, err := RebuildIndex(indexL, indexR, secrel.SmallerRel, 0, 0, 0)
	if err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	// bucket 0: lenL=2, lenR=3 -> min=2 -> [0,1]
	// bucket 1: lenL=3, lenR=1 -> min=1 -> [2,2]
	want := []secrel.BucketRange{{Start: 0, End: 1}, {Start: 2, End: 2}}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("range %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRebuildIndexBucketCountMismatch(t *testing.T) {
	indexL := []secrel.BucketRange{{Start: 0, End: 1}}
	indexR := []secrel.BucketRange{{Start: 0, End: 1}, {Start: 2, End: 2}}
	if _, err := RebuildIndex(indexL, indexR, secrel.None, 0, 0, 0); err == nil {
		t.Fatal("expected error for mismatched bucket counts")
	}
}
