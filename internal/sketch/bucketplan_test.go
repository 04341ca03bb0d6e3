package sketch

import "testing"

func TestEstimateMFClampedToTotals(t *testing.T) {
	p := EstimateMF(100, 200, 10, 1.0)
	if p.MFLeft < 1 || p.MFLeft > 200 {
		t.Fatalf("MFLeft = %d, want in [1,200]", p.MFLeft)
	}
	if p.MFRight < 1 || p.MFRight > 100 {
		t.Fatalf("MFRight = %d, want in [1,100]", p.MFRight)
	}
	if p.BucketCount != 10 {
		t.Fatalf("BucketCount = %d, want 10", p.BucketCount)
	}
}

func TestEstimateMFZeroBucketCount(t *testing.T) {
	p := EstimateMF(10, 10, 0, 1.0)
	if p.BucketCount != 1 {
		t.Fatalf("BucketCount = %d, want 1 (clamped up from 0)", p.BucketCount)
	}
}

func TestChooseBucketCountLargerSideAndFloor(t *testing.T) {
	if got := ChooseBucketCount(1000, 500, 100); got != 10 {
		t.Fatalf("ChooseBucketCount = %d, want 10", got)
	}
	if got := ChooseBucketCount(0, 0, 100); got != 1 {
		t.Fatalf("ChooseBucketCount of empty relations = %d, want 1", got)
	}
}
