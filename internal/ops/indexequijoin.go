package ops

import (
	"fmt"

	"github.com/rawblock/oblivrel/internal/config"
	"github.com/rawblock/oblivrel/internal/engine"
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// IndexEquiJoinParams bundles the public parameters of an index-bucketed
// equi-join: the join columns, the per-bucket compaction mode, and the
// mode-specific sizing knobs. FixedSize is read only under CompactionMode
// FixedSize; MFLeft/MFRight only under MF.
type IndexEquiJoinParams struct {
	ColL, ColR      int
	Mode            secrel.CompactionMode
	FixedSize       int
	MFLeft, MFRight int
}

// compactSize computes the public per-bucket output row count for the given
// compaction mode, applied to a pair of bucket sizes. bucketSizeL and
// bucketSizeR are the sizes of the two SLICED buckets being joined, not the
// full relation sizes.
func compactSize(mode secrel.CompactionMode, bucketSizeL, bucketSizeR, fixedSize, mfL, mfR int) int {
	switch mode {
	case secrel.None:
		return bucketSizeL * bucketSizeR
	case secrel.SmallerRel:
		return min(bucketSizeL, bucketSizeR)
	case secrel.LargerRel:
		return max(bucketSizeL, bucketSizeR)
	case secrel.FixedSize:
		return fixedSize
	case secrel.MF:
		full := bucketSizeL * bucketSizeR
		return min(min(bucketSizeL*mfR, bucketSizeR*mfL), full)
	default:
		return bucketSizeL * bucketSizeR
	}
}

// sliceBucket returns a new relation holding exactly the rows of the
// inclusive range [b.Start,b.End] of src (secrel.BucketRange.Len ==
// b.End-b.Start+1), by reference to the shared mpc.Int/mpc.Bit values — no
// secret-dependent copy pattern, since the slice bounds are public. A
// range with b.End < b.Start (Len <= 0) yields an empty bucket.
func sliceBucket(src *relation.Relation, b secrel.BucketRange) *relation.Relation {
	n := b.Len()
	if n <= 0 {
		return relation.New(src.NumCols(), 0)
	}
	out := &relation.Relation{
		Columns: make([][]mpc.Int, src.NumCols()),
		Flags:   append([]mpc.Bit(nil), src.Flags[b.Start:b.End+1]...),
	}
	for c, col := range src.Columns {
		out.Columns[c] = append([]mpc.Int(nil), col[b.Start:b.End+1]...)
	}
	return out
}

// copyInto writes min(n, src.NumRows()) rows of src into dst starting at
// row offset. If n exceeds src's row count — a FIXED_SIZE bucket allowance
// larger than the bucket actually produced — the remaining rows are marked
// dead rather than left at relation.New's live default, so padding never
// injects spurious live zero-valued rows into the output.
func copyInto(dst, src *relation.Relation, offset, n int) {
	have := src.NumRows()
	copied := n
	if copied > have {
		copied = have
	}
	for c := range dst.Columns {
		copy(dst.Columns[c][offset:offset+copied], src.Columns[c][:copied])
	}
	copy(dst.Flags[offset:offset+copied], src.Flags[:copied])
	for i := offset + copied; i < offset+n; i++ {
		dst.Flags[i] = mpc.NewBit(false)
	}
}

// IndexEquiJoin joins l and r bucket-by-bucket, where indexL[k] and
// indexR[k] name the k-th pair of matching buckets: row ranges that are
// assumed, by construction of the index, to be the only rows that can
// possibly satisfy the join predicate across the whole relations. Buckets
// are joined independently via EquiJoin, each bucket's result is brought
// to a public per-bucket size via Compact's SortByFlag (so that satisfied
// rows lead), and the per-bucket results are concatenated into one output
// relation at precomputed offsets.
//
// Per-bucket output sizes are computed from the PUBLIC bucket range
// lengths before any bucket is actually joined, so the total output size —
// and every bucket's offset within it — never depends on secret data.
func IndexEquiJoin(l, r *relation.Relation, indexL, indexR []secrel.BucketRange, p IndexEquiJoinParams) (*relation.Relation, error) {
	if p.ColL < 0 || p.ColL >= l.NumCols() {
		return nil, secrel.NewPlanError("index_equi_join", "invalid left column index %d", p.ColL)
	}
	if p.ColR < 0 || p.ColR >= r.NumCols() {
		return nil, secrel.NewPlanError("index_equi_join", "invalid right column index %d", p.ColR)
	}
	if len(indexL) != len(indexR) {
		return nil, secrel.NewPlanError("index_equi_join", "bucket count mismatch: %d left buckets, %d right buckets", len(indexL), len(indexR))
	}
	for k, b := range indexL {
		if b.Len() > 0 && (b.Start < 0 || b.End >= l.NumRows()) {
			return nil, secrel.NewPlanError("index_equi_join", "left bucket %d out of range %v", k, b)
		}
	}
	for k, b := range indexR {
		if b.Len() > 0 && (b.Start < 0 || b.End >= r.NumRows()) {
			return nil, secrel.NewPlanError("index_equi_join", "right bucket %d out of range %v", k, b)
		}
	}

	B := len(indexL)
	offsets := make([]int, B)
	sizes := make([]int, B)
	total := 0
	for k := 0; k < B; k++ {
		lenL, lenR := indexL[k].Len(), indexR[k].Len()
		if lenL < 0 {
			lenL = 0
		}
		if lenR < 0 {
			lenR = 0
		}
		sizes[k] = compactSize(p.Mode, lenL, lenR, p.FixedSize, p.MFLeft, p.MFRight)
		offsets[k] = total
		total += sizes[k]
	}

	out := relation.New(l.NumCols()+r.NumCols(), total)
	errs := make([]error, B)

	engine.RunBuckets(B, func(k int) {
		bl := sliceBucket(l, indexL[k])
		br := sliceBucket(r, indexR[k])
		joined, err := EquiJoin(bl, br, p.ColL, p.ColR)
		if err != nil {
			errs[k] = err
			return
		}
		if p.Mode != secrel.None {
			joined.SortByFlag()
		}
		copyInto(out, joined, offsets[k], sizes[k])
	})

	for k, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("index_equi_join: bucket %d: %w", k, err)
		}
	}
	return out, nil
}

// RebuildIndex computes the bucket ranges of IndexEquiJoin's output, so a
// chained index join can reuse them as the next stage's input index
// without re-deriving bucket boundaries from (now secret) joined data. It
// applies the same compactSize formula as IndexEquiJoin itself, but to the
// ORIGINAL bucket lengths rather than to a post-join row count, and
// returns contiguous ranges starting at 0.
func RebuildIndex(indexL, indexR []secrel.BucketRange, mode secrel.CompactionMode, fixedSize, mfL, mfR int) ([]secrel.BucketRange, error) {
	if len(indexL) != len(indexR) {
		return nil, secrel.NewPlanError("rebuild_index", "bucket count mismatch: %d left buckets, %d right buckets", len(indexL), len(indexR))
	}
	out := make([]secrel.BucketRange, len(indexL))
	start := 0
	for k := range indexL {
		lenL, lenR := indexL[k].Len(), indexR[k].Len()
		if lenL < 0 {
			lenL = 0
		}
		if lenR < 0 {
			lenR = 0
		}
		n := compactSize(mode, lenL, lenR, fixedSize, mfL, mfR)
		out[k] = secrel.BucketRange{Start: start, End: start + n - 1}
		start += n
	}
	if config.DebugLog() {
		fmt.Printf("rebuild_index: %v\n", out)
	}
	return out, nil
}
