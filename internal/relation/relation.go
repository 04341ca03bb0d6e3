// Package relation implements a columnar secret table with a per-row
// validity flag, plus the oblivious sort/compact operations every operator
// is built on.
package relation

import (
	"fmt"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/obliv"
)

// DefaultWidth is the default secret-integer width.
const DefaultWidth = 32

// Relation is a table of C columns and N rows: Columns[c][r] is a secret
// cell, Flags[r] is the secret row-validity bit. All columns share the same
// length, equal to len(Flags); N and C are public.
type Relation struct {
	Columns [][]mpc.Int
	Flags   []mpc.Bit
}

// New constructs a zero-filled relation with every row marked live.
func New(numCols, numRows int) *Relation {
	r := &Relation{
		Columns: make([][]mpc.Int, numCols),
		Flags:   make([]mpc.Bit, numRows),
	}
	for c := range r.Columns {
		col := make([]mpc.Int, numRows)
		for i := range col {
			col[i] = mpc.NewInt(DefaultWidth, 0, mpc.Public)
		}
		r.Columns[c] = col
	}
	for i := range r.Flags {
		r.Flags[i] = mpc.NewBit(true)
	}
	return r
}

// NumRows and NumCols are the public shape of the relation.
func (r *Relation) NumRows() int { return len(r.Flags) }
func (r *Relation) NumCols() int { return len(r.Columns) }

// CheckShape enforces the equal-length invariant.
func (r *Relation) CheckShape() error {
	n := len(r.Flags)
	for c, col := range r.Columns {
		if len(col) != n {
			return fmt.Errorf("relation: column %d has length %d, want %d", c, len(col), n)
		}
	}
	return nil
}

// Clone returns an independent copy so operators can treat inputs as
// immutable even though Relation itself has no internal synchronization.
func (r *Relation) Clone() *Relation {
	out := &Relation{
		Columns: make([][]mpc.Int, len(r.Columns)),
		Flags:   append([]mpc.Bit(nil), r.Flags...),
	}
	for c, col := range r.Columns {
		out.Columns[c] = append([]mpc.Int(nil), col...)
	}
	return out
}

// swapRows exchanges every column and the flag at i,j iff cond, touching
// every column regardless of cond.
func (r *Relation) swapRows(i, j int, cond mpc.Bit) {
	for c := range r.Columns {
		r.Columns[c][i], r.Columns[c][j] = obliv.SwapInt(r.Columns[c][i], r.Columns[c][j], cond)
	}
	r.Flags[i], r.Flags[j] = obliv.SwapBit(r.Flags[i], r.Flags[j], cond)
}

// columnKeyed adapts a Relation + key column to obliv.Sortable for a full
// bitonic sort (internal — the key slice is the same backing storage as
// one of r.Columns, so swapRows keeps it consistent for free).
type columnKeyed struct {
	r   *Relation
	key []mpc.Int
}

func (k columnKeyed) Len() int                 { return len(k.key) }
func (k columnKeyed) Greater(i, j int) mpc.Bit { return k.key[i].Gt(k.key[j]) }
func (k columnKeyed) Swap(i, j int, cond mpc.Bit) {
	k.r.swapRows(i, j, cond)
}

// flagKeyed adapts a Relation to obliv.Sortable keyed on the flag column.
type flagKeyed struct{ r *Relation }

func (k flagKeyed) Len() int { return len(k.r.Flags) }

// Greater(i, j) is true when j is live and i is dead, so the merge network
// below swaps a leading dead row past a trailing live one and live rows end
// up first.
func (k flagKeyed) Greater(i, j int) mpc.Bit { return k.r.Flags[j].GreaterThan(k.r.Flags[i]) }
func (k flagKeyed) Swap(i, j int, cond mpc.Bit) {
	k.r.swapRows(i, j, cond)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// pad extends the relation to width rows with maximum-key, non-live rows in
// every new column, returning the number of rows added. Ascending bitonic
// sort on any real key column pushes these to the tail.
func (r *Relation) pad(width int) int {
	n := r.NumRows()
	if width <= n {
		return 0
	}
	add := width - n
	for c := range r.Columns {
		for i := 0; i < add; i++ {
			r.Columns[c] = append(r.Columns[c], mpc.MaxInt(DefaultWidth))
		}
	}
	for i := 0; i < add; i++ {
		r.Flags = append(r.Flags, mpc.NewBit(false))
	}
	return add
}

func (r *Relation) truncate(n int) {
	for c := range r.Columns {
		r.Columns[c] = r.Columns[c][:n]
	}
	r.Flags = r.Flags[:n]
}

// SortByColumn sorts the relation ascending by column i, carrying every
// column and the flag. Non-power-of-two lengths are padded and truncated
// back after the sort. The underlying bitonic network is not stable, so
// rows with equal keys in column i may end up in either relative order.
func (r *Relation) SortByColumn(i int) error {
	if i < 0 || i >= r.NumCols() {
		return fmt.Errorf("relation: invalid column index %d", i)
	}
	n := r.NumRows()
	added := r.pad(nextPowerOfTwo(n))
	obliv.BitonicSort(columnKeyed{r: r, key: r.Columns[i]}, true)
	if added > 0 {
		r.truncate(n)
	}
	return nil
}

// SortByFlag brings every live row ahead of every dead row. Implemented
// with the oblivious flag-compaction network (internal/obliv.CompactByFlag)
// rather than a full sort: cheaper, and it is the operation IndexEquiJoin
// and Compact actually need.
func (r *Relation) SortByFlag() {
	obliv.CompactByFlag(flagKeyed{r: r})
}

// SortByTwoColumns sorts by secondary then by primary, so the resulting
// order is primary-major. Because the underlying sort is not stable, rows
// that tie on primary are not guaranteed to come out ordered by secondary —
// only a single-key sort by secondary followed by a single-key sort by
// primary, with no stronger tie-break guarantee than that gives.
func (r *Relation) SortByTwoColumns(primary, secondary int) error {
	if primary < 0 || primary >= r.NumCols() || secondary < 0 || secondary >= r.NumCols() {
		return fmt.Errorf("relation: invalid column index (primary=%d secondary=%d)", primary, secondary)
	}
	if err := r.SortByColumn(secondary); err != nil {
		return err
	}
	return r.SortByColumn(primary)
}

// Compact sorts by flag (live rows first) then truncates to K rows. If
// K >= N the relation is unchanged. Live rows in excess of K are silently
// dropped — by design, not an error: the planner chooses K under a
// probabilistic overflow bound.
func (r *Relation) Compact(K int) {
	if r.NumRows() <= K {
		return
	}
	r.SortByFlag()
	r.truncate(K)
}

// MemoryBytes estimates the public wire footprint of the relation: one
// secret-int share per cell plus one secret-bit share per row, used by the
// demo drivers to report total memory across plan nodes. This counts
// public sizes only, matching the public-size principle — never a function
// of cell contents.
func (r *Relation) MemoryBytes() int {
	const bitShareBytes = 1
	cellBytes := (DefaultWidth + 7) / 8
	return r.NumRows()*r.NumCols()*cellBytes + r.NumRows()*bitShareBytes
}

// LiveCount reveals how many rows are live. Debug/test-only — see Print.
func (r *Relation) LiveCount() int {
	n := 0
	for _, f := range r.Flags {
		if f.Reveal() {
			n++
		}
	}
	return n
}
