package ops

import (
	"fmt"

	"github.com/rawblock/oblivrel/internal/config"
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// counterWidth is wide enough to hold any truncation size this library is
// exercised with while leaving room for the -1 "no writes yet" sentinel.
const counterWidth = 32

// PACFilter is the packed-output filter: the output relation always has
// exactly T rows. It maintains two secret counters — last_written
// (initially -1) and writes (initially 0) — and for every input row scans
// all T output slots, committing the row into the unique slot at
// last_written+1 when it satisfies the predicate and there is still room.
// The access pattern touches every output slot for every input row
// regardless of outcome: gate cost O(N*T*C).
//
// If more than T rows satisfy, the excess rows are dropped silently — by
// design, not an error.
func PACFilter(input *relation.Relation, column int, target mpc.Int, op secrel.Comparator, truncTo int) (*relation.Relation, error) {
	return pacFilterImpl(input, column, func(i int) mpc.Int { return target }, op, truncTo)
}

// PACFilterColumn is the target-is-a-column variant.
func PACFilterColumn(input *relation.Relation, column int, target []mpc.Int, op secrel.Comparator, truncTo int) (*relation.Relation, error) {
	if len(target) != input.NumRows() {
		return nil, secrel.NewPlanError("pac_filter", "target column length %d != input rows %d", len(target), input.NumRows())
	}
	return pacFilterImpl(input, column, func(i int) mpc.Int { return target[i] }, op, truncTo)
}

func pacFilterImpl(input *relation.Relation, column int, targetAt func(int) mpc.Int, op secrel.Comparator, truncTo int) (*relation.Relation, error) {
	if column < 0 || column >= input.NumCols() {
		return nil, secrel.NewPlanError("pac_filter", "invalid column index %d", column)
	}
	if !op.Valid() {
		return nil, secrel.NewPlanError("pac_filter", "unknown comparator %q", op)
	}
	if truncTo < 0 {
		return nil, secrel.NewPlanError("pac_filter", "negative truncation size %d", truncTo)
	}

	out := relation.New(input.NumCols(), truncTo)
	for j := 0; j < truncTo; j++ {
		out.Flags[j] = mpc.NewBit(false)
	}

	lastWritten := mpc.NewInt(counterWidth, -1, mpc.Public)
	writes := mpc.NewInt(counterWidth, 0, mpc.Public)
	truncAsInt := mpc.NewInt(counterWidth, int64(truncTo), mpc.Public)
	one := mpc.NewInt(counterWidth, 1, mpc.Public)

	for i := 0; i < input.NumRows(); i++ {
		satisfies := compare(input.Columns[column][i], targetAt(i), op).And(input.Flags[i])
		nextSlot := lastWritten.Add(one)
		hasRoom := nextSlot.Lt(truncAsInt)
		isWrite := satisfies.And(hasRoom)

		for j := 0; j < truncTo; j++ {
			isTarget := mpc.NewInt(counterWidth, int64(j), mpc.Public).Eq(nextSlot).And(isWrite)
			for c := 0; c < input.NumCols(); c++ {
				out.Columns[c][j] = mpc.MuxInt(isTarget, input.Columns[c][i], out.Columns[c][j])
			}
			out.Flags[j] = mpc.MuxBit(isTarget, mpc.NewBit(true), out.Flags[j])
		}

		lastWritten = mpc.MuxInt(isWrite, nextSlot, lastWritten)
		writes = mpc.MuxInt(isWrite, writes.Add(one), writes)
	}

	if config.DebugLog() {
		fmt.Printf("pac_filter: committed %d of %d allotted output slots\n", writes.Reveal(), truncTo)
	}

	return out, nil
}
