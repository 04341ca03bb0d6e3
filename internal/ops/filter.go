package ops

import (
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// compare evaluates the named comparator as a secret gate. column_index,
// op, and the shape of the target (constant vs column) are all public;
// only the two operand values are secret.
func compare(a, b mpc.Int, op secrel.Comparator) mpc.Bit {
	switch op {
	case secrel.Gt:
		return a.Gt(b)
	case secrel.Geq:
		return a.Geq(b)
	case secrel.Lt:
		return a.Lt(b)
	case secrel.Leq:
		return a.Leq(b)
	case secrel.Eq:
		return a.Eq(b)
	case secrel.Neq:
		return a.Neq(b)
	default:
		return mpc.NewBit(false)
	}
}

// Filter evaluates op(column[i], target) per row and ANDs it with the input
// flag. Column data is copied verbatim, including rows that fail the
// predicate — consumers must honor the output flag, not assume filtered
// rows are cleared.
//
// A naive filter reveals the comparison bit and re-encodes it as a public
// constant before ANDing with the flag. That is rejected here: the
// comparison bit is ANDed directly with the input flag while still secret —
// it is never revealed.
func Filter(input *relation.Relation, column int, target mpc.Int, op secrel.Comparator) (*relation.Relation, error) {
	return filterImpl(input, column, func(i int) mpc.Int { return target }, op)
}

// FilterColumn is the target-is-a-column variant; the target column must
// have the same length as the input.
func FilterColumn(input *relation.Relation, column int, target []mpc.Int, op secrel.Comparator) (*relation.Relation, error) {
	if len(target) != input.NumRows() {
		return nil, secrel.NewPlanError("filter", "target column length %d != input rows %d", len(target), input.NumRows())
	}
	return filterImpl(input, column, func(i int) mpc.Int { return target[i] }, op)
}

func filterImpl(input *relation.Relation, column int, targetAt func(int) mpc.Int, op secrel.Comparator) (*relation.Relation, error) {
	if column < 0 || column >= input.NumCols() {
		return nil, secrel.NewPlanError("filter", "invalid column index %d", column)
	}
	if !op.Valid() {
		return nil, secrel.NewPlanError("filter", "unknown comparator %q", op)
	}
	out := input.Clone()
	for i := 0; i < input.NumRows(); i++ {
		satisfies := compare(input.Columns[column][i], targetAt(i), op)
		out.Flags[i] = satisfies.And(input.Flags[i])
	}
	return out, nil
}
