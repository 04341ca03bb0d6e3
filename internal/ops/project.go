// Package ops implements the unary and binary relational operators:
// projection, filter, packed filter, count, equi-join, and the bucketed
// index equi-join.
package ops

import (
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// Project returns a new relation containing exactly the given column
// indices, in order, with the flag column copied verbatim. Side-effect
// free: a plan-time error for an invalid index, never a gate.
func Project(input *relation.Relation, columns []int) (*relation.Relation, error) {
	for _, c := range columns {
		if c < 0 || c >= input.NumCols() {
			return nil, secrel.NewPlanError("project", "invalid column index %d", c)
		}
	}
	out := relation.New(len(columns), input.NumRows())
	for i, c := range columns {
		out.Columns[i] = append([]mpc.Int(nil), input.Columns[c]...)
	}
	out.Flags = append([]mpc.Bit(nil), input.Flags...)
	return out, nil
}
