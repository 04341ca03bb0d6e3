package ops

import (
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
)

// Count sums the flag column (widened to 32 bits) and returns a 1x1
// relation with flag=1. No grouping — keyed group-by is out of scope for
// the core operators; the planner is expected to synthesize it via
// sort + count.
func Count(input *relation.Relation) *relation.Relation {
	count := mpc.NewInt(relation.DefaultWidth, 0, mpc.Public)
	for _, f := range input.Flags {
		count = count.Add(f.AsInt(relation.DefaultWidth))
	}
	out := relation.New(1, 1)
	out.Columns[0][0] = count
	out.Flags[0] = mpc.NewBit(true)
	return out
}
