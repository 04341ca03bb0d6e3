// Package shadowcheck is a regression harness, not a production code
// path: it runs the fixed oblivious Filter/CompactByFlag implementations
// alongside small plaintext twins standing in for two rejected designs (a
// filter revealing its comparison bit; for the compaction network that
// reveals flags mid-merge, a plain count of the live flags giving the
// live/dead boundary such a merge ends at), and checks their outputs agree
// on local fixture data.
//
// This inverts the usual shadow-deployment pattern: a production shadow
// runs an experimental path alongside production and watches for
// DIVERGENCE as a signal something changed. Here any divergence between
// the fixed and leaky paths would mean the rewrite has a correctness bug,
// not a behavioral drift to monitor — so this harness is wired into tests
// only, never a runtime code path, and it must never be pointed at real
// secret data: the leaky twins exist solely so a reviewer can see, and CI
// can check, that removing the leak didn't change the answer.
package shadowcheck

import (
	"fmt"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/ops"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// leakyFilter reproduces a rejected filter design: it reveals the
// comparison bit and re-encodes it as a public constant before ANDing with
// the flag, instead of ANDing the secret bit directly. Exists only so
// CompareFilter can prove the fix is answer-preserving.
func leakyFilter(input *relation.Relation, column int, target mpc.Int, op secrel.Comparator) *relation.Relation {
	out := input.Clone()
	for i := 0; i < input.NumRows(); i++ {
		satisfies := compareForShadow(input.Columns[column][i], target, op)
		revealed := satisfies.Reveal() // the leak: this value is public from here on
		out.Flags[i] = mpc.NewBit(revealed).And(input.Flags[i])
	}
	return out
}

func compareForShadow(a, b mpc.Int, op secrel.Comparator) mpc.Bit {
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

// CompareFilter runs ops.Filter and leakyFilter on the same fixture input
// and reports whether their flag columns agree. A fixture-data-only check
// — callers must never pass relations carrying real secret values.
func CompareFilter(input *relation.Relation, column int, target mpc.Int, op secrel.Comparator) error {
	fixed, err := ops.Filter(input, column, target, op)
	if err != nil {
		return fmt.Errorf("shadowcheck: fixed filter: %w", err)
	}
	leaky := leakyFilter(input, column, target, op)

	for i := 0; i < input.NumRows(); i++ {
		if fixed.Flags[i].Reveal() != leaky.Flags[i].Reveal() {
			return fmt.Errorf("shadowcheck: filter divergence at row %d: fixed=%v leaky=%v",
				i, fixed.Flags[i].Reveal(), leaky.Flags[i].Reveal())
		}
	}
	return nil
}

// CompareCompaction runs relation.SortByFlag (the fixed bitonic-merge-by-
// flag network) against a leaky two-pointer compaction modeled on a
// reveal-driven merge, and checks they move the same number of live rows
// to the front. Like CompareFilter, fixture data only.
func CompareCompaction(flags []bool) error {
	fixed := relation.New(1, len(flags))
	for i, f := range flags {
		fixed.Flags[i] = mpc.NewBit(f)
	}
	fixed.SortByFlag()

	leakyLive := leakyCompactLiveCount(flags)
	fixedLive := 0
	for fixedLive < fixed.NumRows() && fixed.Flags[fixedLive].Reveal() {
		fixedLive++
	}
	if leakyLive != fixedLive {
		return fmt.Errorf("shadowcheck: compaction live-count divergence: fixed=%d leaky=%d", fixedLive, leakyLive)
	}
	return nil
}

// leakyCompactLiveCount reproduces a reveal-driven two-pointer merge
// ("if flags[i].reveal == 1, step back") closely enough to check the
// live/dead boundary it produces, without actually reimplementing the
// full leaky gate network.
func leakyCompactLiveCount(flags []bool) int {
	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}
	return count
}
