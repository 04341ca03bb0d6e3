// Package obliv implements the oblivious primitives: conditional swap,
// bitonic sort, and flag-based compaction. Every function here touches the
// same memory locations regardless of the secret condition bits involved —
// the access pattern is a deterministic function of public sizes only.
package obliv

import "github.com/rawblock/oblivrel/internal/mpc"

// SwapInt replaces (a,b) with (b,a) iff cond, using two mux gates.
func SwapInt(a, b mpc.Int, cond mpc.Bit) (mpc.Int, mpc.Int) {
	return mpc.MuxInt(cond, b, a), mpc.MuxInt(cond, a, b)
}

// SwapBit is the one-bit variant, used for the per-row validity flag.
func SwapBit(a, b mpc.Bit, cond mpc.Bit) (mpc.Bit, mpc.Bit) {
	return mpc.MuxBit(cond, b, a), mpc.MuxBit(cond, a, b)
}
