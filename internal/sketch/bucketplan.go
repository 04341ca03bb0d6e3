// Package sketch answers the planner's open question of where a bucketed
// index join's bucket boundaries and MF multiplicity bounds come from. It
// estimates both from public join-key cardinalities using a combinatorial
// multiplicity bound — bound a combinatorial quantity from cheap aggregate
// statistics rather than solving exactly — and adds calibrated Laplace
// noise so the estimate itself does not leak the exact key distribution,
// composed from a CSPRNG-backed uniform draw into Laplace noise via
// inverse-CDF sampling.
package sketch

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// cryptoRandFloat64 returns a cryptographically random float64 in [0, 1).
func cryptoRandFloat64() float64 {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return 0.5
	}
	n := binary.BigEndian.Uint64(b) >> 11
	return float64(n) / float64(1<<53)
}

// laplaceNoise draws from a Laplace(0, scale) distribution via inverse
// transform sampling, using the CSPRNG uniform draw above instead of
// math/rand so the noise itself is not predictable to either party.
func laplaceNoise(scale float64) float64 {
	u := cryptoRandFloat64() - 0.5
	sign := 1.0
	if u < 0 {
		sign = -1.0
	}
	return -scale * sign * math.Log(1-2*math.Abs(u))
}

// BucketPlan is the public sizing decision handed to
// internal/ops.IndexEquiJoin / RebuildIndex.
type BucketPlan struct {
	BucketCount int
	MFLeft      int
	MFRight     int
}

// EstimateMF bounds the per-bucket join multiplicity from the two sides'
// public row counts, bucketed into bucketCount buckets of roughly equal
// size, under an epsilon-differential-privacy budget on the estimate
// itself. avgL/avgR are PUBLIC (total row counts divided by a
// public bucket count); only the noise draw is randomized, not any secret
// relation content — this estimator never touches cell values.
//
// The combinatorial bound caps the estimate the way an anonymity-set
// ceiling caps a linkage count by the size of its own candidate set: a
// row of one side can match at most every row of the other side, so after
// noise is added MFLeft is clamped to [1, totalRowsR] and MFRight to
// [1, totalRowsL], preventing a noisy draw from inflating MF past what
// IndexEquiJoin could possibly need.
func EstimateMF(totalRowsL, totalRowsR, bucketCount int, epsilon float64) BucketPlan {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	avgL := float64(totalRowsL) / float64(bucketCount)
	avgR := float64(totalRowsR) / float64(bucketCount)

	scale := 1.0 / epsilon
	mfL := int(math.Ceil(avgR + laplaceNoise(scale)))
	mfR := int(math.Ceil(avgL + laplaceNoise(scale)))

	if mfL < 1 {
		mfL = 1
	}
	if mfR < 1 {
		mfR = 1
	}
	if mfL > totalRowsR {
		mfL = totalRowsR
	}
	if mfR > totalRowsL {
		mfR = totalRowsL
	}

	return BucketPlan{BucketCount: bucketCount, MFLeft: mfL, MFRight: mfR}
}

// ChooseBucketCount picks a public bucket count for a join between two
// relations of the given sizes, targeting an average bucket occupancy of
// targetOccupancy rows per side. Always returns at least 1.
func ChooseBucketCount(totalRowsL, totalRowsR, targetOccupancy int) int {
	if targetOccupancy <= 0 {
		targetOccupancy = 1
	}
	n := totalRowsL
	if totalRowsR > n {
		n = totalRowsR
	}
	count := n / targetOccupancy
	if count < 1 {
		count = 1
	}
	return count
}
