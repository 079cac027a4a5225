// Package distributednoise generates random noise for the aggregation results.
//
// Each contributor draws one noise component; the sum of the components of all contributors
// follows the global noise distribution. The sum is never computed by this package.
package distributednoise

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
)

// NoTruncation disables the truncation of the noise components.
const NoTruncation int64 = -1

// NoiseComponentOptions are shared by every contributor of one aggregation round.
type NoiseComponentOptions struct {
	// The number of contributors to the global random variable.
	ContributorCount int64 `json:"contributor_count"`
	// The success probability of the Polya distribution, 0 < P < 1. Geometric noise only.
	P float64 `json:"p,omitempty"`
	// The sigma of each contributor, i.e. sigma/sqrt(ContributorCount). Discrete Gaussian noise
	// only.
	SigmaDistributed float64 `json:"sigma_distributed,omitempty"`
	// The components are kept within [-TruncateThreshold, TruncateThreshold] before shifting.
	// A negative value means no truncation.
	TruncateThreshold int64 `json:"truncate_threshold"`
	// The offset added to each component. It is usually not less than TruncateThreshold, so
	// that the result is non-negative.
	ShiftOffset int64 `json:"shift_offset"`
}

// Noiser generates one contributor's component of a global noise value.
//
// Implementations hold no mutable state besides the random source opened per call, so one
// Noiser can be used by concurrent contributors.
type Noiser interface {
	Options() NoiseComponentOptions
	GenerateNoiseComponent() (int64, error)
}

// newEntropySource checks the entropy source and opens a random source for one draw.
func newEntropySource() (*prng.EntropySource, error) {
	if !prng.EntropyOK() {
		return nil, status.Error(codes.Internal, "The random generator has not been seeded with enough entropy.")
	}
	return prng.NewEntropySource(), nil
}

// DistributedGeometricMechanismRand generates noise such that adding `numNoiseShares` separate
// samples drawn from this method added together will be distributed according to the two-sided
// geometric mechansim (aka Discrete Laplace distribution).
//
// For one-sided Geometric distribution (https://en.wikipedia.org/wiki/Geometric_distribution),
// we have: Geom(p) = Polya(1, 1 - p) = sum_i^numHelper Polya(1/i, p);
// By substracting two geometric random values, we can get the noise that follows two-sided distribution.
func DistributedGeometricMechanismRand(epsilon float64, l1Sensitivity, numNoiseShares uint64) (int64, error) {
	if numNoiseShares == 0 || l1Sensitivity == 0 {
		return 0, status.Error(codes.InvalidArgument, "numNoiseShares and l1Sensitivity should be positive.")
	}
	roundingResult := float64(numNoiseShares) * (1.0 / float64(numNoiseShares))
	if !floats.EqualWithinAbsOrRel(roundingResult, 1.0, 1e-6, 1e-6) {
		return 0, status.Errorf(codes.InvalidArgument, "rounding error, expect numNoiseShares*(1/numNoiseShares) == 1, got %v", roundingResult)
	}

	return NewGeometricNoiser(NoiseComponentOptions{
		ContributorCount:  int64(numNoiseShares),
		P:                 math.Exp(-epsilon / float64(l1Sensitivity)),
		TruncateThreshold: NoTruncation,
	}).GenerateNoiseComponent()
}
