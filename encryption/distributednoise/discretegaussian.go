package distributednoise

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DiscreteGaussianNoiser generates components from the discrete Gaussian distribution with
// parameter SigmaDistributed, so the sum over ContributorCount contributors approximates a
// discrete Gaussian with sigma = SigmaDistributed*sqrt(ContributorCount).
type DiscreteGaussianNoiser struct {
	options NoiseComponentOptions
}

// NewDiscreteGaussianNoiser creates a DiscreteGaussianNoiser. SigmaDistributed in the options
// must already be scaled by 1/sqrt(ContributorCount).
func NewDiscreteGaussianNoiser(options NoiseComponentOptions) *DiscreteGaussianNoiser {
	return &DiscreteGaussianNoiser{options: options}
}

// Options returns the options of the noiser.
func (n *DiscreteGaussianNoiser) Options() NoiseComponentOptions {
	return n.options
}

// geometricRand returns the number of failures before the first success of Bernoulli trials
// with success probability p.
func geometricRand(p float64, rnd *rand.Rand) int64 {
	// 1 - Float64() is in (0, 1], so the logarithm is finite.
	u := 1 - rnd.Float64()
	return int64(math.Floor(math.Log(u) / math.Log1p(-p)))
}

// GenerateNoiseComponent samples the discrete Gaussian by rejection from the discrete Laplace
// distribution, following Algorithm 3 of Canonne, Kamath and Steinke,
// https://arxiv.org/pdf/2004.00010.pdf, and returns ShiftOffset + y.
//
// Samples outside [-TruncateThreshold, TruncateThreshold] are rejected as well when truncation
// is enabled. The expected number of iterations is constant, so there is no attempt limit.
func (n *DiscreteGaussianNoiser) GenerateNoiseComponent() (int64, error) {
	sigma := n.options.SigmaDistributed
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return 0, status.Errorf(codes.InvalidArgument, "sigma_distributed should be a positive finite value, got %v.", sigma)
	}
	sigmaSq := sigma * sigma
	t := math.Floor(sigma) + 1
	pGeometric := 1 - math.Exp(-1/t)
	if pGeometric <= 0 || pGeometric >= 1 {
		return 0, status.Error(codes.InvalidArgument, "Probability p_geometric should be in (0,1).")
	}

	src, err := newEntropySource()
	if err != nil {
		return 0, err
	}
	rnd := rand.New(src)
	truncateThreshold := n.options.TruncateThreshold
	for {
		y := geometricRand(pGeometric, rnd) - geometricRand(pGeometric, rnd)
		d := math.Abs(float64(y)) - sigmaSq/t
		pBernoulli := math.Exp(-d * d * 0.5 / sigmaSq)
		accepted := distuv.Bernoulli{P: pBernoulli, Src: src}.Rand() == 1
		if err := src.Err(); err != nil {
			return 0, err
		}
		if accepted && (truncateThreshold < 0 || (y >= -truncateThreshold && y <= truncateThreshold)) {
			return n.options.ShiftOffset + y, nil
		}
	}
}
