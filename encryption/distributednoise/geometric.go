package distributednoise

import (
	log "github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maximumPolyaAttempts bounds the resampling of a truncated Polya random variable.
const maximumPolyaAttempts = 20

// GeometricNoiser generates components whose sum over ContributorCount contributors follows
// the two-sided geometric distribution with parameter P, centered at
// ContributorCount*ShiftOffset.
type GeometricNoiser struct {
	options NoiseComponentOptions
}

// NewGeometricNoiser creates a GeometricNoiser.
func NewGeometricNoiser(options NoiseComponentOptions) *GeometricNoiser {
	return &GeometricNoiser{options: options}
}

// Options returns the options of the noiser.
func (n *GeometricNoiser) Options() NoiseComponentOptions {
	return n.options
}

// polyaRand generates a random value that follows the Polya distribution.
func polyaRand(r, p float64, src rand.Source) (int64, error) {
	if !(p > 0 && p < 1) {
		return 0, status.Error(codes.InvalidArgument, "Probability p should be in (0,1).")
	}
	// The polya rand number can be drawn with a mixture of Gamma-Poisson distribution:
	// https://en.wikipedia.org/wiki/Negative_binomial_distribution
	gamma := distuv.Gamma{Alpha: r, Beta: (1 - p) / p, Src: src}.Rand()
	return int64(distuv.Poisson{Lambda: gamma, Src: src}.Rand()), nil
}

// truncatedPolyaRand resamples the Polya random variable until it is not greater than
// truncateThreshold. A negative threshold means no truncation.
func truncatedPolyaRand(truncateThreshold int64, r, p float64, src rand.Source) (int64, error) {
	if truncateThreshold < 0 {
		return polyaRand(r, p, src)
	}
	for i := 0; i < maximumPolyaAttempts; i++ {
		polya, err := polyaRand(r, p, src)
		if err != nil {
			return 0, err
		}
		if polya <= truncateThreshold {
			return polya, nil
		}
		log.V(2).Infof("polya sample %d exceeds truncate threshold %d, attempt %d", polya, truncateThreshold, i+1)
	}
	return 0, status.Error(codes.Internal, "Failed to create the polya random variable within the attempt limit.")
}

// GenerateNoiseComponent returns ShiftOffset + a - b, where a and b are independent truncated
// Polya random variables with r = 1/ContributorCount.
func (n *GeometricNoiser) GenerateNoiseComponent() (int64, error) {
	if n.options.ContributorCount < 1 {
		return 0, status.Error(codes.InvalidArgument, "The contributor_count should be positive.")
	}
	src, err := newEntropySource()
	if err != nil {
		return 0, err
	}

	r := 1.0 / float64(n.options.ContributorCount)
	polyaA, err := truncatedPolyaRand(n.options.TruncateThreshold, r, n.options.P, src)
	if err != nil {
		return 0, err
	}
	polyaB, err := truncatedPolyaRand(n.options.TruncateThreshold, r, n.options.P, src)
	if err != nil {
		return 0, err
	}
	if err := src.Err(); err != nil {
		return 0, err
	}
	return n.options.ShiftOffset + polyaA - polyaB, nil
}
