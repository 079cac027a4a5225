package distributednoise

import (
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DifferentialPrivacyParams are the (epsilon, delta) privacy parameters of one aggregation
// round. They are validated by the caller.
type DifferentialPrivacyParams struct {
	Epsilon float64 `json:"epsilon"`
	Delta   float64 `json:"delta"`
}

func validatePrivacyParams(params DifferentialPrivacyParams, count int64) error {
	if !(params.Epsilon > 0) || !(params.Delta > 0) {
		return status.Errorf(codes.InvalidArgument, "epsilon and delta should be positive, got epsilon=%v, delta=%v", params.Epsilon, params.Delta)
	}
	if count <= 0 {
		return status.Errorf(codes.InvalidArgument, "contributor count should be positive, got %d", count)
	}
	return nil
}

// computeMuPolya returns the truncation threshold for the Polya random variables.
func computeMuPolya(epsilon, delta float64, sensitivity, n int64) int64 {
	return int64(math.Ceil(
		math.Log(2.0*float64(n)*float64(sensitivity)*(1+math.Exp(epsilon))/delta) /
			(epsilon / float64(sensitivity))))
}

// computeMuDiscreteGaussian returns the truncation threshold for the discrete Gaussian samples.
func computeMuDiscreteGaussian(epsilon, delta, sigmaDistributed float64, contributorCount int64) int64 {
	// delta is split evenly into delta1 for sigma and delta2 for the truncation.
	delta2 := 0.5 * delta
	return int64(math.Ceil(sigmaDistributed *
		math.Sqrt(2*math.Log(float64(contributorCount)*(1+math.Exp(epsilon))/delta2))))
}

// GeometricPublisherNoiseOptions computes the options of the geometric noise added by each of
// publisherCount publishers, with p = exp(-epsilon/publisherCount).
func GeometricPublisherNoiseOptions(params DifferentialPrivacyParams, publisherCount int64) (NoiseComponentOptions, error) {
	if err := validatePrivacyParams(params, publisherCount); err != nil {
		return NoiseComponentOptions{}, err
	}
	offset := computeMuPolya(params.Epsilon, params.Delta, publisherCount, 1)
	return NoiseComponentOptions{
		ContributorCount:  1,
		P:                 math.Exp(-params.Epsilon / float64(publisherCount)),
		TruncateThreshold: offset,
		ShiftOffset:       offset,
	}, nil
}

// DiscreteGaussianPublisherNoiseOptions computes the options of the discrete Gaussian noise
// added by each of contributorCount contributors.
//
// Sigma comes from the closed-form bound for the continuous Gaussian mechanism (The Algorithmic
// Foundations of Differential Privacy, Theorem A.1) and is used as an approximation for the
// discrete Gaussian; it is valid for epsilon <= 1. This function, not the noiser, divides sigma
// by sqrt(contributorCount).
func DiscreteGaussianPublisherNoiseOptions(params DifferentialPrivacyParams, contributorCount int64) (NoiseComponentOptions, error) {
	if err := validatePrivacyParams(params, contributorCount); err != nil {
		return NoiseComponentOptions{}, err
	}
	delta1 := 0.5 * params.Delta
	sigma := math.Sqrt(2*math.Log(1.25/delta1)) / params.Epsilon
	sigmaDistributed := sigma / math.Sqrt(float64(contributorCount))
	offset := computeMuDiscreteGaussian(params.Epsilon, params.Delta, sigmaDistributed, contributorCount)
	return NoiseComponentOptions{
		ContributorCount:  contributorCount,
		SigmaDistributed:  sigmaDistributed,
		TruncateThreshold: offset,
		ShiftOffset:       offset,
	}, nil
}

// Mechanism selects the noise distribution.
type Mechanism int

// The supported noise mechanisms.
const (
	GeometricMechanism Mechanism = iota
	DiscreteGaussianMechanism
)

// String returns the flag name of the mechanism.
func (m Mechanism) String() string {
	switch m {
	case GeometricMechanism:
		return "geometric"
	case DiscreteGaussianMechanism:
		return "discrete_gaussian"
	default:
		return fmt.Sprintf("Mechanism(%d)", int(m))
	}
}

// ParseMechanism parses the flag name of a mechanism.
func ParseMechanism(name string) (Mechanism, error) {
	switch name {
	case "geometric":
		return GeometricMechanism, nil
	case "discrete_gaussian":
		return DiscreteGaussianMechanism, nil
	default:
		return 0, fmt.Errorf("unknown noise mechanism %q, expect geometric or discrete_gaussian", name)
	}
}

// NoiseConfig describes the noise of one aggregation round.
type NoiseConfig struct {
	Mechanism        Mechanism
	Params           DifferentialPrivacyParams
	ContributorCount int64
}

// NewNoiser computes the component options once and returns the noiser for the configured
// mechanism. The returned Noiser can be handed to every contributor.
func NewNoiser(cfg NoiseConfig) (Noiser, error) {
	switch cfg.Mechanism {
	case GeometricMechanism:
		options, err := GeometricPublisherNoiseOptions(cfg.Params, cfg.ContributorCount)
		if err != nil {
			return nil, err
		}
		return NewGeometricNoiser(options), nil
	case DiscreteGaussianMechanism:
		options, err := DiscreteGaussianPublisherNoiseOptions(cfg.Params, cfg.ContributorCount)
		if err != nil {
			return nil, err
		}
		return NewDiscreteGaussianNoiser(options), nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unsupported noise mechanism %v", cfg.Mechanism)
	}
}
