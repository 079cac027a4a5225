package distributednoise

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGeometricPublisherNoiseOptions(t *testing.T) {
	got, err := GeometricPublisherNoiseOptions(DifferentialPrivacyParams{Epsilon: math.Log(3) / 10, Delta: 0.000002}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.P-0.964) > 0.001 {
		t.Errorf("p mismatch, want 0.964 (+/- 0.001), got %v", got.P)
	}
	if got.TruncateThreshold != 428 || got.ShiftOffset != 428 {
		t.Errorf("want threshold and offset 428, got %d and %d", got.TruncateThreshold, got.ShiftOffset)
	}
	if got.ContributorCount != 1 {
		t.Errorf("want contributor count 1, got %d", got.ContributorCount)
	}
}

func TestDiscreteGaussianPublisherNoiseOptions(t *testing.T) {
	for _, tc := range []struct {
		params           DifferentialPrivacyParams
		contributorCount int64
		want             NoiseComponentOptions
	}{
		{
			params:           DifferentialPrivacyParams{Epsilon: 1, Delta: 1e-5},
			contributorCount: 4,
			want: NoiseComponentOptions{
				ContributorCount:  4,
				SigmaDistributed:  2.4929115705179337,
				TruncateThreshold: 14,
				ShiftOffset:       14,
			},
		},
		{
			params:           DifferentialPrivacyParams{Epsilon: math.Log(3), Delta: 1e-5},
			contributorCount: 1,
			want: NoiseComponentOptions{
				ContributorCount:  1,
				SigmaDistributed:  4.538291799994677,
				TruncateThreshold: 24,
				ShiftOffset:       24,
			},
		},
		{
			params:           DifferentialPrivacyParams{Epsilon: 0.5, Delta: 1e-9},
			contributorCount: 10,
			want: NoiseComponentOptions{
				ContributorCount:  10,
				SigmaDistributed:  4.160726529712864,
				TruncateThreshold: 30,
				ShiftOffset:       30,
			},
		},
	} {
		got, err := DiscreteGaussianPublisherNoiseOptions(tc.params, tc.contributorCount)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("options mismatch for %+v (-want +got):\n%s", tc.params, diff)
		}
	}
}

func TestPublisherNoiseOptionsInvalidParams(t *testing.T) {
	for _, tc := range []struct {
		params DifferentialPrivacyParams
		count  int64
	}{
		{params: DifferentialPrivacyParams{Epsilon: 0, Delta: 1e-5}, count: 1},
		{params: DifferentialPrivacyParams{Epsilon: 1, Delta: 0}, count: 1},
		{params: DifferentialPrivacyParams{Epsilon: -1, Delta: 1e-5}, count: 1},
		{params: DifferentialPrivacyParams{Epsilon: math.NaN(), Delta: 1e-5}, count: 1},
		{params: DifferentialPrivacyParams{Epsilon: 1, Delta: 1e-5}, count: 0},
	} {
		if _, err := GeometricPublisherNoiseOptions(tc.params, tc.count); status.Code(err) != codes.InvalidArgument {
			t.Errorf("geometric %+v, count %d: expect InvalidArgument error, got %v", tc.params, tc.count, err)
		}
		if _, err := DiscreteGaussianPublisherNoiseOptions(tc.params, tc.count); status.Code(err) != codes.InvalidArgument {
			t.Errorf("discrete Gaussian %+v, count %d: expect InvalidArgument error, got %v", tc.params, tc.count, err)
		}
	}
}

func TestNewNoiser(t *testing.T) {
	params := DifferentialPrivacyParams{Epsilon: 1, Delta: 1e-5}

	noiser, err := NewNoiser(NoiseConfig{Mechanism: GeometricMechanism, Params: params, ContributorCount: 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := noiser.(*GeometricNoiser); !ok {
		t.Errorf("want *GeometricNoiser, got %T", noiser)
	}
	wantOptions, err := GeometricPublisherNoiseOptions(params, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantOptions, noiser.Options()); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	noiser, err = NewNoiser(NoiseConfig{Mechanism: DiscreteGaussianMechanism, Params: params, ContributorCount: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := noiser.(*DiscreteGaussianNoiser); !ok {
		t.Errorf("want *DiscreteGaussianNoiser, got %T", noiser)
	}
	options := noiser.Options()
	for i := 0; i < 100; i++ {
		noise, err := noiser.GenerateNoiseComponent()
		if err != nil {
			t.Fatal(err)
		}
		if noise < 0 || noise > options.ShiftOffset+options.TruncateThreshold {
			t.Fatalf("noise %d out of range [0, %d]", noise, options.ShiftOffset+options.TruncateThreshold)
		}
	}

	if _, err := NewNoiser(NoiseConfig{Mechanism: Mechanism(7), Params: params, ContributorCount: 1}); status.Code(err) != codes.InvalidArgument {
		t.Errorf("expect InvalidArgument error for unknown mechanism, got %v", err)
	}
	if _, err := NewNoiser(NoiseConfig{Mechanism: GeometricMechanism, ContributorCount: 1}); status.Code(err) != codes.InvalidArgument {
		t.Errorf("expect InvalidArgument error for empty privacy params, got %v", err)
	}
}

func TestParseMechanism(t *testing.T) {
	for _, m := range []Mechanism{GeometricMechanism, DiscreteGaussianMechanism} {
		got, err := ParseMechanism(m.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != m {
			t.Errorf("want %v, got %v", m, got)
		}
	}
	if _, err := ParseMechanism("laplace"); err == nil {
		t.Error("expect error for unknown mechanism")
	}
}
