// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package secretshare splits integer vectors into two additive shares modulo a given modulus.
//
// One share is represented compactly by a PRNG seed; the other is the explicit vector
// (input - expand(seed)) mod modulus.
package secretshare

import (
	"math/bits"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
)

// Parameter holds the modulus of the ring or field the shares live in.
type Parameter struct {
	Modulus uint32 `json:"modulus"`
}

// SecretShare contains the explicit share vector and the seed that expands to the other share.
type SecretShare struct {
	ShareVector []uint32   `json:"share_vector"`
	ShareSeed   *prng.Seed `json:"share_seed"`
}

// SubMod computes (x - y) mod modulus for x, y in [0, modulus) without branching on the inputs.
func SubMod(x, y, modulus uint32) uint32 {
	diff, borrow := bits.Sub32(x, y, 0)
	return diff + borrow*modulus
}

// AddMod computes (x + y) mod modulus for x, y in [0, modulus) without branching on the inputs.
func AddMod(x, y, modulus uint32) uint32 {
	sum := uint64(x) + uint64(y)
	reduced, borrow := bits.Sub64(sum, uint64(modulus), 0)
	// borrow is 1 iff sum < modulus, in which case the mask keeps sum.
	mask := -borrow
	return uint32((sum & mask) | (reduced &^ mask))
}

func validate(param Parameter, input []uint32) error {
	if len(input) == 0 {
		return status.Error(codes.InvalidArgument, "Input must be a non-empty vector.")
	}
	if param.Modulus <= 1 {
		return status.Error(codes.InvalidArgument, "The modulus must be greater than 1.")
	}
	return nil
}

func generate(param Parameter, input []uint32) (*SecretShare, error) {
	// Sample a random seed as the first share.
	seed, err := prng.NewSeed()
	if err != nil {
		return nil, err
	}
	g, err := prng.CreatePrngFromSeed(seed)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to expand the share seed: %v", err)
	}
	// shareVector1 is the share held implicitly by whoever replays the seed.
	shareVector1, err := g.UniformRandomRange(int64(len(input)), param.Modulus)
	if err != nil {
		return nil, err
	}

	shareVector2 := make([]uint32, len(input))
	for i, x := range input {
		shareVector2[i] = SubMod(x, shareVector1[i], param.Modulus)
	}
	return &SecretShare{ShareVector: shareVector2, ShareSeed: seed}, nil
}

// GenerateSecretShares splits the input into two additive shares modulo param.Modulus.
//
// Elements not less than the modulus are reduced first, so the shares reconstruct
// input[i] mod param.Modulus.
func GenerateSecretShares(param Parameter, input []uint32) (*SecretShare, error) {
	if err := validate(param, input); err != nil {
		return nil, err
	}
	reduced := make([]uint32, len(input))
	for i, x := range input {
		reduced[i] = x % param.Modulus
	}
	return generate(param, reduced)
}

// GenerateBoundedSecretShares is like GenerateSecretShares, but it requires every input element
// to be less than the modulus.
func GenerateBoundedSecretShares(param Parameter, input []uint32) (*SecretShare, error) {
	if err := validate(param, input); err != nil {
		return nil, err
	}
	for _, x := range input {
		if x >= param.Modulus {
			return nil, status.Errorf(codes.InvalidArgument, "Inputs must be less than the modulus, which is %d.", param.Modulus)
		}
	}
	return generate(param, input)
}

// ExpandSeedShare regenerates the share vector represented by the seed of a SecretShare.
func ExpandSeedShare(param Parameter, share *SecretShare) ([]uint32, error) {
	if param.Modulus <= 1 {
		return nil, status.Error(codes.InvalidArgument, "The modulus must be greater than 1.")
	}
	if share == nil {
		return nil, status.Error(codes.InvalidArgument, "The secret share is missing.")
	}
	g, err := prng.CreatePrngFromSeed(share.ShareSeed)
	if err != nil {
		return nil, err
	}
	return g.UniformRandomRange(int64(len(share.ShareVector)), param.Modulus)
}

// ReconstructSecret combines the two shares in a SecretShare to get the original vector.
func ReconstructSecret(param Parameter, share *SecretShare) ([]uint32, error) {
	shareVector1, err := ExpandSeedShare(param, share)
	if err != nil {
		return nil, err
	}
	result := make([]uint32, len(share.ShareVector))
	for i, x := range share.ShareVector {
		if x >= param.Modulus {
			return nil, status.Errorf(codes.InvalidArgument, "Share element %d is not less than the modulus %d.", x, param.Modulus)
		}
		result[i] = AddMod(shareVector1[i], x, param.Modulus)
	}
	return result, nil
}
