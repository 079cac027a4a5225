// Copyright 2022 Google LLC
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

// Package shuffle permutes vectors with a Fisher-Yates shuffle driven by a seeded keystream.
package shuffle

import (
	"lukechampine.com/uint128"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
)

const bytesPerUint128 = 16

// SecureShuffleWithSeed shuffles data in place. The same seed always yields the same
// permutation for inputs of the same length.
//
// The permutation is the forward Fisher-Yates variant: for i = 0..n-2, element i is swapped
// with element i + (rand[i] mod (n-i)), where rand[i] is the i-th little-endian 128-bit value of
// the keystream. This order is part of the output format and must not change.
func SecureShuffleWithSeed(data []uint32, seed *prng.Seed) error {
	if len(data) <= 1 {
		return nil
	}
	g, err := prng.CreatePrngFromSeed(seed)
	if err != nil {
		return err
	}

	// Sample all the random values used to compute the swapping indices at once.
	numElements := len(data)
	arr, err := g.GeneratePseudorandomBytes(int64(numElements) * bytesPerUint128)
	if err != nil {
		return err
	}
	for i := 0; i < numElements-1; i++ {
		// Rejecting rand[i] >= 2^128 - (2^128 mod (n-i)) would remove the modulo bias, but the
		// bias is below 2^-40 for inputs shorter than 2^43, so it is ignored.
		r := uint128.FromBytes(arr[i*bytesPerUint128 : (i+1)*bytesPerUint128])
		j := i + int(r.Mod64(uint64(numElements-i)))
		data[i], data[j] = data[j], data[i]
	}
	return nil
}
