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

package prng

import (
	"math/bits"

	log "github.com/golang/glog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MaxRandomElements is the largest number of values a single range request can return. The
// keystream drawn for it stays below MaxPseudorandomBytes.
const MaxRandomElements int64 = 1 << 28

func validateRange(size int64, modulus uint32) error {
	if modulus <= 1 {
		return status.Error(codes.InvalidArgument, "The modulus must be greater than 1.")
	}
	if size < 0 {
		return status.Error(codes.InvalidArgument, "Number of pseudorandom elements must be a non-negative value.")
	}
	if size > MaxRandomElements {
		return status.Errorf(codes.InvalidArgument, "Number of pseudorandom elements %d exceeds the maximum %d.", size, MaxRandomElements)
	}
	return nil
}

// expectedSampleSize returns how many candidates to draw for `remaining` accepted values.
//
// With failure rate f, it is expected to sample 1 + remaining*(1 + f/(1-f)) candidates.
func expectedSampleSize(remaining int64, failureRate float64) int64 {
	return int64(float64(remaining) + 1.0 + failureRate*float64(remaining)/(1-failureRate))
}

// UniformRandomRange generates size values uniformly distributed in [0, modulus).
//
// Each candidate is read as a big-endian integer from ceil(k/8) keystream bytes and masked to
// k = ceil(log2(modulus)) bits; candidates not less than modulus are rejected.
func (g *Generator) UniformRandomRange(size int64, modulus uint32) ([]uint32, error) {
	if err := validateRange(size, modulus); err != nil {
		return nil, err
	}
	return g.uniformRandomRange(size, modulus)
}

// uniformRandomRange skips the size limit; batches of NonZeroUniformRandomRange may exceed it.
func (g *Generator) uniformRandomRange(size int64, modulus uint32) ([]uint32, error) {

	bitLength := bits.Len32(modulus - 1)
	bytesPerValue := int64((bitLength + 7) / 8)
	rangeSize := uint64(1) << uint(bitLength)
	mask := uint32(rangeSize - 1)
	// 2^{bitLength-1} < modulus <= 2^{bitLength}, so the failure rate is less than 0.5.
	failureRate := float64(rangeSize-uint64(modulus)) / float64(rangeSize)

	ret := make([]uint32, 0, size)
	for int64(len(ret)) < size {
		sampleSize := expectedSampleSize(size-int64(len(ret)), failureRate)
		log.V(3).Infof("sampling %d candidates for %d remaining values", sampleSize, size-int64(len(ret)))
		arr, err := g.GeneratePseudorandomBytes(sampleSize * bytesPerValue)
		if err != nil {
			return nil, err
		}
		for i := int64(0); i < sampleSize && int64(len(ret)) < size; i++ {
			var v uint32
			for _, b := range arr[i*bytesPerValue : (i+1)*bytesPerValue] {
				v = v<<8 | uint32(b)
			}
			v &= mask
			if v < modulus {
				ret = append(ret, v)
			}
		}
	}
	return ret, nil
}

// NonZeroUniformRandomRange generates size values uniformly distributed in [1, modulus).
func (g *Generator) NonZeroUniformRandomRange(size int64, modulus uint32) ([]uint32, error) {
	if err := validateRange(size, modulus); err != nil {
		return nil, err
	}

	// A candidate fails when it is zero.
	failureRate := 1.0 / float64(modulus)
	ret := make([]uint32, 0, size)
	for int64(len(ret)) < size {
		arr, err := g.uniformRandomRange(expectedSampleSize(size-int64(len(ret)), failureRate), modulus)
		if err != nil {
			return nil, err
		}
		for _, v := range arr {
			if int64(len(ret)) >= size {
				break
			}
			if v > 0 {
				ret = append(ret, v)
			}
		}
	}
	return ret, nil
}
