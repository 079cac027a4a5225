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

// Package prng contains the deterministic pseudorandom generator used by the secret sharing,
// shuffling and sampling functions.
//
// The generator expands a seed (a 256-bit AES key and a 128-bit IV) with AES-256 in counter
// mode. Two generators created from the same seed produce the same byte stream, regardless of
// how the bytes are requested.
package prng

import (
	"crypto/aes"
	"crypto/cipher"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The required lengths of the seed components.
const (
	BytesPerAes256Key = 32
	BytesPerAes256Iv  = 16
)

// MaxPseudorandomBytes is the largest keystream a single request can return.
const MaxPseudorandomBytes int64 = 1 << 32

// Seed determines every byte of the keystream expanded from it.
type Seed struct {
	Key []byte `json:"key"`
	Iv  []byte `json:"iv"`
}

// Generator produces a deterministic keystream.
//
// The internal counter advances with every generated byte, so a Generator must not be shared by
// concurrent callers. Independent generators, including ones created from the same seed, can be
// used in parallel.
type Generator struct {
	stream cipher.Stream
}

// New creates a Generator with the given AES-256 key and IV.
func New(key, iv []byte) (*Generator, error) {
	if len(key) != BytesPerAes256Key {
		return nil, status.Errorf(codes.InvalidArgument, "The uniform pseudorandom generator key has length of %d bytes but %d bytes are required.", len(key), BytesPerAes256Key)
	}
	if len(iv) != BytesPerAes256Iv {
		return nil, status.Errorf(codes.InvalidArgument, "The uniform pseudorandom generator IV has length of %d bytes but %d bytes are required.", len(iv), BytesPerAes256Iv)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error initializing the uniform pseudorandom generator context: %v", err)
	}
	// The IV is copied by NewCTR, so later changes to the caller's slice do not affect the stream.
	return &Generator{stream: cipher.NewCTR(block, iv)}, nil
}

// CreatePrngFromSeed creates a Generator from a seed.
func CreatePrngFromSeed(seed *Seed) (*Generator, error) {
	if seed == nil {
		return nil, status.Error(codes.InvalidArgument, "The pseudorandom generator seed is missing.")
	}
	return New(seed.Key, seed.Iv)
}

// GeneratePseudorandomBytes returns the next size bytes of the keystream.
func (g *Generator) GeneratePseudorandomBytes(size int64) ([]byte, error) {
	if size < 0 {
		return nil, status.Error(codes.InvalidArgument, "Number of pseudorandom bytes must be a non-negative value.")
	}
	if size > MaxPseudorandomBytes {
		return nil, status.Errorf(codes.InvalidArgument, "Number of pseudorandom bytes %d exceeds the maximum %d.", size, MaxPseudorandomBytes)
	}
	ret := make([]byte, size)
	if size == 0 {
		return ret, nil
	}
	g.stream.XORKeyStream(ret, ret)
	return ret, nil
}
