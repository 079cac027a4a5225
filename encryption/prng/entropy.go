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
	"crypto/rand"
	"encoding/binary"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// entropyReader supplies true randomness for seeds and noise.
var entropyReader io.Reader = rand.Reader

// ReplaceEntropyReaderForTesting swaps the system entropy source and returns a function that
// restores it. Only for tests.
func ReplaceEntropyReaderForTesting(r io.Reader) func() {
	old := entropyReader
	entropyReader = r
	return func() { entropyReader = old }
}

// EntropyOK reports whether the entropy source can be read. Callers must check it before
// sampling key material.
func EntropyOK() bool {
	var b [1]byte
	_, err := io.ReadFull(entropyReader, b[:])
	return err == nil
}

// TrueRandomUint64 reads a uint64 from the entropy source.
func TrueRandomUint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(entropyReader, b[:]); err != nil {
		return 0, status.Errorf(codes.Internal, "Failed to read from the entropy source: %v", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// NewSeed samples a fresh seed from the entropy source.
func NewSeed() (*Seed, error) {
	if !EntropyOK() {
		return nil, status.Error(codes.Internal, "The random generator has not been seeded with enough entropy.")
	}
	key := make([]byte, BytesPerAes256Key)
	if _, err := io.ReadFull(entropyReader, key); err != nil {
		return nil, status.Error(codes.Internal, "Failed to sample the AES 256 key.")
	}
	iv := make([]byte, BytesPerAes256Iv)
	if _, err := io.ReadFull(entropyReader, iv); err != nil {
		return nil, status.Error(codes.Internal, "Failed to sample the AES 256 IV.")
	}
	return &Seed{Key: key, Iv: iv}, nil
}

const entropyBufferSize = 512

// EntropySource is a golang.org/x/exp/rand Source that reads from the entropy source, so it can
// drive the gonum distributions. Seed is a no-op.
//
// A read failure is sticky: Uint64 returns zero from then on and Err reports the failure.
// An EntropySource is not safe for concurrent use.
type EntropySource struct {
	buf [entropyBufferSize]byte
	pos int
	err error
}

// NewEntropySource creates an EntropySource with an empty buffer.
func NewEntropySource() *EntropySource {
	return &EntropySource{pos: entropyBufferSize}
}

// Uint64 returns 64 random bits.
func (s *EntropySource) Uint64() uint64 {
	if s.err != nil {
		return 0
	}
	if s.pos+8 > entropyBufferSize {
		if _, err := io.ReadFull(entropyReader, s.buf[:]); err != nil {
			s.err = err
			return 0
		}
		s.pos = 0
	}
	v := binary.LittleEndian.Uint64(s.buf[s.pos : s.pos+8])
	s.pos += 8
	return v
}

// Seed does nothing; the source cannot be reseeded.
func (s *EntropySource) Seed(uint64) {}

// Err returns the first read failure, wrapped as an Internal error.
func (s *EntropySource) Err() error {
	if s.err == nil {
		return nil
	}
	return status.Errorf(codes.Internal, "Failed to read from the entropy source: %v", s.err)
}
