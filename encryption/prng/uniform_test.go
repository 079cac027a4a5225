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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newNISTGenerator(t testing.TB) *Generator {
	t.Helper()
	g, err := New(
		mustDecodeHex(t, "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4"),
		mustDecodeHex(t, "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff"))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestUniformRandomRangeKnownAnswer(t *testing.T) {
	for _, tc := range []struct {
		size    int64
		modulus uint32
		want    []uint32
	}{
		{
			size:    10,
			modulus: 1000,
			want:    []uint32{991, 497, 279, 563, 666, 789, 96, 258, 622, 413},
		},
		{
			size:    16,
			modulus: 2,
			want:    []uint32{1, 1, 1, 1, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		},
		{
			size:    5,
			modulus: 4294967291,
			want:    []uint32{199196145, 1494685235, 1587186453, 3361785090, 1517185437},
		},
	} {
		got, err := newNISTGenerator(t).UniformRandomRange(tc.size, tc.modulus)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("modulus %d: values mismatch (-want +got):\n%s", tc.modulus, diff)
		}
	}
}

func TestNonZeroUniformRandomRangeKnownAnswer(t *testing.T) {
	got, err := newNISTGenerator(t).NonZeroUniformRandomRange(10, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{1, 1, 1, 2, 2, 2, 1, 1, 2, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestUniformRandomRangeInvalidInput(t *testing.T) {
	prng, _ := newRandomGenerators(t)
	for _, sample := range []func(int64, uint32) ([]uint32, error){
		prng.UniformRandomRange,
		prng.NonZeroUniformRandomRange,
	} {
		if _, err := sample(10, 1); status.Code(err) != codes.InvalidArgument {
			t.Errorf("expect InvalidArgument error for modulus 1, got %v", err)
		}
		if _, err := sample(10, 0); status.Code(err) != codes.InvalidArgument {
			t.Errorf("expect InvalidArgument error for modulus 0, got %v", err)
		}
		if _, err := sample(-1, 7); status.Code(err) != codes.InvalidArgument {
			t.Errorf("expect InvalidArgument error for negative size, got %v", err)
		}
		for _, size := range []int64{MaxRandomElements + 1, math.MaxInt64} {
			if _, err := sample(size, 7); status.Code(err) != codes.InvalidArgument {
				t.Errorf("expect InvalidArgument error for size %d, got %v", size, err)
			}
		}
		got, err := sample(0, 7)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("expect empty output for size 0, got %v", got)
		}
	}
}

func TestUniformRandomRangeValuesInRange(t *testing.T) {
	const size = 10000
	for _, modulus := range []uint32{2, 3, 7, 128, 129, 255, 256, 257, 65537, 1<<31 + 1, 4294967295} {
		prng, _ := newRandomGenerators(t)
		values, err := prng.UniformRandomRange(size, modulus)
		if err != nil {
			t.Fatal(err)
		}
		if len(values) != size {
			t.Fatalf("modulus %d: want %d values, got %d", modulus, size, len(values))
		}
		for _, v := range values {
			if v >= modulus {
				t.Fatalf("modulus %d: value %d out of range", modulus, v)
			}
		}

		nonZero, err := prng.NonZeroUniformRandomRange(size, modulus)
		if err != nil {
			t.Fatal(err)
		}
		if len(nonZero) != size {
			t.Fatalf("modulus %d: want %d non-zero values, got %d", modulus, size, len(nonZero))
		}
		for _, v := range nonZero {
			if v == 0 || v >= modulus {
				t.Fatalf("modulus %d: non-zero value %d out of range", modulus, v)
			}
		}
	}
}

func TestUniformRandomRangeIsUniform(t *testing.T) {
	const (
		size    = 120000
		modulus = 6
	)
	prng, _ := newRandomGenerators(t)
	values, err := prng.UniformRandomRange(size, modulus)
	if err != nil {
		t.Fatal(err)
	}
	counts := make([]int, modulus)
	for _, v := range values {
		counts[v]++
	}
	// Chi-squared statistic with 5 degrees of freedom; 30 is far beyond the 0.9999 quantile.
	expected := float64(size) / modulus
	var chiSq float64
	for _, c := range counts {
		d := float64(c) - expected
		chiSq += d * d / expected
	}
	if chiSq > 30 {
		t.Errorf("counts %v are not uniform, chi-squared %f", counts, chiSq)
	}
}

func TestUniformRandomRangeReplay(t *testing.T) {
	prng1, prng2 := newRandomGenerators(t)
	for _, size := range []int64{1, 17, 1000} {
		got1, err := prng1.UniformRandomRange(size, 1000003)
		if err != nil {
			t.Fatal(err)
		}
		got2, err := prng2.UniformRandomRange(size, 1000003)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(got1, got2); diff != "" {
			t.Errorf("size %d: replay mismatch (-prng1 +prng2):\n%s", size, diff)
		}
	}
}
