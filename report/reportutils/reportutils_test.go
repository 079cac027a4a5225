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

package reportutils

import (
	"context"
	"path"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/privacy-sandbox-aggregation-primitives/shared/utils"
)

func TestParseVectorLine(t *testing.T) {
	got, err := ParseVectorLine("0, 17,4294967295")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{0, 17, 4294967295}, got); diff != "" {
		t.Fatalf("incorrect result (-want +got):\n%s", diff)
	}

	for _, line := range []string{"", "1,,2", "4294967296", "-1", "abc"} {
		if _, err := ParseVectorLine(line); err == nil {
			t.Errorf("expect error for line %q", line)
		}
	}
}

func TestFormatVectorLine(t *testing.T) {
	if got, want := FormatVectorLine([]uint32{3, 0, 12}), "3,0,12"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	if got := FormatVectorLine(nil); got != "" {
		t.Errorf("want empty line, got %q", got)
	}
}

func TestReadInputVector(t *testing.T) {
	filename := path.Join(t.TempDir(), "input.txt")
	ctx := context.Background()
	if err := utils.WriteLines(ctx, []string{"1,2", "", "3", "4,5,6"}, filename); err != nil {
		t.Fatal(err)
	}

	got, err := ReadInputVector(ctx, filename)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{1, 2, 3, 4, 5, 6}, got); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReadVector(t *testing.T) {
	want := []uint32{9, 8, 7}
	filename := path.Join(t.TempDir(), "vector.txt")
	ctx := context.Background()
	if err := WriteVector(ctx, want, filename); err != nil {
		t.Fatal(err)
	}
	got, err := ReadInputVector(ctx, filename)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("vector mismatch (-want +got):\n%s", diff)
	}
}
