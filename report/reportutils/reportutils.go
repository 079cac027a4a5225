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

// Package reportutils contains util functions for reading and writing the input vectors.
package reportutils

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/privacy-sandbox-aggregation-primitives/shared/utils"
)

// ParseVectorLine parses a line of comma-separated unsigned 32-bit integers.
func ParseVectorLine(line string) ([]uint32, error) {
	cols := strings.Split(line, ",")
	values := make([]uint32, 0, len(cols))
	for _, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("empty value in line %q", line)
		}
		v, err := strconv.ParseUint(col, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q in line %q: %v", col, line, err)
		}
		values = append(values, uint32(v))
	}
	return values, nil
}

// FormatVectorLine formats the values as a line of comma-separated integers.
func FormatVectorLine(values []uint32) string {
	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(cols, ",")
}

// ReadInputVector reads a vector from a file. Each non-empty line holds one or more
// comma-separated values, and the lines are concatenated in order.
func ReadInputVector(ctx context.Context, filename string) ([]uint32, error) {
	lines, err := utils.ReadLines(ctx, filename)
	if err != nil {
		return nil, err
	}

	var vector []uint32
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		values, err := ParseVectorLine(l)
		if err != nil {
			return nil, err
		}
		vector = append(vector, values...)
	}
	return vector, nil
}

// WriteVector writes the vector to a file as a single comma-separated line.
func WriteVector(ctx context.Context, values []uint32, filename string) error {
	return utils.WriteLines(ctx, []string{FormatVectorLine(values)}, filename)
}
