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

// Package cryptoio contains functions for reading and writing secret share requests, shares and
// seeds.
package cryptoio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/secretshare"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/sharewire"
	"github.com/google/privacy-sandbox-aggregation-primitives/shared/utils"
)

// Supported formats of the stored secret shares.
const (
	FormatProto = "proto"
	FormatCBOR  = "cbor"
)

// SaveSecretShareRequest saves the serialized request into a file.
//
// The file can be stored locally or in a GCS bucket (prefixed with 'gs://').
func SaveSecretShareRequest(ctx context.Context, filename string, request *sharewire.SecretShareGeneratorRequest) error {
	b, err := request.Marshal()
	if err != nil {
		return fmt.Errorf("request marshal failed: %v", err)
	}
	return utils.WriteBytes(ctx, b, filename)
}

// ReadSecretShareRequest reads a serialized request from a file.
//
// The file can be stored locally, in a GCS bucket or served at an URL.
func ReadSecretShareRequest(ctx context.Context, filename string) (*sharewire.SecretShareGeneratorRequest, error) {
	b, err := utils.ReadBytes(ctx, filename)
	if err != nil {
		return nil, err
	}
	return sharewire.UnmarshalSecretShareGeneratorRequest(b)
}

// SaveSecretShare saves a secret share into a file in the given format.
func SaveSecretShare(ctx context.Context, filename, format string, share *secretshare.SecretShare) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case FormatProto:
		b, err = sharewire.MarshalSecretShare(share)
		if err != nil {
			return fmt.Errorf("share marshal failed: %v", err)
		}
	case FormatCBOR:
		b, err = utils.MarshalCBOR(share)
		if err != nil {
			return fmt.Errorf("share marshal failed: %v", err)
		}
	default:
		return fmt.Errorf("unsupported share format %q, expect %q or %q", format, FormatProto, FormatCBOR)
	}
	return utils.WriteBytes(ctx, b, filename)
}

// ReadSecretShare reads a secret share stored in the given format.
func ReadSecretShare(ctx context.Context, filename, format string) (*secretshare.SecretShare, error) {
	if format != FormatProto && format != FormatCBOR {
		return nil, fmt.Errorf("unsupported share format %q, expect %q or %q", format, FormatProto, FormatCBOR)
	}
	b, err := utils.ReadBytes(ctx, filename)
	if err != nil {
		return nil, err
	}
	if format == FormatProto {
		return sharewire.UnmarshalSecretShare(b)
	}
	share := &secretshare.SecretShare{}
	if err := utils.UnmarshalCBOR(b, share); err != nil {
		return nil, err
	}
	return share, nil
}

// SavePrngSeed saves a seed into a JSON file.
func SavePrngSeed(ctx context.Context, filename string, seed *prng.Seed) error {
	b, err := json.Marshal(seed)
	if err != nil {
		return err
	}
	return utils.WriteBytes(ctx, b, filename)
}

// ReadPrngSeed reads a seed from a JSON file.
func ReadPrngSeed(ctx context.Context, filename string) (*prng.Seed, error) {
	b, err := utils.ReadBytes(ctx, filename)
	if err != nil {
		return nil, err
	}
	seed := &prng.Seed{}
	if err := json.Unmarshal(b, seed); err != nil {
		return nil, err
	}
	return seed, nil
}
