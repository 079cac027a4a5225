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

// This binary splits an input vector into two additive secret shares.
package main

import (
	"context"
	"flag"
	"fmt"

	log "github.com/golang/glog"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/cryptoio"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/secretshare"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/sharewire"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/shuffle"
	"github.com/google/privacy-sandbox-aggregation-primitives/report/reportutils"
	"github.com/google/privacy-sandbox-aggregation-primitives/shared/utils"
)

var (
	requestFile  = flag.String("request_file", "", "Input file with a serialized SecretShareGeneratorRequest. Takes precedence over input_file.")
	inputFile    = flag.String("input_file", "", "Input file with comma-separated values, used when request_file is empty.")
	ringModulus  = flag.Uint64("ring_modulus", 1<<32-5, "Modulus of the shares, used with input_file.")
	bounded      = flag.Bool("bounded", false, "Reject inputs that are not smaller than the modulus instead of reducing them.")
	shuffleInput = flag.Bool("shuffle", false, "Shuffle the input vector with a fresh seed before splitting it.")

	outputDir       = flag.String("output_dir", "", "Local or GCS directory for the output files that are not given explicitly.")
	shuffleSeedFile = flag.String("shuffle_seed_file", "", "Output JSON file for the shuffle seed. Defaults to shuffle_seed.json in output_dir.")
	outputShareFile = flag.String("output_share_file", "", "Output file for the secret share. Defaults to share.<output_format> in output_dir.")
	outputFormat    = flag.String("output_format", cryptoio.FormatProto, "Format of the output share, proto or cbor.")
)

// outputFiles contains the resolved output locations.
type outputFiles struct {
	ShareFile, ShuffleSeedFile string
}

// resolveOutputFiles fills the output files that are not set explicitly from the output
// directory. The seed file is only needed when the input is shuffled.
func resolveOutputFiles(dir, shareFile, seedFile, format string, shuffled bool) (outputFiles, error) {
	if shareFile == "" {
		if dir == "" {
			return outputFiles{}, fmt.Errorf("either output_share_file or output_dir is required")
		}
		shareFile = utils.JoinPath(dir, "share."+format)
	}
	if shuffled && seedFile == "" {
		if dir == "" {
			return outputFiles{}, fmt.Errorf("either shuffle_seed_file or output_dir is required with -shuffle")
		}
		seedFile = utils.JoinPath(dir, "shuffle_seed.json")
	}
	if !shuffled {
		seedFile = ""
	}
	return outputFiles{ShareFile: shareFile, ShuffleSeedFile: seedFile}, nil
}

func readRequest(ctx context.Context) (*sharewire.SecretShareGeneratorRequest, error) {
	if *requestFile != "" {
		return cryptoio.ReadSecretShareRequest(ctx, *requestFile)
	}
	data, err := reportutils.ReadInputVector(ctx, *inputFile)
	if err != nil {
		return nil, err
	}
	return &sharewire.SecretShareGeneratorRequest{RingModulus: *ringModulus, Data: data}, nil
}

func main() {
	flag.Parse()

	if *requestFile == "" && *inputFile == "" {
		log.Exit("either request_file or input_file is required")
	}
	outputs, err := resolveOutputFiles(*outputDir, *outputShareFile, *shuffleSeedFile, *outputFormat, *shuffleInput)
	if err != nil {
		log.Exit(err)
	}

	ctx := context.Background()
	request, err := readRequest(ctx)
	if err != nil {
		log.Exit(err)
	}
	if request.RingModulus > 1<<32-1 {
		log.Exitf("ring modulus %d does not fit in 32 bits", request.RingModulus)
	}

	if *shuffleInput {
		seed, err := prng.NewSeed()
		if err != nil {
			log.Exit(err)
		}
		if err := shuffle.SecureShuffleWithSeed(request.Data, seed); err != nil {
			log.Exit(err)
		}
		if err := cryptoio.SavePrngSeed(ctx, outputs.ShuffleSeedFile, seed); err != nil {
			log.Exit(err)
		}
	}

	param := secretshare.Parameter{Modulus: uint32(request.RingModulus)}
	var share *secretshare.SecretShare
	if *bounded {
		share, err = secretshare.GenerateBoundedSecretShares(param, request.Data)
	} else {
		share, err = secretshare.GenerateSecretShares(param, request.Data)
	}
	if err != nil {
		log.Exit(err)
	}
	log.Infof("split %d values modulo %d", len(request.Data), param.Modulus)

	if err := cryptoio.SaveSecretShare(ctx, outputs.ShareFile, *outputFormat, share); err != nil {
		log.Exit(err)
	}
}
