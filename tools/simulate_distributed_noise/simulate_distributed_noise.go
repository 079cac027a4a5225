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

// This binary simulates aggregation rounds where every contributor adds a distributed noise
// component, and reports the global noise.
package main

import (
	"context"
	"flag"
	"strconv"

	log "github.com/golang/glog"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/distributednoise"
	"github.com/google/privacy-sandbox-aggregation-primitives/pipeline/noisesimulation"
	"github.com/google/privacy-sandbox-aggregation-primitives/shared/utils"
)

var (
	mechanism        = flag.String("mechanism", "discrete_gaussian", "Noise mechanism, geometric or discrete_gaussian.")
	epsilon          = flag.Float64("epsilon", 1, "Privacy parameter epsilon of one round.")
	delta            = flag.Float64("delta", 1e-5, "Privacy parameter delta of one round.")
	contributorCount = flag.Int64("contributor_count", 2, "Number of contributors that add noise in each round.")
	rounds           = flag.Int("rounds", 1000, "Number of simulated rounds.")

	outputFile = flag.String("output_file", "", "Optional output file for the global noise of every round, one value per line.")
)

func main() {
	flag.Parse()

	m, err := distributednoise.ParseMechanism(*mechanism)
	if err != nil {
		log.Exit(err)
	}

	ctx := context.Background()
	summary, err := noisesimulation.SimulateRounds(ctx, distributednoise.NoiseConfig{
		Mechanism:        m,
		Params:           distributednoise.DifferentialPrivacyParams{Epsilon: *epsilon, Delta: *delta},
		ContributorCount: *contributorCount,
	}, *rounds)
	if err != nil {
		log.Exit(err)
	}
	log.Infof("%v noise over %d rounds: mean=%v variance=%v min=%d max=%d", m, *rounds, summary.Mean, summary.Variance, summary.Min, summary.Max)

	if *outputFile == "" {
		return
	}
	lines := make([]string, len(summary.Noise))
	for i, noise := range summary.Noise {
		lines[i] = strconv.FormatInt(noise, 10)
	}
	if err := utils.WriteLines(ctx, lines, *outputFile); err != nil {
		log.Exit(err)
	}
}
