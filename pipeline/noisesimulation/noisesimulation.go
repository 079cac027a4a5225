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

// Package noisesimulation evaluates the distributed noise mechanisms by summing the components of
// independent contributors, the way an aggregator would observe them.
package noisesimulation

import (
	"context"
	"math"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/distributednoise"
)

// SimulateGlobalNoise draws one component for each of contributorCount contributors in parallel
// and returns the sum with the contributors' shift offsets removed.
func SimulateGlobalNoise(ctx context.Context, noiser distributednoise.Noiser, contributorCount int64) (int64, error) {
	if contributorCount <= 0 {
		return 0, status.Errorf(codes.InvalidArgument, "contributor count should be positive, got %d", contributorCount)
	}

	components := make([]int64, contributorCount)
	g, ctx := errgroup.WithContext(ctx)
	for i := range components {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			noise, err := noiser.GenerateNoiseComponent()
			if err != nil {
				log.Errorf("contributor %d failed to generate the noise component: %v", i, err)
				return err
			}
			components[i] = noise
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total int64
	for _, c := range components {
		total += c
	}
	return total - contributorCount*noiser.Options().ShiftOffset, nil
}

// Summary describes the global noise observed over the simulated rounds.
type Summary struct {
	RoundIDs []string
	Noise    []int64
	Mean     float64
	Variance float64
	Min, Max int64
}

// SimulateRounds runs the given number of aggregation rounds with the configured mechanism and
// summarizes the global noise.
func SimulateRounds(ctx context.Context, cfg distributednoise.NoiseConfig, rounds int) (*Summary, error) {
	if rounds <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "number of rounds should be positive, got %d", rounds)
	}
	noiser, err := distributednoise.NewNoiser(cfg)
	if err != nil {
		return nil, err
	}
	log.V(2).Infof("simulating %d rounds of %v noise with options %+v", rounds, cfg.Mechanism, noiser.Options())

	summary := &Summary{Min: math.MaxInt64, Max: math.MinInt64}
	samples := make([]float64, rounds)
	for r := 0; r < rounds; r++ {
		roundID := uuid.New().String()
		noise, err := SimulateGlobalNoise(ctx, noiser, cfg.ContributorCount)
		if err != nil {
			log.Errorf("round %s failed: %v", roundID, err)
			return nil, err
		}
		log.V(3).Infof("round %s: global noise %d", roundID, noise)

		summary.RoundIDs = append(summary.RoundIDs, roundID)
		summary.Noise = append(summary.Noise, noise)
		samples[r] = float64(noise)
		if noise < summary.Min {
			summary.Min = noise
		}
		if noise > summary.Max {
			summary.Max = noise
		}
	}
	if rounds > 1 {
		summary.Mean, summary.Variance = stat.MeanVariance(samples, nil)
	} else {
		summary.Mean = samples[0]
	}
	return summary, nil
}
