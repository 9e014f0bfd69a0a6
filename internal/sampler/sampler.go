// Package sampler draws syndrome shots from a detector error model. Each
// mechanism fires independently with its declared probability and XORs its
// full footprint into the shot, so the sampled noise process is the intact
// model even when the decoder only sees a first-alternative approximation.
package sampler

import (
	"fmt"
	"math/rand"

	"github.com/qecbench/demdiff/internal/dem"
)

// Options controls sampling.
type Options struct {
	Shots int
	Seed  int64
	// SeparateObservables returns observable flips in their own array. When
	// false, observable bits are appended to each detection row instead and
	// Shots.Observables is nil.
	SeparateObservables bool
}

// Shots is one sampled batch. Rows are shots; Detections columns are
// detectors, Observables columns are observables. The arrays are generated
// once and replayed identically across compared decoder configurations.
type Shots struct {
	Detections  [][]uint8
	Observables [][]uint8
}

// Sample draws opts.Shots shots from the model with a seeded generator, so an
// identical (model, seed) pair reproduces the identical batch.
func Sample(model *dem.Model, opts Options) (*Shots, error) {
	if model == nil {
		return nil, fmt.Errorf("sampler: nil model")
	}
	if opts.Shots <= 0 {
		return nil, fmt.Errorf("sampler: shot count must be positive, got %d", opts.Shots)
	}

	footprints := make([]dem.Component, len(model.Mechanisms))
	for i, mech := range model.Mechanisms {
		footprints[i] = mech.Footprint()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	out := &Shots{
		Detections: make([][]uint8, opts.Shots),
	}
	if opts.SeparateObservables {
		out.Observables = make([][]uint8, opts.Shots)
	}

	for s := 0; s < opts.Shots; s++ {
		dets := make([]uint8, model.NumDetectors)
		obs := make([]uint8, model.NumObservables)
		for i, mech := range model.Mechanisms {
			if rng.Float64() >= mech.Probability {
				continue
			}
			for _, d := range footprints[i].Detectors {
				dets[d] ^= 1
			}
			for _, o := range footprints[i].Observables {
				obs[o] ^= 1
			}
		}
		if opts.SeparateObservables {
			out.Detections[s] = dets
			out.Observables[s] = obs
		} else {
			out.Detections[s] = append(dets, obs...)
		}
	}
	return out, nil
}
