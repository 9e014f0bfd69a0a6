// Package bench measures a decoder over a batch of sampled shots: throughput
// as mean wall-clock milliseconds per shot and accuracy as the logical error
// rate.
package bench

import (
	"bytes"
	"fmt"
	"time"

	"github.com/qecbench/demdiff/internal/decoder"
)

//go:generate mockgen -source=bench.go -destination=mock_decoder_test.go -package=bench

// Decoder is the capability the benchmarker needs: one syndrome in, one raw
// solution and predicted observable vector out. The solver behind it is
// opaque.
type Decoder interface {
	Decode(detections []uint8) (decoder.Solution, []uint8, error)
}

// Stats aggregates one benchmark run.
//
// MSPerShot is end-to-end batch time divided by shot count, so it includes
// per-call overhead: a throughput proxy, not a kernel microbenchmark.
// LogicalErrorRate is only meaningful when HasLogicalErrorRate is set; with no
// ground-truth observables it is undefined, not zero.
type Stats struct {
	ShotCount           int     `json:"shots" yaml:"shots"`
	MSPerShot           float64 `json:"ms_per_shot" yaml:"ms_per_shot"`
	LogicalErrorRate    float64 `json:"logical_error_rate" yaml:"logical_error_rate"`
	HasLogicalErrorRate bool    `json:"has_logical_error_rate" yaml:"has_logical_error_rate"`
}

// Run decodes every shot in order and aggregates timing and accuracy. A shot
// is correct only when its predicted observable vector equals ground truth in
// every entry; one mismatched bit fails the whole shot. The shot arrays are
// never mutated or reordered, so a batch can be replayed against another
// decoder for a paired comparison.
func Run(dec Decoder, detections, observables [][]uint8) (Stats, error) {
	if dec == nil {
		return Stats{}, fmt.Errorf("bench: nil decoder")
	}
	shots := len(detections)
	if shots == 0 {
		return Stats{}, fmt.Errorf("bench: no shots to decode")
	}
	hasObs := len(observables) > 0 && len(observables[0]) > 0
	if hasObs && len(observables) != shots {
		return Stats{}, fmt.Errorf("bench: %d detection rows but %d observable rows", shots, len(observables))
	}

	correct := 0
	start := time.Now()
	for i := 0; i < shots; i++ {
		_, predicted, err := dec.Decode(detections[i])
		if err != nil {
			return Stats{}, fmt.Errorf("bench: shot %d: %w", i, err)
		}
		if hasObs && bytes.Equal(predicted, observables[i]) {
			correct++
		}
	}
	elapsed := time.Since(start)

	stats := Stats{
		ShotCount: shots,
		MSPerShot: float64(elapsed) / float64(time.Millisecond) / float64(shots),
	}
	if hasObs {
		stats.HasLogicalErrorRate = true
		stats.LogicalErrorRate = 1.0 - float64(correct)/float64(shots)
	}
	return stats, nil
}
