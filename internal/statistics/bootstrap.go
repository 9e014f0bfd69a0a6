// Package statistics provides bootstrap confidence intervals for repeated
// timing measurements, including the paired-delta interval the comparator
// uses to decide whether a latency difference between two decoder
// configurations is significant.
package statistics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower" yaml:"lower"`
	Upper           float64 `json:"upper" yaml:"upper"`
	Mean            float64 `json:"mean" yaml:"mean"`
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps" yaml:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// BootstrapCIWithSeed computes a bootstrap confidence interval over the given
// samples using the percentile method. confidenceLevel should be in (0, 1),
// e.g. 0.95. Returns a degenerate interval when fewer than 2 data points
// exist. A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(samples []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(samples)
	if n < 2 {
		m := mean(samples)
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	m := mean(samples)
	iters := DefaultBootstrapIterations

	// Bootstrap: resample with replacement, compute mean of each resample
	bootMeans := make([]float64, iters)
	resample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			resample[j] = samples[rng.Intn(n)]
		}
		bootMeans[i] = mean(resample)
	}

	sort.Float64s(bootMeans)

	// Percentile method
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// PairedDeltaCI computes a bootstrap interval over the pairwise differences
// b[i]-a[i]: the per-repeat latency delta between two decoder configurations
// measured on the same shot batch. The inputs must be equally long.
func PairedDeltaCI(a, b []float64, confidenceLevel float64, seed int64) (ConfidenceInterval, error) {
	if len(a) != len(b) {
		return ConfidenceInterval{}, fmt.Errorf("statistics: paired samples differ in length: %d vs %d", len(a), len(b))
	}
	deltas := make([]float64, len(a))
	for i := range a {
		deltas[i] = b[i] - a[i]
	}
	return BootstrapCIWithSeed(deltas, confidenceLevel, seed), nil
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
