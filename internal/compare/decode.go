package compare

import (
	"fmt"

	"github.com/qecbench/demdiff/internal/bench"
	"github.com/qecbench/demdiff/internal/decoder"
	"github.com/qecbench/demdiff/internal/metrics"
	"github.com/qecbench/demdiff/internal/sampler"
	"github.com/qecbench/demdiff/internal/statistics"
)

// ApproximationNote explains why the reported error rates are approximate.
// The sampled noise fires full correlated mechanisms while the decoder sees
// only the first decomposition alternative of each one.
const ApproximationNote = "decode ignores '^' alternatives beyond the first, so error rates are approximate"

// ModeResult is one decomposition mode's decoding outcome.
type ModeResult struct {
	Variant VariantReport `json:"variant" yaml:"variant"`
	Stats   bench.Stats   `json:"stats" yaml:"stats"`
	// Samples holds the ms/shot of each repeat; Stats.MSPerShot is their mean.
	Samples  []float64 `json:"samples,omitempty" yaml:"samples,omitempty"`
	StdDevMS float64   `json:"stddev_ms,omitempty" yaml:"stddev_ms,omitempty"`
	CILow    float64   `json:"ci_low,omitempty" yaml:"ci_low,omitempty"`
	CIHigh   float64   `json:"ci_high,omitempty" yaml:"ci_high,omitempty"`
}

// DecodingComparison is the behavioral diff: the same shot batch decoded
// under both decomposition modes.
type DecodingComparison struct {
	Family   string  `json:"family" yaml:"family"`
	Distance int     `json:"distance" yaml:"distance"`
	Rounds   int     `json:"rounds" yaml:"rounds"`
	Noise    float64 `json:"noise" yaml:"noise"`
	Solver   string  `json:"solver" yaml:"solver"`
	Shots    int     `json:"shots" yaml:"shots"`
	Seed     int64   `json:"seed" yaml:"seed"`
	Repeat   int     `json:"repeat" yaml:"repeat"`

	Modes [2]ModeResult `json:"modes" yaml:"modes"`

	// Timing delta across repeats, only populated when Repeat > 1.
	TimingDelta       *statistics.ConfidenceInterval `json:"timing_delta,omitempty" yaml:"timing_delta,omitempty"`
	TimingSignificant bool                           `json:"timing_significant" yaml:"timing_significant"`

	Note string `json:"note" yaml:"note"`
}

// RunDecoding samples one shot batch from the intact (decompose_errors=false)
// model and decodes it under both modes with the same solver. The batch is
// replayed Repeat times per mode so timing gets a spread; accuracy is
// deterministic and taken from the first replay.
func RunDecoding(cfg Config) (*DecodingComparison, error) {
	vTrue, err := BuildVariant(cfg, true)
	if err != nil {
		return nil, err
	}
	vFalse, err := BuildVariant(cfg, false)
	if err != nil {
		return nil, err
	}

	repeat := cfg.Repeat
	if repeat < 1 {
		repeat = 1
	}

	// Both modes decode the identical batch. Sampling from the intact model
	// keeps mechanism correlations that decomposition would split.
	shots, err := sampler.Sample(vFalse.Model, sampler.Options{
		Shots:               cfg.Shots,
		Seed:                cfg.Seed,
		SeparateObservables: true,
	})
	if err != nil {
		return nil, err
	}

	out := &DecodingComparison{
		Family:   cfg.Family,
		Distance: cfg.Distance,
		Rounds:   cfg.Rounds,
		Noise:    cfg.Noise,
		Solver:   cfg.Solver,
		Shots:    cfg.Shots,
		Seed:     cfg.Seed,
		Repeat:   repeat,
		Note:     ApproximationNote,
	}
	if out.Solver == "" {
		out.Solver = decoder.DefaultSolver
	}

	for i, v := range []*Variant{vTrue, vFalse} {
		dec, err := decoder.New(v.Problem, cfg.Solver, cfg.SolverOptions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Report.Label, err)
		}
		res := ModeResult{Variant: v.Report}
		for r := 0; r < repeat; r++ {
			stats, err := bench.Run(dec, shots.Detections, shots.Observables)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", v.Report.Label, err)
			}
			if r == 0 {
				res.Stats = stats
			}
			res.Samples = append(res.Samples, stats.MSPerShot)
		}
		res.Stats.MSPerShot = metrics.Mean(res.Samples)
		if repeat > 1 {
			res.StdDevMS = metrics.StdDev(res.Samples)
			res.CILow, res.CIHigh = metrics.ConfidenceInterval95(res.Samples)
		}
		out.Modes[i] = res
	}

	if repeat > 1 {
		ci, err := statistics.PairedDeltaCI(out.Modes[0].Samples, out.Modes[1].Samples, 0.95, cfg.Seed)
		if err != nil {
			return nil, err
		}
		out.TimingDelta = &ci
		out.TimingSignificant = statistics.IsSignificant(ci)
	}
	return out, nil
}
