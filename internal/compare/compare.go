// Package compare runs the same decoding workload under both DEM
// decomposition modes and reports how the parsed problems and the decoding
// results differ.
package compare

import (
	"fmt"
	"math"

	"github.com/qecbench/demdiff/internal/circuit"
	"github.com/qecbench/demdiff/internal/dem"
	"github.com/qecbench/demdiff/internal/problem"
)

// WeightTolerance is the absolute difference below which two weight entries
// count as equal.
const WeightTolerance = 1e-12

// Engine produces DEM text for a circuit configuration. The built-in
// generator and the external stim wrapper both satisfy it.
type Engine interface {
	GenerateDEM(opts circuit.Options) (string, error)
}

// BuiltinEngine generates DEMs with the built-in code-family generator.
type BuiltinEngine struct{}

func (BuiltinEngine) GenerateDEM(opts circuit.Options) (string, error) {
	return circuit.GenerateDEM(opts)
}

// Config describes one paired comparison. The same configuration drives both
// decomposition modes; only the decompose flag differs between them.
type Config struct {
	Engine   Engine
	Family   string
	Distance int
	Rounds   int
	Noise    float64

	// Decoding-only settings.
	Shots         int
	Seed          int64
	Solver        string
	SolverOptions map[string]any
	// Repeat replays the identical batch this many times to give the timing
	// numbers a spread; the logical error rate is identical across repeats.
	Repeat int

	MergeParallel bool
	Flatten       bool
}

// ModeLabel is the human-readable label for one decomposition mode.
func ModeLabel(decompose bool) string {
	return fmt.Sprintf("decompose_errors=%v", decompose)
}

// Variant is one fully parsed DEM mode: the raw text census plus the built
// decoding problem.
type Variant struct {
	Report  VariantReport
	Model   *dem.Model
	Problem *problem.Problem
}

// VariantReport is the printable summary of one mode's parse.
type VariantReport struct {
	Label        string `json:"label" yaml:"label"`
	Mechanisms   int    `json:"mechanisms" yaml:"mechanisms"`
	Columns      int    `json:"columns" yaml:"columns"`
	HShape       [2]int `json:"h_shape" yaml:"h_shape"`
	ObsShape     [2]int `json:"obs_shape" yaml:"obs_shape"`
	CaretLines   int    `json:"caret_lines" yaml:"caret_lines"`
	CaretExample string `json:"caret_example,omitempty" yaml:"caret_example,omitempty"`
}

// BuildVariant generates, censuses and parses one decomposition mode of the
// configured circuit.
func BuildVariant(cfg Config, decompose bool) (*Variant, error) {
	label := ModeLabel(decompose)
	text, err := cfg.Engine.GenerateDEM(circuit.Options{
		Family:          cfg.Family,
		Distance:        cfg.Distance,
		Rounds:          cfg.Rounds,
		Noise:           cfg.Noise,
		DecomposeErrors: decompose,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	caretLines, caretExample := dem.CountCaretLines(text)

	model, err := dem.Parse(text, dem.Options{Flatten: cfg.Flatten})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	p, err := problem.Build(model, problem.Options{
		MergeParallel: cfg.MergeParallel,
		Alternatives:  problem.AlternativeFirstOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	hr, hc := p.H.Dims()
	or, oc := p.Obs.Dims()
	return &Variant{
		Report: VariantReport{
			Label:        label,
			Mechanisms:   len(model.Mechanisms),
			Columns:      p.Columns(),
			HShape:       [2]int{hr, hc},
			ObsShape:     [2]int{or, oc},
			CaretLines:   caretLines,
			CaretExample: caretExample,
		},
		Model:   model,
		Problem: p,
	}, nil
}

// ProblemComparison is the structural diff between the two modes' parses.
// When shapes differ the element-wise counts are meaningless and stay zero;
// renderers must report "H shapes differ" instead.
type ProblemComparison struct {
	Family   string  `json:"family" yaml:"family"`
	Distance int     `json:"distance" yaml:"distance"`
	Rounds   int     `json:"rounds" yaml:"rounds"`
	Noise    float64 `json:"noise" yaml:"noise"`

	Modes [2]VariantReport `json:"modes" yaml:"modes"`

	ShapesMatch   bool    `json:"shapes_match" yaml:"shapes_match"`
	HEntryDiffs   int     `json:"h_entry_diffs" yaml:"h_entry_diffs"`
	WeightDiffs   int     `json:"weight_diffs" yaml:"weight_diffs"`
	MaxWeightDiff float64 `json:"max_weight_diff" yaml:"max_weight_diff"`
}

// RunProblem parses both decomposition modes and diffs the resulting
// problems.
func RunProblem(cfg Config) (*ProblemComparison, error) {
	vTrue, err := BuildVariant(cfg, true)
	if err != nil {
		return nil, err
	}
	vFalse, err := BuildVariant(cfg, false)
	if err != nil {
		return nil, err
	}

	out := &ProblemComparison{
		Family:   cfg.Family,
		Distance: cfg.Distance,
		Rounds:   cfg.Rounds,
		Noise:    cfg.Noise,
		Modes:    [2]VariantReport{vTrue.Report, vFalse.Report},
	}
	out.ShapesMatch = vTrue.Report.HShape == vFalse.Report.HShape &&
		vTrue.Report.ObsShape == vFalse.Report.ObsShape
	if out.ShapesMatch {
		out.HEntryDiffs = countEntryDiffs(vTrue.Problem, vFalse.Problem)
		out.WeightDiffs, out.MaxWeightDiff = diffWeights(vTrue.Problem.Weights, vFalse.Problem.Weights)
	}
	return out, nil
}

// countEntryDiffs counts positions where the two H matrices disagree.
// Shapes must already match.
func countEntryDiffs(a, b *problem.Problem) int {
	rows, cols := a.H.Dims()
	diffs := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if a.H.At(r, c) != b.H.At(r, c) {
				diffs++
			}
		}
	}
	return diffs
}

func diffWeights(a, b []float64) (int, float64) {
	diffs := 0
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > WeightTolerance {
			diffs++
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return diffs, maxDiff
}
