// Package problem turns a parsed detector error model into the linear-algebra
// form decoders consume: a detector incidence matrix, an observable incidence
// matrix and a per-mechanism weight vector.
package problem

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	mat "github.com/nathanhack/sparsemat"

	"github.com/qecbench/demdiff/internal/dem"
)

// AlternativeSelection names the policy for mechanisms that carry several
// caret-separated decomposition alternatives.
type AlternativeSelection int

const (
	// AlternativeFirstOnly keeps only the first alternative of each
	// mechanism. This is a deliberate approximation: such mechanisms are not
	// fully modeled, and callers surface the caret census as a caveat.
	AlternativeFirstOnly AlternativeSelection = iota
)

// Options controls matrix construction.
type Options struct {
	// MergeParallel coalesces mechanisms with identical detector/observable
	// signatures into one column, combining probabilities as independent
	// flips. Merging happens before weight derivation.
	MergeParallel bool
	// Alternatives selects how multi-alternative mechanisms are reduced to a
	// single column signature.
	Alternatives AlternativeSelection
}

// Problem is the read-only decoding problem for one DEM variant.
//
// H is detectors × mechanisms with H[d,m] = 1 iff mechanism m flips detector
// d; Obs is observables × mechanisms over the same column space. Weights holds
// one log-likelihood-ratio cost per column, and Probabilities the post-merge
// probability each weight was derived from.
type Problem struct {
	H             mat.SparseMat
	Obs           mat.SparseMat
	Weights       []float64
	Probabilities []float64

	NumDetectors   int
	NumObservables int
}

// Columns returns the shared column count of H, Obs and the weight vector.
func (p *Problem) Columns() int { return len(p.Weights) }

type column struct {
	detectors   []int
	observables []int
	prob        float64
}

// Build constructs the decoding problem from a flattened model. Mechanisms
// with no detector signature but a non-empty observable signature are valid
// and produce an all-zero H column.
func Build(model *dem.Model, opts Options) (*Problem, error) {
	if model == nil {
		return nil, fmt.Errorf("problem: nil model")
	}

	var cols []column
	index := map[string]int{}
	for i, mech := range model.Mechanisms {
		if mech.Probability <= 0 || mech.Probability >= 1 {
			return nil, fmt.Errorf("problem: mechanism %d: probability %v outside (0, 1)", i, mech.Probability)
		}
		comp, err := selectComponent(mech, opts.Alternatives)
		if err != nil {
			return nil, fmt.Errorf("problem: mechanism %d: %w", i, err)
		}
		if len(comp.Detectors) == 0 && len(comp.Observables) == 0 {
			return nil, fmt.Errorf("problem: mechanism %d: empty detector and observable signature", i)
		}
		for _, d := range comp.Detectors {
			if d < 0 || d >= model.NumDetectors {
				return nil, fmt.Errorf("problem: mechanism %d: detector D%d outside declared dimension %d", i, d, model.NumDetectors)
			}
		}
		for _, o := range comp.Observables {
			if o < 0 || o >= model.NumObservables {
				return nil, fmt.Errorf("problem: mechanism %d: observable L%d outside declared dimension %d", i, o, model.NumObservables)
			}
		}

		if opts.MergeParallel {
			key := signatureKey(comp)
			if j, ok := index[key]; ok {
				cols[j].prob = combineParallel(cols[j].prob, mech.Probability)
				continue
			}
			index[key] = len(cols)
		}
		cols = append(cols, column{
			detectors:   comp.Detectors,
			observables: comp.Observables,
			prob:        mech.Probability,
		})
	}

	p := &Problem{
		H:              mat.CSRMat(model.NumDetectors, len(cols)),
		Obs:            mat.CSRMat(model.NumObservables, len(cols)),
		Weights:        make([]float64, len(cols)),
		Probabilities:  make([]float64, len(cols)),
		NumDetectors:   model.NumDetectors,
		NumObservables: model.NumObservables,
	}
	for j, c := range cols {
		for _, d := range c.detectors {
			p.H.Set(d, j, 1)
		}
		for _, o := range c.observables {
			p.Obs.Set(o, j, 1)
		}
		p.Probabilities[j] = c.prob
		p.Weights[j] = Weight(c.prob)
	}
	return p, nil
}

func selectComponent(mech dem.Mechanism, sel AlternativeSelection) (dem.Component, error) {
	switch sel {
	case AlternativeFirstOnly:
		if len(mech.Components) == 0 {
			return dem.Component{}, fmt.Errorf("no decomposition components")
		}
		return mech.Components[0], nil
	default:
		return dem.Component{}, fmt.Errorf("unsupported alternative selection %d", sel)
	}
}

// Weight converts a flip probability into a minimum-weight decoding cost,
// w = ln((1-p)/p). Lower probability means higher cost; Weight(0.5) is 0.
func Weight(p float64) float64 {
	return math.Log((1 - p) / p)
}

// combineParallel merges two independent flip probabilities into the
// probability that exactly one of the two mechanisms fires.
func combineParallel(p1, p2 float64) float64 {
	return p1 + p2 - 2*p1*p2
}

func signatureKey(c dem.Component) string {
	var b strings.Builder
	for _, d := range c.Detectors {
		b.WriteByte('D')
		b.WriteString(strconv.Itoa(d))
		b.WriteByte(' ')
	}
	b.WriteByte('|')
	for _, o := range c.Observables {
		b.WriteByte('L')
		b.WriteString(strconv.Itoa(o))
		b.WriteByte(' ')
	}
	return b.String()
}
