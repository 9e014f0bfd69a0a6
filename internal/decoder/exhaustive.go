package decoder

import (
	"fmt"
	"math"
	"sort"

	mat "github.com/nathanhack/sparsemat"

	"github.com/qecbench/demdiff/internal/problem"
)

// ExhaustiveArgs holds the options for the exhaustive backend.
type ExhaustiveArgs struct {
	// MaxMechanisms bounds the number of mechanisms in a candidate solution.
	// Zero means DefaultMaxMechanisms.
	MaxMechanisms int `mapstructure:"max_mechanisms"`
}

// DefaultMaxMechanisms is the default search depth of the exhaustive backend.
const DefaultMaxMechanisms = 16

// exhaustiveBackend finds a minimum-weight mechanism subset whose detector
// footprint equals the syndrome exactly. It branches on the lowest-index
// unsatisfied detector, trying only columns incident to it, and prunes on the
// best weight found so far. Exact but exponential in the worst case; intended
// for small problems and cross-checking the heuristic backend.
type exhaustiveBackend struct {
	p        *problem.Problem
	supports [][]int
	byDet    [][]int
	maxMechs int
}

func newExhaustiveBackend(p *problem.Problem, args ExhaustiveArgs) *exhaustiveBackend {
	maxMechs := args.MaxMechanisms
	if maxMechs <= 0 {
		maxMechs = DefaultMaxMechanisms
	}
	return &exhaustiveBackend{
		p:        p,
		supports: columnSupports(p),
		byDet:    detectorColumns(p),
		maxMechs: maxMechs,
	}
}

func (e *exhaustiveBackend) Name() string { return "exhaustive" }

func (e *exhaustiveBackend) Solve(syndrome mat.SparseVector) (Solution, error) {
	residual := make([]bool, e.p.NumDetectors)
	remaining := 0
	for i := 0; i < e.p.NumDetectors; i++ {
		if syndrome.At(i) == 1 {
			residual[i] = true
			remaining++
		}
	}

	search := &exhaustiveSearch{
		backend:    e,
		residual:   residual,
		remaining:  remaining,
		used:       make([]bool, e.p.Columns()),
		bestWeight: math.Inf(1),
	}
	search.walk(0, nil)
	if !search.found {
		return Solution{}, fmt.Errorf("no solution within %d mechanisms", e.maxMechs)
	}
	chosen := append([]int(nil), search.best...)
	sort.Ints(chosen)
	return Solution{Mechanisms: chosen, Weight: search.bestWeight}, nil
}

type exhaustiveSearch struct {
	backend    *exhaustiveBackend
	residual   []bool
	remaining  int
	used       []bool
	found      bool
	best       []int
	bestWeight float64
}

func (s *exhaustiveSearch) walk(weight float64, chosen []int) {
	if weight >= s.bestWeight {
		return
	}
	if s.remaining == 0 {
		s.found = true
		s.best = append([]int(nil), chosen...)
		s.bestWeight = weight
		return
	}
	if len(chosen) >= s.backend.maxMechs {
		return
	}

	// Branch on the first unsatisfied detector: any exact solution must
	// include an odd number of columns incident to it, so at least one.
	pivot := -1
	for d, on := range s.residual {
		if on {
			pivot = d
			break
		}
	}
	for _, j := range s.backend.byDet[pivot] {
		if s.used[j] {
			continue
		}
		s.used[j] = true
		s.toggle(j)
		s.walk(weight+s.backend.p.Weights[j], append(chosen, j))
		s.toggle(j)
		s.used[j] = false
	}
}

func (s *exhaustiveSearch) toggle(col int) {
	for _, d := range s.backend.supports[col] {
		if s.residual[d] {
			s.residual[d] = false
			s.remaining--
		} else {
			s.residual[d] = true
			s.remaining++
		}
	}
}
