package decoder

import (
	"sort"

	mat "github.com/nathanhack/sparsemat"

	"github.com/qecbench/demdiff/internal/problem"
)

// GreedyArgs holds the options for the greedy backend.
type GreedyArgs struct {
	// MaxIterations bounds the number of column picks per syndrome.
	// Zero means twice the column count.
	MaxIterations int `mapstructure:"max_iterations"`
}

// greedyBackend repeatedly picks the column that clears the most residual
// detectors, lowest weight first on ties, until the syndrome is explained or
// no column makes net progress. It is a heuristic: it can stop with residual
// detectors left, in which case its prediction is simply wrong for that shot
// and shows up in the logical error rate.
type greedyBackend struct {
	p        *problem.Problem
	supports [][]int
	maxIter  int
}

func newGreedyBackend(p *problem.Problem, args GreedyArgs) *greedyBackend {
	maxIter := args.MaxIterations
	if maxIter <= 0 {
		maxIter = 2 * p.Columns()
	}
	return &greedyBackend{
		p:        p,
		supports: columnSupports(p),
		maxIter:  maxIter,
	}
}

func (g *greedyBackend) Name() string { return "greedy" }

func (g *greedyBackend) Solve(syndrome mat.SparseVector) (Solution, error) {
	residual := make([]bool, g.p.NumDetectors)
	remaining := 0
	for i := 0; i < g.p.NumDetectors; i++ {
		if syndrome.At(i) == 1 {
			residual[i] = true
			remaining++
		}
	}

	chosen := map[int]bool{}
	for iter := 0; remaining > 0 && iter < g.maxIter; iter++ {
		best := -1
		bestGain := 0
		bestWeight := 0.0
		for j, support := range g.supports {
			gain := 0
			for _, d := range support {
				if residual[d] {
					gain++
				} else {
					gain--
				}
			}
			if gain <= 0 {
				continue
			}
			if gain > bestGain || (gain == bestGain && g.p.Weights[j] < bestWeight) {
				best = j
				bestGain = gain
				bestWeight = g.p.Weights[j]
			}
		}
		if best < 0 {
			break
		}
		chosen[best] = !chosen[best]
		for _, d := range g.supports[best] {
			if residual[d] {
				residual[d] = false
				remaining--
			} else {
				residual[d] = true
				remaining++
			}
		}
	}

	sol := Solution{}
	for j, on := range chosen {
		if on {
			sol.Mechanisms = append(sol.Mechanisms, j)
			sol.Weight += g.p.Weights[j]
		}
	}
	sort.Ints(sol.Mechanisms)
	return sol, nil
}
