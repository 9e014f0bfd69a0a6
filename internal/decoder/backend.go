package decoder

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	mat "github.com/nathanhack/sparsemat"

	"github.com/qecbench/demdiff/internal/problem"
)

// Backend is a solver: given a syndrome it picks the mechanism columns whose
// combined detector footprint reproduces it.
type Backend interface {
	Name() string
	Solve(syndrome mat.SparseVector) (Solution, error)
}

// AvailableSolvers enumerates the solver backend names New accepts, sorted.
func AvailableSolvers() []string {
	return []string{"exhaustive", "greedy"}
}

func newBackend(name string, p *problem.Problem, opts map[string]any) (Backend, error) {
	switch name {
	case "greedy":
		var args GreedyArgs
		if err := mapstructure.Decode(opts, &args); err != nil {
			return nil, fmt.Errorf("decoder: greedy options: %w", err)
		}
		return newGreedyBackend(p, args), nil
	case "exhaustive":
		var args ExhaustiveArgs
		if err := mapstructure.Decode(opts, &args); err != nil {
			return nil, fmt.Errorf("decoder: exhaustive options: %w", err)
		}
		return newExhaustiveBackend(p, args), nil
	default:
		return nil, unknownSolverError(name)
	}
}

// columnSupports precomputes, per column, the detector rows it touches.
func columnSupports(p *problem.Problem) [][]int {
	supports := make([][]int, p.Columns())
	for j := range supports {
		for r := 0; r < p.NumDetectors; r++ {
			if p.H.At(r, j) == 1 {
				supports[j] = append(supports[j], r)
			}
		}
	}
	return supports
}

// detectorColumns precomputes, per detector row, the columns incident to it.
func detectorColumns(p *problem.Problem) [][]int {
	byDet := make([][]int, p.NumDetectors)
	for j := 0; j < p.Columns(); j++ {
		for r := 0; r < p.NumDetectors; r++ {
			if p.H.At(r, j) == 1 {
				byDet[r] = append(byDet[r], j)
			}
		}
	}
	return byDet
}
