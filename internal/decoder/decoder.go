// Package decoder constructs decoders over a parsed decoding problem and
// exposes the solver backends that turn a syndrome into a correction.
package decoder

import (
	"fmt"
	"strings"

	mat "github.com/nathanhack/sparsemat"

	"github.com/qecbench/demdiff/internal/problem"
)

// DefaultSolver is used when no backend name is given.
const DefaultSolver = "greedy"

// Solution is the raw solver output: the mechanism columns chosen to explain
// a syndrome and their total weight.
type Solution struct {
	Mechanisms []int
	Weight     float64
}

// Decoder decodes detection vectors against one decoding problem. Construct
// one per DEM variant and reuse it across shots; construction cost is not part
// of per-shot decode time.
type Decoder struct {
	problem *problem.Problem
	backend Backend
}

// New builds a decoder over p using the named solver backend. An empty name
// selects DefaultSolver; an unknown name fails listing the available backends.
// Backend-specific options are decoded from opts.
func New(p *problem.Problem, solver string, opts map[string]any) (*Decoder, error) {
	if p == nil {
		return nil, fmt.Errorf("decoder: nil problem")
	}
	if solver == "" {
		solver = DefaultSolver
	}
	backend, err := newBackend(solver, p, opts)
	if err != nil {
		return nil, err
	}
	return &Decoder{problem: p, backend: backend}, nil
}

// Solver returns the name of the backend in use.
func (d *Decoder) Solver() string { return d.backend.Name() }

// Decode solves one detection vector and returns the raw solution together
// with the predicted observable-flip vector.
func (d *Decoder) Decode(detections []uint8) (Solution, []uint8, error) {
	if len(detections) != d.problem.NumDetectors {
		return Solution{}, nil, fmt.Errorf("decoder: detection vector has length %d, want %d",
			len(detections), d.problem.NumDetectors)
	}
	syndrome := mat.CSRVec(d.problem.NumDetectors)
	for i, bit := range detections {
		if bit != 0 {
			syndrome.Set(i, 1)
		}
	}

	sol, err := d.backend.Solve(syndrome)
	if err != nil {
		return Solution{}, nil, fmt.Errorf("decoder: %s: %w", d.backend.Name(), err)
	}

	predicted := make([]uint8, d.problem.NumObservables)
	for _, col := range sol.Mechanisms {
		for r := 0; r < d.problem.NumObservables; r++ {
			if d.problem.Obs.At(r, col) == 1 {
				predicted[r] ^= 1
			}
		}
	}
	return sol, predicted, nil
}

// unknownSolverError lists the available alternatives, so a typo surfaces the
// full menu.
func unknownSolverError(name string) error {
	return fmt.Errorf("decoder: unknown solver %q: available solvers are %s",
		name, strings.Join(AvailableSolvers(), ", "))
}
