package decoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qecbench/demdiff/internal/dem"
	"github.com/qecbench/demdiff/internal/problem"
)

func buildProblem(t *testing.T, text string) *problem.Problem {
	t.Helper()
	model, err := dem.Parse(text, dem.Options{Flatten: true})
	require.NoError(t, err)
	p, err := problem.Build(model, problem.Options{MergeParallel: true})
	require.NoError(t, err)
	return p
}

// Three-detector repetition-like chain: boundary mechanisms on each end, a
// bulk mechanism in the middle, and the left boundary flips the observable.
// The observable-flipping boundary is rarer so minimum-weight solutions are
// unique.
const chainDEM = `error(0.001) D0 L0
error(0.01) D0 D1
error(0.01) D1 D2
error(0.01) D2
`

func TestNew_UnknownSolver(t *testing.T) {
	p := buildProblem(t, chainDEM)
	_, err := New(p, "simplex", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown solver "simplex"`)
	require.Contains(t, err.Error(), "exhaustive, greedy")
}

func TestNew_DefaultSolver(t *testing.T) {
	p := buildProblem(t, chainDEM)
	d, err := New(p, "", nil)
	require.NoError(t, err)
	require.Equal(t, "greedy", d.Solver())
}

func TestAvailableSolvers(t *testing.T) {
	require.Equal(t, []string{"exhaustive", "greedy"}, AvailableSolvers())
}

func TestDecode_LengthMismatch(t *testing.T) {
	p := buildProblem(t, chainDEM)
	d, err := New(p, "greedy", nil)
	require.NoError(t, err)
	_, _, err = d.Decode([]uint8{1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "length 1, want 3")
}

func TestDecode_Backends(t *testing.T) {
	p := buildProblem(t, chainDEM)

	for _, solver := range AvailableSolvers() {
		t.Run(solver, func(t *testing.T) {
			d, err := New(p, solver, nil)
			require.NoError(t, err)

			t.Run("zero syndrome", func(t *testing.T) {
				sol, pred, err := d.Decode([]uint8{0, 0, 0})
				require.NoError(t, err)
				require.Empty(t, sol.Mechanisms)
				require.Equal(t, []uint8{0}, pred)
			})

			t.Run("single boundary mechanism flips observable", func(t *testing.T) {
				_, pred, err := d.Decode([]uint8{1, 0, 0})
				require.NoError(t, err)
				require.Equal(t, []uint8{1}, pred)
			})

			t.Run("single bulk mechanism", func(t *testing.T) {
				sol, pred, err := d.Decode([]uint8{1, 1, 0})
				require.NoError(t, err)
				require.Equal(t, []int{1}, sol.Mechanisms)
				require.Equal(t, []uint8{0}, pred)
			})

			t.Run("two disjoint mechanisms", func(t *testing.T) {
				sol, pred, err := d.Decode([]uint8{1, 1, 1})
				require.NoError(t, err)
				require.Equal(t, []int{1, 3}, sol.Mechanisms)
				require.Equal(t, []uint8{0}, pred)
			})
		})
	}
}

func TestDecode_ExhaustiveFindsMinimumWeight(t *testing.T) {
	// Explaining {D0, D1} takes either the single bulk mechanism (one low
	// cost column) or the two boundary mechanisms; the bulk one is cheaper.
	text := `error(0.01) D0 L0
error(0.1) D0 D1
error(0.01) D1
`
	p := buildProblem(t, text)
	d, err := New(p, "exhaustive", nil)
	require.NoError(t, err)
	sol, pred, err := d.Decode([]uint8{1, 1})
	require.NoError(t, err)
	require.Equal(t, []int{1}, sol.Mechanisms)
	require.InDelta(t, problem.Weight(0.1), sol.Weight, 1e-12)
	require.Equal(t, []uint8{0}, pred)
}

func TestDecode_ExhaustiveDepthGuard(t *testing.T) {
	p := buildProblem(t, chainDEM)
	d, err := New(p, "exhaustive", map[string]any{"max_mechanisms": 1})
	require.NoError(t, err)
	_, _, err = d.Decode([]uint8{1, 1, 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no solution within 1 mechanisms")
}

func TestDecode_BadSolverOptions(t *testing.T) {
	p := buildProblem(t, chainDEM)
	_, err := New(p, "exhaustive", map[string]any{"max_mechanisms": "lots"})
	require.Error(t, err)
}
