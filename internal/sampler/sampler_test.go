package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qecbench/demdiff/internal/dem"
)

func parseModel(t *testing.T, text string) *dem.Model {
	t.Helper()
	model, err := dem.Parse(text, dem.Options{Flatten: true})
	require.NoError(t, err)
	return model
}

func TestSample_Reproducible(t *testing.T) {
	model := parseModel(t, "error(0.3) D0 D1 L0\nerror(0.2) D1 D2\n")
	opts := Options{Shots: 50, Seed: 7, SeparateObservables: true}

	a, err := Sample(model, opts)
	require.NoError(t, err)
	b, err := Sample(model, opts)
	require.NoError(t, err)
	require.Equal(t, a.Detections, b.Detections)
	require.Equal(t, a.Observables, b.Observables)

	c, err := Sample(model, Options{Shots: 50, Seed: 8, SeparateObservables: true})
	require.NoError(t, err)
	require.NotEqual(t, a.Detections, c.Detections)
}

func TestSample_Dimensions(t *testing.T) {
	model := parseModel(t, "error(0.1) D0 D1 L0\nerror(0.1) D1 D2\n")

	t.Run("separate observables", func(t *testing.T) {
		shots, err := Sample(model, Options{Shots: 10, Seed: 1, SeparateObservables: true})
		require.NoError(t, err)
		require.Len(t, shots.Detections, 10)
		require.Len(t, shots.Observables, 10)
		require.Len(t, shots.Detections[0], 3)
		require.Len(t, shots.Observables[0], 1)
	})

	t.Run("appended observables", func(t *testing.T) {
		shots, err := Sample(model, Options{Shots: 10, Seed: 1})
		require.NoError(t, err)
		require.Nil(t, shots.Observables)
		require.Len(t, shots.Detections[0], 4)
	})
}

func TestSample_UsesFullFootprint(t *testing.T) {
	// A caret mechanism fires as a whole: whenever it flips D0 it also flips
	// D1 and L0, even though a first-alternative parse would drop them.
	model := parseModel(t, "error(0.5) D0 ^ D1 L0\n")
	shots, err := Sample(model, Options{Shots: 200, Seed: 3, SeparateObservables: true})
	require.NoError(t, err)

	fired := 0
	for s := range shots.Detections {
		d0 := shots.Detections[s][0]
		require.Equal(t, d0, shots.Detections[s][1])
		require.Equal(t, d0, shots.Observables[s][0])
		if d0 == 1 {
			fired++
		}
	}
	// p=0.5 over 200 shots; both outcomes must occur.
	require.Positive(t, fired)
	require.Less(t, fired, 200)
}

func TestSample_Validation(t *testing.T) {
	model := parseModel(t, "error(0.1) D0\n")
	_, err := Sample(model, Options{Shots: 0})
	require.Error(t, err)
	_, err = Sample(nil, Options{Shots: 1})
	require.Error(t, err)
}
