package statistics

import (
	"math"
	"testing"
)

func TestBootstrapCI_EmptySamples(t *testing.T) {
	ci := BootstrapCIWithSeed(nil, 0.95, 42)
	if ci.Mean != 0.0 || ci.Lower != 0.0 || ci.Upper != 0.0 {
		t.Errorf("expected zero CI for empty input, got %+v", ci)
	}
	if ci.NumBootstraps != 0 {
		t.Errorf("expected 0 bootstraps for empty input, got %d", ci.NumBootstraps)
	}
}

func TestBootstrapCI_SingleValue(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{0.75}, 0.95, 42)
	if ci.Mean != 0.75 || ci.Lower != 0.75 || ci.Upper != 0.75 {
		t.Errorf("expected degenerate CI for single value, got %+v", ci)
	}
}

func TestBootstrapCI_IdenticalValues(t *testing.T) {
	ci := BootstrapCIWithSeed([]float64{0.5, 0.5, 0.5, 0.5}, 0.95, 42)
	if math.Abs(ci.Lower-0.5) > 1e-9 || math.Abs(ci.Upper-0.5) > 1e-9 {
		t.Errorf("expected CI [0.5, 0.5] for identical values, got [%f, %f]", ci.Lower, ci.Upper)
	}
}

func TestBootstrapCI_KnownDistribution(t *testing.T) {
	// 10 latency samples with known mean ~0.55 ms/shot
	samples := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	ci := BootstrapCIWithSeed(samples, 0.95, 42)

	if ci.Mean < 0.54 || ci.Mean > 0.56 {
		t.Errorf("expected mean ~0.55, got %f", ci.Mean)
	}
	if ci.Lower >= ci.Mean {
		t.Errorf("lower bound %f should be < mean %f", ci.Lower, ci.Mean)
	}
	if ci.Upper <= ci.Mean {
		t.Errorf("upper bound %f should be > mean %f", ci.Upper, ci.Mean)
	}
	if ci.NumBootstraps != DefaultBootstrapIterations {
		t.Errorf("expected %d bootstraps, got %d", DefaultBootstrapIterations, ci.NumBootstraps)
	}
	if ci.ConfidenceLevel != 0.95 {
		t.Errorf("expected confidence level 0.95, got %f", ci.ConfidenceLevel)
	}
}

func TestBootstrapCI_NarrowerAtHigherN(t *testing.T) {
	small := []float64{0.3, 0.5, 0.7}
	large := []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.3, 0.4, 0.5, 0.6, 0.7,
		0.3, 0.4, 0.5, 0.6, 0.7, 0.3, 0.4, 0.5, 0.6, 0.7}

	ciSmall := BootstrapCIWithSeed(small, 0.95, 42)
	ciLarge := BootstrapCIWithSeed(large, 0.95, 42)

	widthSmall := ciSmall.Upper - ciSmall.Lower
	widthLarge := ciLarge.Upper - ciLarge.Lower

	if widthLarge >= widthSmall {
		t.Errorf("larger sample should yield narrower CI: small=%f, large=%f", widthSmall, widthLarge)
	}
}

func TestBootstrapCI_Deterministic(t *testing.T) {
	samples := []float64{0.2, 0.4, 0.6, 0.8}
	ci1 := BootstrapCIWithSeed(samples, 0.95, 99)
	ci2 := BootstrapCIWithSeed(samples, 0.95, 99)

	if ci1.Lower != ci2.Lower || ci1.Upper != ci2.Upper {
		t.Errorf("same seed should produce identical CIs: %+v vs %+v", ci1, ci2)
	}
}

func TestPairedDeltaCI(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := PairedDeltaCI([]float64{1, 2}, []float64{1}, 0.95, 42)
		if err == nil {
			t.Fatal("expected error for mismatched sample lengths")
		}
	})

	t.Run("constant offset is significant", func(t *testing.T) {
		a := []float64{1.0, 1.1, 0.9, 1.05, 0.95}
		b := []float64{1.5, 1.6, 1.4, 1.55, 1.45}
		ci, err := PairedDeltaCI(a, b, 0.95, 42)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(ci.Mean-0.5) > 1e-9 {
			t.Errorf("expected mean delta 0.5, got %f", ci.Mean)
		}
		if !IsSignificant(ci) {
			t.Errorf("constant positive offset should be significant: %+v", ci)
		}
	})

	t.Run("alternating sign is not significant", func(t *testing.T) {
		a := []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0}
		b := []float64{1.5, 0.5, 1.5, 0.5, 1.5, 0.5}
		ci, err := PairedDeltaCI(a, b, 0.95, 42)
		if err != nil {
			t.Fatal(err)
		}
		if IsSignificant(ci) {
			t.Errorf("zero-mean deltas should not be significant: %+v", ci)
		}
	})
}

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		name string
		ci   ConfidenceInterval
		want bool
	}{
		{"both positive", ConfidenceInterval{Lower: 0.1, Upper: 0.5}, true},
		{"both negative", ConfidenceInterval{Lower: -0.5, Upper: -0.1}, true},
		{"crosses zero", ConfidenceInterval{Lower: -0.1, Upper: 0.3}, false},
		{"lower at zero", ConfidenceInterval{Lower: 0.0, Upper: 0.5}, false},
		{"upper at zero", ConfidenceInterval{Lower: -0.3, Upper: 0.0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSignificant(tt.ci)
			if got != tt.want {
				t.Errorf("IsSignificant(%+v) = %v, want %v", tt.ci, got, tt.want)
			}
		})
	}
}
