// Package circuit generates detector error models for a small registry of
// memory-experiment code families, in both decomposition modes. It stands in
// for a full circuit simulator: the emitted DEM text is what the parser and
// decoders operate on.
package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// Options selects a code family and its noise configuration.
type Options struct {
	Family   string
	Distance int
	Rounds   int
	Noise    float64
	// DecomposeErrors controls whether correlated multi-detector mechanisms
	// are emitted as caret-separated graphlike components or kept intact.
	DecomposeErrors bool
}

// Families enumerates the known code families, sorted.
func Families() []string {
	return []string{"color_code:memory_xyz", "repetition_code:memory"}
}

// GenerateDEM emits DEM text for the configured family. Middle rounds are
// wrapped in a repeat block with a trailing shift_detectors, so consumers must
// parse with flattening enabled.
func GenerateDEM(opts Options) (string, error) {
	if err := validate(opts); err != nil {
		return "", err
	}
	switch opts.Family {
	case "repetition_code:memory":
		return repetitionMemory(opts), nil
	case "color_code:memory_xyz":
		return colorMemoryXYZ(opts), nil
	default:
		return "", fmt.Errorf("circuit: unknown code family %q: available families are %s",
			opts.Family, strings.Join(Families(), ", "))
	}
}

func validate(opts Options) error {
	if opts.Distance < 2 {
		return fmt.Errorf("circuit: distance must be at least 2, got %d", opts.Distance)
	}
	if opts.Rounds < 1 {
		return fmt.Errorf("circuit: rounds must be at least 1, got %d", opts.Rounds)
	}
	if opts.Noise <= 0 || opts.Noise >= 1 {
		return fmt.Errorf("circuit: noise %v outside (0, 1)", opts.Noise)
	}
	return nil
}

type demWriter struct {
	b strings.Builder
}

func (w *demWriter) linef(format string, args ...any) {
	fmt.Fprintf(&w.b, format+"\n", args...)
}

func (w *demWriter) errorLine(p float64, targets string) {
	w.linef("error(%s) %s", formatProb(p), targets)
}

func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// repetitionMemory emits a distance-d, r-round repetition-code memory DEM:
// d-1 comparison detectors per round, single-qubit data errors linking
// adjacent detectors (the qubit-0 boundary also flips L0), measurement errors
// linking a detector to its next-round copy, and a correlated space-time
// mechanism per interior qubit that data and measurement noise fire together.
func repetitionMemory(opts Options) string {
	d, r, p := opts.Distance, opts.Rounds, opts.Noise
	width := d - 1
	w := &demWriter{}

	dataErrors := func() {
		w.errorLine(p, "D0 L0")
		for i := 1; i <= d-2; i++ {
			w.errorLine(p, fmt.Sprintf("D%d D%d", i-1, i))
		}
		w.errorLine(p, fmt.Sprintf("D%d", d-2))
	}
	linkErrors := func() {
		for i := 0; i < width; i++ {
			w.errorLine(p, fmt.Sprintf("D%d D%d", i, i+width))
		}
	}
	hookErrors := func() {
		for i := 1; i <= d-2; i++ {
			if opts.DecomposeErrors {
				w.errorLine(p/3, fmt.Sprintf("D%d D%d ^ D%d", i-1, i, i+width))
			} else {
				w.errorLine(p/3, fmt.Sprintf("D%d D%d D%d", i-1, i, i+width))
			}
		}
	}
	roundBody := func() {
		dataErrors()
		linkErrors()
		hookErrors()
	}

	if r == 1 {
		dataErrors()
	} else {
		roundBody()
		if r > 2 {
			w.linef("repeat %d {", r-2)
			w.linef("    shift_detectors %d", width)
			roundBody()
			w.linef("}")
		}
		w.linef("shift_detectors %d", width)
		dataErrors()
	}
	w.linef("logical_observable L0")
	return w.b.String()
}

// colorMemoryXYZ emits a simplified color-code-flavored memory DEM: d
// detectors per round, chain-adjacent single errors, plus same-round weight-3
// correlated mechanisms (the XYZ depolarizing channels stim decomposes). The
// triple touching the boundary also flips L0.
func colorMemoryXYZ(opts Options) string {
	d, r, p := opts.Distance, opts.Rounds, opts.Noise
	width := d
	w := &demWriter{}

	dataErrors := func() {
		w.errorLine(p, "D0 L0")
		for i := 1; i <= d-1; i++ {
			w.errorLine(p, fmt.Sprintf("D%d D%d", i-1, i))
		}
		w.errorLine(p, fmt.Sprintf("D%d", d-1))
	}
	tripleErrors := func() {
		for i := 1; i <= d-2; i++ {
			obs := ""
			if i == 1 {
				obs = " L0"
			}
			if opts.DecomposeErrors {
				w.errorLine(p/3, fmt.Sprintf("D%d D%d%s ^ D%d", i-1, i, obs, i+1))
			} else {
				w.errorLine(p/3, fmt.Sprintf("D%d D%d D%d%s", i-1, i, i+1, obs))
			}
		}
	}
	linkErrors := func() {
		for i := 0; i < width; i++ {
			w.errorLine(p, fmt.Sprintf("D%d D%d", i, i+width))
		}
	}
	roundBody := func(last bool) {
		dataErrors()
		tripleErrors()
		if !last {
			linkErrors()
		}
	}

	roundBody(r == 1)
	if r > 2 {
		w.linef("repeat %d {", r-2)
		w.linef("    shift_detectors %d", width)
		roundBody(false)
		w.linef("}")
	}
	if r > 1 {
		w.linef("shift_detectors %d", width)
		roundBody(true)
	}
	w.linef("logical_observable L0")
	return w.b.String()
}
