// Package dem parses Stim-style detector error model text into an in-memory
// mechanism list that the rest of the tool turns into matrices.
package dem

import (
	"fmt"
	"sort"
	"strings"
)

// Component is one decomposition alternative of an error mechanism: the
// detectors and observables it flips. Index lists are sorted and duplicate-free
// (a target listed twice on one line cancels out).
type Component struct {
	Detectors   []int
	Observables []int
}

// Mechanism is a single `error(p) ...` instruction. A line may carry several
// alternative decompositions separated by `^`; Components preserves them in
// declaration order and always has at least one entry.
type Mechanism struct {
	Probability float64
	Components  []Component
}

// Footprint returns the full set of detectors and observables the mechanism
// flips when it fires: the XOR combination of all components. Targets shared
// by an even number of components cancel.
func (m Mechanism) Footprint() Component {
	if len(m.Components) == 1 {
		return m.Components[0]
	}
	dets := map[int]bool{}
	obs := map[int]bool{}
	for _, c := range m.Components {
		for _, d := range c.Detectors {
			dets[d] = !dets[d]
		}
		for _, o := range c.Observables {
			obs[o] = !obs[o]
		}
	}
	return Component{
		Detectors:   sortedSet(dets),
		Observables: sortedSet(obs),
	}
}

func sortedSet(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for idx, on := range set {
		if on {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Model is a flattened detector error model: a dense, zero-based detector and
// observable index space plus the mechanisms defined over it. Models are
// read-only after parsing.
type Model struct {
	NumDetectors   int
	NumObservables int
	Mechanisms     []Mechanism
}

// ParseError reports malformed DEM input. Line is 1-based; Line 0 means the
// error concerns the document as a whole (for example a sparse index space).
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("dem: %s", e.Msg)
	}
	return fmt.Sprintf("dem: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// CountCaretLines counts error instructions that carry a `^` decomposition
// separator and returns the first such line verbatim, in document order.
// Mechanisms on those lines are only partially modeled (first alternative
// only), so callers surface the count as an approximation caveat.
func CountCaretLines(text string) (int, string) {
	count := 0
	example := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "error") && strings.Contains(line, "^") {
			count++
			if example == "" {
				example = line
			}
		}
	}
	return count, example
}
