package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/qecbench/demdiff/internal/compare"
)

const ruleWidth = 70

func validateFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported format %q: must be table, json or yaml", format)
	}
}

func writeMarshalled(cmd *cobra.Command, format string, value any) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(value, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(value)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, _ = cmd.OutOrStdout().Write(data)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		_, _ = cmd.OutOrStdout().Write([]byte("\n"))
	}
	return nil
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// deltaIcon returns a direction arrow for d when w is an interactive
// terminal, a bare sign otherwise.
func deltaIcon(w io.Writer, d float64) string {
	isTTY := isTerminal(w)
	switch {
	case d > 0 && isTTY:
		return "↑"
	case d < 0 && isTTY:
		return "↓"
	default:
		return " "
	}
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
}

func printCircuitLine(w io.Writer, family string, distance, rounds int, noise float64) {
	fmt.Fprintf(w, "  %s  d=%d  rounds=%d  noise=%g\n", family, distance, rounds, noise)
	fmt.Fprintln(w)
}

func printProblemTable(w io.Writer, r *compare.ProblemComparison) {
	printHeader(w, "PROBLEM COMPARISON")
	printCircuitLine(w, r.Family, r.Distance, r.Rounds, r.Noise)

	printSection(w, "STRUCTURE")
	fmt.Fprintf(w, "  %s  %-14s  %-14s  %-10s\n",
		padRight("Mode", 26), "H shape", "Obs shape", "Columns")
	for _, mode := range r.Modes {
		fmt.Fprintf(w, "  %s  %-14s  %-14s  %-10d\n",
			padRight(mode.Label, 26),
			fmt.Sprintf("%dx%d", mode.HShape[0], mode.HShape[1]),
			fmt.Sprintf("%dx%d", mode.ObsShape[0], mode.ObsShape[1]),
			mode.Columns)
	}
	fmt.Fprintln(w)

	if r.ShapesMatch {
		fmt.Fprintf(w, "  H entries differing:      %d\n", r.HEntryDiffs)
		fmt.Fprintf(w, "  Weights differing:        %d (tolerance %g)\n", r.WeightDiffs, compare.WeightTolerance)
		fmt.Fprintf(w, "  Max abs weight delta:     %g\n", r.MaxWeightDiff)
	} else {
		fmt.Fprintln(w, "  H shapes differ")
	}
	fmt.Fprintln(w)

	printCaretSection(w, r.Modes)
}

func printCaretSection(w io.Writer, modes [2]compare.VariantReport) {
	printSection(w, "DECOMPOSITION MARKERS")
	for _, mode := range modes {
		fmt.Fprintf(w, "  %s  %d '^' lines\n", padRight(mode.Label, 26), mode.CaretLines)
	}
	for _, mode := range modes {
		if mode.CaretExample != "" {
			fmt.Fprintf(w, "  example (%s): %s\n", mode.Label, mode.CaretExample)
		}
	}
	fmt.Fprintln(w)
}

func printDecodingTable(w io.Writer, r *compare.DecodingComparison) {
	printHeader(w, "DECODING COMPARISON")
	printCircuitLine(w, r.Family, r.Distance, r.Rounds, r.Noise)
	fmt.Fprintf(w, "  solver=%s  shots=%d  seed=%d  repeat=%d\n", r.Solver, r.Shots, r.Seed, r.Repeat)
	fmt.Fprintln(w)

	printSection(w, "RESULTS")
	fmt.Fprintf(w, "  %s  %-12s  %-12s\n", padRight("Mode", 26), "ms/shot", "LER")
	for _, mode := range r.Modes {
		ler := "n/a"
		if mode.Stats.HasLogicalErrorRate {
			ler = fmt.Sprintf("%.4f", mode.Stats.LogicalErrorRate)
		}
		fmt.Fprintf(w, "  %s  %-12.4f  %-12s\n",
			padRight(mode.Variant.Label, 26), mode.Stats.MSPerShot, ler)
		if r.Repeat > 1 {
			fmt.Fprintf(w, "  %s  95%% CI [%.4f, %.4f]  sd=%.4f over %d repeats\n",
				padRight("", 26), mode.CILow, mode.CIHigh, mode.StdDevMS, r.Repeat)
		}
	}
	fmt.Fprintln(w)

	lerDelta := r.Modes[1].Stats.LogicalErrorRate - r.Modes[0].Stats.LogicalErrorRate
	if r.Modes[0].Stats.HasLogicalErrorRate && r.Modes[1].Stats.HasLogicalErrorRate {
		fmt.Fprintf(w, "  LER delta (false-true):   %s%+.4f\n", deltaIcon(w, lerDelta), lerDelta)
	}
	msDelta := r.Modes[1].Stats.MSPerShot - r.Modes[0].Stats.MSPerShot
	fmt.Fprintf(w, "  ms/shot delta:            %s%+.4f\n", deltaIcon(w, msDelta), msDelta)
	if r.TimingDelta != nil {
		verdict := "not significant"
		if r.TimingSignificant {
			verdict = "significant"
		}
		fmt.Fprintf(w, "  timing delta 95%% CI:      [%+.4f, %+.4f] (%s)\n",
			r.TimingDelta.Lower, r.TimingDelta.Upper, verdict)
	}
	fmt.Fprintln(w)

	printCaretSection(w, [2]compare.VariantReport{r.Modes[0].Variant, r.Modes[1].Variant})
	fmt.Fprintf(w, "  Note: %s\n", r.Note)
}

func printParseTable(w io.Writer, r *parseReport) {
	printHeader(w, "DEM SUMMARY")
	fmt.Fprintf(w, "  %s %s\n", padRight("File:", 14), r.File)
	fmt.Fprintf(w, "  %s %d\n", padRight("Detectors:", 14), r.Detectors)
	fmt.Fprintf(w, "  %s %d\n", padRight("Observables:", 14), r.Observables)
	fmt.Fprintf(w, "  %s %d\n", padRight("Mechanisms:", 14), r.Mechanisms)
	fmt.Fprintf(w, "  %s %d\n", padRight("Columns:", 14), r.Columns)
	fmt.Fprintf(w, "  %s min=%.4f  max=%.4f  mean=%.4f\n", padRight("Weights:", 14),
		r.WeightMin, r.WeightMax, r.WeightMean)
	if r.CaretLines > 0 {
		fmt.Fprintf(w, "  %s %d (e.g. %s)\n", padRight("'^' lines:", 14), r.CaretLines, r.CaretExample)
	}
}
