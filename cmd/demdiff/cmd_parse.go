package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/qecbench/demdiff/internal/dem"
	"github.com/qecbench/demdiff/internal/metrics"
	"github.com/qecbench/demdiff/internal/problem"
)

// parseReport summarizes one parsed DEM file.
type parseReport struct {
	File         string  `json:"file" yaml:"file"`
	Detectors    int     `json:"detectors" yaml:"detectors"`
	Observables  int     `json:"observables" yaml:"observables"`
	Mechanisms   int     `json:"mechanisms" yaml:"mechanisms"`
	Columns      int     `json:"columns" yaml:"columns"`
	CaretLines   int     `json:"caret_lines" yaml:"caret_lines"`
	CaretExample string  `json:"caret_example,omitempty" yaml:"caret_example,omitempty"`
	WeightMin    float64 `json:"weight_min" yaml:"weight_min"`
	WeightMax    float64 `json:"weight_max" yaml:"weight_max"`
	WeightMean   float64 `json:"weight_mean" yaml:"weight_mean"`
}

func newParseCommand() *cobra.Command {
	var flags struct {
		mergeParallel bool
		flatten       bool
		format        string
	}

	cmd := &cobra.Command{
		Use:   "parse <file.dem>",
		Short: "Parse a DEM file and summarize the decoding problem it yields",
		Long: `Parse a detector error model file (plain text or gzip) and print the
decoding problem's dimensions and weight summary. Useful for inspecting a DEM
produced elsewhere before feeding it into a comparison.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}

			text, err := readDEMFile(args[0])
			if err != nil {
				return err
			}

			model, err := dem.Parse(text, dem.Options{Flatten: flags.flatten})
			if err != nil {
				return err
			}
			p, err := problem.Build(model, problem.Options{
				MergeParallel: flags.mergeParallel,
				Alternatives:  problem.AlternativeFirstOnly,
			})
			if err != nil {
				return err
			}

			report := buildParseReport(args[0], text, model, p)
			if flags.format != "table" {
				return writeMarshalled(cmd, flags.format, report)
			}
			printParseTable(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.mergeParallel, "merge-parallel", true, "Merge mechanisms with identical signatures")
	cmd.Flags().BoolVar(&flags.flatten, "flatten", true, "Expand repeat blocks and detector shifts")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}

// readDEMFile reads a DEM file, transparently decompressing .gz inputs.
func readDEMFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to decompress %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func buildParseReport(path, text string, model *dem.Model, p *problem.Problem) *parseReport {
	caretLines, caretExample := dem.CountCaretLines(text)
	report := &parseReport{
		File:         path,
		Detectors:    model.NumDetectors,
		Observables:  model.NumObservables,
		Mechanisms:   len(model.Mechanisms),
		Columns:      p.Columns(),
		CaretLines:   caretLines,
		CaretExample: caretExample,
		WeightMean:   metrics.Mean(p.Weights),
	}
	for i, w := range p.Weights {
		if i == 0 || w < report.WeightMin {
			report.WeightMin = w
		}
		if i == 0 || w > report.WeightMax {
			report.WeightMax = w
		}
	}
	return report
}
