package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qecbench/demdiff/internal/compare"
	"github.com/qecbench/demdiff/internal/spinner"
)

func newDecodeCommand() *cobra.Command {
	var flags struct {
		circuitFlags
		shots      int
		solver     string
		solverOpts []string
		seed       int64
		repeat     int
	}

	cmd := &cobra.Command{
		Use:   "compare-decoding",
		Short: "Decode one shot batch under both decomposition modes and diff the results",
		Long: `Sample a batch of syndrome shots from the intact (decompose_errors=false)
model, then decode the identical batch against both modes' problems with the
same solver. Reports ms/shot and logical error rate side by side; with
--repeat > 1 the batch is replayed and the latency delta gets a bootstrap
confidence interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}
			engine, err := engineFor(cmd, flags.circuitFlags)
			if err != nil {
				return err
			}
			solverOpts, err := parseSolverOpts(flags.solverOpts)
			if err != nil {
				return err
			}

			stop := func() {}
			if isTerminal(cmd.ErrOrStderr()) {
				stop = spinner.Start(cmd.ErrOrStderr(), "decoding shots...")
			}
			report, err := compare.RunDecoding(compare.Config{
				Engine:        engine,
				Family:        flags.family,
				Distance:      flags.distance,
				Rounds:        flags.rounds,
				Noise:         flags.noise,
				Shots:         flags.shots,
				Seed:          flags.seed,
				Solver:        flags.solver,
				SolverOptions: solverOpts,
				Repeat:        flags.repeat,
				MergeParallel: true,
				Flatten:       true,
			})
			stop()
			if err != nil {
				return err
			}

			if flags.format != "table" {
				return writeMarshalled(cmd, flags.format, report)
			}
			printDecodingTable(cmd.OutOrStdout(), report)
			return nil
		},
	}

	addCircuitFlags(cmd, &flags.circuitFlags)
	cmd.Flags().IntVar(&flags.shots, "shots", 1000, "Shots to sample and decode")
	cmd.Flags().StringVar(&flags.solver, "solver", "", "Solver backend (default greedy; see 'demdiff solvers')")
	cmd.Flags().StringArrayVar(&flags.solverOpts, "solver-opt", nil, "Solver option as key=value (repeatable)")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Sampling seed")
	cmd.Flags().IntVar(&flags.repeat, "repeat", 1, "Replay the batch this many times for timing spread")
	return cmd
}

// parseSolverOpts turns repeated key=value pairs into the loosely typed map
// the backend option structs are decoded from. Values are coerced to int,
// float or bool when they parse as one.
func parseSolverOpts(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid solver option %q: expected key=value", pair)
		}
		opts[key] = coerceValue(value)
	}
	return opts, nil
}

func coerceValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
