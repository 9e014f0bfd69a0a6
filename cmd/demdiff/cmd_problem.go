package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qecbench/demdiff/internal/cache"
	"github.com/qecbench/demdiff/internal/circuit"
	"github.com/qecbench/demdiff/internal/compare"
	"github.com/qecbench/demdiff/internal/stimtool"
)

// circuitFlags are shared by both compare subcommands.
type circuitFlags struct {
	family   string
	distance int
	rounds   int
	noise    float64
	engine   string
	cacheDir string
	format   string
}

func addCircuitFlags(cmd *cobra.Command, f *circuitFlags) {
	cmd.Flags().StringVar(&f.family, "family", "repetition_code:memory", "Code family (code:task)")
	cmd.Flags().IntVar(&f.distance, "distance", 3, "Code distance")
	cmd.Flags().IntVar(&f.rounds, "rounds", 3, "Measurement rounds")
	cmd.Flags().Float64Var(&f.noise, "noise", 0.01, "Physical error probability")
	cmd.Flags().StringVar(&f.engine, "engine", "builtin", "DEM engine: builtin or stim")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "Cache generated DEM text under this directory")
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format: table, json or yaml")
}

// stimEngine adapts the external stim wrapper to the comparator's engine
// interface.
type stimEngine struct {
	ctx context.Context
}

func (e stimEngine) GenerateDEM(opts circuit.Options) (string, error) {
	return stimtool.GenerateDEM(e.ctx, opts)
}

// cachedEngine consults a DEM text cache before falling through to the
// wrapped engine.
type cachedEngine struct {
	inner compare.Engine
	store *cache.Cache
}

func (e cachedEngine) GenerateDEM(opts circuit.Options) (string, error) {
	key := cache.Key(opts)
	if text, ok, err := e.store.Get(key); err != nil {
		return "", err
	} else if ok {
		slog.Debug("DEM cache hit", "key", key)
		return text, nil
	}
	text, err := e.inner.GenerateDEM(opts)
	if err != nil {
		return "", err
	}
	if err := e.store.Put(key, text); err != nil {
		return "", err
	}
	return text, nil
}

func engineFor(cmd *cobra.Command, f circuitFlags) (compare.Engine, error) {
	var engine compare.Engine
	switch f.engine {
	case "builtin":
		engine = compare.BuiltinEngine{}
	case "stim":
		if err := stimtool.Check(); err != nil {
			return nil, err
		}
		engine = stimEngine{ctx: cmd.Context()}
	default:
		return nil, fmt.Errorf("unsupported engine %q: must be builtin or stim", f.engine)
	}
	if f.cacheDir != "" {
		engine = cachedEngine{inner: engine, store: cache.New(f.cacheDir)}
	}
	return engine, nil
}

func newProblemCommand() *cobra.Command {
	var flags circuitFlags

	cmd := &cobra.Command{
		Use:   "compare-problem",
		Short: "Diff the decoding problems the two decomposition modes produce",
		Long: `Generate the same circuit's DEM with decompose_errors=true and false, parse
both, and diff the resulting decoding problems: matrix shapes, differing H
entries and weight entries, and the caret census of the decomposed text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}
			engine, err := engineFor(cmd, flags)
			if err != nil {
				return err
			}

			report, err := compare.RunProblem(compare.Config{
				Engine:        engine,
				Family:        flags.family,
				Distance:      flags.distance,
				Rounds:        flags.rounds,
				Noise:         flags.noise,
				MergeParallel: true,
				Flatten:       true,
			})
			if err != nil {
				return err
			}

			if flags.format != "table" {
				return writeMarshalled(cmd, flags.format, report)
			}
			printProblemTable(cmd.OutOrStdout(), report)
			return nil
		},
	}

	addCircuitFlags(cmd, &flags)
	return cmd
}
