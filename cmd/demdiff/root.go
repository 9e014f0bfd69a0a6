package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demdiff",
		Short: "demdiff - benchmark and cross-validate QEC decoders across DEM decomposition modes",
		Long: `demdiff compares the two renditions of a detector error model: correlated
error mechanisms decomposed into independent edges (decompose_errors=true)
versus kept intact (false).

It reports how the two decoding problems differ structurally (matrix shapes,
entries, weights) and behaviorally (decode latency and logical error rate on
an identical shot batch).`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	}

	// Add subcommands
	cmd.AddCommand(newProblemCommand())
	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(newParseCommand())
	cmd.AddCommand(newSolversCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
