package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qecbench/demdiff/internal/decoder"
)

func newSolversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "solvers",
		Short: "List available solver backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range decoder.AvailableSolvers() {
				if name == decoder.DefaultSolver {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
