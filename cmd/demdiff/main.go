package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/qecbench/demdiff/internal/dem"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Comparison or parse completed
	ExitParseError = 1 // DEM text failed to parse
	ExitError      = 2 // Configuration, environment or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var parseErr *dem.ParseError
		if errors.As(err, &parseErr) {
			os.Exit(ExitParseError)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
