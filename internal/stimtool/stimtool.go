// Package stimtool drives an external stim binary as an alternative circuit
// engine: stim generates the circuit and converts it into a detector error
// model, and this tool's own parser takes over from there.
package stimtool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/qecbench/demdiff/internal/circuit"
)

// binaryName is the executable looked up on PATH.
const binaryName = "stim"

const installHint = "install stim (pip install stim) and make sure it is on PATH"

// EnvironmentError reports a missing external dependency. It is terminal:
// there is no retry or fallback, only the remediation hint.
type EnvironmentError struct {
	Tool string
	Hint string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("required external tool %q is not installed: %s", e.Tool, e.Hint)
}

// Available reports whether the stim binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath(binaryName)
	return err == nil
}

// Check returns an EnvironmentError when the stim binary is missing, so
// callers can fail before any work is done instead of partway through.
func Check() error {
	if Available() {
		return nil
	}
	return &EnvironmentError{Tool: binaryName, Hint: installHint}
}

// GenerateDEM produces DEM text for the configured circuit by invoking
// `stim gen` followed by `stim analyze_errors`. A missing binary yields an
// EnvironmentError; a failing invocation surfaces stim's stderr.
func GenerateDEM(ctx context.Context, opts circuit.Options) (string, error) {
	path, err := exec.LookPath(binaryName)
	if err != nil {
		return "", &EnvironmentError{Tool: binaryName, Hint: installHint}
	}

	code, task, ok := strings.Cut(opts.Family, ":")
	if !ok {
		return "", fmt.Errorf("stimtool: family %q is not of the form code:task", opts.Family)
	}

	circuitText, err := run(ctx, path, nil,
		"gen",
		"--code", code,
		"--task", task,
		"--distance", strconv.Itoa(opts.Distance),
		"--rounds", strconv.Itoa(opts.Rounds),
		"--after_clifford_depolarization", strconv.FormatFloat(opts.Noise, 'g', -1, 64),
	)
	if err != nil {
		return "", err
	}

	args := []string{"analyze_errors", "--fold_loops"}
	if opts.DecomposeErrors {
		args = append(args, "--decompose_errors")
	}
	return run(ctx, path, strings.NewReader(circuitText), args...)
}

func run(ctx context.Context, path string, stdin *strings.Reader, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("stimtool: stim %s failed: %w: %s",
			args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
