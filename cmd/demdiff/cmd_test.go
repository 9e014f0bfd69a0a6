package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qecbench/demdiff/internal/compare"
	"github.com/qecbench/demdiff/internal/dem"
	"github.com/qecbench/demdiff/internal/stimtool"
)

// runCommand executes a subcommand with args and captures stdout.
func runCommand(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// ---------------------------------------------------------------------------
// compare-problem
// ---------------------------------------------------------------------------

func TestProblemCommand_InvalidFormat(t *testing.T) {
	_, err := runCommand(t, newProblemCommand(), []string{"--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestProblemCommand_UnknownEngine(t *testing.T) {
	_, err := runCommand(t, newProblemCommand(), []string{"--engine", "qiskit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported engine")
}

func TestProblemCommand_UnknownFamily(t *testing.T) {
	_, err := runCommand(t, newProblemCommand(), []string{"--family", "steane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown code family")
}

func TestProblemCommand_TableOutput(t *testing.T) {
	out, err := runCommand(t, newProblemCommand(), []string{
		"--family", "repetition_code:memory", "--distance", "3", "--rounds", "3",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "PROBLEM COMPARISON")
	assert.Contains(t, out, "decompose_errors=true")
	assert.Contains(t, out, "decompose_errors=false")
	assert.Contains(t, out, "'^' lines")
}

func TestProblemCommand_JSONOutput(t *testing.T) {
	out, err := runCommand(t, newProblemCommand(), []string{
		"--distance", "3", "--rounds", "2", "--format", "json",
	})
	require.NoError(t, err)

	var report compare.ProblemComparison
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "repetition_code:memory", report.Family)
	assert.Equal(t, "decompose_errors=true", report.Modes[0].Label)
}

func TestProblemCommand_StimEngineMissingBinary(t *testing.T) {
	if stimtool.Available() {
		t.Skip("stim is installed; missing-binary path not reachable")
	}
	_, err := runCommand(t, newProblemCommand(), []string{"--engine", "stim"})
	require.Error(t, err)
	var envErr *stimtool.EnvironmentError
	assert.True(t, errors.As(err, &envErr))
	assert.Contains(t, err.Error(), "pip install stim")
}

func TestProblemCommand_CacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demcache")
	args := []string{"--distance", "3", "--rounds", "2", "--cache-dir", dir}

	_, err := runCommand(t, newProblemCommand(), args)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // one DEM per decomposition mode

	// Second run hits the cache and produces identical output.
	out1, err := runCommand(t, newProblemCommand(), append(args, "--format", "json"))
	require.NoError(t, err)
	out2, err := runCommand(t, newProblemCommand(), append(args, "--format", "json"))
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

// ---------------------------------------------------------------------------
// compare-decoding
// ---------------------------------------------------------------------------

func TestDecodeCommand_TableOutput(t *testing.T) {
	out, err := runCommand(t, newDecodeCommand(), []string{
		"--distance", "3", "--rounds", "2", "--shots", "32", "--seed", "9",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "DECODING COMPARISON")
	assert.Contains(t, out, "ms/shot")
	assert.Contains(t, out, "alternatives beyond the first")
}

func TestDecodeCommand_JSONOutput(t *testing.T) {
	out, err := runCommand(t, newDecodeCommand(), []string{
		"--distance", "3", "--rounds", "2", "--shots", "16", "--format", "json",
	})
	require.NoError(t, err)

	var report compare.DecodingComparison
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 16, report.Shots)
	assert.Equal(t, "greedy", report.Solver)
	for _, mode := range report.Modes {
		assert.Equal(t, 16, mode.Stats.ShotCount)
	}
}

func TestDecodeCommand_RepeatShowsInterval(t *testing.T) {
	out, err := runCommand(t, newDecodeCommand(), []string{
		"--distance", "3", "--rounds", "2", "--shots", "16", "--repeat", "3",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "95% CI")
	assert.Contains(t, out, "timing delta")
}

func TestDecodeCommand_UnknownSolver(t *testing.T) {
	_, err := runCommand(t, newDecodeCommand(), []string{"--solver", "mwpm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown solver")
	assert.Contains(t, err.Error(), "exhaustive")
}

func TestDecodeCommand_SolverOptions(t *testing.T) {
	_, err := runCommand(t, newDecodeCommand(), []string{
		"--distance", "3", "--rounds", "2", "--shots", "8",
		"--solver", "exhaustive", "--solver-opt", "max_mechanisms=12",
	})
	require.NoError(t, err)
}

func TestDecodeCommand_MalformedSolverOption(t *testing.T) {
	_, err := runCommand(t, newDecodeCommand(), []string{"--solver-opt", "max_mechanisms"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}

func TestParseSolverOpts_CoercesTypes(t *testing.T) {
	opts, err := parseSolverOpts([]string{"iters=10", "scale=0.5", "verbose=true", "mode=fast"})
	require.NoError(t, err)
	assert.Equal(t, 10, opts["iters"])
	assert.Equal(t, 0.5, opts["scale"])
	assert.Equal(t, true, opts["verbose"])
	assert.Equal(t, "fast", opts["mode"])
}

// ---------------------------------------------------------------------------
// parse
// ---------------------------------------------------------------------------

const sampleDEM = "error(0.1) D0 L0\nerror(0.1) D0 D1\nerror(0.05) D1\n"

func TestParseCommand_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.dem")
	require.NoError(t, os.WriteFile(path, []byte(sampleDEM), 0o644))

	out, err := runCommand(t, newParseCommand(), []string{path})
	require.NoError(t, err)
	assert.Contains(t, out, "DEM SUMMARY")
	assert.Contains(t, out, "Detectors:")
}

func TestParseCommand_GzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.dem.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleDEM))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	out, err := runCommand(t, newParseCommand(), []string{path, "--format", "json"})
	require.NoError(t, err)

	var report parseReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Detectors)
	assert.Equal(t, 1, report.Observables)
	assert.Equal(t, 3, report.Mechanisms)
}

func TestParseCommand_MissingFile(t *testing.T) {
	_, err := runCommand(t, newParseCommand(), []string{"nonexistent.dem"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestParseCommand_ParseErrorSurfacesType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dem")
	require.NoError(t, os.WriteFile(path, []byte("error(0.1) D0\nbogus D1\n"), 0o644))

	_, err := runCommand(t, newParseCommand(), []string{path})
	require.Error(t, err)
	var perr *dem.ParseError
	assert.True(t, errors.As(err, &perr))
}

// ---------------------------------------------------------------------------
// solvers
// ---------------------------------------------------------------------------

func TestSolversCommand(t *testing.T) {
	out, err := runCommand(t, newSolversCommand(), []string{})
	require.NoError(t, err)
	assert.Contains(t, out, "greedy (default)")
	assert.Contains(t, out, "exhaustive")
}
