package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsetrace/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// TestResult holds the test command output.
type TestResult struct {
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// ScenarioResult reports the outcome for one scenario file.
type ScenarioResult struct {
	Path   string   `json:"path"`
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	Errors []string `json:"errors,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run trace scenarios against the engine",
		Long: `Load one or more YAML scenario files, trace their programs through
the engine and evaluate each scenario's assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (scenario file invalid, program missing, etc.)

Examples:
  pulsetrace test scenarios/ramsey.yaml
  pulsetrace test scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args, cmd)
		},
	}

	return cmd
}

func runTest(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(paths))}

	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load scenario %s", path), err)
		}

		run, err := harness.Run(scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run scenario %s", path), err)
		}

		sr := ScenarioResult{Path: path, Name: scenario.Name, Passed: run.Passed}
		for _, assertErr := range run.Errors {
			sr.Errors = append(sr.Errors, assertErr.Error())
		}
		result.Scenarios = append(result.Scenarios, sr)
		if run.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputTestText(formatter, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText renders scenario results as human-readable text.
func outputTestText(formatter *OutputFormatter, result TestResult) {
	w := formatter.Writer

	for _, sr := range result.Scenarios {
		if sr.Passed {
			fmt.Fprintf(w, "✓ %s (%s)\n", sr.Name, sr.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s)\n", sr.Name, sr.Path)
		for _, msg := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	if result.Failed == 0 {
		fmt.Fprintf(w, "✓ All scenarios passed (%d run)\n", result.Passed)
	} else {
		fmt.Fprintf(w, "✗ %d of %d scenario(s) failed\n",
			result.Failed, result.Passed+result.Failed)
	}
}
