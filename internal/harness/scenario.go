package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate engine semantics by tracing a program and asserting
// on the resulting event log and final frame clocks.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path to the CUE program file to compile and trace.
	// Relative paths resolve against the scenario file location.
	Program string `yaml:"program"`

	// RunToken is an optional fixed run token for deterministic golden
	// file comparison. If empty, defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`

	// Assertions validate the event log, clocks or trace error.
	// Supported types: event, event_count, clock, log_order, error
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a trace result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event": Check the event at Index (kind, frame, start, end)
	// - "event_count": Check the log holds exactly Count events
	// - "clock": Check a frame's final clock value
	// - "log_order": Check event kinds appear in log order
	// - "error": Check the trace failed with the given error code
	Type string `yaml:"type"`

	// Index is the log position (used by event).
	Index int `yaml:"index,omitempty"`

	// Kind is the expected instruction kind (used by event).
	Kind string `yaml:"kind,omitempty"`

	// Frame is the frame's display form, e.g. "rf[0]"
	// (used by event and clock).
	Frame string `yaml:"frame,omitempty"`

	// Start and End are the expected event times (used by event).
	// Either may be omitted to skip the check.
	Start *float64 `yaml:"start,omitempty"`
	End   *float64 `yaml:"end,omitempty"`

	// Time is the expected final clock value (used by clock).
	Time *float64 `yaml:"time,omitempty"`

	// Count is the expected number of events (used by event_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected kind sequence (used by log_order).
	// Kinds don't need to be consecutive in the log.
	Kinds []string `yaml:"kinds,omitempty"`

	// Code is the expected trace error code (used by error),
	// e.g. "UNDEFINED_FRAME".
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertEvent      = "event"
	AssertEventCount = "event_count"
	AssertClock      = "clock"
	AssertLogOrder   = "log_order"
	AssertError      = "error"
)

// LoadScenario reads and parses a scenario YAML file, resolving the
// program path relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the program path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Program) && basePath != "" {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEvent:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for event", index)
		}
		if a.Kind == "" && a.Frame == "" && a.Start == nil && a.End == nil {
			return fmt.Errorf("assertions[%d]: event needs at least one of kind, frame, start, end", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertClock:
		if a.Frame == "" {
			return fmt.Errorf("assertions[%d]: frame is required for clock", index)
		}
		if a.Time == nil {
			return fmt.Errorf("assertions[%d]: time is required for clock", index)
		}
	case AssertLogOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for log_order", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
