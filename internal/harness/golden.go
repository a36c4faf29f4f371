package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pulsetrace/internal/ir"
)

// TraceSnapshot captures the complete event log for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunToken     string
	Events       []ir.PulseEvent
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for
// canonical JSON serialization, reusing the same event form that feeds
// event IDs.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Events))
	for i, ev := range s.Events {
		events[i] = ir.CanonicalEvent(ev)
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"events":        events,
	}
	if s.RunToken != "" {
		result["run_token"] = s.RunToken
	}
	return result
}

// RunWithGolden executes a scenario and compares the event log against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected trace output,
// down to the exact canonical float formatting.
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Events:       result.Events,
	}

	return AssertSnapshot(t, scenario.Name, &snapshot)
}

// AssertSnapshot compares a snapshot against the named golden file.
// Useful when the caller has already run a scenario and wants to compare
// without re-running.
func AssertSnapshot(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)

	return nil
}
