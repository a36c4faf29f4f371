package harness

import (
	"fmt"
	"math"
	"strings"
)

// timeTolerance bounds the relative error accepted when comparing logical
// times from YAML against engine-computed float sums.
const timeTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes the log context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertion dispatches one assertion against a trace result.
func evaluateAssertion(result *Result, assertion Assertion) error {
	switch assertion.Type {
	case AssertEvent:
		return assertEvent(result, assertion)
	case AssertEventCount:
		return assertEventCount(result, assertion)
	case AssertClock:
		return assertClock(result, assertion)
	case AssertLogOrder:
		return assertLogOrder(result, assertion)
	case AssertError:
		return assertError(result, assertion)
	default:
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

// assertEvent checks the event at the given log position.
func assertEvent(result *Result, assertion Assertion) error {
	if assertion.Index >= len(result.Events) {
		return &AssertionError{
			Type:     AssertEvent,
			Expected: fmt.Sprintf("event at index %d", assertion.Index),
			Actual:   fmt.Sprintf("log holds %d events", len(result.Events)),
		}
	}
	ev := result.Events[assertion.Index]

	if assertion.Kind != "" && ev.Instruction.Kind() != assertion.Kind {
		return &AssertionError{
			Type:     AssertEvent,
			Expected: fmt.Sprintf("event %d kind %q", assertion.Index, assertion.Kind),
			Actual:   fmt.Sprintf("kind %q", ev.Instruction.Kind()),
		}
	}
	if assertion.Frame != "" && ev.Frame().String() != assertion.Frame {
		return &AssertionError{
			Type:     AssertEvent,
			Expected: fmt.Sprintf("event %d on frame %s", assertion.Index, assertion.Frame),
			Actual:   fmt.Sprintf("frame %s", ev.Frame()),
		}
	}
	if assertion.Start != nil && !closeEnough(ev.StartTime, *assertion.Start) {
		return &AssertionError{
			Type:     AssertEvent,
			Expected: fmt.Sprintf("event %d start %v", assertion.Index, *assertion.Start),
			Actual:   fmt.Sprintf("start %v", ev.StartTime),
		}
	}
	if assertion.End != nil && !closeEnough(ev.EndTime, *assertion.End) {
		return &AssertionError{
			Type:     AssertEvent,
			Expected: fmt.Sprintf("event %d end %v", assertion.Index, *assertion.End),
			Actual:   fmt.Sprintf("end %v", ev.EndTime),
		}
	}

	return nil
}

// assertEventCount checks the log holds exactly the expected number of
// events.
func assertEventCount(result *Result, assertion Assertion) error {
	if len(result.Events) != assertion.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events", assertion.Count),
			Actual:   fmt.Sprintf("%d events", len(result.Events)),
		}
	}
	return nil
}

// assertClock checks a frame's final logical time.
func assertClock(result *Result, assertion Assertion) error {
	time, ok := result.Clocks[assertion.Frame]
	if !ok {
		return &AssertionError{
			Type:     AssertClock,
			Expected: fmt.Sprintf("clock for frame %s", assertion.Frame),
			Actual:   "frame not defined in program",
		}
	}
	if !closeEnough(time, *assertion.Time) {
		return &AssertionError{
			Type:     AssertClock,
			Expected: fmt.Sprintf("frame %s at time %v", assertion.Frame, *assertion.Time),
			Actual:   fmt.Sprintf("time %v", time),
		}
	}
	return nil
}

// assertLogOrder checks that event kinds appear in the given order.
// Kinds don't need to be consecutive (intervening events are allowed).
func assertLogOrder(result *Result, assertion Assertion) error {
	next := 0
	for _, ev := range result.Events {
		if next < len(assertion.Kinds) && ev.Instruction.Kind() == assertion.Kinds[next] {
			next++
		}
	}
	if next < len(assertion.Kinds) {
		return &AssertionError{
			Type:     AssertLogOrder,
			Expected: fmt.Sprintf("kinds in order: %v", assertion.Kinds),
			Actual:   fmt.Sprintf("matched only %v", assertion.Kinds[:next]),
		}
	}
	return nil
}

// assertError checks that the trace failed with the expected error code.
func assertError(result *Result, assertion Assertion) error {
	if result.TraceCode != assertion.Code {
		actual := result.TraceCode
		if actual == "" {
			actual = "trace succeeded"
		}
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("trace error %s", assertion.Code),
			Actual:   actual,
		}
	}
	return nil
}

// closeEnough compares two logical times with a relative tolerance, so
// that YAML literals match engine-computed float sums.
func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= timeTolerance*scale
}
