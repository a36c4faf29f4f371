package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/pulsetrace/internal/compiler"
	"github.com/roach88/pulsetrace/internal/engine"
	"github.com/roach88/pulsetrace/internal/ir"
)

// defaultRunToken is used when a scenario doesn't pin an explicit token.
const defaultRunToken = "test-run-default"

// Result holds the outcome of running one scenario.
type Result struct {
	// Passed reports whether every assertion held.
	Passed bool

	// Errors lists the assertion failures (empty when Passed).
	Errors []error

	// Events is the traced event log (nil when the trace failed).
	Events []ir.PulseEvent

	// Clocks maps each defined frame's display form to its final
	// logical time.
	Clocks map[string]float64

	// TraceCode is the trace error code when the trace failed,
	// e.g. "UNDEFINED_FRAME". Empty on success.
	TraceCode string

	// RunToken is the token the scenario ran under.
	RunToken string
}

// Run executes a test scenario and returns the result.
//
// The scenario's program is compiled from CUE and traced through the real
// engine; assertions are then evaluated against the produced log, the
// final clocks and any trace error. Run only returns an error for
// infrastructure problems (unreadable program, compile failure); assertion
// failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	program, err := loadProgram(scenario.Program)
	if err != nil {
		return nil, err
	}

	token := scenario.RunToken
	if token == "" {
		token = defaultRunToken
	}

	result := &Result{RunToken: token}

	// Suppress engine diagnostics in tests.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := engine.NewTracer(engine.WithLogger(logger))

	events, traceErr := tracer.Run(*program)
	if traceErr != nil {
		var te *engine.TraceError
		if errors.As(traceErr, &te) {
			result.TraceCode = string(te.Code)
		} else {
			return nil, fmt.Errorf("trace failed: %w", traceErr)
		}
	} else {
		result.Events = events
		result.Clocks = make(map[string]float64, len(program.Frames))
		for _, def := range program.Frames {
			result.Clocks[def.Frame.String()] = tracer.ClockFor(def.Frame)
		}
	}

	result.Passed = true
	for _, assertion := range scenario.Assertions {
		if err := evaluateAssertion(result, assertion); err != nil {
			result.Passed = false
			result.Errors = append(result.Errors, err)
		}
	}

	return result, nil
}

// loadProgram reads a CUE program file and compiles it to IR.
// The program is expected under a top-level "program" field; a file whose
// root is the program struct itself also works.
func loadProgram(path string) (*ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileString(string(data), cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}

	if pv := v.LookupPath(cue.ParsePath("program")); pv.Exists() {
		v = pv
	}

	program, err := compiler.CompileProgram(v)
	if err != nil {
		return nil, fmt.Errorf("failed to compile program: %w", err)
	}

	return program, nil
}
