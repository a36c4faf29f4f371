package engine

import (
	"log/slog"

	"github.com/roach88/pulsetrace/internal/ir"
)

// DefaultMaxInstructions is the default instruction budget per run.
// This prevents pathological generated programs from consuming unbounded
// time; real control programs are orders of magnitude smaller.
const DefaultMaxInstructions = 1_000_000

// Tracer is the simulation context for one trace run: it exclusively owns
// the frame-state store, the clock store and the event log.
//
// A Tracer is NOT safe for concurrent mutation from multiple goroutines.
// Create one Tracer per goroutine, or serialize access externally.
type Tracer struct {
	states *StateStore
	clocks *Clocks
	log    []ir.PulseEvent

	maxInstructions int
	logger          *slog.Logger
}

// TracerOption allows configuration of tracer parameters.
type TracerOption func(*Tracer)

// WithMaxInstructions sets the instruction budget per run.
//
// Default: 1,000,000 (DefaultMaxInstructions).
// Use a small value to test budget enforcement.
func WithMaxInstructions(n int) TracerOption {
	return func(t *Tracer) {
		t.maxInstructions = n
	}
}

// WithLogger sets the structured logger used for run diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) TracerOption {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// NewTracer creates a Tracer with empty stores.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		states:          NewStateStore(),
		clocks:          NewClocks(),
		maxInstructions: DefaultMaxInstructions,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Trace runs a program through a fresh Tracer and returns the ordered
// pulse event log. This is the single entry point most callers need.
func Trace(program ir.Program, opts ...TracerOption) ([]ir.PulseEvent, error) {
	return NewTracer(opts...).Run(program)
}

// Run initializes the stores from the program's frame definitions, applies
// every instruction in program order, and returns the event log.
//
// Run either returns a complete, consistent log or fails atomically with a
// TraceError; it never returns a partial log. Calling Run again resets all
// state and traces from scratch.
func (t *Tracer) Run(program ir.Program) ([]ir.PulseEvent, error) {
	t.states = NewStateStore()
	t.clocks = NewClocks()
	t.log = nil

	if err := t.states.Init(program.Frames); err != nil {
		return nil, err
	}

	t.logger.Debug("trace starting",
		"frames", t.states.Len(),
		"instructions", len(program.Instructions),
	)

	for i, in := range program.Instructions {
		if i >= t.maxInstructions {
			return nil, NewInstructionQuotaError(len(program.Instructions), t.maxInstructions)
		}
		if err := t.apply(in); err != nil {
			t.logger.Debug("trace aborted",
				"instruction", i,
				"kind", in.Kind(),
				"error", err,
			)
			return nil, err
		}
	}

	t.logger.Debug("trace complete", "events", len(t.log))

	return t.Events(), nil
}

// Events returns a copy of the event log in processing order.
func (t *Tracer) Events() []ir.PulseEvent {
	out := make([]ir.PulseEvent, len(t.log))
	copy(out, t.log)
	return out
}

// ClockFor returns the current logical time of a frame. Used by tests and
// diagnostics; frames never written read as 0.0.
func (t *Tracer) ClockFor(frame ir.Frame) float64 {
	return t.clocks.Get(frame)
}

// StateFor returns a value copy of a frame's current state, or the
// UNDEFINED_FRAME error for unregistered frames.
func (t *Tracer) StateFor(frame ir.Frame) (ir.FrameState, error) {
	return t.states.Get(frame)
}
